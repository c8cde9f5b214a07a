package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/corticalabs/site-manager/internal/logger"
	"github.com/corticalabs/site-manager/internal/meta"
	"github.com/corticalabs/site-manager/internal/models"
	"github.com/corticalabs/site-manager/internal/repository"
)

const defaultNewsLimit = 10

// ContentStore serves the read-only site content.
type ContentStore interface {
	SectionByPosition(ctx context.Context, positionID string) (*models.WebsiteSection, error)
	LatestNews(ctx context.Context, limit int) ([]models.NewsPost, error)
}

type ContentHandler struct {
	store  ContentStore
	meta   *meta.Builder
	logger logger.Logger
}

func NewContentHandler(store ContentStore, metaBuilder *meta.Builder, log logger.Logger) *ContentHandler {
	return &ContentHandler{
		store:  store,
		meta:   metaBuilder,
		logger: log,
	}
}

// Section returns the content block at a fixed page position along with the
// page metadata derived from it.
func (h *ContentHandler) Section(c *gin.Context) {
	positionID := c.Param("position_id")

	section, err := h.store.SectionByPosition(c.Request.Context(), positionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Section not found"})
			return
		}
		h.logger.Error("Failed to load section",
			logger.String("position_id", positionID),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load section"})
		return
	}

	if section.BodyHTML == "" && section.BodyMarkdown != "" {
		if renderErr := section.RenderBody(); renderErr != nil {
			h.logger.Warn("Failed to render section body",
				logger.String("position_id", positionID),
				logger.Error(renderErr),
			)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"section": section,
		"meta": h.meta.ForPage(meta.Tags{
			Title: section.Title,
			URL:   "/" + section.PositionID,
		}),
	})
}

// Meta returns the page metadata defaults merged with any overrides passed
// as query parameters.
func (h *ContentHandler) Meta(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"meta": h.meta.ForPage(meta.Tags{
			Title:       c.Query("title"),
			Description: c.Query("description"),
			URL:         c.Query("url"),
		}),
	})
}

// News lists the latest posts, newest first. ?limit= caps the result.
func (h *ContentHandler) News(c *gin.Context) {
	limit := defaultNewsLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	posts, err := h.store.LatestNews(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list news posts", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list news posts"})
		return
	}

	for idx := range posts {
		post := &posts[idx]
		if post.BodyHTML != "" || post.BodyMarkdown == "" {
			continue
		}
		if renderErr := post.RenderBody(); renderErr != nil {
			h.logger.Warn("Failed to render news body",
				logger.String("post_id", post.ID),
				logger.Error(renderErr),
			)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"news":  posts,
		"count": len(posts),
	})
}
