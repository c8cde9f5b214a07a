package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/corticalabs/site-manager/internal/logger"
	"github.com/corticalabs/site-manager/internal/meta"
	"github.com/corticalabs/site-manager/internal/models"
	"github.com/corticalabs/site-manager/internal/repository"
)

// WorkshopStore is the repository surface the workshop handler needs.
type WorkshopStore interface {
	GetBySlug(ctx context.Context, slug string) (*models.Workshop, error)
	ListPublished(ctx context.Context) ([]models.Workshop, error)
	PricingFor(ctx context.Context, workshopID string) ([]models.Pricing, error)
}

type WorkshopHandler struct {
	store           WorkshopStore
	meta            *meta.Builder
	stockAvatarURL  string
	stripePublicKey string
	logger          logger.Logger

	// now is swapped in tests to pin the registration window.
	now func() time.Time
}

func NewWorkshopHandler(store WorkshopStore, metaBuilder *meta.Builder, stockAvatarURL, stripePublicKey string, log logger.Logger) *WorkshopHandler {
	return &WorkshopHandler{
		store:           store,
		meta:            metaBuilder,
		stockAvatarURL:  stockAvatarURL,
		stripePublicKey: stripePublicKey,
		logger:          log,
		now:             time.Now,
	}
}

// List returns the published workshops with their registration state.
func (h *WorkshopHandler) List(c *gin.Context) {
	workshops, err := h.store.ListPublished(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list workshops", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list workshops"})
		return
	}

	now := h.now()
	items := make([]gin.H, 0, len(workshops))
	for _, w := range workshops {
		items = append(items, gin.H{
			"workshop":           w,
			"registration_state": w.RegistrationState(now),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"workshops": items,
		"count":     len(items),
	})
}

// Get returns one published workshop page. Unpublished workshops are
// indistinguishable from missing ones.
func (h *WorkshopHandler) Get(c *gin.Context) {
	slug := c.Param("slug")

	workshop, err := h.store.GetBySlug(c.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Workshop not found"})
			return
		}
		h.logger.Error("Failed to load workshop",
			logger.String("slug", slug),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load workshop"})
		return
	}
	if !workshop.IsPublished {
		c.JSON(http.StatusNotFound, gin.H{"error": "Workshop not found"})
		return
	}

	for idx := range workshop.Speakers {
		workshop.Speakers[idx].AvatarURL = workshop.Speakers[idx].AvatarOrDefault(h.stockAvatarURL)
	}
	h.renderBody(workshop)

	c.JSON(http.StatusOK, gin.H{
		"workshop":           workshop,
		"registration_state": workshop.RegistrationState(h.now()),
		"meta": h.meta.ForPage(meta.Tags{
			Title:       workshop.CodeName,
			Description: workshop.Description,
			URL:         "/workshops/" + workshop.Slug,
		}),
	})
}

// EventSpace returns the attendee page of a published workshop: the rendered
// body plus the speaker lineup.
func (h *WorkshopHandler) EventSpace(c *gin.Context) {
	slug := c.Param("slug")

	workshop, err := h.store.GetBySlug(c.Request.Context(), slug)
	if err != nil || !workshop.IsPublished {
		c.JSON(http.StatusNotFound, gin.H{"error": "Workshop not found"})
		return
	}

	for idx := range workshop.Speakers {
		workshop.Speakers[idx].AvatarURL = workshop.Speakers[idx].AvatarOrDefault(h.stockAvatarURL)
	}
	h.renderBody(workshop)

	c.JSON(http.StatusOK, gin.H{
		"slug":      workshop.Slug,
		"code_name": workshop.CodeName,
		"body_html": workshop.BodyHTML,
		"is_online": workshop.IsOnline,
		"speakers":  workshop.Speakers,
	})
}

// renderBody fills BodyHTML from the markdown source when no pre-rendered
// HTML was stored.
func (h *WorkshopHandler) renderBody(workshop *models.Workshop) {
	if workshop.BodyHTML != "" || workshop.BodyMarkdown == "" {
		return
	}
	if err := workshop.RenderBody(); err != nil {
		h.logger.Warn("Failed to render workshop body",
			logger.String("slug", workshop.Slug),
			logger.Error(err),
		)
	}
}

// Pricing returns the registration tiers of a published workshop together
// with the Stripe publishable key the checkout embeds. Outside the
// registration window the tiers and key are withheld; the payload carries
// only the registration state.
func (h *WorkshopHandler) Pricing(c *gin.Context) {
	slug := c.Param("slug")

	workshop, err := h.store.GetBySlug(c.Request.Context(), slug)
	if err != nil || !workshop.IsPublished {
		c.JSON(http.StatusNotFound, gin.H{"error": "Workshop not found"})
		return
	}

	state := workshop.RegistrationState(h.now())
	if state != models.WorkshopOpen {
		c.JSON(http.StatusOK, gin.H{"registration_state": state})
		return
	}

	tiers, err := h.store.PricingFor(c.Request.Context(), workshop.ID)
	if err != nil {
		h.logger.Error("Failed to load pricing",
			logger.String("slug", slug),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load pricing"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"registration_state": state,
		"pricing":            tiers,
		"stripe_public_key":  h.stripePublicKey,
	})
}
