// Package handlers contains the gin HTTP handlers for the public site API
// and the dashboard.
package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/corticalabs/site-manager/internal/bibtex"
	"github.com/corticalabs/site-manager/internal/importer"
	"github.com/corticalabs/site-manager/internal/logger"
	"github.com/corticalabs/site-manager/internal/models"
	"github.com/corticalabs/site-manager/internal/repository"
)

// PublicationStore is the repository surface the publication handler needs.
type PublicationStore interface {
	Create(ctx context.Context, pub *models.Publication) error
	GetByID(ctx context.Context, id string) (*models.Publication, error)
	List(ctx context.Context) ([]models.Publication, error)
	ListHighlighted(ctx context.Context) ([]models.Publication, error)
	Update(ctx context.Context, pub *models.Publication) error
	Delete(ctx context.Context, id string) error
	SetHighlighted(ctx context.Context, ids []string) error
}

// SpreadsheetImporter bulk-loads publications from an uploaded workbook.
type SpreadsheetImporter interface {
	ImportXLSX(ctx context.Context, r io.Reader) (*importer.Result, error)
}

type PublicationHandler struct {
	store    PublicationStore
	importer SpreadsheetImporter
	logger   logger.Logger
}

func NewPublicationHandler(store PublicationStore, imp SpreadsheetImporter, log logger.Logger) *PublicationHandler {
	return &PublicationHandler{
		store:    store,
		importer: imp,
		logger:   log,
	}
}

func (h *PublicationHandler) Create(c *gin.Context) {
	var pub models.Publication
	if err := c.ShouldBindJSON(&pub); err != nil {
		h.logger.Debug("Invalid request body",
			logger.String("error", err.Error()),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.store.Create(c.Request.Context(), &pub); err != nil {
		h.logger.Error("Failed to create publication",
			logger.String("title", pub.Title),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create publication"})
		return
	}

	h.logger.Info("Publication created",
		logger.String("publication_id", pub.ID),
		logger.String("title", pub.Title),
	)

	c.JSON(http.StatusCreated, pub)
}

type bibtexIntakeRequest struct {
	Source string `json:"source" binding:"required"`
}

// CreateFromBibtex accepts raw BibTeX source and stores every entry that
// carries a title, authors and a resolvable URL. Entries missing a required
// field are dropped without per-entry errors; a source yielding nothing
// valid is rejected as a whole.
func (h *PublicationHandler) CreateFromBibtex(c *gin.Context) {
	var req bibtexIntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	pubs, rejected, err := bibtex.FromSource(req.Source)
	if err != nil || len(pubs) == 0 {
		h.logger.Debug("Citation intake rejected",
			logger.Int("rejected", rejected),
			logger.Error(err),
		)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "No valid citations in source"})
		return
	}

	created := make([]models.Publication, 0, len(pubs))
	for idx := range pubs {
		if err := h.store.Create(c.Request.Context(), &pubs[idx]); err != nil {
			h.logger.Error("Failed to store citation",
				logger.String("title", pubs[idx].Title),
				logger.Error(err),
			)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store citations"})
			return
		}
		created = append(created, pubs[idx])
	}

	h.logger.Info("Citations imported",
		logger.Int("created", len(created)),
		logger.Int("rejected", rejected),
	)

	c.JSON(http.StatusCreated, gin.H{
		"publications": created,
		"created":      len(created),
		"rejected":     rejected,
	})
}

func (h *PublicationHandler) List(c *gin.Context) {
	var (
		pubs []models.Publication
		err  error
	)
	if c.Query("highlighted") == "true" {
		pubs, err = h.store.ListHighlighted(c.Request.Context())
	} else {
		pubs, err = h.store.List(c.Request.Context())
	}
	if err != nil {
		h.logger.Error("Failed to list publications", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list publications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"publications": pubs,
		"count":        len(pubs),
	})
}

func (h *PublicationHandler) GetByID(c *gin.Context) {
	id := c.Param("id")

	pub, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Publication not found"})
		return
	}

	c.JSON(http.StatusOK, pub)
}

func (h *PublicationHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var pub models.Publication
	if err := c.ShouldBindJSON(&pub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	pub.ID = id
	if err := h.store.Update(c.Request.Context(), &pub); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Publication not found"})
			return
		}
		h.logger.Error("Failed to update publication",
			logger.String("publication_id", id),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update publication"})
		return
	}

	c.JSON(http.StatusOK, pub)
}

func (h *PublicationHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Publication not found"})
			return
		}
		h.logger.Error("Failed to delete publication",
			logger.String("publication_id", id),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete publication"})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

type highlightRequest struct {
	IDs []string `json:"ids"`
}

// Highlight replaces the highlighted set: the listed publications become
// highlighted and every other one loses the flag.
func (h *PublicationHandler) Highlight(c *gin.Context) {
	var req highlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.store.SetHighlighted(c.Request.Context(), req.IDs); err != nil {
		h.logger.Error("Failed to update highlights", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update highlights"})
		return
	}

	h.logger.Info("Highlighted publications updated", logger.Int("count", len(req.IDs)))
	c.JSON(http.StatusOK, gin.H{"highlighted": len(req.IDs)})
}

// Import bulk-loads publications from an uploaded .xlsx workbook.
func (h *PublicationHandler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing workbook upload", "details": err.Error()})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable workbook upload"})
		return
	}
	defer file.Close()

	result, err := h.importer.ImportXLSX(c.Request.Context(), file)
	if err != nil {
		h.logger.Error("Publication import failed", logger.Error(err))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Import failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
