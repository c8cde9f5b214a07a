package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/corticalabs/site-manager/internal/logger"
	"github.com/corticalabs/site-manager/internal/models"
	"github.com/corticalabs/site-manager/internal/repository"
)

// DocumentationStore is the repository surface the documentation handler
// needs.
type DocumentationStore interface {
	GetByVersion(ctx context.Context, version string) (*models.DocumentationLink, error)
	List(ctx context.Context) ([]models.DocumentationLink, error)
	ListDisplayed(ctx context.Context) ([]models.DocumentationLink, error)
	LatestDisplayed(ctx context.Context) (*models.DocumentationLink, error)
	SetDisplayed(ctx context.Context, id string, displayed bool) error
}

// SyncStarter kicks off one documentation sync pass.
type SyncStarter interface {
	Sync(ctx context.Context) (*models.SyncJob, error)
}

// SyncJobReader looks up recorded sync jobs.
type SyncJobReader interface {
	Get(ctx context.Context, id string) (*models.SyncJob, error)
}

type DocumentationHandler struct {
	store  DocumentationStore
	syncer SyncStarter
	jobs   SyncJobReader
	logger logger.Logger
}

func NewDocumentationHandler(store DocumentationStore, syncer SyncStarter, jobs SyncJobReader, log logger.Logger) *DocumentationHandler {
	return &DocumentationHandler{
		store:  store,
		syncer: syncer,
		jobs:   jobs,
		logger: log,
	}
}

// List returns the displayed versions; ?all=true includes hidden ones for
// the dashboard.
func (h *DocumentationHandler) List(c *gin.Context) {
	var (
		docs []models.DocumentationLink
		err  error
	)
	if c.Query("all") == "true" {
		docs, err = h.store.List(c.Request.Context())
	} else {
		docs, err = h.store.ListDisplayed(c.Request.Context())
	}
	if err != nil {
		h.logger.Error("Failed to list documentation versions", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list documentation versions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"documentation": docs,
		"count":         len(docs),
	})
}

// Latest returns the newest displayed release, skipping development
// snapshots unless nothing else is displayed.
func (h *DocumentationHandler) Latest(c *gin.Context) {
	doc, err := h.store.LatestDisplayed(c.Request.Context())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No documentation displayed"})
			return
		}
		h.logger.Error("Failed to resolve latest documentation", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve latest documentation"})
		return
	}

	c.JSON(http.StatusOK, doc)
}

func (h *DocumentationHandler) GetByVersion(c *gin.Context) {
	version := c.Param("version")

	doc, err := h.store.GetByVersion(c.Request.Context(), version)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Documentation version not found"})
		return
	}

	c.JSON(http.StatusOK, doc)
}

type displayedRequest struct {
	Displayed *bool `json:"displayed" binding:"required"`
}

// SetDisplayed toggles whether a version is shown on the public site.
func (h *DocumentationHandler) SetDisplayed(c *gin.Context) {
	id := c.Param("id")

	var req displayedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.store.SetDisplayed(c.Request.Context(), id, *req.Displayed); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Documentation version not found"})
			return
		}
		h.logger.Error("Failed to toggle documentation version",
			logger.String("doc_id", id),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle documentation version"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "displayed": *req.Displayed})
}

// TriggerSync starts a sync pass and returns the queued job so the caller
// can poll its outcome.
func (h *DocumentationHandler) TriggerSync(c *gin.Context) {
	job, err := h.syncer.Sync(c.Request.Context())
	if err != nil {
		h.logger.Error("Sync trigger failed", logger.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Sync failed", "details": err.Error()})
		return
	}

	h.logger.Info("Sync triggered",
		logger.String("job_id", job.ID),
		logger.Int("queued_docs", len(job.DocIDs)),
	)

	c.JSON(http.StatusAccepted, job)
}

// SyncJobStatus reports the recorded state of one sync job.
func (h *DocumentationHandler) SyncJobStatus(c *gin.Context) {
	id := c.Param("id")

	job, err := h.jobs.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Sync job not found"})
			return
		}
		h.logger.Error("Failed to load sync job",
			logger.String("job_id", id),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load sync job"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job":  job,
		"done": job.Done(),
	})
}
