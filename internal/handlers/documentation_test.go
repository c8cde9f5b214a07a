package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corticalabs/site-manager/internal/handlers"
	"github.com/corticalabs/site-manager/internal/logger"
	"github.com/corticalabs/site-manager/internal/models"
	"github.com/corticalabs/site-manager/internal/repository"
)

type stubDocStore struct {
	displayedSet map[string]bool
}

func (s *stubDocStore) GetByVersion(_ context.Context, version string) (*models.DocumentationLink, error) {
	if version != "1.1.0" {
		return nil, repository.ErrNotFound
	}
	return &models.DocumentationLink{ID: "doc-1", Version: version}, nil
}

func (s *stubDocStore) List(context.Context) ([]models.DocumentationLink, error) {
	return []models.DocumentationLink{
		{ID: "doc-1", Version: "1.1.0", Displayed: true},
		{ID: "doc-2", Version: "1.2.0dev"},
	}, nil
}

func (s *stubDocStore) ListDisplayed(context.Context) ([]models.DocumentationLink, error) {
	return []models.DocumentationLink{{ID: "doc-1", Version: "1.1.0", Displayed: true}}, nil
}

func (s *stubDocStore) LatestDisplayed(context.Context) (*models.DocumentationLink, error) {
	return &models.DocumentationLink{ID: "doc-1", Version: "1.1.0", Displayed: true}, nil
}

func (s *stubDocStore) SetDisplayed(_ context.Context, id string, displayed bool) error {
	if id != "doc-1" {
		return repository.ErrNotFound
	}
	if s.displayedSet == nil {
		s.displayedSet = make(map[string]bool)
	}
	s.displayedSet[id] = displayed
	return nil
}

type stubSyncer struct {
	err error
}

func (s *stubSyncer) Sync(context.Context) (*models.SyncJob, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.SyncJob{
		ID:     "job-1",
		Status: models.SyncJobQueued,
		DocIDs: []string{"doc-1"},
	}, nil
}

type stubJobReader struct{}

func (stubJobReader) Get(_ context.Context, id string) (*models.SyncJob, error) {
	if id != "job-1" {
		return nil, repository.ErrNotFound
	}
	return &models.SyncJob{ID: id, Status: models.SyncJobSucceeded, DocIDs: []string{"doc-1"}}, nil
}

func newDocumentationRouter(store *stubDocStore, syncer *stubSyncer) *gin.Engine {
	h := handlers.NewDocumentationHandler(store, syncer, stubJobReader{}, logger.NewNop())

	router := gin.New()
	router.GET("/documentation", h.List)
	router.GET("/documentation/latest", h.Latest)
	router.GET("/documentation/:version", h.GetByVersion)
	router.PATCH("/documentation/:id/displayed", h.SetDisplayed)
	router.POST("/sync", h.TriggerSync)
	router.GET("/sync/jobs/:id", h.SyncJobStatus)
	return router
}

func TestDocumentationHandler_List(t *testing.T) {
	router := newDocumentationRouter(&stubDocStore{}, &stubSyncer{})

	rec := doJSON(t, router, http.MethodGet, "/documentation", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)

	rec = doJSON(t, router, http.MethodGet, "/documentation?all=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
}

func TestDocumentationHandler_Latest(t *testing.T) {
	router := newDocumentationRouter(&stubDocStore{}, &stubSyncer{})

	rec := doJSON(t, router, http.MethodGet, "/documentation/latest", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var doc models.DocumentationLink
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "1.1.0", doc.Version)
}

func TestDocumentationHandler_GetByVersion_NotFound(t *testing.T) {
	router := newDocumentationRouter(&stubDocStore{}, &stubSyncer{})

	rec := doJSON(t, router, http.MethodGet, "/documentation/9.9.9", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDocumentationHandler_SetDisplayed(t *testing.T) {
	store := &stubDocStore{}
	router := newDocumentationRouter(store, &stubSyncer{})

	rec := doJSON(t, router, http.MethodPatch, "/documentation/doc-1/displayed",
		map[string]bool{"displayed": false})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, store.displayedSet["doc-1"])
}

func TestDocumentationHandler_TriggerSync(t *testing.T) {
	router := newDocumentationRouter(&stubDocStore{}, &stubSyncer{})

	rec := doJSON(t, router, http.MethodPost, "/sync", nil)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var job models.SyncJob
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, "job-1", job.ID)
	assert.Equal(t, models.SyncJobQueued, job.Status)
	assert.Equal(t, []string{"doc-1"}, job.DocIDs)
}

func TestDocumentationHandler_TriggerSync_Failure(t *testing.T) {
	router := newDocumentationRouter(&stubDocStore{},
		&stubSyncer{err: errors.New("listing unreachable")})

	rec := doJSON(t, router, http.MethodPost, "/sync", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestDocumentationHandler_SyncJobStatus(t *testing.T) {
	router := newDocumentationRouter(&stubDocStore{}, &stubSyncer{})

	rec := doJSON(t, router, http.MethodGet, "/sync/jobs/job-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Job  models.SyncJob `json:"job"`
		Done bool           `json:"done"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, models.SyncJobSucceeded, body.Job.Status)
	assert.True(t, body.Done)

	rec = doJSON(t, router, http.MethodGet, "/sync/jobs/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
