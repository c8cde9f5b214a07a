package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corticalabs/site-manager/internal/handlers"
	"github.com/corticalabs/site-manager/internal/importer"
	"github.com/corticalabs/site-manager/internal/logger"
	"github.com/corticalabs/site-manager/internal/models"
	"github.com/corticalabs/site-manager/internal/repository"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubPublicationStore struct {
	created     []models.Publication
	highlighted []string
	createErr   error
	updateErr   error
	deleteErr   error
}

func (s *stubPublicationStore) Create(_ context.Context, pub *models.Publication) error {
	if s.createErr != nil {
		return s.createErr
	}
	pub.ID = "pub-1"
	s.created = append(s.created, *pub)
	return nil
}

func (s *stubPublicationStore) GetByID(_ context.Context, id string) (*models.Publication, error) {
	if id != "pub-1" {
		return nil, repository.ErrNotFound
	}
	return &models.Publication{ID: id, Title: "Paper"}, nil
}

func (s *stubPublicationStore) List(context.Context) ([]models.Publication, error) {
	return []models.Publication{{ID: "pub-1"}, {ID: "pub-2"}}, nil
}

func (s *stubPublicationStore) ListHighlighted(context.Context) ([]models.Publication, error) {
	return []models.Publication{{ID: "pub-1", IsHighlighted: true}}, nil
}

func (s *stubPublicationStore) Update(_ context.Context, pub *models.Publication) error {
	return s.updateErr
}

func (s *stubPublicationStore) Delete(context.Context, string) error {
	return s.deleteErr
}

func (s *stubPublicationStore) SetHighlighted(_ context.Context, ids []string) error {
	s.highlighted = ids
	return nil
}

type stubImporter struct{}

func (stubImporter) ImportXLSX(context.Context, io.Reader) (*importer.Result, error) {
	return &importer.Result{Imported: 2}, nil
}

func newPublicationRouter(store *stubPublicationStore) *gin.Engine {
	h := handlers.NewPublicationHandler(store, stubImporter{}, logger.NewNop())

	router := gin.New()
	router.POST("/publications", h.Create)
	router.POST("/publications/bibtex", h.CreateFromBibtex)
	router.PUT("/publications/highlight", h.Highlight)
	router.GET("/publications", h.List)
	router.GET("/publications/:id", h.GetByID)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPublicationHandler_Create(t *testing.T) {
	store := &stubPublicationStore{}
	router := newPublicationRouter(store)

	rec := doJSON(t, router, http.MethodPost, "/publications", map[string]string{
		"title":   "Paper",
		"authors": "A. Author",
		"url":     "https://example.org",
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, store.created, 1)
}

func TestPublicationHandler_Create_MissingRequiredField(t *testing.T) {
	router := newPublicationRouter(&stubPublicationStore{})

	rec := doJSON(t, router, http.MethodPost, "/publications", map[string]string{
		"title": "Paper without authors or url",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPublicationHandler_CreateFromBibtex(t *testing.T) {
	store := &stubPublicationStore{}
	router := newPublicationRouter(store)

	source := `@article{k,
  title = {Paper},
  author = {A. Author},
  doi = {10.1000/182},
}`

	rec := doJSON(t, router, http.MethodPost, "/publications/bibtex", map[string]string{
		"source": source,
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, store.created, 1)
	assert.Equal(t, "https://doi.org/10.1000/182", store.created[0].URL)

	var body struct {
		Created  int `json:"created"`
		Rejected int `json:"rejected"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Created)
	assert.Zero(t, body.Rejected)
}

func TestPublicationHandler_CreateFromBibtex_NothingValid(t *testing.T) {
	store := &stubPublicationStore{}
	router := newPublicationRouter(store)

	rec := doJSON(t, router, http.MethodPost, "/publications/bibtex", map[string]string{
		"source": "@article{k, year = {2021}}",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, store.created)
}

func TestPublicationHandler_Highlight(t *testing.T) {
	store := &stubPublicationStore{}
	router := newPublicationRouter(store)

	rec := doJSON(t, router, http.MethodPut, "/publications/highlight", map[string]any{
		"ids": []string{"pub-1", "pub-2"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"pub-1", "pub-2"}, store.highlighted)
}

func TestPublicationHandler_List(t *testing.T) {
	router := newPublicationRouter(&stubPublicationStore{})

	rec := doJSON(t, router, http.MethodGet, "/publications", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)

	rec = doJSON(t, router, http.MethodGet, "/publications?highlighted=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
}

func TestPublicationHandler_GetByID_NotFound(t *testing.T) {
	router := newPublicationRouter(&stubPublicationStore{})

	rec := doJSON(t, router, http.MethodGet, "/publications/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
