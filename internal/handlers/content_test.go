package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corticalabs/site-manager/internal/config"
	"github.com/corticalabs/site-manager/internal/handlers"
	"github.com/corticalabs/site-manager/internal/logger"
	"github.com/corticalabs/site-manager/internal/meta"
	"github.com/corticalabs/site-manager/internal/models"
	"github.com/corticalabs/site-manager/internal/repository"
)

type stubContentStore struct {
	section   *models.WebsiteSection
	news      []models.NewsPost
	lastLimit int
}

func (s *stubContentStore) SectionByPosition(_ context.Context, positionID string) (*models.WebsiteSection, error) {
	if s.section == nil || s.section.PositionID != positionID {
		return nil, repository.ErrNotFound
	}
	return s.section, nil
}

func (s *stubContentStore) LatestNews(_ context.Context, limit int) ([]models.NewsPost, error) {
	s.lastLimit = limit
	if limit < len(s.news) {
		return s.news[:limit], nil
	}
	return s.news, nil
}

func newContentRouter(store *stubContentStore) *gin.Engine {
	builder := meta.NewBuilder(config.MetaConfig{
		DefaultTitle:       "Cortica",
		DefaultDescription: "Diffusion imaging analysis in Python",
		DefaultKeywords:    []string{"imaging", "python"},
		DefaultLogoURL:     "https://example.org/logo.png",
	})
	h := handlers.NewContentHandler(store, builder, logger.NewNop())

	router := gin.New()
	router.GET("/sections/:position_id", h.Section)
	router.GET("/news", h.News)
	router.GET("/meta", h.Meta)
	return router
}

func contentGet(t *testing.T, router *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestContentHandler_Section(t *testing.T) {
	store := &stubContentStore{section: &models.WebsiteSection{
		ID:         "sec-1",
		Title:      "Getting Started",
		PositionID: "home.getting_started",
		BodyHTML:   "<p>Install the package.</p>",
	}}
	router := newContentRouter(store)

	rec := contentGet(t, router, "/sections/home.getting_started")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Section models.WebsiteSection `json:"section"`
		Meta    meta.Tags             `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Getting Started", body.Section.Title)
	assert.Equal(t, "Getting Started", body.Meta.Title)
	assert.Equal(t, "/home.getting_started", body.Meta.URL)
}

func TestContentHandler_Section_RendersMarkdownBody(t *testing.T) {
	store := &stubContentStore{section: &models.WebsiteSection{
		ID:           "sec-1",
		Title:        "Getting Started",
		PositionID:   "home.getting_started",
		BodyMarkdown: "Install **the** package.",
	}}
	router := newContentRouter(store)

	rec := contentGet(t, router, "/sections/home.getting_started")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Section models.WebsiteSection `json:"section"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Section.BodyHTML, "<strong>the</strong>")
}

func TestContentHandler_Section_NotFound(t *testing.T) {
	router := newContentRouter(&stubContentStore{})

	rec := contentGet(t, router, "/sections/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContentHandler_News(t *testing.T) {
	store := &stubContentStore{news: []models.NewsPost{
		{ID: "n-1", Title: "Release 1.1"},
		{ID: "n-2", Title: "Release 1.0"},
	}}
	router := newContentRouter(store)

	rec := contentGet(t, router, "/news?limit=1")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		News  []models.NewsPost `json:"news"`
		Count int               `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, 1, store.lastLimit)
}

func TestContentHandler_News_RendersMarkdownBodies(t *testing.T) {
	store := &stubContentStore{news: []models.NewsPost{
		{ID: "n-1", Title: "Release 1.1", BodyMarkdown: "Now with *tractography*."},
		{ID: "n-2", Title: "Release 1.0", BodyHTML: "<p>Stored as HTML.</p>"},
	}}
	router := newContentRouter(store)

	rec := contentGet(t, router, "/news")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		News []models.NewsPost `json:"news"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.News, 2)
	assert.Contains(t, body.News[0].BodyHTML, "<em>tractography</em>")
	assert.Equal(t, "<p>Stored as HTML.</p>", body.News[1].BodyHTML)
}

func TestContentHandler_News_InvalidLimit(t *testing.T) {
	router := newContentRouter(&stubContentStore{})

	for _, limit := range []string{"0", "-3", "many"} {
		rec := contentGet(t, router, "/news?limit="+limit)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "limit=%s", limit)
	}
}

func TestContentHandler_Meta(t *testing.T) {
	router := newContentRouter(&stubContentStore{})

	t.Run("defaults", func(t *testing.T) {
		rec := contentGet(t, router, "/meta")
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Meta meta.Tags `json:"meta"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Cortica", body.Meta.Title)
		assert.Equal(t, "/", body.Meta.URL)
		assert.Equal(t, "https://example.org/logo.png", body.Meta.Image)
	})

	t.Run("overrides", func(t *testing.T) {
		rec := contentGet(t, router, "/meta?title=Workshops&url=/workshops")
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Meta meta.Tags `json:"meta"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Workshops", body.Meta.Title)
		assert.Equal(t, "/workshops", body.Meta.URL)
		assert.Equal(t, "Diffusion imaging analysis in Python", body.Meta.Description)
	})
}
