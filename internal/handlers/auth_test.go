package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corticalabs/site-manager/internal/handlers"
	"github.com/corticalabs/site-manager/internal/logger"
)

type stubPermissionChecker struct {
	allowed bool
	err     error
	token   string
	repo    string
}

func (s *stubPermissionChecker) HasCommitPermission(_ context.Context, accessToken, repoName string) (bool, error) {
	s.token = accessToken
	s.repo = repoName
	return s.allowed, s.err
}

func newAuthRouter(checker *stubPermissionChecker) *gin.Engine {
	h := handlers.NewAuthHandler(checker, "site", "test-secret", time.Hour, logger.NewNop())

	router := gin.New()
	router.POST("/auth/login", h.Login)
	return router
}

func TestAuthHandler_Login_IssuesToken(t *testing.T) {
	checker := &stubPermissionChecker{allowed: true}
	router := newAuthRouter(checker)

	rec := doJSON(t, router, http.MethodPost, "/auth/login", map[string]string{
		"access_token": "gho_token",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gho_token", checker.token)
	assert.Equal(t, "site", checker.repo)

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)

	parsed, err := jwt.Parse(body.Token, func(*jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)

	subject, err := parsed.Claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "dashboard", subject)
}

func TestAuthHandler_Login_WithoutPermission(t *testing.T) {
	router := newAuthRouter(&stubPermissionChecker{allowed: false})

	rec := doJSON(t, router, http.MethodPost, "/auth/login", map[string]string{
		"access_token": "gho_token",
	})

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthHandler_Login_ProviderFailure(t *testing.T) {
	router := newAuthRouter(&stubPermissionChecker{err: errors.New("github unreachable")})

	rec := doJSON(t, router, http.MethodPost, "/auth/login", map[string]string{
		"access_token": "gho_token",
	})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestAuthHandler_Login_MissingToken(t *testing.T) {
	router := newAuthRouter(&stubPermissionChecker{allowed: true})

	rec := doJSON(t, router, http.MethodPost, "/auth/login", map[string]string{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
