package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/corticalabs/site-manager/internal/logger"
)

// PermissionChecker verifies commit access to the project repository.
type PermissionChecker interface {
	HasCommitPermission(ctx context.Context, accessToken, repoName string) (bool, error)
}

// AuthHandler exchanges a GitHub access token for a dashboard session token.
// Access is granted to users with commit permission on the project
// repository.
type AuthHandler struct {
	github    PermissionChecker
	repoName  string
	jwtSecret []byte
	tokenTTL  time.Duration
	logger    logger.Logger
}

func NewAuthHandler(github PermissionChecker, repoName, jwtSecret string, tokenTTL time.Duration, log logger.Logger) *AuthHandler {
	return &AuthHandler{
		github:    github,
		repoName:  repoName,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		logger:    log,
	}
}

type loginRequest struct {
	AccessToken string `json:"access_token" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	allowed, err := h.github.HasCommitPermission(c.Request.Context(), req.AccessToken, h.repoName)
	if err != nil {
		h.logger.Error("Permission check failed", logger.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Permission check failed"})
		return
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "Commit permission required"})
		return
	}

	expiresAt := time.Now().Add(h.tokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "dashboard",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})

	signed, err := token.SignedString(h.jwtSecret)
	if err != nil {
		h.logger.Error("Failed to sign session token", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue session token"})
		return
	}

	h.logger.Info("Dashboard session issued")
	c.JSON(http.StatusOK, gin.H{
		"token":      signed,
		"expires_at": expiresAt,
	})
}
