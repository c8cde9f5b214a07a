// Package api wires the HTTP routes and cross-cutting middleware.
package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/corticalabs/site-manager/internal/config"
	"github.com/corticalabs/site-manager/internal/handlers"
	"github.com/corticalabs/site-manager/internal/logger"
)

const corsMaxAgeHours = 12

// Handlers bundles the route handlers the router mounts.
type Handlers struct {
	Publications  *handlers.PublicationHandler
	Documentation *handlers.DocumentationHandler
	Content       *handlers.ContentHandler
	Workshops     *handlers.WorkshopHandler
	Feeds         *handlers.FeedHandler
	Auth          *handlers.AuthHandler
}

func NewRouter(h Handlers, cfg *config.Config, log logger.Logger) *gin.Engine {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// CORS middleware - must be first
	router.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.CORSOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Content-Length", "Accept-Encoding",
			"X-CSRF-Token", "Authorization", "accept", "origin",
			"Cache-Control", "X-Requested-With",
		},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           corsMaxAgeHours * time.Hour,
	}))

	router.Use(ginLogger(log))
	router.Use(metricsMiddleware())
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")

	v1.POST("/auth/login", h.Auth.Login)

	v1.GET("/publications", h.Publications.List)
	v1.GET("/publications/:id", h.Publications.GetByID)

	v1.GET("/documentation", h.Documentation.List)
	v1.GET("/documentation/latest", h.Documentation.Latest)
	v1.GET("/documentation/:version", h.Documentation.GetByVersion)

	v1.GET("/sections/:position_id", h.Content.Section)
	v1.GET("/news", h.Content.News)
	v1.GET("/meta", h.Content.Meta)

	v1.GET("/workshops", h.Workshops.List)
	v1.GET("/workshops/:slug", h.Workshops.Get)
	v1.GET("/workshops/:slug/pricing", h.Workshops.Pricing)
	v1.GET("/workshops/:slug/eventspace", h.Workshops.EventSpace)

	v1.GET("/feeds", h.Feeds.All)
	v1.GET("/feeds/facebook", h.Feeds.Facebook)
	v1.GET("/feeds/twitter", h.Feeds.Twitter)
	v1.GET("/feeds/youtube", h.Feeds.YouTube)

	// Dashboard routes require a session token issued by /auth/login.
	dashboard := v1.Group("/dashboard", JWTAuth(cfg.Auth.JWTSecret))

	dashboard.POST("/publications", h.Publications.Create)
	dashboard.POST("/publications/bibtex", h.Publications.CreateFromBibtex)
	dashboard.POST("/publications/import", h.Publications.Import)
	dashboard.PUT("/publications/highlight", h.Publications.Highlight)
	dashboard.PUT("/publications/:id", h.Publications.Update)
	dashboard.DELETE("/publications/:id", h.Publications.Delete)

	dashboard.GET("/documentation", h.Documentation.List)
	dashboard.PATCH("/documentation/:id/displayed", h.Documentation.SetDisplayed)
	dashboard.POST("/sync", h.Documentation.TriggerSync)
	dashboard.GET("/sync/jobs/:id", h.Documentation.SyncJobStatus)

	return router
}

func ginLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		log.Info("HTTP request",
			logger.String("method", method),
			logger.String("path", path),
			logger.Int("status_code", c.Writer.Status()),
			logger.String("client_ip", c.ClientIP()),
			logger.Duration("duration", time.Since(start)),
		)
	}
}
