package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"greendrake/propdesk/internal/api/handlers"
	"greendrake/propdesk/internal/api/middleware"
	"greendrake/propdesk/internal/config"
	"greendrake/propdesk/internal/logging"
	"greendrake/propdesk/internal/services"
)

// HealthCheck reports whether the backing store is reachable.
type HealthCheck func(ctx context.Context) error

// SetupRouter configures and returns the main Gin engine. Background work
// started for the router stops when ctx is cancelled.
func SetupRouter(ctx context.Context, cfg *config.Config, propertyService services.IPropertyService, health HealthCheck) *gin.Engine {
	r := gin.New()

	// Image keys contain '/', so route on the raw path and decode params afterwards.
	r.UseRawPath = true
	r.UnescapePathValues = true

	maxUploadBytes := int64(cfg.MaxUploadMB) << 20
	if maxUploadBytes > 0 {
		r.MaxMultipartMemory = maxUploadBytes
	}

	rateLimiter := middleware.NewRateLimiterMiddleware(ctx, cfg)

	// Apply global middleware first (order matters)
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(logging.RequestLogger())
	r.Use(middleware.CORSMiddleware())
	r.Use(rateLimiter.Limit())

	restPropertyHandler := handlers.NewRestPropertyHandler(propertyService, cfg.PublicBaseURL, maxUploadBytes)

	r.GET("/healthz", func(c *gin.Context) {
		if health != nil {
			if err := health(c.Request.Context()); err != nil {
				slog.WarnContext(c.Request.Context(), "health check failed", "error", err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})

		apiGroup.POST("/properties", restPropertyHandler.CreateProperty)
		apiGroup.GET("/properties", restPropertyHandler.ListProperties)
		apiGroup.GET("/properties/:id", restPropertyHandler.GetProperty)
		apiGroup.PATCH("/properties/:id/notes", restPropertyHandler.AddNote)
		apiGroup.PATCH("/properties/:id/images/:imageKey/caption", restPropertyHandler.SetImageCaption)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	return r
}
