package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/content-extraction/internal/middleware"
)

// Routes collects what SetupRoutes registers.
type Routes struct {
	Handler *Handler
	// APIKey guards the extraction endpoint.
	APIKey string
	// Readiness serves GET /api/health/ready; nil skips the route.
	Readiness gin.HandlerFunc
	// Metrics serves GET /metrics; nil skips the route.
	Metrics http.Handler
}

// SetupRoutes configures all API routes.
func SetupRoutes(router *gin.Engine, r Routes) {
	router.GET("/", r.Handler.Root)

	api := router.Group("/api")
	api.GET("/health", r.Handler.Health)
	if r.Readiness != nil {
		api.GET("/health/ready", r.Readiness)
	}
	api.POST("/trigger-content-extraction", middleware.APIKeyAuth(r.APIKey), r.Handler.TriggerExtraction)

	if r.Metrics != nil {
		router.GET("/metrics", gin.WrapH(r.Metrics))
	}

	router.NoRoute(NotFound)
}
