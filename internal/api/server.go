package api

import (
	"time"

	"github.com/gin-gonic/gin"

	infragin "github.com/jonesrussell/content-extraction/infrastructure/gin"
	infralogger "github.com/jonesrussell/content-extraction/infrastructure/logger"
	"github.com/jonesrussell/content-extraction/internal/config"
	"github.com/jonesrussell/content-extraction/internal/telemetry"
)

// A batch makes one model call per article in sequence, so writes may take
// minutes.
const (
	defaultReadTimeout  = 30 * time.Second
	defaultWriteTimeout = 15 * time.Minute
	defaultIdleTimeout  = 120 * time.Second
)

// NewServer creates a new HTTP server.
func NewServer(
	cfg *config.Config,
	routes Routes,
	tp *telemetry.Provider,
	log infralogger.Logger,
) *infragin.Server {
	builder := infragin.NewServerBuilder(cfg.Service.Name, cfg.Service.Port).
		WithLogger(log).
		WithDebug(cfg.Service.Debug).
		WithVersion(cfg.Service.Version).
		WithTimeouts(defaultReadTimeout, defaultWriteTimeout, defaultIdleTimeout).
		WithCORSOrigins(cfg.Service.CORSOrigins)

	if tp != nil && tp.Metrics != nil && tp.Metrics.HTTP != nil {
		builder = builder.WithMiddleware(tp.Metrics.HTTP.Middleware())
	}

	return builder.
		WithRoutes(func(router *gin.Engine) {
			SetupRoutes(router, routes)
		}).
		Build()
}
