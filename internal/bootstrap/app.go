package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/jonesrussell/content-extraction/infrastructure/health"
	infralogger "github.com/jonesrussell/content-extraction/infrastructure/logger"
	"github.com/jonesrussell/content-extraction/infrastructure/profiling"
	"github.com/jonesrussell/content-extraction/internal/api"
	"github.com/jonesrussell/content-extraction/internal/config"
	"github.com/jonesrussell/content-extraction/internal/extraction"
	"github.com/jonesrussell/content-extraction/internal/service"
	"github.com/jonesrussell/content-extraction/internal/telemetry"
)

// Exit codes returned by Start.
const (
	exitSuccess = 0
	exitFailure = 1
)

// App holds the wired service.
type App struct {
	Config    *config.Config
	Handler   *api.Handler
	Routes    api.Routes
	Telemetry *telemetry.Provider
	Health    *health.Checker

	cleanup func()
}

// Close releases the store connection.
func (a *App) Close() {
	if a.cleanup != nil {
		a.cleanup()
	}
}

// Start loads configuration, builds the service and serves until shutdown.
// It returns the process exit code.
func Start() int {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return exitFailure
	}

	log, err := CreateLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return exitFailure
	}
	defer func() { _ = log.Sync() }()

	pprofServer := profiling.StartPprofServer(cfg.Profiling, log)
	if pprofServer != nil {
		defer func() { _ = pprofServer.Close() }()
	}

	profiler, err := profiling.StartPyroscope(cfg.Profiling, cfg.Service.Name, cfg.Service.Version, log)
	if err != nil {
		log.Warn("Continuous profiling disabled", infralogger.Error(err))
	}
	defer func() { _ = profiler.Stop() }()

	ctx := context.Background()

	app, err := NewApp(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to initialize service", infralogger.Error(err))
		return exitFailure
	}
	defer app.Close()

	server := api.NewServer(cfg, app.Routes, app.Telemetry, log)

	log.Info("Content extraction service starting",
		infralogger.Int("port", cfg.Service.Port),
		infralogger.String("provider", cfg.LLM.Provider),
		infralogger.String("store", cfg.Store.Driver),
		infralogger.Bool("store_configured", cfg.StoreConfigured()),
		infralogger.Bool("model_configured", cfg.ModelConfigured()),
		infralogger.Bool("api_key_configured", cfg.Auth.APIKey != ""),
	)

	if err = server.RunWithGracefulShutdown(ctx); err != nil {
		log.Error("Server error", infralogger.Error(err))
		return exitFailure
	}

	log.Info("Content extraction service exited cleanly")
	return exitSuccess
}

// NewApp builds the pipeline and HTTP routes for cfg.
func NewApp(ctx context.Context, cfg *config.Config, log infralogger.Logger) (*App, error) {
	tp := telemetry.NewProvider()
	httpClient := NewHTTPClient(cfg)

	model, err := NewModelClient(cfg, httpClient)
	if err != nil {
		return nil, err
	}
	if !cfg.ModelConfigured() {
		log.Warn("Model API key is not configured; extraction calls will fail",
			infralogger.String("provider", cfg.LLM.Provider))
	}

	store, cleanup, err := SetupStore(ctx, cfg, httpClient, log)
	if err != nil {
		return nil, err
	}

	checker := health.NewChecker()
	checker.Register("store", store.Ping)

	extractor := extraction.NewExtractor(model, cfg.Extraction, log, tp)
	pipeline := service.NewExtractionService(extractor, store, log, tp)

	handler := api.NewHandler(pipeline, api.Environment{
		Store:  cfg.StoreConfigured(),
		Model:  cfg.ModelConfigured(),
		APIKey: cfg.Auth.APIKey != "",
	}, cfg.Service.Version, cfg.Service.MaxBodyBytes, log)

	if cfg.Auth.APIKey == "" {
		log.Warn("Extraction API key is not configured; the extraction endpoint will refuse requests")
	}

	return &App{
		Config:    cfg,
		Handler:   handler,
		Telemetry: tp,
		Health:    checker,
		Routes: api.Routes{
			Handler:   handler,
			APIKey:    cfg.Auth.APIKey,
			Readiness: checker.GinHandler(),
			Metrics:   tp.Handler(),
		},
		cleanup: cleanup,
	}, nil
}
