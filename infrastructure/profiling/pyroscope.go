package profiling

import (
	"fmt"
	"os"
	"runtime"

	"github.com/grafana/pyroscope-go"

	"github.com/jonesrussell/content-extraction/infrastructure/logger"
)

// Profiler is a running continuous profiler. A nil *Profiler is valid and inert.
type Profiler struct {
	p *pyroscope.Profiler
}

// StartPyroscope starts continuous profiling for app when cfg.Continuous is
// set. It returns (nil, nil) when disabled.
func StartPyroscope(cfg Config, app, version string, log logger.Logger) (*Profiler, error) {
	if !cfg.Continuous {
		return nil, nil //nolint:nilnil // disabled is not an error
	}
	cfg.SetDefaults()

	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}

	p, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: app,
		ServerAddress:   cfg.PyroscopeURL,
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
		Tags: map[string]string{
			"environment": cfg.Environment,
			"version":     version,
			"hostname":    host,
			"go_version":  runtime.Version(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("start pyroscope: %w", err)
	}

	log.Info("Continuous profiling started",
		logger.String("application", app),
		logger.String("server", cfg.PyroscopeURL),
	)

	return &Profiler{p: p}, nil
}

// Stop flushes and stops the profiler.
func (p *Profiler) Stop() error {
	if p == nil || p.p == nil {
		return nil
	}
	return p.p.Stop()
}
