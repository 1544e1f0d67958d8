// Package profiling starts optional on-demand (pprof) and continuous
// (Pyroscope) profilers.
package profiling

import (
	"errors"
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/jonesrussell/content-extraction/infrastructure/logger"
)

// Config selects which profilers run.
type Config struct {
	// Pprof serves /debug/pprof on localhost:PprofPort.
	Pprof     bool   `env:"ENABLE_PROFILING" yaml:"pprof"`
	PprofPort string `env:"PPROF_PORT"       yaml:"pprof_port"`

	// Continuous pushes profiles to a Pyroscope server.
	Continuous   bool   `env:"ENABLE_CONTINUOUS_PROFILING" yaml:"continuous"`
	PyroscopeURL string `env:"PYROSCOPE_SERVER_URL"        yaml:"pyroscope_url"`
	Environment  string `env:"PYROSCOPE_ENVIRONMENT"       yaml:"environment"`
}

// SetDefaults fills the pprof port and Pyroscope target.
func (c *Config) SetDefaults() {
	if c.PprofPort == "" {
		c.PprofPort = "6060"
	}
	if c.PyroscopeURL == "" {
		c.PyroscopeURL = "http://pyroscope:4040"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
}

// pprofReadHeaderTimeout guards the debug listener against slowloris clients.
const pprofReadHeaderTimeout = 5 * time.Second

// NewPprofHandler returns a mux exposing the standard pprof endpoints.
func NewPprofHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return mux
}

// StartPprofServer serves pprof on localhost in the background when enabled.
// The returned server is nil when pprof is disabled.
func StartPprofServer(cfg Config, log logger.Logger) *http.Server {
	if !cfg.Pprof {
		return nil
	}
	cfg.SetDefaults()

	srv := &http.Server{
		Addr:              net.JoinHostPort("localhost", cfg.PprofPort),
		Handler:           NewPprofHandler(),
		ReadHeaderTimeout: pprofReadHeaderTimeout,
	}

	go func() {
		log.Info("pprof server listening", logger.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("pprof server stopped", logger.Error(err))
		}
	}()

	return srv
}
