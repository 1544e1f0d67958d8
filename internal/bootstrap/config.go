// Package bootstrap wires configuration, clients and the HTTP server.
package bootstrap

import (
	"fmt"

	infraconfig "github.com/jonesrussell/content-extraction/infrastructure/config"
	infralogger "github.com/jonesrussell/content-extraction/infrastructure/logger"
	"github.com/jonesrussell/content-extraction/internal/config"
)

// LoadConfig loads and validates configuration from $CONFIG_PATH or config.yml.
// A missing file is not an error; defaults and the environment apply.
func LoadConfig() (*config.Config, error) {
	configPath := infraconfig.GetConfigPath("config.yml")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if validationErr := cfg.Validate(); validationErr != nil {
		return nil, fmt.Errorf("validate config: %w", validationErr)
	}
	return cfg, nil
}

// CreateLogger creates a logger instance from configuration.
func CreateLogger(cfg *config.Config) (infralogger.Logger, error) {
	log, err := infralogger.New(infralogger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Service.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log.With(infralogger.String("service", cfg.Service.Name)), nil
}
