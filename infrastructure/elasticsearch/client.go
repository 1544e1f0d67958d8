// Package elasticsearch constructs a verified go-elasticsearch client.
package elasticsearch

import (
	"context"
	"fmt"
	"strings"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/jonesrussell/content-extraction/infrastructure/logger"
)

// NewClient creates a client for cfg and pings the cluster once.
func NewClient(ctx context.Context, cfg Config, log logger.Logger) (*es.Client, error) {
	cfg.SetDefaults()

	address := normalizeURL(cfg.URL)
	esCfg := es.Config{
		Addresses:  []string{address},
		MaxRetries: cfg.MaxRetries,
	}
	switch {
	case cfg.APIKey != "":
		esCfg.APIKey = cfg.APIKey
	case cfg.Username != "":
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	client, err := es.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	if pingErr := Ping(ctx, client, cfg); pingErr != nil {
		return nil, pingErr
	}

	log.Info("Elasticsearch connection established", logger.String("url", address))
	return client, nil
}

// Ping verifies the cluster answers within cfg.PingTimeout.
func Ping(ctx context.Context, client *es.Client, cfg Config) error {
	cfg.SetDefaults()

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()

	res, err := client.Ping(client.Ping.WithContext(pingCtx))
	if err != nil {
		return fmt.Errorf("ping elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("ping elasticsearch: %s", res.Status())
	}
	return nil
}

func normalizeURL(raw string) string {
	raw = strings.TrimRight(strings.TrimSpace(raw), "/")
	if raw == "" {
		return DefaultURL
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return "http://" + raw
	}
	return raw
}
