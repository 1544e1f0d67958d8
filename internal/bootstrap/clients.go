package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"

	infraes "github.com/jonesrussell/content-extraction/infrastructure/elasticsearch"
	infrahttp "github.com/jonesrussell/content-extraction/infrastructure/http"
	infralogger "github.com/jonesrussell/content-extraction/infrastructure/logger"
	infraredis "github.com/jonesrussell/content-extraction/infrastructure/redis"
	"github.com/jonesrussell/content-extraction/infrastructure/retry"
	"github.com/jonesrussell/content-extraction/internal/config"
	"github.com/jonesrussell/content-extraction/internal/extraction"
	"github.com/jonesrussell/content-extraction/internal/llm"
	"github.com/jonesrussell/content-extraction/internal/service"
	"github.com/jonesrussell/content-extraction/internal/storage"
)

// StoreWriter is a service.Store that can also report its own health.
type StoreWriter interface {
	service.Store
	Ping(ctx context.Context) error
}

// NewHTTPClient builds the outbound client shared by the model and the
// hosted table store.
func NewHTTPClient(cfg *config.Config) *http.Client {
	return infrahttp.NewClient(infrahttp.ClientConfig{
		Timeout:   cfg.Service.HTTPTimeout,
		UserAgent: cfg.Service.Name + "/" + cfg.Service.Version,
	})
}

// NewModelClient returns the completion client for cfg.LLM.Provider.
func NewModelClient(cfg *config.Config, httpClient *http.Client) (extraction.Completer, error) {
	switch cfg.LLM.Provider {
	case llm.ProviderOpenAI:
		return llm.NewOpenAIClient(llm.OpenAIConfig{
			APIKey:  cfg.LLM.OpenAI.APIKey,
			BaseURL: cfg.LLM.OpenAI.BaseURL,
			Model:   cfg.LLM.OpenAI.Model,
		}, httpClient), nil
	case llm.ProviderAnthropic:
		return llm.NewAnthropicClient(llm.AnthropicConfig{
			APIKey:  cfg.LLM.Anthropic.APIKey,
			BaseURL: cfg.LLM.Anthropic.BaseURL,
			Model:   cfg.LLM.Anthropic.Model,
		}, httpClient), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}

// SetupStore connects the writer for cfg.Store.Driver. The returned cleanup
// releases its connection and is never nil.
func SetupStore(
	ctx context.Context,
	cfg *config.Config,
	httpClient *http.Client,
	log infralogger.Logger,
) (StoreWriter, func(), error) {
	s := &cfg.Store
	noop := func() {}

	switch s.Driver {
	case storage.DriverPostgREST:
		if s.Supabase.Timeout > 0 {
			httpClient = infrahttp.NewClient(infrahttp.ClientConfig{
				Timeout:   s.Supabase.Timeout,
				UserAgent: cfg.Service.Name + "/" + cfg.Service.Version,
			})
		}
		if s.Supabase.URL == "" || s.Supabase.ServiceKey == "" {
			log.Warn("Supabase store is not configured; every article will fail to store")
		}
		return storage.NewPostgRESTWriter(s.Supabase, s.Table, httpClient), noop, nil

	case storage.DriverPostgres:
		var db *sqlx.DB
		err := connect(ctx, cfg, log, func(ctx context.Context) error {
			var openErr error
			db, openErr = storage.OpenPostgres(ctx, s.Postgres)
			return openErr
		})
		if err != nil {
			return nil, noop, fmt.Errorf("connect postgres: %w", err)
		}
		log.Info("Database connected",
			infralogger.String("host", s.Postgres.Host),
			infralogger.Int("port", s.Postgres.Port),
			infralogger.String("database", s.Postgres.Database),
		)
		return storage.NewPostgresWriter(db, s.Table), func() { _ = db.Close() }, nil

	case storage.DriverElasticsearch:
		var client *es.Client
		err := connect(ctx, cfg, log, func(ctx context.Context) error {
			var openErr error
			client, openErr = infraes.NewClient(ctx, s.Elasticsearch, log)
			return openErr
		})
		if err != nil {
			return nil, noop, fmt.Errorf("connect elasticsearch: %w", err)
		}
		return storage.NewElasticsearchWriter(client, s.Elasticsearch.Index), noop, nil

	case storage.DriverRedis:
		var client *goredis.Client
		err := connect(ctx, cfg, log, func(ctx context.Context) error {
			var openErr error
			client, openErr = infraredis.NewClient(ctx, s.Redis)
			return openErr
		})
		if err != nil {
			return nil, noop, fmt.Errorf("connect redis: %w", err)
		}
		log.Info("Redis connected",
			infralogger.String("address", s.Redis.Address),
			infralogger.String("stream", s.Redis.Stream),
		)
		return storage.NewRedisStreamWriter(client, s.Redis.Stream, s.Redis.MaxLen), func() { _ = client.Close() }, nil

	default:
		return nil, noop, fmt.Errorf("unknown store driver %q", s.Driver)
	}
}

// connectRetryDelay is the first backoff between store connection attempts.
const connectRetryDelay = 500 * time.Millisecond

// connect retries a store connection while it fails transiently.
func connect(ctx context.Context, cfg *config.Config, log infralogger.Logger, fn func(context.Context) error) error {
	return retry.Do(ctx, retry.Config{
		MaxAttempts:  cfg.Store.ConnectAttempts,
		InitialDelay: connectRetryDelay,
		OnRetry: func(attempt int, delay time.Duration, err error) {
			log.Warn("Store connection failed, retrying",
				infralogger.String("driver", cfg.Store.Driver),
				infralogger.Int("attempt", attempt),
				infralogger.Duration("delay", delay),
				infralogger.Error(err),
			)
		},
	}, fn)
}
