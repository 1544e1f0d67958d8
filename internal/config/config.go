// Package config loads the extraction service configuration.
package config

import (
	"time"

	infraconfig "github.com/jonesrussell/content-extraction/infrastructure/config"
	infraes "github.com/jonesrussell/content-extraction/infrastructure/elasticsearch"
	"github.com/jonesrussell/content-extraction/infrastructure/profiling"
	infraredis "github.com/jonesrussell/content-extraction/infrastructure/redis"
	"github.com/jonesrussell/content-extraction/internal/extraction"
	"github.com/jonesrussell/content-extraction/internal/llm"
	"github.com/jonesrussell/content-extraction/internal/storage"
)

// Default configuration values.
const (
	defaultServiceName  = "content-extraction"
	defaultVersion      = "1.0.0"
	defaultServicePort  = 3000
	defaultMaxBodyBytes = 10 << 20
	defaultHTTPTimeout  = 60 * time.Second
	defaultProvider     = llm.ProviderOpenAI
	defaultStoreDriver  = storage.DriverPostgREST
	defaultConnectTries = 3
)

// Config holds the application configuration.
type Config struct {
	Service    ServiceConfig             `yaml:"service"`
	Auth       AuthConfig                `yaml:"auth"`
	LLM        LLMConfig                 `yaml:"llm"`
	Extraction extraction.Config         `yaml:"extraction"`
	Store      StoreConfig               `yaml:"store"`
	Profiling  profiling.Config          `yaml:"profiling"`
	Logging    infraconfig.LoggingConfig `yaml:"logging"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name         string   `yaml:"name"`
	Version      string   `yaml:"version"`
	Port         int      `env:"PORT"         yaml:"port"`
	Debug        bool     `env:"APP_DEBUG"    yaml:"debug"`
	CORSOrigins  []string `env:"CORS_ORIGINS" yaml:"cors_origins"`
	MaxBodyBytes int64    `yaml:"max_body_bytes"`
	// HTTPTimeout bounds each outbound model or store request.
	HTTPTimeout time.Duration `env:"HTTP_CLIENT_TIMEOUT" yaml:"http_timeout"`
}

// AuthConfig holds the shared secret expected in x-api-key.
type AuthConfig struct {
	APIKey string `env:"EXTRACTION_API_KEY" yaml:"api_key"` //nolint:gosec // shared secret
}

// LLMConfig selects and configures the model provider.
type LLMConfig struct {
	Provider  string          `env:"LLM_PROVIDER" yaml:"provider"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
}

// OpenAIConfig configures an OpenAI-compatible chat completions endpoint.
type OpenAIConfig struct {
	APIKey  string `env:"OPENAI_API_KEY"  yaml:"api_key"` //nolint:gosec // provider secret
	BaseURL string `env:"OPENAI_BASE_URL" yaml:"base_url"`
	Model   string `env:"OPENAI_MODEL"    yaml:"model"`
}

// AnthropicConfig configures the Anthropic Messages API.
type AnthropicConfig struct {
	APIKey  string `env:"ANTHROPIC_API_KEY"  yaml:"api_key"` //nolint:gosec // provider secret
	BaseURL string `env:"ANTHROPIC_BASE_URL" yaml:"base_url"`
	Model   string `env:"ANTHROPIC_MODEL"    yaml:"model"`
}

// StoreConfig selects and configures the persistence driver.
type StoreConfig struct {
	Driver        string                     `env:"STORE_DRIVER" yaml:"driver"`
	Table         string                     `env:"STORE_TABLE"  yaml:"table"`
	Supabase      storage.PostgRESTConfig    `yaml:"supabase"`
	Postgres      infraconfig.DatabaseConfig `yaml:"postgres"`
	Elasticsearch infraes.Config             `yaml:"elasticsearch"`
	Redis         infraredis.Config          `yaml:"redis"`
	// ConnectAttempts bounds startup connection attempts for network stores.
	ConnectAttempts int `env:"STORE_CONNECT_ATTEMPTS" yaml:"connect_attempts"`
}

// Load loads configuration from the specified path.
func Load(path string) (*Config, error) {
	return infraconfig.LoadWithDefaults[Config](path, setDefaults)
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setLLMDefaults(&cfg.LLM)
	cfg.Extraction.SetDefaults()
	setStoreDefaults(&cfg.Store)
	cfg.Profiling.SetDefaults()
	cfg.Logging.SetDefaults()
}

func setServiceDefaults(svc *ServiceConfig) {
	if svc.Name == "" {
		svc.Name = defaultServiceName
	}
	if svc.Version == "" {
		svc.Version = defaultVersion
	}
	if svc.Port == 0 {
		svc.Port = defaultServicePort
	}
	if svc.MaxBodyBytes <= 0 {
		svc.MaxBodyBytes = defaultMaxBodyBytes
	}
	if svc.HTTPTimeout == 0 {
		svc.HTTPTimeout = defaultHTTPTimeout
	}
}

func setLLMDefaults(l *LLMConfig) {
	if l.Provider == "" {
		l.Provider = defaultProvider
	}
	if l.OpenAI.BaseURL == "" {
		l.OpenAI.BaseURL = llm.DefaultOpenAIBaseURL
	}
	if l.OpenAI.Model == "" {
		l.OpenAI.Model = llm.DefaultOpenAIModel
	}
	if l.Anthropic.Model == "" {
		l.Anthropic.Model = llm.DefaultAnthropicModel
	}
}

func setStoreDefaults(s *StoreConfig) {
	if s.Driver == "" {
		s.Driver = defaultStoreDriver
	}
	if s.Table == "" {
		s.Table = storage.DefaultTable
	}
	if s.ConnectAttempts <= 0 {
		s.ConnectAttempts = defaultConnectTries
	}
	if s.Elasticsearch.Index == "" {
		s.Elasticsearch.Index = s.Table
	}
	if s.Redis.Stream == "" {
		s.Redis.Stream = s.Table
	}
	s.Postgres.SetDefaults()
	s.Elasticsearch.SetDefaults()
}

// Validate checks the configuration. Missing secrets are allowed; they are
// reported by the health endpoint and fail individual requests instead.
func (c *Config) Validate() error {
	if err := infraconfig.ValidatePort("service.port", c.Service.Port); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if err := infraconfig.ValidateOneOf("llm.provider", c.LLM.Provider,
		llm.ProviderOpenAI, llm.ProviderAnthropic); err != nil {
		return err
	}
	if err := infraconfig.ValidateURL("llm.openai.base_url", c.LLM.OpenAI.BaseURL); err != nil {
		return err
	}
	if err := infraconfig.ValidateURL("llm.anthropic.base_url", c.LLM.Anthropic.BaseURL); err != nil {
		return err
	}
	return c.validateStore()
}

func (c *Config) validateStore() error {
	s := &c.Store
	if err := infraconfig.ValidateOneOf("store.driver", s.Driver,
		storage.DriverPostgREST, storage.DriverPostgres, storage.DriverElasticsearch, storage.DriverRedis); err != nil {
		return err
	}

	switch s.Driver {
	case storage.DriverPostgREST:
		return infraconfig.ValidateURL("store.supabase.url", s.Supabase.URL)
	case storage.DriverPostgres:
		return s.Postgres.Validate("store.postgres")
	case storage.DriverElasticsearch:
		return infraconfig.ValidateURL("store.elasticsearch.url", s.Elasticsearch.URL)
	case storage.DriverRedis:
		return infraconfig.ValidateRequired("store.redis.address", s.Redis.Address)
	}
	return nil
}

// StoreConfigured reports whether the selected store has an endpoint. The
// hosted table store's service key is not part of this check; a missing key
// fails each insert instead.
func (c *Config) StoreConfigured() bool {
	s := &c.Store
	switch s.Driver {
	case storage.DriverPostgREST:
		return s.Supabase.URL != ""
	case storage.DriverPostgres:
		return s.Postgres.Host != ""
	case storage.DriverElasticsearch:
		return s.Elasticsearch.URL != ""
	case storage.DriverRedis:
		return s.Redis.Address != ""
	}
	return false
}

// ModelConfigured reports whether the selected provider has an API key.
func (c *Config) ModelConfigured() bool {
	if c.LLM.Provider == llm.ProviderAnthropic {
		return c.LLM.Anthropic.APIKey != ""
	}
	return c.LLM.OpenAI.APIKey != ""
}
