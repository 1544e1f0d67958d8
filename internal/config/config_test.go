package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetDefaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	setDefaults(cfg)

	assert.Equal(t, defaultServiceName, cfg.Service.Name)
	assert.Equal(t, defaultVersion, cfg.Service.Version)
	assert.Equal(t, defaultServicePort, cfg.Service.Port)
	assert.Equal(t, int64(defaultMaxBodyBytes), cfg.Service.MaxBodyBytes)
	assert.Equal(t, defaultHTTPTimeout, cfg.Service.HTTPTimeout)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-3.5-turbo", cfg.LLM.OpenAI.Model)
	assert.Equal(t, "https://api.openai.com/v1", cfg.LLM.OpenAI.BaseURL)

	assert.Equal(t, 4000, cfg.Extraction.MaxContentChars)
	assert.Equal(t, 200, cfg.Extraction.FallbackSummaryChars)
	assert.Equal(t, 1000, cfg.Extraction.MaxTokens)
	require.NotNil(t, cfg.Extraction.Temperature)
	assert.InDelta(t, 0.3, *cfg.Extraction.Temperature, 1e-9)

	assert.Equal(t, "postgrest", cfg.Store.Driver)
	assert.Equal(t, "raw_articles", cfg.Store.Table)
	assert.Equal(t, "raw_articles", cfg.Store.Elasticsearch.Index)
	assert.Equal(t, "raw_articles", cfg.Store.Redis.Stream)
	assert.Equal(t, 3, cfg.Store.ConnectAttempts)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
service:
  port: 8080
  http_timeout: 15s
llm:
  provider: anthropic
  anthropic:
    model: claude-from-file
store:
  driver: redis
  table: extracted
  redis:
    address: localhost:6379
extraction:
  max_content_chars: 2000
  temperature: 0
`), 0o600))

	t.Setenv("PORT", "9090")
	t.Setenv("EXTRACTION_API_KEY", "secret")
	t.Setenv("ANTHROPIC_API_KEY", "ak")
	t.Setenv("APP_DEBUG", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 9090, cfg.Service.Port)
	assert.True(t, cfg.Service.Debug)
	assert.Equal(t, 15*time.Second, cfg.Service.HTTPTimeout)
	assert.Equal(t, "secret", cfg.Auth.APIKey)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "claude-from-file", cfg.LLM.Anthropic.Model)
	assert.Equal(t, "extracted", cfg.Store.Redis.Stream)
	assert.Equal(t, 2000, cfg.Extraction.MaxContentChars)
	require.NotNil(t, cfg.Extraction.Temperature)
	assert.Zero(t, *cfg.Extraction.Temperature, "an explicit zero temperature is kept")

	assert.True(t, cfg.ModelConfigured())
	assert.True(t, cfg.StoreConfigured())
}

func TestLoad_MissingFileAndSecretsStillValid(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("does-not-exist.yml")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Empty(t, cfg.Auth.APIKey)
	assert.False(t, cfg.ModelConfigured())
	assert.False(t, cfg.StoreConfigured())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Service.Port = 70000 },
			wantErr: "service.port",
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.LLM.Provider = "gemini" },
			wantErr: "llm.provider: must be one of: openai, anthropic",
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Store.Driver = "sqlite" },
			wantErr: "store.driver",
		},
		{
			name:    "relative supabase url",
			mutate:  func(c *Config) { c.Store.Supabase.URL = "project.supabase.co" },
			wantErr: "store.supabase.url",
		},
		{
			name:    "postgres without host",
			mutate:  func(c *Config) { c.Store.Driver = "postgres" },
			wantErr: "store.postgres.host",
		},
		{
			name:    "redis without address",
			mutate:  func(c *Config) { c.Store.Driver = "redis" },
			wantErr: "store.redis.address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := &Config{}
			setDefaults(cfg)
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestStoreConfigured_PostgREST(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	setDefaults(cfg)

	assert.False(t, cfg.StoreConfigured())

	cfg.Store.Supabase.URL = "https://project.supabase.co"
	assert.True(t, cfg.StoreConfigured(), "the store URL alone is reported")
}
