package elasticsearch

import "time"

// Config holds Elasticsearch connection settings.
type Config struct {
	URL      string `env:"ELASTICSEARCH_URL"      yaml:"url"`
	Username string `env:"ELASTICSEARCH_USERNAME" yaml:"username"`
	Password string `env:"ELASTICSEARCH_PASSWORD" yaml:"password"` //nolint:gosec // connection secret
	APIKey   string `env:"ELASTICSEARCH_API_KEY"  yaml:"api_key"`
	// Index receives one document per stored article.
	Index       string        `env:"ELASTICSEARCH_INDEX" yaml:"index"`
	MaxRetries  int           `yaml:"max_retries"`
	PingTimeout time.Duration `yaml:"ping_timeout"`
}

// Defaults.
const (
	DefaultURL         = "http://localhost:9200"
	DefaultMaxRetries  = 3
	DefaultPingTimeout = 5 * time.Second
)

// SetDefaults fills zero-valued fields.
func (c *Config) SetDefaults() {
	if c.URL == "" {
		c.URL = DefaultURL
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.PingTimeout == 0 {
		c.PingTimeout = DefaultPingTimeout
	}
}
