package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `env:"POSTGRES_HOST"     yaml:"host"`
	Port            int           `env:"POSTGRES_PORT"     yaml:"port"`
	User            string        `env:"POSTGRES_USER"     yaml:"user"`
	Password        string        `env:"POSTGRES_PASSWORD" yaml:"password"` //nolint:gosec // connection secret
	Database        string        `env:"POSTGRES_DB"       yaml:"database"`
	SSLMode         string        `env:"POSTGRES_SSLMODE"  yaml:"sslmode"`
	MaxConnections  int           `yaml:"max_connections"`
	MaxIdleConns    int           `yaml:"max_idle_connections"`
	ConnMaxLifetime time.Duration `yaml:"connection_max_lifetime"`
}

// Default PostgreSQL settings.
const (
	DefaultDatabasePort            = 5432
	DefaultDatabaseSSLMode         = "disable"
	DefaultDatabaseMaxConnections  = 10
	DefaultDatabaseMaxIdleConns    = 2
	DefaultDatabaseConnMaxLifetime = 5 * time.Minute
)

// SetDefaults fills unset pool and connection settings.
func (c *DatabaseConfig) SetDefaults() {
	if c.Port == 0 {
		c.Port = DefaultDatabasePort
	}
	if c.SSLMode == "" {
		c.SSLMode = DefaultDatabaseSSLMode
	}
	if c.MaxConnections == 0 {
		c.MaxConnections = DefaultDatabaseMaxConnections
	}
	if c.MaxIdleConns == 0 {
		c.MaxIdleConns = DefaultDatabaseMaxIdleConns
	}
	if c.ConnMaxLifetime == 0 {
		c.ConnMaxLifetime = DefaultDatabaseConnMaxLifetime
	}
}

// DSN returns a lib/pq keyword/value connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// URL returns the connection as a postgres:// URL, the form golang-migrate expects.
func (c *DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Database,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

// Validate reports the first missing required connection field.
func (c *DatabaseConfig) Validate(prefix string) error {
	if err := ValidateRequired(prefix+".host", c.Host); err != nil {
		return err
	}
	if err := ValidatePort(prefix+".port", c.Port); err != nil {
		return err
	}
	if err := ValidateRequired(prefix+".user", c.User); err != nil {
		return err
	}
	return ValidateRequired(prefix+".database", c.Database)
}

// LoggingConfig holds logger settings shared by every entrypoint.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
}

// SetDefaults applies info level and JSON output when unset.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "json"
	}
}

// Validate checks level and format against the supported values.
func (c *LoggingConfig) Validate() error {
	if err := ValidateOneOf("logging.level", c.Level, "debug", "info", "warn", "warning", "error", "fatal"); err != nil {
		return err
	}
	return ValidateOneOf("logging.format", c.Format, "json", "console")
}
