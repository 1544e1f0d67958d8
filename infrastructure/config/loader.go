// Package config loads service configuration from an optional YAML file,
// layered under .env files and process environment variables.
//
// Precedence, lowest to highest:
//
//  1. values in the YAML file (if the file exists)
//  2. defaults supplied by the caller
//  3. environment variables named by `env:"NAME"` struct tags
//
// Before environment overrides are read, .env files are loaded into the
// process environment: ENV_FILE when set, otherwise .env.local then .env.
// Variables already present in the environment are never replaced.
//
//	type Config struct {
//	    Port int `yaml:"port" env:"PORT"`
//	}
//
//	cfg, err := config.LoadWithDefaults("config.yml", func(c *Config) {
//	    if c.Port == 0 {
//	        c.Port = 3000
//	    }
//	})
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// configPathEnv names the variable that overrides the config file location.
const configPathEnv = "CONFIG_PATH"

var durationType = reflect.TypeOf(time.Duration(0))

// loadDotEnv populates the process environment from .env files.
// Missing files are not an error.
func loadDotEnv() error {
	if explicit := os.Getenv("ENV_FILE"); explicit != "" {
		return loadDotEnvFile(explicit)
	}

	for _, name := range []string{".env.local", ".env"} {
		if err := loadDotEnvFile(name); err != nil {
			return err
		}
	}

	return nil
}

func loadDotEnvFile(name string) error {
	err := godotenv.Load(name)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load env file %s: %w", name, err)
}

// Load decodes the YAML file at path into a new T and applies environment
// overrides. A missing file yields a zero T with overrides applied, so a
// service can be configured purely from the environment.
func Load[T any](path string) (*T, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	var cfg T
	if err := decodeFile(path, &cfg); err != nil {
		return nil, err
	}

	ApplyEnv(&cfg)
	return &cfg, nil
}

// LoadWithDefaults is Load with a defaults hook run between the file decode
// and a final pass of environment overrides, so the environment always wins.
func LoadWithDefaults[T any](path string, setDefaults func(*T)) (*T, error) {
	cfg, err := Load[T](path)
	if err != nil {
		return nil, err
	}

	if setDefaults != nil {
		setDefaults(cfg)
		ApplyEnv(cfg)
	}

	return cfg, nil
}

func decodeFile(path string, out any) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	if unmarshalErr := yaml.Unmarshal(data, out); unmarshalErr != nil {
		return fmt.Errorf("parse config file %s: %w", path, unmarshalErr)
	}

	return nil
}

// ApplyEnv walks cfg (a pointer to a struct) and overwrites every field
// tagged `env:"NAME"` for which NAME is set to a non-empty value.
// Values that fail to parse for the field's type are ignored.
func ApplyEnv(cfg any) {
	v := reflect.ValueOf(cfg)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return
		}
		v = v.Elem()
	}
	walkStruct(v)
}

func walkStruct(v reflect.Value) {
	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := range v.NumField() {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}

		switch {
		case field.Kind() == reflect.Struct:
			walkStruct(field)
			continue
		case field.Kind() == reflect.Pointer && field.Type().Elem().Kind() == reflect.Struct:
			if field.IsNil() {
				field.Set(reflect.New(field.Type().Elem()))
			}
			walkStruct(field.Elem())
			continue
		}

		name := t.Field(i).Tag.Get("env")
		if name == "" {
			continue
		}
		raw := os.Getenv(name)
		if raw == "" {
			continue
		}
		if field.Kind() == reflect.Pointer {
			// Optional scalar: only replace the pointer when raw parses.
			elem := reflect.New(field.Type().Elem())
			if assign(elem.Elem(), raw) {
				field.Set(elem)
			}
			continue
		}
		assign(field, raw)
	}
}

// assign parses raw into field and reports whether it did.
func assign(field reflect.Value, raw string) bool {
	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == durationType {
			d, err := time.ParseDuration(raw)
			if err != nil {
				return false
			}
			field.SetInt(int64(d))
			return true
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return false
		}
		field.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return false
		}
		field.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return false
		}
		field.SetFloat(f)
	case reflect.Bool:
		field.SetBool(ParseBool(raw))
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return false
		}
		parts := strings.Split(raw, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		field.Set(reflect.ValueOf(parts))
	default:
		return false
	}
	return true
}

// ParseBool reports whether s is one of "true", "1" or "yes", ignoring case
// and surrounding whitespace.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

// GetConfigPath returns $CONFIG_PATH, or defaultPath when it is unset.
func GetConfigPath(defaultPath string) string {
	if p := os.Getenv(configPathEnv); p != "" {
		return p
	}
	return defaultPath
}
