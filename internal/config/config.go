// Package config loads runtime configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv             string        `envconfig:"APP_ENV" default:"development"`
	AppAddr            string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout     time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout    time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout  time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`
	AppShutdownTimeout time.Duration `envconfig:"APP_SHUTDOWN_TIMEOUT" default:"10s"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	StoreBackend string `envconfig:"STORE_BACKEND" default:"memory"`

	// RestyleOnUpdate makes an update also replace the entry's payment type.
	RestyleOnUpdate bool `envconfig:"LEDGER_RESTYLE_ON_UPDATE" default:"false"`

	FormSecret   string        `envconfig:"FORM_SECRET"`
	FormTokenTTL time.Duration `envconfig:"FORM_TOKEN_TTL" default:"12h"`

	OperatorUser         string `envconfig:"OPERATOR_USER" default:"operator"`
	OperatorPasswordHash string `envconfig:"OPERATOR_PASSWORD_HASH"`

	RateLimitPerMinute int `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated and production-only settings.
func (c *Config) Validate() error {
	switch c.LogFormat {
	case "pretty", "json":
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q: must be pretty or json", c.LogFormat)
	}
	switch c.StoreBackend {
	case StoreMemory, StoreSQLite:
	default:
		return fmt.Errorf("invalid STORE_BACKEND %q: must be %s or %s", c.StoreBackend, StoreMemory, StoreSQLite)
	}
	if c.FormTokenTTL <= 0 {
		return errors.New("FORM_TOKEN_TTL must be positive")
	}
	if c.RateLimitPerMinute < 0 {
		return errors.New("RATE_LIMIT_PER_MINUTE must not be negative")
	}
	if c.IsProduction() && c.FormSecret == "" {
		return errors.New("form secret must be provided in production")
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
