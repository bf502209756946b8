// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Store driver names accepted in STORE_DRIVER.
const (
	StoreDriverRTDB     = "rtdb"
	StoreDriverPostgres = "postgres"
	StoreDriverRedis    = "redis"
	StoreDriverMemory   = "memory"
)

// Identity provider names accepted in IDENTITY_PROVIDER.
const (
	IdentityProviderHTTP  = "http"
	IdentityProviderLocal = "local"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Catalog store backend selection
	StoreDriver string `env:"STORE_DRIVER" envDefault:"rtdb"`

	// Document-tree database (STORE_DRIVER=rtdb)
	DatabaseURL string `env:"DATABASE_URL"`
	// Node under which the catalog lives in the document tree.
	CatalogPath string `env:"CATALOG_PATH" envDefault:"products"`

	// PostgreSQL (STORE_DRIVER=postgres)
	PostgresURL string `env:"POSTGRES_URL"`

	// Redis, used by the redis store driver and the rate limiter
	RedisURL string `env:"REDIS_URL"`

	// Identity provider
	IdentityProvider string `env:"IDENTITY_PROVIDER" envDefault:"http"`
	IdentityBaseURL  string `env:"IDENTITY_BASE_URL"`
	IdentityAPIKey   string `env:"IDENTITY_API_KEY"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Per-IP rate limiting on the public surface (requires REDIS_URL)
	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"false"`
	RateLimitRPS     int  `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst   int  `env:"RATE_LIMIT_BURST" envDefault:"40"`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing or inconsistent.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks cross-field requirements that env tags cannot express.
func (c *Config) validate() error {
	switch c.StoreDriver {
	case StoreDriverRTDB:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=%s", StoreDriverRTDB)
		}
	case StoreDriverPostgres:
		if c.PostgresURL == "" {
			return fmt.Errorf("POSTGRES_URL is required when STORE_DRIVER=%s", StoreDriverPostgres)
		}
	case StoreDriverRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when STORE_DRIVER=%s", StoreDriverRedis)
		}
	case StoreDriverMemory:
		// No backing configuration needed.
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.IdentityProvider {
	case IdentityProviderHTTP:
		if c.IdentityBaseURL == "" {
			return fmt.Errorf("IDENTITY_BASE_URL is required when IDENTITY_PROVIDER=%s", IdentityProviderHTTP)
		}
	case IdentityProviderLocal:
		// In-process provider, development only.
	default:
		return fmt.Errorf("unknown IDENTITY_PROVIDER %q", c.IdentityProvider)
	}

	if c.RateLimitEnabled && c.RedisURL == "" {
		return fmt.Errorf("RATE_LIMIT_ENABLED requires REDIS_URL")
	}

	return nil
}
