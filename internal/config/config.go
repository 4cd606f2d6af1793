// Package config loads application settings from environment variables
// using envconfig struct tags.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds every runtime setting of the API server.
type Config struct {
	// --- HTTP ---
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	MaxBodyBytes    int64         `envconfig:"MAX_BODY_BYTES" default:"1048576"`

	// --- Database ---
	// Empty DSN keeps the in-memory stores; useful for local demos and tests.
	DatabaseDSN string `envconfig:"TEAMPULSE_PG_DSN" default:""`
	DBMaxConns  int    `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns  int    `envconfig:"DB_MIN_CONNS" default:"5"`

	// --- Auth ---
	// The signing secret itself is read by the auth package (TEAMPULSE_AUTH_SECRET).
	TokenTTL time.Duration `envconfig:"TOKEN_TTL" default:"24h"`

	// --- Budgets ---
	// Amounts are integer cents.
	DefaultTotalBudget   int64 `envconfig:"BUDGET_DEFAULT_TOTAL" default:"50000"`
	DefaultMonthlyBudget int64 `envconfig:"BUDGET_DEFAULT_MONTHLY" default:"10000"`

	// --- Rate limiting ---
	RatePerSecond int `envconfig:"RATE_LIMIT_PER_SECOND" default:"25"`
	RateBurst     int `envconfig:"RATE_LIMIT_BURST" default:"50"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"info"`
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"UTC"`
}

// Development reports whether the server runs in development mode
// (error responses may include extra detail).
func (c *Config) Development() bool {
	return c.AppEnv == "development"
}

func (c *Config) Validate() error {
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("invalid DB_MIN_CONNS/DB_MAX_CONNS")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be > 0")
	}
	if c.DefaultTotalBudget < 0 || c.DefaultMonthlyBudget < 0 {
		return fmt.Errorf("default budgets must be >= 0")
	}
	if c.RatePerSecond <= 0 || c.RateBurst <= 0 {
		return fmt.Errorf("invalid rate limit settings")
	}
	return nil
}

// Load reads the environment and fills Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
