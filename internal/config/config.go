// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles,
// optionally seeded from .env.local and .env files for local development.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Store backends for sessions and rate limits.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// DotEnvFiles are loaded in order; a variable set by an earlier file or by
// the process environment is never overridden.
var DotEnvFiles = []string{".env.local", ".env"}

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"5001"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`

	// Session and rate-limit storage. Redis is only needed when StoreBackend is "redis".
	StoreBackend string `env:"STORE_BACKEND" envDefault:"memory"`
	RedisURL     string `env:"REDIS_URL"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Only enable behind a proxy that overwrites those headers.
	TrustProxy bool `env:"TRUST_PROXY" envDefault:"false"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Sessions
	SessionCookieName       string        `env:"SESSION_COOKIE_NAME" envDefault:"ft_session"`
	SessionCookieSecure     bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
	SessionIdleTimeout      time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"30m"`
	SessionAbsoluteLifetime time.Duration `env:"SESSION_ABSOLUTE_LIFETIME" envDefault:"168h"`
	SessionSweepInterval    time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"5m"`

	// Rate limiting of the auth endpoints
	RateLimitEnabled        bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitLoginMax       int           `env:"RATE_LIMIT_LOGIN_MAX" envDefault:"5"`
	RateLimitLoginWindow    time.Duration `env:"RATE_LIMIT_LOGIN_WINDOW" envDefault:"300s"`
	RateLimitRegisterMax    int           `env:"RATE_LIMIT_REGISTER_MAX" envDefault:"10"`
	RateLimitRegisterWindow time.Duration `env:"RATE_LIMIT_REGISTER_WINDOW" envDefault:"1h"`
	RateLimitSweepInterval  time.Duration `env:"RATE_LIMIT_SWEEP_INTERVAL" envDefault:"1m"`

	// CORS configuration
	// Comma-separated list of allowed origins. Empty means the local frontend dev servers.
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

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

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Validate checks cross-field constraints that struct tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	switch c.StoreBackend {
	case BackendMemory:
	case BackendRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required when STORE_BACKEND=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendMemory, BackendRedis, c.StoreBackend))
	}

	positive := []struct {
		name  string
		value time.Duration
	}{
		{"READ_TIMEOUT", c.ReadTimeout},
		{"WRITE_TIMEOUT", c.WriteTimeout},
		{"SHUTDOWN_TIMEOUT", c.ShutdownTimeout},
		{"SESSION_IDLE_TIMEOUT", c.SessionIdleTimeout},
		{"SESSION_ABSOLUTE_LIFETIME", c.SessionAbsoluteLifetime},
		{"SESSION_SWEEP_INTERVAL", c.SessionSweepInterval},
		{"RATE_LIMIT_LOGIN_WINDOW", c.RateLimitLoginWindow},
		{"RATE_LIMIT_REGISTER_WINDOW", c.RateLimitRegisterWindow},
		{"RATE_LIMIT_SWEEP_INTERVAL", c.RateLimitSweepInterval},
	}
	for _, p := range positive {
		if p.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", p.name))
		}
	}

	if c.RateLimitLoginMax <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_LOGIN_MAX must be positive"))
	}
	if c.RateLimitRegisterMax <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_REGISTER_MAX must be positive"))
	}
	if c.SessionIdleTimeout > c.SessionAbsoluteLifetime {
		errs = append(errs, errors.New("SESSION_IDLE_TIMEOUT must not exceed SESSION_ABSOLUTE_LIFETIME"))
	}
	if c.MaxRequestBodySize <= 0 {
		errs = append(errs, errors.New("MAX_REQUEST_BODY_SIZE must be positive"))
	}

	return errors.Join(errs...)
}

// LoadDotEnv loads the given files into the process environment, skipping
// missing ones. Existing variables win.
func LoadDotEnv(files ...string) {
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// Load parses environment variables and returns a validated Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	LoadDotEnv(DotEnvFiles...)

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
