package infra

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config represents client configuration loaded from environment variables.
type Config struct {
	AppEnv         string        `env:"APP_ENV" envDefault:"development"`
	LogLevel       string        `env:"LOG_LEVEL"`
	APIBaseURL     string        `env:"STORY_API_BASE_URL"`
	PollInterval   time.Duration `env:"STORY_POLL_INTERVAL" envDefault:"5s"`
	HTTPTimeout    time.Duration `env:"STORY_HTTP_TIMEOUT" envDefault:"30s"`
	Locale         string        `env:"STORY_LOCALE" envDefault:"en"`
	OTLPEndpoint   string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	TracingEnabled bool          `env:"STORY_OTEL_ENABLED" envDefault:"true"`
}

// LoadConfig reads optional .env files, parses the environment and validates
// the result.
func LoadConfig() (*Config, error) {
	// Missing files are fine; the environment always wins.
	_ = godotenv.Load(".env", ".env.local")

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	if cfg.APIBaseURL == "" {
		return nil, errors.New("STORY_API_BASE_URL is required")
	}
	if u, err := url.Parse(cfg.APIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("STORY_API_BASE_URL %q is not an absolute URL", cfg.APIBaseURL)
	}
	if cfg.PollInterval <= 0 {
		return nil, errors.New("STORY_POLL_INTERVAL must be > 0")
	}
	if cfg.HTTPTimeout <= 0 {
		return nil, errors.New("STORY_HTTP_TIMEOUT must be > 0")
	}

	return cfg, nil
}

// IsDevelopment reports whether the client runs in the development profile.
func (c *Config) IsDevelopment() bool {
	return c != nil && c.AppEnv == "development"
}
