package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	APIBase            string `env:"CHRONOCAP_API_BASE" envDefault:"http://localhost:3000"`
	Origin             string `env:"CHRONOCAP_ORIGIN"`
	StoreDSN           string `env:"CHRONOCAP_STORE"`
	HTTPTimeoutSeconds int    `env:"CHRONOCAP_HTTP_TIMEOUT_SECONDS" envDefault:"30"`
	LogLevel           string `env:"CHRONOCAP_LOG_LEVEL" envDefault:"info"`
}

// BaseURL returns the API base with any trailing slash stripped.
func (c *Config) BaseURL() string {
	return strings.TrimRight(c.APIBase, "/")
}

// PublicOrigin is the origin used when synthesizing unlock URLs. It falls
// back to the API base when no explicit origin is configured.
func (c *Config) PublicOrigin() string {
	if strings.TrimSpace(c.Origin) != "" {
		return strings.TrimRight(c.Origin, "/")
	}
	return c.BaseURL()
}

func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIBase) == "" {
		return fmt.Errorf("CHRONOCAP_API_BASE must not be empty")
	}
	if !strings.HasPrefix(c.BaseURL(), "http://") && !strings.HasPrefix(c.BaseURL(), "https://") {
		return fmt.Errorf("CHRONOCAP_API_BASE must be an http(s) URL")
	}
	if c.HTTPTimeoutSeconds <= 0 {
		return fmt.Errorf("CHRONOCAP_HTTP_TIMEOUT_SECONDS must be positive")
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
