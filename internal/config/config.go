// Package config resolves process configuration once at startup: an
// optional yaml file for the non-secret knobs, environment variables
// on top, credentials from the environment only. The result is
// read-only for the rest of the process lifetime.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Token      string `envconfig:"TOKEN" yaml:"-"`
	CampaignID int    `envconfig:"CAMPAIGN_ID" yaml:"-"`

	BaseURL     string        `envconfig:"BASE_URL" yaml:"base_url"`
	Timeout     time.Duration `envconfig:"TIMEOUT" yaml:"-"`
	MaxRetries  int           `envconfig:"MAX_RETRIES" yaml:"max_retries"`
	Concurrency int           `envconfig:"CONCURRENCY" yaml:"concurrency"`
	LogLevel    string        `envconfig:"LOG_LEVEL" yaml:"log_level"`

	// yaml carries durations as strings.
	TimeoutText string `envconfig:"-" yaml:"timeout"`
}

const envPrefix = "kanka"

// Load builds the configuration from the optional file at path plus
// the KANKA_* environment, environment winning. A missing file is not
// an error; a missing token or campaign id is.
func Load(path string) (*Config, error) {
	cfg := Config{
		Timeout:     30 * time.Second,
		MaxRetries:  3,
		Concurrency: 4,
		LogLevel:    "info",
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Optional file.
		case err != nil:
			return nil, fmt.Errorf("loading config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("loading config: %w", err)
			}
			if cfg.TimeoutText != "" {
				timeout, err := time.ParseDuration(cfg.TimeoutText)
				if err != nil {
					return nil, fmt.Errorf("loading config: invalid timeout %q", cfg.TimeoutText)
				}
				cfg.Timeout = timeout
			}
		}
	}

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	if strings.TrimSpace(cfg.Token) == "" {
		return fmt.Errorf("KANKA_TOKEN is required")
	}
	if cfg.CampaignID <= 0 {
		return fmt.Errorf("KANKA_CAMPAIGN_ID is required")
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if cfg.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative")
	}
	if cfg.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1")
	}
	switch cfg.LogLevel {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log level: %s", cfg.LogLevel)
	}
	return nil
}
