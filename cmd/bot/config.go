// Package main provides the approval bot server CLI.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the bot configuration.
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Server   ServerConfig   `yaml:"server"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Storage  StorageConfig  `yaml:"storage"`
	Workflow WorkflowConfig `yaml:"workflow"`
}

// TelegramConfig contains Bot API settings. Token and ManagerID can be
// left empty in the file and provided via BOT_TOKEN and MANAGER_ID.
type TelegramConfig struct {
	Token         string  `yaml:"token"`
	ManagerID     string  `yaml:"manager_id"`
	WebhookURL    string  `yaml:"webhook_url"`     // public URL registered with Telegram; empty skips registration
	RatePerSecond float64 `yaml:"rate_per_second"` // outbound API call cap
}

// ServerConfig contains webhook server settings.
type ServerConfig struct {
	Address      string        `yaml:"address"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// MetricsConfig contains the Prometheus endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

// StorageConfig selects and configures the persistence backend.
type StorageConfig struct {
	Backend string `yaml:"backend"` // "json" or "sqlite"
	Path    string `yaml:"path"`
}

// WorkflowConfig contains workflow tuning.
type WorkflowConfig struct {
	SessionTTL time.Duration `yaml:"session_ttl"` // open dialog expiry
}

// LoadConfig loads configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// setDefaults sets default values for missing config fields.
func (c *Config) setDefaults() {
	if c.Telegram.Token == "" {
		c.Telegram.Token = os.Getenv("BOT_TOKEN")
	}
	if c.Telegram.ManagerID == "" {
		c.Telegram.ManagerID = os.Getenv("MANAGER_ID")
	}
	if c.Telegram.RatePerSecond <= 0 {
		c.Telegram.RatePerSecond = 25
	}
	if c.Server.Address == "" {
		c.Server.Address = ":8443"
	}
	if c.Metrics.Address == "" {
		c.Metrics.Address = ":9090"
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "json"
	}
	if c.Storage.Path == "" {
		switch c.Storage.Backend {
		case "sqlite":
			c.Storage.Path = "data/projects.db"
		default:
			c.Storage.Path = "data/projects.json"
		}
	}
	if c.Workflow.SessionTTL <= 0 {
		c.Workflow.SessionTTL = 10 * time.Minute
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("telegram.token is required (or set BOT_TOKEN)")
	}
	if c.Telegram.ManagerID == "" {
		return fmt.Errorf("telegram.manager_id is required (or set MANAGER_ID)")
	}
	if c.Telegram.WebhookURL != "" && !strings.HasPrefix(c.Telegram.WebhookURL, "https://") {
		return fmt.Errorf("telegram.webhook_url must use HTTPS")
	}
	if c.Storage.Backend != "json" && c.Storage.Backend != "sqlite" {
		return fmt.Errorf("storage.backend must be \"json\" or \"sqlite\", got %q", c.Storage.Backend)
	}
	return nil
}
