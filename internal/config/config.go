// Package config provides YAML-based configuration loading for LifeGit.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level LifeGit configuration, loaded from lifegit.yaml.
type Config struct {
	Profile string        `yaml:"profile"`
	Storage StorageConfig `yaml:"storage"`
	AI      AIConfig      `yaml:"ai"`
	Notify  NotifyConfig  `yaml:"notify"`
	Digest  DigestConfig  `yaml:"digest"`
	Serve   ServeConfig   `yaml:"serve"`
}

// StorageConfig selects and configures the database backend.
type StorageConfig struct {
	Driver   string `yaml:"driver"` // sqlite or mysql
	Path     string `yaml:"path"`   // sqlite file path
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// AIConfig holds settings for the plan-generation completion endpoint.
type AIConfig struct {
	BaseURL        string  `yaml:"base_url"`
	Model          string  `yaml:"model"`
	APIKeyEnv      string  `yaml:"api_key_env"`
	APIKeyValue    string  `yaml:"api_key,omitempty"` // stored key, takes precedence over the env var
	Temperature    float64 `yaml:"temperature"`
	MaxTokens      int     `yaml:"max_tokens"`
	MaxRetries     int     `yaml:"max_retries"`
	BackoffSeconds int     `yaml:"backoff_seconds"`
}

// Backoff returns the configured base backoff as a duration.
func (a AIConfig) Backoff() time.Duration {
	return time.Duration(a.BackoffSeconds) * time.Second
}

// APIKey returns the stored key if present, otherwise the value of the
// configured environment variable.
func (a AIConfig) APIKey() string {
	if a.APIKeyValue != "" {
		return a.APIKeyValue
	}
	return os.Getenv(a.APIKeyEnv)
}

// NotifyConfig holds chat-platform notification settings.
type NotifyConfig struct {
	Slack   SlackConfig   `yaml:"slack"`
	Discord DiscordConfig `yaml:"discord"`
}

// SlackConfig configures the Slack notification adapter.
type SlackConfig struct {
	BotToken string `yaml:"bot_token"`
	Channel  string `yaml:"channel"`
}

// DiscordConfig configures the Discord notification adapter.
type DiscordConfig struct {
	BotToken string `yaml:"bot_token"`
	Channel  string `yaml:"channel"`
}

// DigestConfig holds 5-field cron expressions for scheduled digests.
// Empty expressions disable the corresponding digest.
type DigestConfig struct {
	Daily  string `yaml:"daily"`
	Weekly string `yaml:"weekly"`
}

// ServeConfig configures the read-only dashboard API.
type ServeConfig struct {
	Port int `yaml:"port"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Storage.Driver == "" {
		c.Storage.Driver = "sqlite"
	}
	if c.Storage.Path == "" && c.Storage.Driver == "sqlite" {
		c.Storage.Path = "lifegit.db"
	}
	if c.Storage.Host == "" {
		c.Storage.Host = "127.0.0.1"
	}
	if c.Storage.Port == 0 {
		c.Storage.Port = 3306
	}
	if c.Storage.Database == "" && c.Profile != "" {
		c.Storage.Database = "lifegit_" + c.Profile
	}
	if c.AI.BaseURL == "" {
		c.AI.BaseURL = "https://api.openai.com/v1"
	}
	if c.AI.Model == "" {
		c.AI.Model = "gpt-4o-mini"
	}
	if c.AI.APIKeyEnv == "" {
		c.AI.APIKeyEnv = "LIFEGIT_API_KEY"
	}
	if c.AI.Temperature == 0 {
		c.AI.Temperature = 0.7
	}
	if c.AI.MaxTokens == 0 {
		c.AI.MaxTokens = 2048
	}
	if c.AI.MaxRetries == 0 {
		c.AI.MaxRetries = 3
	}
	if c.AI.BackoffSeconds == 0 {
		c.AI.BackoffSeconds = 1
	}
	if c.Serve.Port == 0 {
		c.Serve.Port = 8080
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Profile == "" {
		errs = append(errs, "profile is required")
	}
	switch c.Storage.Driver {
	case "sqlite":
		if c.Storage.Path == "" {
			errs = append(errs, "storage.path is required for the sqlite driver")
		}
	case "mysql":
		if c.Storage.Database == "" {
			errs = append(errs, "storage.database is required for the mysql driver")
		}
	default:
		errs = append(errs, fmt.Sprintf("storage.driver %q is not supported (sqlite, mysql)", c.Storage.Driver))
	}
	if c.AI.MaxRetries < 1 {
		errs = append(errs, "ai.max_retries must be at least 1")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: invalid: %s", strings.Join(errs, "; "))
	}
	return nil
}
