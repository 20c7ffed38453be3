// Package config loads the cmc-proxy configuration from environment
// variables and an optional config file.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/cmc-client/pkg/client"
	"github.com/Sternrassler/cmc-client/pkg/logging"
	"github.com/Sternrassler/cmc-client/pkg/snapshot"
	"github.com/spf13/viper"
)

// Config holds all configuration for the proxy.
type Config struct {
	// CMC API access
	BaseURL   string        `mapstructure:"base_url"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
	MaxPages  int           `mapstructure:"max_pages"`

	// HTTP server
	Port string `mapstructure:"port"`

	// Redis snapshot store (disabled when RedisURL is empty)
	RedisURL          string        `mapstructure:"redis_url"`
	RedisPassword     string        `mapstructure:"redis_password"`
	RedisDB           int           `mapstructure:"redis_db"`
	SnapshotRetention time.Duration `mapstructure:"snapshot_retention"`

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogPretty bool   `mapstructure:"log_pretty"`
}

// envBindings maps config keys to environment variables.
var envBindings = map[string]string{
	"base_url":           "CMC_BASE_URL",
	"user_agent":         "CMC_USER_AGENT",
	"timeout":            "CMC_TIMEOUT",
	"max_pages":          "CMC_MAX_PAGES",
	"port":               "PORT",
	"redis_url":          "REDIS_URL",
	"redis_password":     "REDIS_PASSWORD",
	"redis_db":           "REDIS_DB",
	"snapshot_retention": "SNAPSHOT_RETENTION",
	"log_level":          "LOG_LEVEL",
	"log_pretty":         "LOG_PRETTY",
}

// Load reads configuration from environment variables and an optional
// config.yaml. Environment variables take precedence over config file values.
//
// The config file is searched in the given directories, or in "." and
// "$HOME/.cmc-proxy" when none are given.
//
// Environment variables:
//   - CMC_BASE_URL (optional, defaults to the public API)
//   - CMC_USER_AGENT
//   - CMC_TIMEOUT (e.g. "30s")
//   - CMC_MAX_PAGES
//   - PORT
//   - REDIS_URL (host:port, empty disables snapshots)
//   - REDIS_PASSWORD
//   - REDIS_DB
//   - SNAPSHOT_RETENTION (e.g. "15m")
//   - LOG_LEVEL (debug, info, warn, error)
//   - LOG_PRETTY
func Load(dirs ...string) (*Config, error) {
	v := viper.New()

	defaults := client.DefaultConfig()
	v.SetDefault("base_url", defaults.BaseURL)
	v.SetDefault("user_agent", "cmc-proxy/1.0")
	v.SetDefault("timeout", defaults.Timeout)
	v.SetDefault("max_pages", defaults.MaxPages)
	v.SetDefault("port", "8080")
	v.SetDefault("redis_url", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("snapshot_retention", snapshot.DefaultRetention)
	v.SetDefault("log_level", string(logging.LevelInfo))
	v.SetDefault("log_pretty", false)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(dirs) == 0 {
		dirs = []string{".", "$HOME/.cmc-proxy"}
	}
	for _, dir := range dirs {
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.UserAgent) == "" {
		problems = append(problems, "CMC_USER_AGENT must not be empty")
	}
	if c.Timeout <= 0 {
		problems = append(problems, fmt.Sprintf("CMC_TIMEOUT must be > 0 (got %s)", c.Timeout))
	}
	if c.MaxPages < 1 {
		problems = append(problems, fmt.Sprintf("CMC_MAX_PAGES must be >= 1 (got %d)", c.MaxPages))
	}
	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("PORT must be a port number (got %q)", c.Port))
	}
	if c.RedisDB < 0 {
		problems = append(problems, fmt.Sprintf("REDIS_DB must be >= 0 (got %d)", c.RedisDB))
	}
	if c.SnapshotRetention <= 0 {
		problems = append(problems, fmt.Sprintf("SNAPSHOT_RETENTION must be > 0 (got %s)", c.SnapshotRetention))
	}
	if !logging.LogLevel(c.LogLevel).Valid() {
		problems = append(problems, fmt.Sprintf("LOG_LEVEL must be debug, info, warn or error (got %q)", c.LogLevel))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// RedisEnabled reports whether a snapshot store is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != ""
}

// ClientConfig returns the API client configuration.
func (c *Config) ClientConfig() client.Config {
	cfg := client.DefaultConfig()
	cfg.BaseURL = c.BaseURL
	cfg.UserAgent = c.UserAgent
	cfg.Timeout = c.Timeout
	cfg.MaxPages = c.MaxPages
	return cfg
}

// LoggingConfig returns the logger configuration.
func (c *Config) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.LogLevel(strings.ToLower(c.LogLevel))
	cfg.Pretty = c.LogPretty
	return cfg
}
