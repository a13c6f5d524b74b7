// Package config loads the almanac YAML configuration. Environment variables
// referenced as ${VAR} or $VAR are expanded before parsing so endpoints can
// be overridden without editing the file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Currency source kinds.
const (
	SourceAPI    = "api"
	SourceStatic = "static"
)

// Config is the top-level configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Weather  WeatherConfig  `yaml:"weather"`
	Currency CurrencyConfig `yaml:"currency"`
	Tools    []string       `yaml:"tools"`     // Enabled tool names; empty means all.
	LogLevel string         `yaml:"log_level"` // debug, info, warn, error.
}

// ServerConfig identifies the MCP server to connecting hosts.
type ServerConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// WeatherConfig holds weather provider settings.
type WeatherConfig struct {
	GeocodingURL string `yaml:"geocoding_url"`
	ForecastURL  string `yaml:"forecast_url"`
	Timeout      string `yaml:"timeout"` // Duration string (e.g. "10s").
}

// CurrencyConfig holds exchange-rate source settings.
type CurrencyConfig struct {
	Source   string `yaml:"source"` // "api" or "static" (default api).
	RatesURL string `yaml:"rates_url"`
	Timeout  string `yaml:"timeout"` // Duration string (e.g. "10s").
}

// Load reads a YAML file and returns a Config with defaults applied.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration, not user input
	if err != nil {
		return Config{}, fmt.Errorf("config: load: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}

	cfg.applyDefaults()

	return cfg, nil
}

// Default returns the configuration used when no config file exists.
func Default() Config {
	var cfg Config
	cfg.applyDefaults()

	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Name == "" {
		c.Server.Name = "almanac"
	}
	if c.Server.Version == "" {
		c.Server.Version = "0.1.0"
	}
	if c.Currency.Source == "" {
		c.Currency.Source = SourceAPI
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate checks that the configuration is internally consistent.
func (c Config) Validate() error {
	if c.Currency.Source != SourceAPI && c.Currency.Source != SourceStatic {
		return fmt.Errorf("config: currency source must be %q or %q, got %q", SourceAPI, SourceStatic, c.Currency.Source)
	}

	if _, err := c.WeatherTimeout(); err != nil {
		return fmt.Errorf("config: weather timeout: %w", err)
	}
	if _, err := c.CurrencyTimeout(); err != nil {
		return fmt.Errorf("config: currency timeout: %w", err)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.LogLevel)
	}

	return nil
}

// WeatherTimeout parses the weather timeout. Zero means the service default.
func (c Config) WeatherTimeout() (time.Duration, error) {
	return parseTimeout(c.Weather.Timeout)
}

// CurrencyTimeout parses the currency timeout. Zero means the service default.
func (c Config) CurrencyTimeout() (time.Duration, error) {
	return parseTimeout(c.Currency.Timeout)
}

func parseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}

	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", d)
	}

	return d, nil
}
