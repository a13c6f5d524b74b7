// Almanac is an MCP server exposing weather and currency conversion tools to
// agent hosts. It loads a YAML configuration, builds the tool services, and
// serves the MCP protocol over stdio. Logs go to stderr; stdout carries the
// wire protocol.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/nmoretto/almanac/pkg/config"
	"github.com/nmoretto/almanac/pkg/currency"
	"github.com/nmoretto/almanac/pkg/mcpserver"
	"github.com/nmoretto/almanac/pkg/toolbox"
	"github.com/nmoretto/almanac/pkg/weather"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: almanac [flags]\n\nServe weather and currency tools over MCP stdio.\n\nFlags:\n")
		flag.PrintDefaults()
	}

	configPath := flag.String("config", "", "path to configuration file (default: built-in configuration)")
	envFile := flag.String("env", ".env", "path to .env file (ignored if missing)")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, or error (overrides config)")
	flag.Parse()

	if err := loadDotEnv(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := run(*configPath, *logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, logLevel string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig(configPath, logLevel)
	if err != nil {
		return err
	}

	log := newLogger(cfg.LogLevel)

	tb, err := buildToolBox(cfg)
	if err != nil {
		return err
	}

	srv := mcpserver.New(cfg.Server.Name, cfg.Server.Version, log)
	srv.RegisterBox(tb.Filter(cfg.Tools))

	log.InfoContext(ctx, "serving",
		"server", cfg.Server.Name,
		"version", cfg.Server.Version,
		"tools", len(tb.Filter(cfg.Tools).Tools()),
	)

	err = srv.Serve(ctx, os.Stdin, os.Stdout)
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}

// loadConfig resolves the effective configuration from the flag values. A
// non-empty logLevel overrides the config file before validation, so flag
// typos are rejected the same way config typos are.
func loadConfig(configPath, logLevel string) (config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	return cfg, nil
}

// buildToolBox constructs the weather and currency services from config and
// merges their tools into one box.
func buildToolBox(cfg config.Config) (*toolbox.ToolBox, error) {
	weatherTimeout, err := cfg.WeatherTimeout()
	if err != nil {
		return nil, err
	}

	currencyTimeout, err := cfg.CurrencyTimeout()
	if err != nil {
		return nil, err
	}

	wx := weather.New(weather.Options{
		GeocodingURL: cfg.Weather.GeocodingURL,
		ForecastURL:  cfg.Weather.ForecastURL,
		Timeout:      weatherTimeout,
	})

	var source currency.RateSource
	if cfg.Currency.Source == config.SourceStatic {
		source = currency.NewStaticSource(nil)
	} else {
		source = currency.NewAPISource(currency.APIOptions{
			BaseURL: cfg.Currency.RatesURL,
			Timeout: currencyTimeout,
		})
	}

	tb := toolbox.New()
	tb.Merge(wx.Tools())
	tb.Merge(currency.New(source).Tools())

	return tb, nil
}

// newLogger builds the stderr slog logger at the configured level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level

	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// loadDotEnv loads environment variables from path. Missing files are ignored.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return err
}
