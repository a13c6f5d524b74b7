package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  name: almanac-test
  version: 1.2.3
weather:
  geocoding_url: http://localhost:9000/geo
  forecast_url: http://localhost:9000/forecast
  timeout: 5s
currency:
  source: static
tools:
  - get_weather
log_level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "almanac-test", cfg.Server.Name)
	assert.Equal(t, "1.2.3", cfg.Server.Version)
	assert.Equal(t, "http://localhost:9000/geo", cfg.Weather.GeocodingURL)
	assert.Equal(t, SourceStatic, cfg.Currency.Source)
	assert.Equal(t, []string{"get_weather"}, cfg.Tools)
	assert.Equal(t, "debug", cfg.LogLevel)

	d, err := cfg.WeatherTimeout()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, d)
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("RATES_HOST", "rates.example.com")

	path := writeConfig(t, `
currency:
  rates_url: https://${RATES_HOST}/v6/latest
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://rates.example.com/v6/latest", cfg.Currency.RatesURL)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "almanac", cfg.Server.Name)
	assert.Equal(t, SourceAPI, cfg.Currency.Source)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestValidateRejectsUnknownSource(t *testing.T) {
	cfg := Default()
	cfg.Currency.Source = "carrier-pigeon"

	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsBadTimeout(t *testing.T) {
	cfg := Default()
	cfg.Weather.Timeout = "soon"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Currency.Timeout = "-1s"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownLogLevel(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "loud"

	assert.Error(t, cfg.Validate())
}

func TestEmptyTimeoutMeansDefault(t *testing.T) {
	d, err := Default().WeatherTimeout()
	require.NoError(t, err)
	assert.Zero(t, d)
}
