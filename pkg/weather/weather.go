// Package weather provides the get_weather tool: it resolves a location name
// to coordinates via a geocoding call, fetches current conditions for those
// coordinates, and returns a normalized weather snapshot. Both calls are
// keyless and strictly sequential; the second depends on the first.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nmoretto/almanac/pkg/envelope"
	"github.com/nmoretto/almanac/pkg/fault"
	"github.com/nmoretto/almanac/pkg/progress"
	"github.com/nmoretto/almanac/pkg/toolbox"
)

// Unit systems accepted by the tool.
const (
	UnitsMetric   = "metric"
	UnitsImperial = "imperial"
)

const (
	defaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
	defaultForecastURL  = "https://api.open-meteo.com/v1/forecast"
	defaultTimeout      = 10 * time.Second

	// fallbackMessage is used when a failure carries no message of its own.
	fallbackMessage = "Failed to retrieve weather data"

	// maxBodySize caps provider response bodies (1MB).
	maxBodySize = 1 << 20
)

// Service owns the HTTP client and provider endpoints for the weather tool.
type Service struct {
	geocodingURL string
	forecastURL  string
	client       *http.Client
}

// Options configures a Service. Zero values select production defaults.
type Options struct {
	GeocodingURL string
	ForecastURL  string
	Timeout      time.Duration
}

// New creates a weather Service with a bounded-timeout HTTP client.
func New(opts Options) *Service {
	if opts.GeocodingURL == "" {
		opts.GeocodingURL = defaultGeocodingURL
	}
	if opts.ForecastURL == "" {
		opts.ForecastURL = defaultForecastURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	return &Service{
		geocodingURL: opts.GeocodingURL,
		forecastURL:  opts.ForecastURL,
		client:       &http.Client{Timeout: opts.Timeout},
	}
}

// Tools returns a ToolBox containing the weather tools.
func (s *Service) Tools() *toolbox.ToolBox {
	tb := toolbox.New()
	tb.Register(s.currentTool())

	return tb
}

// Snapshot is the tool's stable output schema. Its field set and types are
// fixed regardless of provider quirks.
type Snapshot struct {
	Location Location   `json:"location"`
	Current  Conditions `json:"current"`
	Units    UnitLabels `json:"units"`
}

// Location is the geocoded place the conditions refer to.
type Location struct {
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Conditions is the normalized current-conditions block.
type Conditions struct {
	Temperature   float64 `json:"temperature"`
	FeelsLike     float64 `json:"feelsLike"`
	Humidity      int     `json:"humidity"`
	Pressure      float64 `json:"pressure"`
	WindSpeed     float64 `json:"windSpeed"`
	WindDirection int     `json:"windDirection"`
	CloudCover    int     `json:"cloudCover"`
	Description   string  `json:"description"`
	Icon          string  `json:"icon"`
	ObservedAt    string  `json:"observedAt"`
}

// UnitLabels describes the units of the snapshot. Labels derive from the
// requested unit system, never from the provider response.
type UnitLabels struct {
	Temperature string `json:"temperature"`
	WindSpeed   string `json:"windSpeed"`
}

func (s *Service) currentTool() toolbox.Tool {
	return toolbox.Tool{
		Name:        "get_weather",
		Description: "Get current weather conditions for a location by name. Returns temperature, humidity, pressure, wind, cloud cover, and a human-readable description.",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"location":{"type":"string","description":"City or place name, e.g. \"Berlin\""},"units":{"type":"string","enum":["metric","imperial"],"description":"Unit system for the response (default metric)"}},"required":["location"]}`),
		Handler:     s.handleCurrent,
	}
}

type currentInput struct {
	Location string `json:"location"`
	Units    string `json:"units"`
}

func (s *Service) handleCurrent(ctx context.Context, input json.RawMessage) (string, error) {
	return envelope.Run(fallbackMessage, func() (any, error) {
		return s.current(ctx, input)
	}), nil
}

// current runs the validate → fetch → normalize pipeline for one invocation.
func (s *Service) current(ctx context.Context, input json.RawMessage) (*Snapshot, error) {
	var in currentInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fault.Validation("invalid arguments: %v", err)
	}

	if in.Location == "" {
		return nil, fault.Validation("location is required")
	}

	units := in.Units
	if units == "" {
		units = UnitsMetric
	}
	if units != UnitsMetric && units != UnitsImperial {
		return nil, fault.Validation("units must be %q or %q", UnitsMetric, UnitsImperial)
	}

	progress.Notify(ctx, fmt.Sprintf("Fetching weather for %s...", in.Location), 25)

	place, err := s.geocode(ctx, in.Location)
	if err != nil {
		return nil, err
	}

	current, err := s.conditions(ctx, place, units)
	if err != nil {
		return nil, err
	}

	progress.Notify(ctx, "Processing weather data...", 75)

	snapshot := assemble(place, current, units)

	progress.Notify(ctx, "Weather data ready", 100)

	return snapshot, nil
}

// assemble maps the provider-shaped current block into the stable Snapshot.
func assemble(place Place, current *currentBlock, units string) *Snapshot {
	info := describe(*current.WeatherCode)

	labels := UnitLabels{Temperature: "°C", WindSpeed: "m/s"}
	if units == UnitsImperial {
		labels = UnitLabels{Temperature: "°F", WindSpeed: "mph"}
	}

	return &Snapshot{
		Location: Location{
			Name:      place.Name,
			Country:   place.Country,
			Latitude:  place.Latitude,
			Longitude: place.Longitude,
		},
		Current: Conditions{
			Temperature:   *current.Temperature,
			FeelsLike:     floatOr(current.ApparentTemp, *current.Temperature),
			Humidity:      intOr(current.Humidity, 0),
			Pressure:      floatOr(current.Pressure, 0),
			WindSpeed:     floatOr(current.WindSpeed, 0),
			WindDirection: intOr(current.WindDirection, 0),
			CloudCover:    intOr(current.CloudCover, 0),
			Description:   info.Description,
			Icon:          info.Icon,
			ObservedAt:    current.Time,
		},
		Units: labels,
	}
}

func floatOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}

	return *p
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}

	return *p
}

// getJSON issues one GET with the bounded client and returns the body.
// Transport failures, timeouts, and non-2xx statuses become external-service
// faults; a non-2xx body is preserved as the fault's details.
func (s *Service) getJSON(ctx context.Context, rawURL, op string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fault.ExternalService(err, nil, "%s: invalid request: %v", op, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fault.ExternalService(err, nil, "%s request failed: %v", op, err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on read

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fault.ExternalService(err, nil, "%s: read response: %v", op, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fault.ExternalService(nil, body, "%s returned status %d", op, resp.StatusCode)
	}

	return body, nil
}
