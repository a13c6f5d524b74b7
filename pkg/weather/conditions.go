package weather

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/nmoretto/almanac/pkg/fault"
)

// currentFields are the provider variables requested for a conditions lookup.
var currentFields = []string{
	"temperature_2m",
	"apparent_temperature",
	"relative_humidity_2m",
	"surface_pressure",
	"wind_speed_10m",
	"wind_direction_10m",
	"cloud_cover",
	"weather_code",
}

// conditionsResponse is the provider-shaped current-conditions payload.
type conditionsResponse struct {
	Current *currentBlock `json:"current"`
}

// currentBlock uses pointer fields so absent values can be told apart from
// zeros. Temperature and weather code are required for normalization.
type currentBlock struct {
	Time          string   `json:"time"`
	Temperature   *float64 `json:"temperature_2m"`
	ApparentTemp  *float64 `json:"apparent_temperature"`
	Humidity      *int     `json:"relative_humidity_2m"`
	Pressure      *float64 `json:"surface_pressure"`
	WindSpeed     *float64 `json:"wind_speed_10m"`
	WindDirection *int     `json:"wind_direction_10m"`
	CloudCover    *int     `json:"cloud_cover"`
	WeatherCode   *int     `json:"weather_code"`
}

// conditions fetches current conditions for the given place. Provider units
// follow the requested unit system so the response never needs converting.
func (s *Service) conditions(ctx context.Context, place Place, units string) (*currentBlock, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(place.Latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(place.Longitude, 'f', -1, 64))
	q.Set("current", strings.Join(currentFields, ","))
	q.Set("timezone", "UTC")

	if units == UnitsImperial {
		q.Set("temperature_unit", "fahrenheit")
		q.Set("wind_speed_unit", "mph")
	} else {
		q.Set("wind_speed_unit", "ms")
	}

	body, err := s.getJSON(ctx, s.forecastURL+"?"+q.Encode(), "weather")
	if err != nil {
		return nil, err
	}

	var decoded conditionsResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fault.ExternalService(err, body, "weather service returned a malformed response")
	}

	current := decoded.Current
	if current == nil || current.Temperature == nil || current.WeatherCode == nil {
		return nil, fault.ExternalService(nil, body, "weather response is missing current conditions")
	}

	return current, nil
}
