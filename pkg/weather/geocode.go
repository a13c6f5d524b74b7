package weather

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/nmoretto/almanac/pkg/fault"
)

// Place is the resolved geographic location a conditions lookup needs.
type Place struct {
	Name      string
	Country   string
	Latitude  float64
	Longitude float64
}

// geoResponse is the provider-shaped geocoding payload. Fields are optional
// pointers because the payload is untrusted and may be partial.
type geoResponse struct {
	Results []geoResult `json:"results"`
}

type geoResult struct {
	Name        *string  `json:"name"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	CountryCode string   `json:"country_code"`
}

// geocode resolves a free-text location name to a Place. Zero matches is a
// not-found failure naming the requested location.
func (s *Service) geocode(ctx context.Context, location string) (Place, error) {
	q := url.Values{}
	q.Set("name", location)
	q.Set("count", "1")

	body, err := s.getJSON(ctx, s.geocodingURL+"?"+q.Encode(), "geocoding")
	if err != nil {
		return Place{}, err
	}

	var decoded geoResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return Place{}, fault.ExternalService(err, body, "geocoding returned a malformed response")
	}

	if len(decoded.Results) == 0 {
		return Place{}, fault.NotFound("Location %q not found", location)
	}

	first := decoded.Results[0]
	if first.Name == nil || first.Latitude == nil || first.Longitude == nil {
		return Place{}, fault.ExternalService(nil, body, "geocoding result is missing coordinates")
	}

	return Place{
		Name:      *first.Name,
		Country:   first.CountryCode,
		Latitude:  *first.Latitude,
		Longitude: *first.Longitude,
	}, nil
}
