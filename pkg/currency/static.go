package currency

import (
	"context"

	"github.com/nmoretto/almanac/pkg/fault"
)

// defaultRates is the offline source→target→rate table.
var defaultRates = map[string]map[string]float64{
	"USD": {"EUR": 0.85, "GBP": 0.73, "JPY": 110.0, "CNY": 7.24, "CAD": 1.36, "AUD": 1.52},
	"EUR": {"USD": 1.18, "GBP": 0.86, "JPY": 129.5, "CNY": 8.52, "CAD": 1.60, "AUD": 1.79},
	"GBP": {"USD": 1.37, "EUR": 1.16, "JPY": 150.7, "CNY": 9.92, "CAD": 1.86, "AUD": 2.08},
	"JPY": {"USD": 0.0091, "EUR": 0.0077, "GBP": 0.0066, "CNY": 0.066},
	"CNY": {"USD": 0.138, "EUR": 0.117, "GBP": 0.101, "JPY": 15.2},
}

// StaticSource looks rates up in a fixed nested table. It performs no I/O and
// is the offline substitute for the live API.
type StaticSource struct {
	rates map[string]map[string]float64
}

// NewStaticSource creates a StaticSource over the given table. A nil table
// selects the built-in default rates.
func NewStaticSource(rates map[string]map[string]float64) *StaticSource {
	if rates == nil {
		rates = defaultRates
	}

	return &StaticSource{rates: rates}
}

// Rate implements RateSource.
func (s *StaticSource) Rate(_ context.Context, from, to string) (Quote, error) {
	targets, ok := s.rates[from]
	if !ok {
		return Quote{}, fault.UnsupportedCurrency("Conversion from %s is not supported", from)
	}

	rate, ok := targets[to]
	if !ok {
		return Quote{}, fault.UnsupportedCurrency("Conversion to %s is not supported", to)
	}

	return Quote{Rate: rate}, nil
}
