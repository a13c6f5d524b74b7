package currency

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nmoretto/almanac/pkg/fault"
)

const (
	defaultRatesURL = "https://open.er-api.com/v6/latest"
	defaultTimeout  = 10 * time.Second

	// maxBodySize caps provider response bodies (1MB).
	maxBodySize = 1 << 20
)

// APISource fetches a rate table keyed by target code relative to the source
// currency from a keyless exchange-rate API.
type APISource struct {
	baseURL string
	client  *http.Client
}

// APIOptions configures an APISource. Zero values select production defaults.
type APIOptions struct {
	BaseURL string
	Timeout time.Duration
}

// NewAPISource creates an APISource with a bounded-timeout HTTP client.
func NewAPISource(opts APIOptions) *APISource {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultRatesURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	return &APISource{
		baseURL: opts.BaseURL,
		client:  &http.Client{Timeout: opts.Timeout},
	}
}

// rateResponse is the provider-shaped rate payload.
type rateResponse struct {
	Result             string             `json:"result"`
	Rates              map[string]float64 `json:"rates"`
	TimeLastUpdateUnix int64              `json:"time_last_update_unix"`
}

// Rate implements RateSource with a single call retrieving the full table for
// the source currency.
func (s *APISource) Rate(ctx context.Context, from, to string) (Quote, error) {
	reqURL := strings.TrimSuffix(s.baseURL, "/") + "/" + from

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Quote{}, fault.ExternalService(err, nil, "exchange rate: invalid request: %v", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return Quote{}, fault.ExternalService(err, nil, "exchange rate request failed: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on read

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return Quote{}, fault.ExternalService(err, nil, "exchange rate: read response: %v", err)
	}

	// The provider answers 404 with an error body for unknown source codes.
	if resp.StatusCode == http.StatusNotFound {
		return Quote{}, fault.UnsupportedCurrency("Conversion from %s is not supported", from)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return Quote{}, fault.ExternalService(nil, body, "exchange rate service returned status %d", resp.StatusCode)
	}

	var decoded rateResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return Quote{}, fault.ExternalService(err, body, "exchange rate service returned a malformed response")
	}

	if decoded.Result != "success" || decoded.Rates == nil {
		return Quote{}, fault.UnsupportedCurrency("Conversion from %s is not supported", from)
	}

	rate, ok := decoded.Rates[to]
	if !ok {
		return Quote{}, fault.UnsupportedCurrency("Conversion to %s is not supported", to)
	}

	quote := Quote{Rate: rate}
	if decoded.TimeLastUpdateUnix > 0 {
		quote.UpdatedAt = time.Unix(decoded.TimeLastUpdateUnix, 0)
	}

	return quote, nil
}
