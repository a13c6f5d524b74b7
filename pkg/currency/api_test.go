package currency

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmoretto/almanac/pkg/fault"
)

func newAPITestSource(t *testing.T, handler http.HandlerFunc) *APISource {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewAPISource(APIOptions{BaseURL: srv.URL})
}

func TestAPISourceSuccess(t *testing.T) {
	var requestedPath string
	src := newAPITestSource(t, func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.Path
		_, _ = w.Write([]byte(`{"result":"success","rates":{"EUR":0.85,"GBP":0.73},"time_last_update_unix":1756600005}`))
	})

	quote, err := src.Rate(context.Background(), "USD", "EUR")

	require.NoError(t, err)
	assert.Equal(t, "/USD", requestedPath)
	assert.InDelta(t, 0.85, quote.Rate, 0.0001)
	assert.Equal(t, time.Unix(1756600005, 0), quote.UpdatedAt)
}

func TestAPISourceMissingTarget(t *testing.T) {
	src := newAPITestSource(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"result":"success","rates":{"EUR":0.85}}`))
	})

	_, err := src.Rate(context.Background(), "USD", "XYZ")

	require.Error(t, err)
	assert.Equal(t, fault.KindUnsupportedCurrency, fault.KindOf(err))
	assert.Equal(t, "Conversion to XYZ is not supported", err.Error())
}

func TestAPISourceUnknownSource(t *testing.T) {
	src := newAPITestSource(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"result":"error","error-type":"unsupported-code"}`))
	})

	_, err := src.Rate(context.Background(), "XYZ", "USD")

	require.Error(t, err)
	assert.Equal(t, fault.KindUnsupportedCurrency, fault.KindOf(err))
	assert.Equal(t, "Conversion from XYZ is not supported", err.Error())
}

func TestAPISourceErrorResultBody(t *testing.T) {
	src := newAPITestSource(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"result":"error"}`))
	})

	_, err := src.Rate(context.Background(), "USD", "EUR")

	require.Error(t, err)
	assert.Equal(t, fault.KindUnsupportedCurrency, fault.KindOf(err))
}

func TestAPISourceServerErrorKeepsBody(t *testing.T) {
	src := newAPITestSource(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"reason":"maintenance"}`))
	})

	_, err := src.Rate(context.Background(), "USD", "EUR")

	require.Error(t, err)
	assert.Equal(t, fault.KindExternalService, fault.KindOf(err))
	assert.JSONEq(t, `{"reason":"maintenance"}`, string(fault.DetailsOf(err)))
}

func TestAPISourceMalformedBody(t *testing.T) {
	src := newAPITestSource(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	_, err := src.Rate(context.Background(), "USD", "EUR")

	require.Error(t, err)
	assert.Equal(t, fault.KindExternalService, fault.KindOf(err))
}

func TestAPISourceTimeoutMapsToExternalService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"result":"success","rates":{"EUR":0.85}}`))
	}))
	t.Cleanup(srv.Close)

	src := NewAPISource(APIOptions{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})

	_, err := src.Rate(context.Background(), "USD", "EUR")

	require.Error(t, err)
	assert.Equal(t, fault.KindExternalService, fault.KindOf(err))
	assert.Contains(t, err.Error(), "request failed")
}

func TestAPISourceUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // Deliberately closed: connection refused.

	src := NewAPISource(APIOptions{BaseURL: srv.URL, Timeout: time.Second})

	_, err := src.Rate(context.Background(), "USD", "EUR")

	require.Error(t, err)
	assert.Equal(t, fault.KindExternalService, fault.KindOf(err))
}

func TestStaticSourceDefaults(t *testing.T) {
	src := NewStaticSource(nil)

	quote, err := src.Rate(context.Background(), "USD", "EUR")

	require.NoError(t, err)
	assert.InDelta(t, 0.85, quote.Rate, 0.0001)
	assert.True(t, quote.UpdatedAt.IsZero())
}

func TestStaticSourceCustomTable(t *testing.T) {
	src := NewStaticSource(map[string]map[string]float64{
		"ABC": {"DEF": 2.5},
	})

	quote, err := src.Rate(context.Background(), "ABC", "DEF")
	require.NoError(t, err)
	assert.InDelta(t, 2.5, quote.Rate, 0.0001)

	_, err = src.Rate(context.Background(), "USD", "EUR")
	assert.Equal(t, fault.KindUnsupportedCurrency, fault.KindOf(err))
}
