package envelope

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmoretto/almanac/pkg/fault"
)

// decode parses an envelope and returns its top-level keys.
func decode(t *testing.T, s string) map[string]json.RawMessage {
	t.Helper()

	var top map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(s), &top))

	return top
}

func TestSuccessHasOnlyDataKey(t *testing.T) {
	out, err := Success(map[string]any{"value": 42})
	require.NoError(t, err)

	top := decode(t, out)
	require.Len(t, top, 1)
	assert.Contains(t, top, "data")
}

func TestFailureHasOnlyErrorKey(t *testing.T) {
	out := Failure(errors.New("boom"), "fallback")

	top := decode(t, out)
	require.Len(t, top, 1)
	assert.Contains(t, top, "error")
}

func TestFailureUsesErrorMessage(t *testing.T) {
	out := Failure(fault.NotFound(`Location "Nowhere" not found`), "Failed to retrieve weather data")

	assert.JSONEq(t, `{"error":{"message":"Location \"Nowhere\" not found"}}`, out)
}

func TestFailureFallsBackToGenericMessage(t *testing.T) {
	out := Failure(nil, "Failed to convert currency")

	assert.JSONEq(t, `{"error":{"message":"Failed to convert currency"}}`, out)
}

func TestFailureCarriesProviderDetails(t *testing.T) {
	err := fault.ExternalService(nil, []byte(`{"reason":"rate limited"}`), "service returned status 429")

	out := Failure(err, "fallback")

	var body struct {
		Error struct {
			Message string          `json:"message"`
			Details json.RawMessage `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, "service returned status 429", body.Error.Message)
	assert.JSONEq(t, `{"reason":"rate limited"}`, string(body.Error.Details))
}

func TestFailureOmitsAbsentDetails(t *testing.T) {
	out := Failure(fault.Validation("amount is required"), "fallback")

	assert.NotContains(t, out, "details")
}

func TestRunSuccess(t *testing.T) {
	out := Run("fallback", func() (any, error) {
		return map[string]string{"ok": "yes"}, nil
	})

	assert.JSONEq(t, `{"data":{"ok":"yes"}}`, out)
}

func TestRunError(t *testing.T) {
	out := Run("fallback", func() (any, error) {
		return nil, fault.Validation("from is required")
	})

	assert.JSONEq(t, `{"error":{"message":"from is required"}}`, out)
}

func TestRunRecoversPanic(t *testing.T) {
	var out string
	assert.NotPanics(t, func() {
		out = Run("Failed to retrieve weather data", func() (any, error) {
			panic("nil map write")
		})
	})

	top := decode(t, out)
	require.Len(t, top, 1)
	assert.Contains(t, top, "error")
	assert.Contains(t, out, "Failed to retrieve weather data")
}

func TestRunNeverBothKeys(t *testing.T) {
	success := Run("f", func() (any, error) { return 1, nil })
	failure := Run("f", func() (any, error) { return nil, errors.New("x") })

	assert.Len(t, decode(t, success), 1)
	assert.Len(t, decode(t, failure), 1)
}
