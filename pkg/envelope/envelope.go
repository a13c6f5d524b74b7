// Package envelope encodes tool results into the fixed output contract:
// a JSON string holding exactly one of {"data": ...} or {"error": ...}.
// Failures are returned to the caller as data, never re-raised, so a tool
// invocation always produces a well-formed envelope.
package envelope

import (
	"encoding/json"
	"fmt"

	"github.com/nmoretto/almanac/pkg/fault"
)

type successBody struct {
	Data any `json:"data"`
}

type failureBody struct {
	Error toolError `json:"error"`
}

type toolError struct {
	Message string          `json:"message"`
	Details json.RawMessage `json:"details,omitempty"`
}

// Success encodes v as {"data": v}.
func Success(v any) (string, error) {
	data, err := json.Marshal(successBody{Data: v})
	if err != nil {
		return "", fmt.Errorf("envelope: marshal result: %w", err)
	}

	return string(data), nil
}

// Failure encodes err as {"error": {"message", "details"}}. The message is
// the failure's own message when present, otherwise fallback. Details is the
// raw provider error body attached to the failure, omitted when absent.
func Failure(err error, fallback string) string {
	message := fallback
	if err != nil && err.Error() != "" {
		message = err.Error()
	}

	body := failureBody{
		Error: toolError{
			Message: message,
			Details: fault.DetailsOf(err),
		},
	}

	// Marshaling two plain string/raw fields cannot fail on valid Details.
	data, marshalErr := json.Marshal(body)
	if marshalErr != nil {
		data, _ = json.Marshal(failureBody{Error: toolError{Message: fallback}})
	}

	return string(data)
}

// Run executes fn and converts its outcome into an envelope. Panics inside fn
// are contained and reported as unknown failures, so nothing propagates past
// the tool boundary.
func Run(fallback string, fn func() (any, error)) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = Failure(&fault.Error{
				Kind:    fault.KindUnknown,
				Message: fallback,
				Err:     fmt.Errorf("panic: %v", r),
			}, fallback)
		}
	}()

	v, err := fn()
	if err != nil {
		return Failure(err, fallback)
	}

	s, err := Success(v)
	if err != nil {
		return Failure(err, fallback)
	}

	return s
}
