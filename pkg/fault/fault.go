// Package fault defines the error taxonomy shared by all tools. Failures
// carry a structured kind and an optional raw provider body so the envelope
// layer can map them without inspecting message strings.
package fault

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	// KindUnknown covers anything the other kinds do not.
	KindUnknown Kind = iota
	// KindValidation marks bad or missing input.
	KindValidation
	// KindNotFound marks a lookup with zero matches.
	KindNotFound
	// KindUnsupportedCurrency marks a currency code absent from the rate source.
	KindUnsupportedCurrency
	// KindExternalService marks a network, timeout, or non-2xx dependency failure.
	KindExternalService
)

// Error is a classified failure. Details holds the raw provider error body
// when the failure originated from an external call that returned one.
type Error struct {
	Kind    Kind
	Message string
	Details json.RawMessage
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}

	return e.Message
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Validation returns a KindValidation error.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound returns a KindNotFound error.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// UnsupportedCurrency returns a KindUnsupportedCurrency error.
func UnsupportedCurrency(format string, args ...any) *Error {
	return &Error{Kind: KindUnsupportedCurrency, Message: fmt.Sprintf(format, args...)}
}

// ExternalService returns a KindExternalService error wrapping cause.
// body, when non-nil and valid JSON, is preserved as the failure's Details.
func ExternalService(cause error, body []byte, format string, args ...any) *Error {
	e := &Error{
		Kind:    KindExternalService,
		Message: fmt.Sprintf(format, args...),
		Err:     cause,
	}

	if json.Valid(body) {
		e.Details = json.RawMessage(body)
	}

	return e
}

// KindOf returns the kind of err, or KindUnknown for unclassified errors.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}

	return KindUnknown
}

// DetailsOf returns the raw provider body attached to err, or nil.
func DetailsOf(err error) json.RawMessage {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Details
	}

	return nil
}
