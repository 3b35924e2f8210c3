package rewriter

import (
	"errors"
	"fmt"
)

var (
	// ErrNoBackend is returned when no generative backend is configured.
	ErrNoBackend = errors.New("rewriter: no usable backend configured")

	// ErrBackendUnavailable is returned when the configured backend rejects
	// or fails the call after retries.
	ErrBackendUnavailable = errors.New("rewriter: backend unavailable")

	// ErrUnparsableResponse is returned when every recovery strategy fails
	// to extract the expected fields from the backend response.
	ErrUnparsableResponse = errors.New("rewriter: unparsable backend response")
)

// ParseError wraps ErrUnparsableResponse with the raw response text so run
// logs can capture what the backend actually returned.
type ParseError struct {
	Raw string
}

func (e *ParseError) Error() string {
	return ErrUnparsableResponse.Error()
}

func (e *ParseError) Unwrap() error {
	return ErrUnparsableResponse
}

// Diagnostic returns the raw backend response for error detail capture.
func (e *ParseError) Diagnostic() string {
	return fmt.Sprintf("raw backend response:\n%s", e.Raw)
}
