package steward

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a request failed validation.
	ErrValidation = errors.New("validation error")

	// ErrEmptyResponse indicates a provider returned a syntactically valid
	// response containing no usable text.
	ErrEmptyResponse = errors.New("provider returned no usable text")

	// ErrStreamClosed indicates an operation on a closed stream.
	ErrStreamClosed = errors.New("stream closed")
)

// HTTPError is a transport error from a provider or external system. It
// carries the system name, status code, and raw response body so nothing is
// silently swallowed. The core never retries these; retry policy, if any,
// belongs to the caller.
type HTTPError struct {
	Provider   string
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s: HTTP %d: %s", e.Provider, e.StatusCode, e.Body)
}
