package llm

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned when a request is rejected before any call to
// the upstream service (empty text, no valid inputs).
var ErrInvalidInput = errors.New("invalid input")

// UpstreamError reports a non-success response from a model service,
// preserving status and body for diagnostics.
type UpstreamError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Service, e.StatusCode, e.Body)
}
