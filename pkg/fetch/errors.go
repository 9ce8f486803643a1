package fetch

import (
	"errors"
	"fmt"
)

// ErrFallbackUnavailable indicates that a request was routed to the browser
// renderer and the renderer failed or timed out. It is never returned when
// no renderer is configured; such requests take the plain HTTP path instead.
var ErrFallbackUnavailable = errors.New("browser fallback unavailable")

// UnreachableError indicates that every retry attempt for a URL failed with
// a transient condition. It wraps the error from the final attempt.
type UnreachableError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("unreachable after %d attempts: %s: %v", e.Attempts, e.URL, e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }

// HTTPError indicates a non-retryable HTTP failure status (anything at or
// above 400 outside the retryable set).
type HTTPError struct {
	URL    string
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Status, e.URL)
}
