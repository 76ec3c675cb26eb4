package search

import (
	"errors"
	"fmt"
)

// ErrSearchUnavailable is returned when the upstream search service cannot
// produce results for a query.
var ErrSearchUnavailable = errors.New("search unavailable")

// APIError describes a non-success response from a search provider. Body holds
// the raw response for diagnostics and is never parsed.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: status %d", e.Provider, e.StatusCode)
}

func (e *APIError) Unwrap() error { return ErrSearchUnavailable }
