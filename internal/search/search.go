package search

import (
	"context"
)

// Result represents a single search hit from any provider.
type Result struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Source      string `json:"-"` // provider name for observability
}

// Provider turns a query into an ordered list of candidate results. The first
// result is the most relevant according to the upstream service.
type Provider interface {
	Search(ctx context.Context, query string) ([]Result, error)
	Name() string
}
