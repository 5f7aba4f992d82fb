// Package search provides a pluggable web search interface for the engine.
//
// Each provider implements the [Provider] interface. [Resolve] selects the
// concrete provider from explicit configuration and credential presence;
// the resolved provider is immutable and safe for read-only sharing.
package search

import (
	"context"
	"time"
)

// Timeout is the fixed outbound timeout for all search providers.
const Timeout = 10 * time.Second

// Result is a single search result. Immutable once produced; ordering is
// provider-defined, assumed relevance-ranked with the best result first.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Provider is the interface that search backends implement.
type Provider interface {
	// Name returns the provider identifier (e.g., "duckduckgo", "brave").
	Name() string

	// Search executes a query and returns at most maxResults results.
	// Providers may return fewer, including none.
	Search(ctx context.Context, query string, maxResults int) ([]Result, error)
}
