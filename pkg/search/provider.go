// Package search provides web search backends for the web_search tool.
package search

import (
	"context"
	"errors"
	"fmt"
	"painpoint-advisor/internal/config"
)

const providerTavily = "tavily"

// ErrNotConfigured is returned when the search backend has no credential.
var ErrNotConfigured = errors.New("search provider not configured")

// Provider defines the interface for web search providers.
type Provider interface {
	Search(ctx context.Context, query string) (*Response, error)
}

// Response holds an optional summary answer plus the ranked results.
type Response struct {
	Answer  string
	Results []Result
}

// Result represents a single search result.
type Result struct {
	Title   string
	URL     string
	Content string
	Score   float64
}

// StatusError reports a non-2xx answer from the search backend.
type StatusError struct {
	Provider   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s request failed with status %d", e.Provider, e.StatusCode)
}

// NewProvider creates a search provider from configuration. A missing
// credential is not an error here: the returned provider reports
// ErrNotConfigured on every call so the tool can tell the model it cannot search.
func NewProvider(cfg config.SearchConfig) (Provider, error) {
	switch cfg.Provider {
	case providerTavily, "":
		return NewTavilyProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported search provider: %s", cfg.Provider)
	}
}
