package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"painpoint-advisor/internal/config"
	"strings"
	"time"
)

const defaultTavilyURL = "https://api.tavily.com/search"

// TavilyProvider implements the Tavily Search API.
type TavilyProvider struct {
	apiKey        string
	apiURL        string
	searchDepth   string
	maxResults    int
	includeAnswer bool
	client        *http.Client
}

// NewTavilyProvider creates a Tavily search provider.
func NewTavilyProvider(cfg config.SearchConfig) *TavilyProvider {
	apiURL := strings.TrimSpace(cfg.Endpoint)
	if apiURL == "" {
		apiURL = defaultTavilyURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &TavilyProvider{
		apiKey:        strings.TrimSpace(cfg.APIKey),
		apiURL:        apiURL,
		searchDepth:   cfg.SearchDepth,
		maxResults:    cfg.MaxResults,
		includeAnswer: cfg.IncludeAnswer,
		client:        &http.Client{Timeout: timeout},
	}
}

type tavilyRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	SearchDepth   string `json:"search_depth,omitempty"`
	IncludeAnswer bool   `json:"include_answer"`
	MaxResults    int    `json:"max_results,omitempty"`
}

type tavilyResponse struct {
	Answer  string `json:"answer"`
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

// Search executes a query against the Tavily Search API.
func (p *TavilyProvider) Search(ctx context.Context, query string) (*Response, error) {
	if p.apiKey == "" {
		return nil, ErrNotConfigured
	}
	payload, err := json.Marshal(tavilyRequest{
		APIKey:        p.apiKey,
		Query:         query,
		SearchDepth:   p.searchDepth,
		IncludeAnswer: p.includeAnswer,
		MaxResults:    p.maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal tavily request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create tavily request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{Provider: providerTavily, StatusCode: resp.StatusCode}
	}

	var decoded tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode tavily response: %w", err)
	}

	out := &Response{
		Answer:  strings.TrimSpace(decoded.Answer),
		Results: make([]Result, 0, len(decoded.Results)),
	}
	for _, item := range decoded.Results {
		out.Results = append(out.Results, Result{
			Title:   strings.TrimSpace(item.Title),
			URL:     strings.TrimSpace(item.URL),
			Content: strings.TrimSpace(item.Content),
			Score:   item.Score,
		})
	}
	return out, nil
}
