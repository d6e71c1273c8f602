package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"painpoint-advisor/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(url, key string) config.SearchConfig {
	return config.SearchConfig{
		Provider:      "tavily",
		Endpoint:      url,
		APIKey:        key,
		SearchDepth:   "advanced",
		MaxResults:    5,
		IncludeAnswer: true,
	}
}

func TestTavilySearch(t *testing.T) {
	t.Parallel()

	var got tavilyRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"answer":" Demand is rising. ","results":[` +
			`{"title":"Roofing Outlook 2026","url":"https://example.com/a","content":"Market grows 4%.","score":0.9},` +
			`{"title":"Storm Season Report","url":"https://example.com/b","content":"More hail claims.","score":0.7}]}`))
	}))
	defer server.Close()

	resp, err := NewTavilyProvider(testConfig(server.URL, "tvly-key")).Search(context.Background(), "roofing market 2026")
	require.NoError(t, err)

	assert.Equal(t, "tvly-key", got.APIKey)
	assert.Equal(t, "roofing market 2026", got.Query)
	assert.Equal(t, "advanced", got.SearchDepth)
	assert.Equal(t, 5, got.MaxResults)
	assert.True(t, got.IncludeAnswer)

	assert.Equal(t, "Demand is rising.", resp.Answer)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "https://example.com/b", resp.Results[1].URL)
}

func TestTavilySearch_NotConfigured(t *testing.T) {
	t.Parallel()

	_, err := NewTavilyProvider(testConfig("http://127.0.0.1:1", "")).Search(context.Background(), "q")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestTavilySearch_StatusError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := NewTavilyProvider(testConfig(server.URL, "k")).Search(context.Background(), "q")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
}

func TestNewProvider_Unsupported(t *testing.T) {
	t.Parallel()

	_, err := NewProvider(config.SearchConfig{Provider: "bing"})
	assert.Error(t, err)
}
