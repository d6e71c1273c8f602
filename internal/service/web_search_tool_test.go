package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"painpoint-advisor/pkg/llm"
	"painpoint-advisor/pkg/search"
)

// negativeTemplates 是搜索失败或无结果时允许交给模型的全部文本。
var negativeTemplates = []string{
	searchUnavailableText,
	searchFailedText,
	searchErrorText,
	searchBadArgsText,
	searchResultsHeader + searchNoResultsText,
}

func TestWebSearchNegativeResults(t *testing.T) {
	tests := []struct {
		name     string
		provider search.Provider
		args     string
		want     string
	}{
		{"not configured", &fakeSearch{err: search.ErrNotConfigured}, `{"query":"q"}`, searchUnavailableText},
		{"wrapped not configured", &fakeSearch{err: fmt.Errorf("tavily: %w", search.ErrNotConfigured)}, `{"query":"q"}`, searchUnavailableText},
		{"nil provider", nil, `{"query":"q"}`, searchUnavailableText},
		{"status error", &fakeSearch{err: &search.StatusError{Provider: "tavily", StatusCode: 502}}, `{"query":"q"}`, searchFailedText},
		{"network error", &fakeSearch{err: errors.New("dial tcp: timeout")}, `{"query":"q"}`, searchErrorText},
		{"malformed arguments", &fakeSearch{}, `{"query":`, searchBadArgsText},
		{"empty query", &fakeSearch{}, `{"query":"  "}`, searchBadArgsText},
		{"zero results", &fakeSearch{resp: &search.Response{}}, `{"query":"q"}`, searchResultsHeader + searchNoResultsText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewWebSearchTool(tt.provider).Call(context.Background(), tt.args)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, negativeTemplates, got)
		})
	}
}

func TestWebSearchFormatsResults(t *testing.T) {
	provider := &fakeSearch{resp: &search.Response{
		Answer: "The market is growing.",
		Results: []search.Result{
			{Title: "Roofing Market Report", URL: "https://example.com/report", Content: "Market grew 5%."},
			{Title: "Storm Season Outlook", URL: "https://example.com/storms", Content: "More storms expected."},
		},
	}}
	got := NewWebSearchTool(provider).Call(context.Background(), `{"query":"roofing market 2026"}`)

	want := searchResultsHeader +
		"## Quick Answer\nThe market is growing.\n\n" +
		"## Search Results\n\n" +
		"**1. Roofing Market Report**\nMarket grew 5%.\nSource: https://example.com/report\n\n" +
		"**2. Storm Season Outlook**\nMore storms expected.\nSource: https://example.com/storms\n\n"
	assert.Equal(t, want, got)
	assert.Equal(t, []string{"roofing market 2026"}, provider.queries)
}

func TestWebSearchDefinition(t *testing.T) {
	def := NewWebSearchTool(nil).Definition()
	assert.Equal(t, "function", def.Type)
	assert.Equal(t, "web_search", def.Function.Name)
	assert.Equal(t, []string{"query"}, def.Function.Parameters["required"])
}

func TestToolExecutorUnknownTool(t *testing.T) {
	exec := NewToolExecutor(NewWebSearchTool(&fakeSearch{resp: &search.Response{}}))
	calls := []llm.ToolCall{
		toolCall("call_1", "get_weather", `{}`),
		toolCall("call_2", "web_search", `{"query":"q"}`),
	}

	exchange := exec.Execute(context.Background(), "", calls)
	if assert.Len(t, exchange, 3) {
		assert.Equal(t, calls, exchange[0].ToolCalls)
		assert.Equal(t, "call_1", exchange[1].ToolCallID)
		assert.True(t, strings.HasPrefix(exchange[1].Content, `Tool "get_weather" is not available. DO NOT make up information`))
		assert.Equal(t, "call_2", exchange[2].ToolCallID)
		assert.Equal(t, searchResultsHeader+searchNoResultsText, exchange[2].Content)
	}
}
