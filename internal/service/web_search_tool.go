package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"painpoint-advisor/pkg/llm"
	"painpoint-advisor/pkg/log"
	"painpoint-advisor/pkg/metrics"
	"painpoint-advisor/pkg/search"
)

const webSearchToolName = "web_search"

// 以下文本会直接交给模型，任何一条都不允许模型编造搜索结果。
const (
	searchUnavailableText = "Web search unavailable (no TAVILY_API_KEY configured). DO NOT make up information - say you cannot search the web."
	searchFailedText      = "Web search failed. DO NOT make up information - tell the user the search failed."
	searchErrorText       = "Web search encountered an error. DO NOT make up information - tell the user the search failed."
	searchBadArgsText     = "Web search could not be run (invalid search arguments). DO NOT make up information - tell the user the search failed."
	searchResultsHeader   = "IMPORTANT: Only use information explicitly stated below. If the answer isn't in these results, say \"I couldn't find specific information about that.\"\n\n"
	searchNoResultsText   = "No results found for this query. Tell the user you couldn't find this information.\n"
)

// WebSearchTool 通过搜索服务执行 web_search。
type WebSearchTool struct {
	provider search.Provider
}

// NewWebSearchTool 创建 web_search 工具。provider 为 nil 时视为未配置。
func NewWebSearchTool(provider search.Provider) *WebSearchTool {
	return &WebSearchTool{provider: provider}
}

func (t *WebSearchTool) Definition() llm.Tool {
	return llm.Tool{
		Type: "function",
		Function: llm.ToolFunction{
			Name:        webSearchToolName,
			Description: "Search the web for current information, industry trends, best practices, pricing, tools, or case studies. Use this when you need real-time or up-to-date information beyond the knowledge base.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "The search query. Be specific and include relevant keywords.",
					},
				},
				"required": []string{"query"},
			},
		},
	}
}

type webSearchArgs struct {
	Query string `json:"query"`
}

func (t *WebSearchTool) Call(ctx context.Context, arguments string) string {
	var args webSearchArgs
	if err := json.Unmarshal([]byte(arguments), &args); err != nil || strings.TrimSpace(args.Query) == "" {
		log.Warnw("Invalid web_search arguments", "arguments", arguments, "error", err)
		metrics.ToolCalls.WithLabelValues(webSearchToolName, "bad_arguments").Inc()
		return searchBadArgsText
	}
	if t.provider == nil {
		metrics.ToolCalls.WithLabelValues(webSearchToolName, "unavailable").Inc()
		return searchUnavailableText
	}

	resp, err := t.provider.Search(ctx, args.Query)
	if err != nil {
		var statusErr *search.StatusError
		switch {
		case errors.Is(err, search.ErrNotConfigured):
			metrics.ToolCalls.WithLabelValues(webSearchToolName, "unavailable").Inc()
			return searchUnavailableText
		case errors.As(err, &statusErr):
			log.Warnw("Web search failed", "query", args.Query, "status", statusErr.StatusCode)
			metrics.ToolCalls.WithLabelValues(webSearchToolName, "failed").Inc()
			return searchFailedText
		default:
			log.Warnw("Web search error", "query", args.Query, "error", err)
			metrics.ToolCalls.WithLabelValues(webSearchToolName, "error").Inc()
			return searchErrorText
		}
	}

	log.Infow("Web search returned", "query", args.Query, "results", len(resp.Results), "hasAnswer", resp.Answer != "")
	metrics.ToolCalls.WithLabelValues(webSearchToolName, "success").Inc()
	return formatSearchResults(resp)
}

func formatSearchResults(resp *search.Response) string {
	var b strings.Builder
	b.WriteString(searchResultsHeader)
	if resp.Answer != "" {
		fmt.Fprintf(&b, "## Quick Answer\n%s\n\n", resp.Answer)
	}
	if len(resp.Results) == 0 {
		b.WriteString(searchNoResultsText)
		return b.String()
	}
	b.WriteString("## Search Results\n\n")
	for i, r := range resp.Results {
		fmt.Fprintf(&b, "**%d. %s**\n%s\nSource: %s\n\n", i+1, r.Title, r.Content, r.URL)
	}
	return b.String()
}
