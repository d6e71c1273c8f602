// Package llm provides a client for OpenAI-compatible chat completion APIs.
package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"painpoint-advisor/internal/config"
	"painpoint-advisor/pkg/metrics"
	"strings"
	"time"
)

// Message is one role-based chat message as sent to the provider.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

// ToolCall is a model request to invoke a named function.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall carries the function name and its JSON-encoded arguments.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Tool is a function definition advertised to the provider.
type Tool struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

type ToolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Response is the normalized result of a non-streaming completion.
type Response struct {
	Content   string
	ToolCalls []ToolCall
}

// Client defines the interface for an LLM client.
type Client interface {
	// Name returns the provider identifier, e.g. "deepseek".
	Name() string
	// Configured reports whether a credential is present.
	Configured() bool
	// Chat issues a non-streaming completion. Content is sanitized and trimmed.
	Chat(ctx context.Context, messages []Message, tools []Tool) (*Response, error)
	// StreamChat issues a streaming completion and calls onDelta with each raw
	// content fragment in arrival order.
	StreamChat(ctx context.Context, messages []Message, tools []Tool, onDelta func(delta string) error) error
}

type openAICompatibleClient struct {
	cfg         config.ProviderConfig
	temperature float64
	maxTokens   int
	client      *http.Client
}

// NewClient creates a client for one provider configuration. Generation
// parameters are shared by all providers.
func NewClient(cfg config.ProviderConfig, gen config.LLMConfig) Client {
	return &openAICompatibleClient{
		cfg:         cfg,
		temperature: gen.Temperature,
		maxTokens:   gen.MaxTokens,
		client:      &http.Client{},
	}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	Stream      bool      `json:"stream,omitempty"`
	Tools       []Tool    `json:"tools,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message *struct {
			Content   string     `json:"content"`
			ToolCalls []ToolCall `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
}

type chatStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

func (c *openAICompatibleClient) Name() string {
	return c.cfg.Provider
}

func (c *openAICompatibleClient) Configured() bool {
	return c.cfg.Configured()
}

func (c *openAICompatibleClient) Chat(ctx context.Context, messages []Message, tools []Tool) (*Response, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("%s: %w", c.cfg.Provider, ErrNotConfigured)
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	resp, err := c.do(ctx, chatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Tools:       tools,
	})
	metrics.LLMDuration.WithLabelValues(c.cfg.Provider, "complete").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LLMCalls.WithLabelValues(c.cfg.Provider, "complete", "error").Inc()
		return nil, err
	}
	defer resp.Body.Close()

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		metrics.LLMCalls.WithLabelValues(c.cfg.Provider, "complete", "malformed").Inc()
		return nil, fmt.Errorf("%s: decode response: %v: %w", c.cfg.Provider, err, ErrMalformedResponse)
	}
	if len(decoded.Choices) == 0 || decoded.Choices[0].Message == nil {
		metrics.LLMCalls.WithLabelValues(c.cfg.Provider, "complete", "malformed").Inc()
		return nil, fmt.Errorf("%s: %w", c.cfg.Provider, ErrMalformedResponse)
	}
	metrics.LLMCalls.WithLabelValues(c.cfg.Provider, "complete", "success").Inc()

	msg := decoded.Choices[0].Message
	return &Response{
		Content:   strings.TrimSpace(Sanitize(msg.Content)),
		ToolCalls: msg.ToolCalls,
	}, nil
}

func (c *openAICompatibleClient) StreamChat(ctx context.Context, messages []Message, tools []Tool, onDelta func(delta string) error) error {
	if !c.Configured() {
		return fmt.Errorf("%s: %w", c.cfg.Provider, ErrNotConfigured)
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	err := c.stream(ctx, messages, tools, onDelta)
	metrics.LLMDuration.WithLabelValues(c.cfg.Provider, "stream").Observe(time.Since(start).Seconds())
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.LLMCalls.WithLabelValues(c.cfg.Provider, "stream", status).Inc()
	return err
}

func (c *openAICompatibleClient) stream(ctx context.Context, messages []Message, tools []Tool, onDelta func(delta string) error) error {
	resp, err := c.do(ctx, chatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Stream:      true,
		Tools:       tools,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("%s: failed to read from stream: %w", c.cfg.Provider, err)
		}

		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "data:") {
			data := strings.TrimSpace(strings.TrimPrefix(trimmed, "data:"))
			if data == "[DONE]" {
				return nil
			}
			var chunk chatStreamChunk
			// 无法解析的分块直接跳过
			if data != "" && json.Unmarshal([]byte(data), &chunk) == nil && len(chunk.Choices) > 0 {
				if delta := chunk.Choices[0].Delta.Content; delta != "" {
					if cbErr := onDelta(delta); cbErr != nil {
						return cbErr
					}
				}
			}
		}

		if errors.Is(err, io.EOF) {
			return nil
		}
	}
}

func (c *openAICompatibleClient) do(ctx context.Context, body chatRequest) (*http.Response, error) {
	reqBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(reqBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if body.Stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to call chat api: %w", c.cfg.Provider, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		defer resp.Body.Close()
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &ProviderError{
			Provider:   c.cfg.Provider,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(bodyBytes)),
		}
	}
	return resp, nil
}

func (c *openAICompatibleClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.Timeout > 0 {
		return context.WithTimeout(ctx, c.cfg.Timeout)
	}
	return context.WithCancel(ctx)
}
