package service

import (
	"context"
	"errors"
	"fmt"

	"painpoint-advisor/pkg/llm"
	"painpoint-advisor/pkg/log"
)

var (
	// ErrNoProviderAvailable 表示主/备服务商都失败，本轮对话终止。
	ErrNoProviderAvailable = errors.New("no provider available")
	// ErrProvidersNotConfigured 表示没有任何服务商凭证。
	ErrProvidersNotConfigured = errors.New("no llm provider configured")
)

// Answer 是一轮对话的完整回复。Exchange 保存工具请求与工具结果，按产生顺序排列。
type Answer struct {
	Content  string
	Provider string
	Exchange []llm.Message
}

// ProviderRouter 负责服务商的选择与顺序：先主后备，每个服务商每轮最多调用一次，不重试。
type ProviderRouter struct {
	primary  llm.Client
	fallback llm.Client
	tools    *ToolExecutor
}

// NewProviderRouter 创建路由器。tools 只会提供给主服务商。
func NewProviderRouter(primary, fallback llm.Client, tools *ToolExecutor) *ProviderRouter {
	if tools == nil {
		tools = NewToolExecutor()
	}
	return &ProviderRouter{primary: primary, fallback: fallback, tools: tools}
}

// Configured 表示至少有一个服务商存在凭证。
func (r *ProviderRouter) Configured() bool {
	return r.primary.Configured() || r.fallback.Configured()
}

// Primary 返回主服务商客户端。
func (r *ProviderRouter) Primary() llm.Client {
	return r.primary
}

// Complete 向单个服务商发起一次非流式请求。只有目标是主服务商且 useTools 为 true 时才携带工具定义。
func (r *ProviderRouter) Complete(ctx context.Context, client llm.Client, history []llm.Message, useTools bool) (*llm.Response, error) {
	useTools = useTools && client == r.primary && len(r.tools.Definitions()) > 0
	var tools []llm.Tool
	if useTools {
		tools = r.tools.Definitions()
	}
	return client.Chat(ctx, withSystemPrompt(history, useTools), tools)
}

// PrimaryTools 返回流式请求应携带的工具定义。
func (r *ProviderRouter) PrimaryTools(useTools bool) []llm.Tool {
	if !useTools {
		return nil
	}
	return r.tools.Definitions()
}

// Generate 执行完整的非流式流程：主服务商（带工具，最多一轮工具调用）→ 备用服务商（不带工具）
// → ErrNoProviderAvailable。
func (r *ProviderRouter) Generate(ctx context.Context, history []llm.Message) (*Answer, error) {
	answer, primaryErr := r.generatePrimary(ctx, history)
	if primaryErr == nil {
		return answer, nil
	}
	log.Warnw("Primary provider unavailable", "provider", r.primary.Name(), "error", primaryErr)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, fallbackErr := r.Complete(ctx, r.fallback, history, false)
	if fallbackErr == nil {
		log.Infow("Response from fallback provider", "provider", r.fallback.Name(), "length", len(resp.Content))
		return &Answer{Content: resp.Content, Provider: r.fallback.Name()}, nil
	}
	log.Warnw("Fallback provider unavailable", "provider", r.fallback.Name(), "error", fallbackErr)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if llm.IsNotConfigured(primaryErr) && llm.IsNotConfigured(fallbackErr) {
		return nil, fmt.Errorf("%w: %w", ErrNoProviderAvailable, ErrProvidersNotConfigured)
	}
	return nil, fmt.Errorf("%w: %s: %v; %s: %v", ErrNoProviderAvailable,
		r.primary.Name(), primaryErr, r.fallback.Name(), fallbackErr)
}

func (r *ProviderRouter) generatePrimary(ctx context.Context, history []llm.Message) (*Answer, error) {
	resp, err := r.Complete(ctx, r.primary, history, true)
	if err != nil {
		return nil, err
	}
	if len(resp.ToolCalls) == 0 {
		return &Answer{Content: resp.Content, Provider: r.primary.Name()}, nil
	}

	log.Infow("Primary provider requested tool calls", "provider", r.primary.Name(), "count", len(resp.ToolCalls))
	exchange := r.tools.Execute(ctx, resp.Content, resp.ToolCalls)

	working := make([]llm.Message, 0, len(history)+len(exchange))
	working = append(working, history...)
	working = append(working, exchange...)

	// 合成调用不带工具，保证只执行一轮工具调用
	final, err := r.Complete(ctx, r.primary, working, false)
	if err != nil {
		return nil, fmt.Errorf("synthesis after tool calls: %w", err)
	}
	return &Answer{Content: final.Content, Provider: r.primary.Name(), Exchange: exchange}, nil
}
