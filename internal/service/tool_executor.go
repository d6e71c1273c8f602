package service

import (
	"context"
	"fmt"

	"painpoint-advisor/pkg/llm"
	"painpoint-advisor/pkg/log"
	"painpoint-advisor/pkg/metrics"
)

// Tool 是可以由模型调用的函数。Call 总是返回要交给模型的文本，
// 失败也以明确的说明文字表达，而不是返回错误。
type Tool interface {
	Definition() llm.Tool
	Call(ctx context.Context, arguments string) string
}

// ToolExecutor 按名称分发模型发起的工具调用。
type ToolExecutor struct {
	tools map[string]Tool
	defs  []llm.Tool
}

// NewToolExecutor 注册一组工具。
func NewToolExecutor(tools ...Tool) *ToolExecutor {
	e := &ToolExecutor{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		def := t.Definition()
		e.tools[def.Function.Name] = t
		e.defs = append(e.defs, def)
	}
	return e
}

// Definitions 返回向模型声明的工具定义。
func (e *ToolExecutor) Definitions() []llm.Tool {
	if e == nil {
		return nil
	}
	return e.defs
}

// Execute 按请求顺序依次执行工具调用，返回要追加到历史中的消息：
// 一条携带原始工具请求的 assistant 消息，以及每个调用对应的一条 tool 消息。
func (e *ToolExecutor) Execute(ctx context.Context, content string, calls []llm.ToolCall) []llm.Message {
	exchange := make([]llm.Message, 0, len(calls)+1)
	exchange = append(exchange, llm.Message{
		Role:      "assistant",
		Content:   content,
		ToolCalls: calls,
	})

	for _, call := range calls {
		name := call.Function.Name
		var result string
		if tool, ok := e.tools[name]; ok {
			log.Infow("Executing tool call", "tool", name, "arguments", call.Function.Arguments)
			result = tool.Call(ctx, call.Function.Arguments)
		} else {
			log.Warnw("Model requested unknown tool", "tool", name)
			metrics.ToolCalls.WithLabelValues(name, "unknown").Inc()
			result = unknownToolResult(name)
		}
		exchange = append(exchange, llm.Message{
			Role:       "tool",
			Content:    result,
			ToolCallID: call.ID,
			Name:       name,
		})
	}
	return exchange
}

func unknownToolResult(name string) string {
	return fmt.Sprintf("Tool %q is not available. DO NOT make up information - answer only from the knowledge base or tell the user this tool is unavailable.", name)
}
