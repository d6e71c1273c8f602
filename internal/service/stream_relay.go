package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"painpoint-advisor/pkg/llm"
	"painpoint-advisor/pkg/log"
	"painpoint-advisor/pkg/metrics"
)

// StreamState 是流式中继的状态。
type StreamState string

const (
	StateInit              StreamState = "init"
	StateStreamPrimary     StreamState = "stream_primary"
	StateFallbackNonStream StreamState = "fallback_nonstream"
	StateDone              StreamState = "done"
	StateFailed            StreamState = "failed"
	StateCancelled         StreamState = "cancelled"
)

// 返回给客户端的终止性错误文本。
const (
	NotConfiguredMessage  = "No LLM configured. Please add DEEPSEEK_API_KEY or TOGETHER_API_KEY to your .env file."
	AllUnavailableMessage = "All LLM providers unavailable"
	ProcessFailedMessage  = "Failed to process message"
)

// SetupHints 是未配置服务商时返回给用户的配置指引。
type SetupHints struct {
	Primary  string `json:"primary"`
	Fallback string `json:"fallback"`
}

// DefaultSetupHints 返回主/备服务商的凭证获取方式。
func DefaultSetupHints() *SetupHints {
	return &SetupHints{
		Primary:  "DEEPSEEK_API_KEY - Get from https://platform.deepseek.com/api_keys",
		Fallback: "TOGETHER_API_KEY - Get from https://api.together.xyz/settings/api-keys",
	}
}

// ContentEvent 是增量文本事件。
type ContentEvent struct {
	Content string `json:"content"`
}

// ConversationEvent 在结束标记之前发送一次。
type ConversationEvent struct {
	ConversationID string `json:"conversationId"`
}

// ErrorEvent 是终止性的错误事件。
type ErrorEvent struct {
	Error string      `json:"error"`
	Setup *SetupHints `json:"setup,omitempty"`
}

// EventWriter 将事件写给客户端。写入失败视为客户端已断开。
type EventWriter interface {
	WriteEvent(payload any) error
	WriteDone() error
}

// StreamTurn 是一轮流式对话所需的上下文。Save 在内容完整之后调用一次。
type StreamTurn struct {
	ConversationID string
	History        []llm.Message
	UseTools       bool
	Save           func(ctx context.Context, answer *Answer) error
	Release        func()
}

// StreamRelay 把主服务商的 token 流转发为客户端事件流，失败时退回非流式流程并模拟逐词输出。
type StreamRelay struct {
	router    *ProviderRouter
	local     *LocalResponder
	offline   bool
	wordDelay time.Duration
}

// NewStreamRelay 创建流式中继。offline 为 true 时，没有任何凭证的对话交给 local 处理。
func NewStreamRelay(router *ProviderRouter, local *LocalResponder, offline bool, wordDelay time.Duration) *StreamRelay {
	return &StreamRelay{router: router, local: local, offline: offline, wordDelay: wordDelay}
}

var errClientGone = errors.New("client disconnected")

type clientWriter struct {
	w EventWriter
}

func (c clientWriter) event(payload any) error {
	if err := c.w.WriteEvent(payload); err != nil {
		return errors.Join(errClientGone, err)
	}
	return nil
}

// Run 执行一轮流式对话并返回终止状态。prepare 在通过凭证检查后才被调用，
// 用于加载历史并锁定对话。
func (r *StreamRelay) Run(ctx context.Context, w EventWriter, message string, prepare func(ctx context.Context) (*StreamTurn, error)) StreamState {
	metrics.ActiveStreams.Inc()
	defer metrics.ActiveStreams.Dec()

	path := "stream"
	state := r.run(ctx, clientWriter{w: w}, message, prepare, &path)
	metrics.ChatTurns.WithLabelValues(path, string(state)).Inc()
	return state
}

func (r *StreamRelay) run(ctx context.Context, cw clientWriter, message string, prepare func(ctx context.Context) (*StreamTurn, error), path *string) StreamState {
	local := false
	if !r.router.Configured() {
		if !r.offline {
			_ = cw.event(ErrorEvent{Error: NotConfiguredMessage, Setup: DefaultSetupHints()})
			_ = cw.w.WriteDone()
			*path = "unconfigured"
			return StateFailed
		}
		local = true
	}

	turn, err := prepare(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return StateCancelled
		}
		log.Errorw("Failed to prepare chat turn", "error", err)
		_ = cw.event(ErrorEvent{Error: ProcessFailedMessage})
		return StateFailed
	}
	if turn.Release != nil {
		defer turn.Release()
	}

	if local {
		*path = "local"
		answer := &Answer{Content: r.local.Respond(message), Provider: "local"}
		return r.emitSimulated(ctx, cw, turn, answer)
	}

	if r.router.Primary().Configured() {
		enter(turn, StateStreamPrimary)
		content, err := r.streamPrimary(ctx, cw, turn)
		switch {
		case err == nil && strings.TrimSpace(content) != "":
			return r.finish(ctx, cw, turn, &Answer{Content: content, Provider: r.router.Primary().Name()})
		case isCancelled(ctx, err):
			log.Infow("Client disconnected during primary stream, discarding partial content",
				"conversationId", turn.ConversationID, "length", len(content))
			return StateCancelled
		case err != nil:
			log.Warnw("Primary stream failed, falling back", "conversationId", turn.ConversationID, "error", err)
		default:
			log.Warnw("Primary stream produced no content, falling back", "conversationId", turn.ConversationID)
		}
	}

	enter(turn, StateFallbackNonStream)
	*path = "fallback"
	answer, err := r.router.Generate(ctx, turn.History)
	if err != nil {
		if isCancelled(ctx, err) {
			return StateCancelled
		}
		log.Errorw("Fallback pipeline failed", "conversationId", turn.ConversationID, "error", err)
		_ = cw.event(ErrorEvent{Error: AllUnavailableMessage})
		return StateFailed
	}
	return r.emitSimulated(ctx, cw, turn, answer)
}

func (r *StreamRelay) streamPrimary(ctx context.Context, cw clientWriter, turn *StreamTurn) (string, error) {
	var full strings.Builder
	var sanitizer llm.StreamSanitizer
	forward := func(clean string) error {
		if clean == "" {
			return nil
		}
		full.WriteString(clean)
		return cw.event(ContentEvent{Content: clean})
	}

	primary := r.router.Primary()
	tools := r.router.PrimaryTools(turn.UseTools)
	err := primary.StreamChat(ctx, withSystemPrompt(turn.History, len(tools) > 0), tools, func(delta string) error {
		return forward(sanitizer.Write(delta))
	})
	if err != nil {
		return full.String(), err
	}
	if err := forward(sanitizer.Flush()); err != nil {
		return full.String(), err
	}
	return full.String(), nil
}

// emitSimulated 以固定间隔逐词下发完整回复，然后结束本轮。
func (r *StreamRelay) emitSimulated(ctx context.Context, cw clientWriter, turn *StreamTurn, answer *Answer) StreamState {
	var timer *time.Timer
	for _, word := range strings.Split(answer.Content, " ") {
		if err := cw.event(ContentEvent{Content: word + " "}); err != nil {
			return StateCancelled
		}
		if r.wordDelay <= 0 {
			continue
		}
		if timer == nil {
			timer = time.NewTimer(r.wordDelay)
			defer timer.Stop()
		} else {
			timer.Reset(r.wordDelay)
		}
		select {
		case <-ctx.Done():
			log.Infow("Client disconnected during simulated stream", "conversationId", turn.ConversationID)
			return StateCancelled
		case <-timer.C:
		}
	}
	return r.finish(ctx, cw, turn, answer)
}

// finish 持久化完整回复并发送对话 ID 与结束标记。持久化失败只记录日志，内容已经送达客户端。
func (r *StreamRelay) finish(ctx context.Context, cw clientWriter, turn *StreamTurn, answer *Answer) StreamState {
	if ctx.Err() != nil {
		return StateCancelled
	}
	if err := turn.Save(ctx, answer); err != nil {
		log.Errorw("Failed to persist assistant message", "conversationId", turn.ConversationID, "error", err)
	}
	if err := cw.event(ConversationEvent{ConversationID: turn.ConversationID}); err != nil {
		return StateDone
	}
	_ = cw.w.WriteDone()
	return StateDone
}

func enter(turn *StreamTurn, state StreamState) {
	log.Infow("Stream relay state", "conversationId", turn.ConversationID, "state", state)
}

func isCancelled(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, errClientGone)
}
