// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"time"

	"painpoint-advisor/internal/model"
	"painpoint-advisor/pkg/kafka"
	"painpoint-advisor/pkg/log"
	"painpoint-advisor/pkg/metrics"
)

// ChatRequest 是一条用户输入。
type ChatRequest struct {
	Message        string
	ConversationID string
	UseWebSearch   bool
}

// ChatResult 是非流式对话的结果。
type ChatResult struct {
	Message        *model.Message
	ConversationID string
	Provider       string
}

// TurnPublisher 发布已完成的对话轮次。
type TurnPublisher interface {
	PublishTurn(ctx context.Context, event kafka.TurnEvent) error
}

// ChatService 定义了聊天操作的接口。
type ChatService interface {
	// Complete 执行非流式对话。没有任何凭证且未开启离线模式时返回 ErrProvidersNotConfigured。
	Complete(ctx context.Context, req ChatRequest) (*ChatResult, error)
	// Stream 执行流式对话，事件写入 w，返回终止状态。
	Stream(ctx context.Context, req ChatRequest, w EventWriter) StreamState
}

type chatService struct {
	router        *ProviderRouter
	relay         *StreamRelay
	local         *LocalResponder
	conversations ConversationService
	publisher     TurnPublisher
	offline       bool
}

// NewChatService 创建一个新的 ChatService 实例。
func NewChatService(router *ProviderRouter, relay *StreamRelay, local *LocalResponder, conversations ConversationService, publisher TurnPublisher, offline bool) ChatService {
	return &chatService{
		router:        router,
		relay:         relay,
		local:         local,
		conversations: conversations,
		publisher:     publisher,
		offline:       offline,
	}
}

func (s *chatService) Complete(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	local := !s.router.Configured()
	if local && !s.offline {
		metrics.ChatTurns.WithLabelValues("complete", "unconfigured").Inc()
		return nil, ErrProvidersNotConfigured
	}

	turn, err := s.conversations.BeginTurn(ctx, req.ConversationID, req.Message)
	if err != nil {
		return nil, err
	}
	defer turn.Release()

	path := "complete"
	var answer *Answer
	if local {
		path = "local"
		answer = &Answer{Content: s.local.Respond(req.Message), Provider: "local"}
	} else {
		answer, err = s.router.Generate(ctx, turn.History)
		if err != nil {
			metrics.ChatTurns.WithLabelValues(path, string(StateFailed)).Inc()
			return nil, err
		}
	}

	msg, err := s.save(ctx, turn, answer, false)
	if err != nil {
		metrics.ChatTurns.WithLabelValues(path, string(StateFailed)).Inc()
		return nil, err
	}
	metrics.ChatTurns.WithLabelValues(path, string(StateDone)).Inc()
	return &ChatResult{Message: msg, ConversationID: turn.Conversation.ID, Provider: answer.Provider}, nil
}

func (s *chatService) Stream(ctx context.Context, req ChatRequest, w EventWriter) StreamState {
	return s.relay.Run(ctx, w, req.Message, func(ctx context.Context) (*StreamTurn, error) {
		turn, err := s.conversations.BeginTurn(ctx, req.ConversationID, req.Message)
		if err != nil {
			return nil, err
		}
		return &StreamTurn{
			ConversationID: turn.Conversation.ID,
			History:        turn.History,
			UseTools:       req.UseWebSearch,
			Release:        turn.Release,
			Save: func(ctx context.Context, answer *Answer) error {
				_, err := s.save(ctx, turn, answer, true)
				return err
			},
		}, nil
	})
}

func (s *chatService) save(ctx context.Context, turn *Turn, answer *Answer, streamed bool) (*model.Message, error) {
	msg, err := s.conversations.SaveTurn(ctx, turn, answer)
	if err != nil {
		return nil, err
	}
	if s.publisher == nil {
		return msg, nil
	}

	event := kafka.TurnEvent{
		ConversationID:       turn.Conversation.ID,
		MessageID:            msg.ID,
		Provider:             answer.Provider,
		Streamed:             streamed,
		ReferencedPainPoints: msg.ReferencedPainPoints,
		CompletedAt:          time.Now(),
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.publisher.PublishTurn(pubCtx, event); err != nil {
		log.Warnw("Failed to publish turn event", "conversationId", turn.Conversation.ID, "error", err)
	}
	log.Infow("Chat turn saved", "conversationId", turn.Conversation.ID, "provider", answer.Provider, "streamed", streamed)
	return msg, nil
}
