package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"painpoint-advisor/internal/knowledge"
	"painpoint-advisor/internal/model"
	"painpoint-advisor/internal/repository"
	"painpoint-advisor/pkg/llm"
)

// Turn 是一轮进行中的对话。在 Release 之前持有该对话的锁。
type Turn struct {
	Conversation *model.Conversation
	UserMessage  string
	// History 是回放给模型的历史（不含系统提示词），最后一条是本轮用户消息。
	History []llm.Message
	isNew   bool
	release func()
}

// Release 释放对话锁，可以多次调用。
func (t *Turn) Release() {
	if t.release != nil {
		t.release()
	}
}

// ConversationService 定义了对话业务逻辑的接口。
type ConversationService interface {
	// BeginTurn 加载或准备对话并锁定它。conversationID 为空或不存在时会准备一个新对话，
	// 新对话在 SaveTurn 时才写入数据库。
	BeginTurn(ctx context.Context, conversationID, message string) (*Turn, error)
	// SaveTurn 一次性追加用户消息、工具往返与最终回复，返回最终的助手消息。
	SaveTurn(ctx context.Context, turn *Turn, answer *Answer) (*model.Message, error)
	Get(ctx context.Context, id string) (*model.Conversation, error)
	ListRecent(ctx context.Context) ([]model.Conversation, error)
}

type conversationService struct {
	repo        repository.ConversationRepository
	locker      repository.ConversationLocker
	titleMaxLen int
	listLimit   int
}

// NewConversationService 创建一个新的 ConversationService。
func NewConversationService(repo repository.ConversationRepository, locker repository.ConversationLocker, titleMaxLen, listLimit int) ConversationService {
	return &conversationService{
		repo:        repo,
		locker:      locker,
		titleMaxLen: titleMaxLen,
		listLimit:   listLimit,
	}
}

func (s *conversationService) BeginTurn(ctx context.Context, conversationID, message string) (*Turn, error) {
	var conv *model.Conversation
	if conversationID != "" {
		found, err := s.repo.FindByID(ctx, conversationID)
		switch {
		case err == nil:
			conv = found
		case !errors.Is(err, repository.ErrConversationNotFound):
			return nil, err
		}
	}
	isNew := conv == nil
	if isNew {
		conv = &model.Conversation{ID: uuid.NewString(), Title: truncateTitle(message, s.titleMaxLen)}
	}

	unlock, err := s.locker.Lock(ctx, conv.ID)
	if err != nil {
		return nil, fmt.Errorf("lock conversation %s: %w", conv.ID, err)
	}
	turn := &Turn{Conversation: conv, UserMessage: message, isNew: isNew, release: unlock}

	if !isNew {
		// 在持锁之后读取历史，保证看到前一轮已提交的消息
		stored, err := s.repo.ListMessages(ctx, conv.ID)
		if err != nil {
			turn.Release()
			return nil, err
		}
		turn.History = replayHistory(stored)
	}
	turn.History = append(turn.History, llm.Message{Role: string(model.RoleUser), Content: message})
	return turn, nil
}

func (s *conversationService) SaveTurn(ctx context.Context, turn *Turn, answer *Answer) (*model.Message, error) {
	// 内容已完整生成，保存不受请求取消的影响
	ctx = context.WithoutCancel(ctx)

	if turn.isNew {
		if err := s.repo.Create(ctx, turn.Conversation); err != nil {
			return nil, err
		}
		turn.isNew = false
	}

	msgs := make([]*model.Message, 0, len(answer.Exchange)+2)
	msgs = append(msgs, &model.Message{Role: model.RoleUser, Content: turn.UserMessage})
	for _, m := range answer.Exchange {
		msgs = append(msgs, toModelMessage(m))
	}
	final := &model.Message{
		Role:                 model.RoleAssistant,
		Content:              answer.Content,
		ReferencedPainPoints: knowledge.ReferencedIDs(answer.Content),
	}
	msgs = append(msgs, final)

	if err := s.repo.AppendMessages(ctx, turn.Conversation.ID, msgs); err != nil {
		return nil, err
	}
	return final, nil
}

func (s *conversationService) Get(ctx context.Context, id string) (*model.Conversation, error) {
	return s.repo.FindWithMessages(ctx, id)
}

func (s *conversationService) ListRecent(ctx context.Context) ([]model.Conversation, error) {
	return s.repo.ListRecent(ctx, s.listLimit)
}

// replayHistory 把持久化的消息转换为模型历史，跳过工具请求与工具结果。
func replayHistory(stored []model.Message) []llm.Message {
	history := make([]llm.Message, 0, len(stored)+1)
	for _, m := range stored {
		if m.IsToolExchange() {
			continue
		}
		history = append(history, llm.Message{Role: string(m.Role), Content: m.Content})
	}
	return history
}

func toModelMessage(m llm.Message) *model.Message {
	out := &model.Message{
		Role:       model.MessageRole(m.Role),
		Content:    m.Content,
		ToolCallID: m.ToolCallID,
		Name:       m.Name,
	}
	for _, c := range m.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, model.ToolCallDescriptor{
			ID:        c.ID,
			Name:      c.Function.Name,
			Arguments: c.Function.Arguments,
		})
	}
	return out
}

func truncateTitle(message string, limit int) string {
	runes := []rune(message)
	if limit > 0 && len(runes) > limit {
		return string(runes[:limit])
	}
	return message
}
