// Package repository 提供了数据访问层的实现。
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"painpoint-advisor/internal/model"
)

// ErrConversationNotFound 表示对话不存在。
var ErrConversationNotFound = errors.New("conversation not found")

// ConversationRepository 定义了对话与消息的持久化接口。
type ConversationRepository interface {
	Create(ctx context.Context, conv *model.Conversation) error
	// FindByID 只加载对话本身，不含消息。
	FindByID(ctx context.Context, id string) (*model.Conversation, error)
	// FindWithMessages 加载对话及其按 seq 排序的全部消息。
	FindWithMessages(ctx context.Context, id string) (*model.Conversation, error)
	ListRecent(ctx context.Context, limit int) ([]model.Conversation, error)
	ListMessages(ctx context.Context, conversationID string) ([]model.Message, error)
	// AppendMessages 在一个事务内按顺序追加消息并刷新对话的 updated_at。
	// 调用方需持有该对话的 ConversationLocker 锁。
	AppendMessages(ctx context.Context, conversationID string, msgs []*model.Message) error
}

type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository 创建一个新的 ConversationRepository 实例。
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) Create(ctx context.Context, conv *model.Conversation) error {
	if err := r.db.WithContext(ctx).Create(conv).Error; err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}
	return nil
}

func (r *conversationRepository) FindByID(ctx context.Context, id string) (*model.Conversation, error) {
	var conv model.Conversation
	if err := r.db.WithContext(ctx).First(&conv, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &conv, nil
}

func (r *conversationRepository) FindWithMessages(ctx context.Context, id string) (*model.Conversation, error) {
	var conv model.Conversation
	err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB { return db.Order("seq ASC") }).
		First(&conv, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &conv, nil
}

func (r *conversationRepository) ListRecent(ctx context.Context, limit int) ([]model.Conversation, error) {
	var convs []model.Conversation
	if err := r.db.WithContext(ctx).Order("updated_at DESC").Limit(limit).Find(&convs).Error; err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return convs, nil
}

func (r *conversationRepository) ListMessages(ctx context.Context, conversationID string) ([]model.Message, error) {
	var msgs []model.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("seq ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return msgs, nil
}

func (r *conversationRepository) AppendMessages(ctx context.Context, conversationID string, msgs []*model.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxSeq int
		err := tx.Model(&model.Message{}).
			Where("conversation_id = ?", conversationID).
			Select("COALESCE(MAX(seq), 0)").
			Scan(&maxSeq).Error
		if err != nil {
			return fmt.Errorf("failed to read message sequence: %w", err)
		}
		for i, m := range msgs {
			m.ConversationID = conversationID
			m.Seq = maxSeq + i + 1
		}
		if err := tx.Create(&msgs).Error; err != nil {
			return fmt.Errorf("failed to append messages: %w", err)
		}
		err = tx.Model(&model.Conversation{}).
			Where("id = ?", conversationID).
			UpdateColumn("updated_at", time.Now()).Error
		if err != nil {
			return fmt.Errorf("failed to touch conversation: %w", err)
		}
		return nil
	})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrConversationNotFound
	}
	return fmt.Errorf("failed to load conversation: %w", err)
}
