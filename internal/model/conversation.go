// Package model 包含了应用的数据模型定义。
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Conversation 是一次多轮对话，消息按 Seq 排序。
type Conversation struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
	Messages  []Message `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// BeforeCreate 为新对话生成 UUID。
func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// MessageRole 是消息的角色。
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleTool      MessageRole = "tool"
)

// Message 是对话中的一条消息。工具请求与工具结果也会持久化，
// 但在回放历史给模型时会被过滤掉。
type Message struct {
	ID                   string       `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ConversationID       string       `gorm:"type:varchar(36);uniqueIndex:idx_conv_seq,priority:1;not null" json:"conversationId"`
	Seq                  int          `gorm:"uniqueIndex:idx_conv_seq,priority:2;not null" json:"seq"`
	Role                 MessageRole  `gorm:"type:varchar(16);not null" json:"role"`
	Content              string       `gorm:"type:text;not null" json:"content"`
	ToolCalls            ToolCallList `gorm:"type:text" json:"toolCalls,omitempty"`
	ToolCallID           string       `gorm:"type:varchar(64)" json:"toolCallId,omitempty"`
	Name                 string       `gorm:"type:varchar(64)" json:"name,omitempty"`
	ReferencedPainPoints IntList      `gorm:"type:text" json:"referencedPainPoints,omitempty"`
	CreatedAt            time.Time    `gorm:"autoCreateTime" json:"createdAt"`
}

func (Message) TableName() string {
	return "messages"
}

// BeforeCreate 为新消息生成 UUID。
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// IsToolExchange 判断消息是否属于工具调用往返（工具请求或工具结果）。
func (m Message) IsToolExchange() bool {
	return m.Role == RoleTool || (m.Role == RoleAssistant && len(m.ToolCalls) > 0)
}
