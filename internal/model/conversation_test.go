package model

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestMessageSeqUniquePerConversation(t *testing.T) {
	s, err := schema.Parse(&Message{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	idx := s.LookIndex("idx_conv_seq")
	require.NotNil(t, idx)
	assert.Equal(t, "UNIQUE", idx.Class)

	var columns []string
	for _, opt := range idx.Fields {
		columns = append(columns, opt.DBName)
	}
	assert.Equal(t, []string{"conversation_id", "seq"}, columns)
}

func TestMessageIsToolExchange(t *testing.T) {
	assert.True(t, Message{Role: RoleTool}.IsToolExchange())
	assert.True(t, Message{Role: RoleAssistant, ToolCalls: ToolCallList{{ID: "call_1", Name: "web_search"}}}.IsToolExchange())
	assert.False(t, Message{Role: RoleAssistant, Content: "hi"}.IsToolExchange())
	assert.False(t, Message{Role: RoleUser, Content: "hi"}.IsToolExchange())
}
