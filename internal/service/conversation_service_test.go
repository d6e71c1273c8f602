package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"painpoint-advisor/internal/model"
	"painpoint-advisor/internal/repository"
	"painpoint-advisor/pkg/llm"
)

func TestBeginTurnTitleTruncation(t *testing.T) {
	repo := newMemRepository()
	svc := NewConversationService(repo, repository.NewLocalLocker(), 50, 20)

	msg := strings.Repeat("é", 60)
	turn, err := svc.BeginTurn(context.Background(), "", msg)
	require.NoError(t, err)
	defer turn.Release()

	assert.Equal(t, strings.Repeat("é", 50), turn.Conversation.Title)
	assert.Equal(t, []llm.Message{{Role: "user", Content: msg}}, turn.History)
	convs, _ := repo.counts()
	assert.Zero(t, convs, "new conversations are written when the turn is saved")
}

func TestSaveTurnPersistsExchange(t *testing.T) {
	repo := newMemRepository()
	svc := NewConversationService(repo, repository.NewLocalLocker(), 50, 20)
	ctx := context.Background()

	turn, err := svc.BeginTurn(ctx, "", "search please")
	require.NoError(t, err)
	answer := &Answer{
		Content:  "See Production Handoffs.",
		Provider: "deepseek",
		Exchange: []llm.Message{
			{Role: "assistant", ToolCalls: []llm.ToolCall{toolCall("c1", "web_search", `{"query":"q"}`)}},
			{Role: "tool", Content: "results", ToolCallID: "c1", Name: "web_search"},
		},
	}
	final, err := svc.SaveTurn(ctx, turn, answer)
	require.NoError(t, err)
	turn.Release()
	assert.Equal(t, model.IntList{4}, final.ReferencedPainPoints)

	conv, err := svc.Get(ctx, turn.Conversation.ID)
	require.NoError(t, err)
	require.Len(t, conv.Messages, 4)
	assert.Equal(t, model.ToolCallList{{ID: "c1", Name: "web_search", Arguments: `{"query":"q"}`}}, conv.Messages[1].ToolCalls)

	// 下一轮只回放可见消息
	next, err := svc.BeginTurn(ctx, conv.ID, "and then?")
	require.NoError(t, err)
	defer next.Release()
	assert.Equal(t, []llm.Message{
		{Role: "user", Content: "search please"},
		{Role: "assistant", Content: "See Production Handoffs."},
		{Role: "user", Content: "and then?"},
	}, next.History)
}

func TestBeginTurnSerializesSameConversation(t *testing.T) {
	repo := newMemRepository()
	svc := NewConversationService(repo, repository.NewLocalLocker(), 50, 20)
	ctx := context.Background()

	first, err := svc.BeginTurn(ctx, "", "hi")
	require.NoError(t, err)
	_, err = svc.SaveTurn(ctx, first, &Answer{Content: "hello"})
	require.NoError(t, err)

	// 第一轮仍持有锁时，第二轮在上下文超时前无法开始
	short, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = svc.BeginTurn(short, first.Conversation.ID, "again")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	first.Release()
	second, err := svc.BeginTurn(ctx, first.Conversation.ID, "again")
	require.NoError(t, err)
	second.Release()
}

func TestListRecent(t *testing.T) {
	repo := newMemRepository()
	svc := NewConversationService(repo, repository.NewLocalLocker(), 50, 1)
	ctx := context.Background()

	for _, m := range []string{"a", "b"} {
		turn, err := svc.BeginTurn(ctx, "", m)
		require.NoError(t, err)
		_, err = svc.SaveTurn(ctx, turn, &Answer{Content: "ok"})
		require.NoError(t, err)
		turn.Release()
	}
	convs, err := svc.ListRecent(ctx)
	require.NoError(t, err)
	assert.Len(t, convs, 1)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrConversationNotFound)
}
