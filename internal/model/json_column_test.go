package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntListColumn(t *testing.T) {
	v, err := IntList{1, 4}.Value()
	require.NoError(t, err)
	assert.Equal(t, "[1,4]", v)

	v, err = IntList(nil).Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	var l IntList
	require.NoError(t, l.Scan([]byte("[7,9]")))
	assert.Equal(t, IntList{7, 9}, l)

	var empty IntList
	require.NoError(t, empty.Scan(nil))
	assert.Nil(t, empty)

	assert.Error(t, l.Scan(42))
}

func TestToolCallListColumn(t *testing.T) {
	calls := ToolCallList{{ID: "call_1", Name: "web_search", Arguments: `{"query":"roofing"}`}}
	v, err := calls.Value()
	require.NoError(t, err)

	var decoded ToolCallList
	require.NoError(t, decoded.Scan(v))
	assert.Equal(t, calls, decoded)
}

func TestIsToolExchange(t *testing.T) {
	assert.True(t, Message{Role: RoleTool}.IsToolExchange())
	assert.True(t, Message{Role: RoleAssistant, ToolCalls: ToolCallList{{ID: "c"}}}.IsToolExchange())
	assert.False(t, Message{Role: RoleAssistant}.IsToolExchange())
	assert.False(t, Message{Role: RoleUser}.IsToolExchange())
}
