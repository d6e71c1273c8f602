package knowledge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(points []PainPoint) []int {
	out := make([]int, len(points))
	for i, p := range points {
		out[i] = p.ID
	}
	return out
}

func TestQuickWins(t *testing.T) {
	assert.Equal(t, []int{1, 4, 7}, ids(QuickWins()))
}

func TestCritical(t *testing.T) {
	assert.Equal(t, []int{1, 5, 8, 9}, ids(Critical()))
}

func TestCategories(t *testing.T) {
	assert.Equal(t, []string{"Sales", "Claims", "Operations", "Customer Experience", "Technology", "Leadership"}, Categories())
	assert.Len(t, ByCategory("Operations"), 4)
}

func TestByID(t *testing.T) {
	p, ok := ByID(9)
	require.True(t, ok)
	assert.Equal(t, "Leadership Bottleneck", p.Name)

	_, ok = ByID(11)
	assert.False(t, ok)
}

func TestAllReturnsCopy(t *testing.T) {
	all := All()
	require.Len(t, all, 10)
	all[0].Name = "changed"
	p, _ := ByID(1)
	assert.NotEqual(t, "changed", p.Name)
}

func TestReferencedIDs(t *testing.T) {
	text := "Start with Pain Point #4 and then tackle Leadership Bottleneck. See #10 later."
	assert.Equal(t, []int{4, 9, 10}, ReferencedIDs(text))
	assert.Empty(t, ReferencedIDs("nothing relevant"))
}

func TestPromptContext(t *testing.T) {
	ctx := PromptContext()
	assert.Equal(t, 9, strings.Count(ctx, "\n---\n"))
	assert.Contains(t, ctx, "## Pain Point #1: Lead Intake → Inspection → Sale Handoffs")
	assert.Contains(t, ctx, "- **Impact:** 10/10 | **Effort:** 7/10")
	assert.Contains(t, ctx, "- Process Adherence: 50% → 85%")
}

func TestMentionsNumber(t *testing.T) {
	assert.True(t, MentionsNumber("see #1.", "#", 1))
	assert.False(t, MentionsNumber("see #10", "#", 1))
	assert.True(t, MentionsNumber("#10 and #1", "#", 1))
	assert.True(t, MentionsNumber("pain point 3", "pain point ", 3))
}
