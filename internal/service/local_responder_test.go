package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocalResponderQuickWins(t *testing.T) {
	reply := NewLocalResponder().Respond("What are the quick wins?")

	assert.True(t, strings.HasPrefix(reply, "## 🎯 Quick Wins for Guardian Roofing"))
	i1 := strings.Index(reply, "### Pain Point #1: Lead Intake")
	i4 := strings.Index(reply, "### Pain Point #4: Production Handoffs")
	i7 := strings.Index(reply, "### Pain Point #7: Homeowner Communication")
	assert.True(t, i1 > 0 && i1 < i4 && i4 < i7, "quick wins are listed in id order")
	assert.Equal(t, 3, strings.Count(reply, "### Pain Point #"))
	assert.NotContains(t, reply, "Leadership Bottleneck", "effort 7 is not a quick win")
	assert.Contains(t, reply, "- **First Action:** Create mandatory handoff checklist")
}

func TestLocalResponderRouting(t *testing.T) {
	r := NewLocalResponder()
	tests := []struct {
		message string
		prefix  string
	}{
		{"Which items are critical?", "## 🚨 Critical Priority Items (P0)"},
		{"What's the ROI here?", "## 💰 ROI Analysis Summary"},
		{"Give me a 90 day roadmap", "## 📅 Recommended 90-Day Roadmap"},
		{"Tell me about #10", "## Pain Point #10: Training & SOPs"},
		{"tell me about pain point 3", "## Pain Point #3: Insurance Claim Process"},
		{"anything on leadership bottleneck?", "## Pain Point #9: Leadership Bottleneck"},
		{"what about sales", "## Pain Point #1: Lead Intake"},
		{"give me an overview", "## 📊 Guardian Roofing 2026 Pain Points Overview"},
		{"hello", "## 🤖 How Can I Help?"},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.True(t, strings.HasPrefix(r.Respond(tt.message), tt.prefix))
		})
	}
}

func TestLocalResponderCriticalListsP0(t *testing.T) {
	reply := NewLocalResponder().Respond("urgent")
	for _, name := range []string{"#1: Lead Intake", "#5: Scheduling", "#8: Data Fragmentation", "#9: Leadership Bottleneck"} {
		assert.Contains(t, reply, name)
	}
	assert.Equal(t, 4, strings.Count(reply, "### Pain Point #"))
}
