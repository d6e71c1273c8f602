package service

import (
	"fmt"
	"strings"

	"painpoint-advisor/internal/knowledge"
)

// LocalResponder 在没有任何大模型可用时，按关键字匹配知识库生成模板回复。
// 它不访问网络，也不会失败。
type LocalResponder struct{}

// NewLocalResponder 创建本地模板应答器。
func NewLocalResponder() *LocalResponder {
	return &LocalResponder{}
}

// Respond 按固定优先级匹配：快速见效 → 关键优先级 → ROI → 90 天计划 → 具体痛点 → 总览 → 帮助菜单。
func (r *LocalResponder) Respond(message string) string {
	lower := strings.ToLower(message)

	switch {
	case containsAny(lower, "quick win", "easy win", "low hanging"):
		return quickWinsReply()
	case containsAny(lower, "priority", "critical", "p0", "urgent"):
		return criticalReply()
	case containsAny(lower, "roi", "return", "value", "cost"):
		return roiReply
	case containsAny(lower, "90", "plan", "roadmap", "timeline"):
		return roadmapReply
	}
	if p, ok := mentionedPainPoint(lower); ok {
		return painPointReply(p)
	}
	if containsAny(lower, "overview", "summary", "all", "list") {
		return overviewReply
	}
	return helpReply
}

func containsAny(s string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// mentionedPainPoint 返回按名称、"#编号"、"pain point 编号" 或分类命中的第一个痛点。
func mentionedPainPoint(lower string) (knowledge.PainPoint, bool) {
	for _, p := range knowledge.All() {
		if strings.Contains(lower, strings.ToLower(p.Name)) ||
			knowledge.MentionsNumber(lower, "#", p.ID) ||
			knowledge.MentionsNumber(lower, "pain point ", p.ID) ||
			strings.Contains(lower, strings.ToLower(p.Category)) {
			return p, true
		}
	}
	return knowledge.PainPoint{}, false
}

func quickWinsReply() string {
	var items []string
	for _, p := range knowledge.QuickWins() {
		items = append(items, fmt.Sprintf("### Pain Point #%d: %s\n- **Impact:** %d/10 | **Effort:** %d/10\n- **Owner:** %s\n- **Solution:** %s\n- **First Action:** %s",
			p.ID, p.Name, p.Impact, p.Effort, p.Owner, p.Solution, p.ActionItems[0]))
	}
	return "## 🎯 Quick Wins for Guardian Roofing\n\n" +
		"Based on high ROI potential and lower implementation effort, here are your best quick wins:\n\n" +
		strings.Join(items, "\n\n") +
		"\n\n**Recommendation:** Start with Pain Point #4 (Production Handoffs) - it has the highest impact-to-effort ratio and can show results within 30 days."
}

func criticalReply() string {
	var items []string
	for _, p := range knowledge.Critical() {
		items = append(items, fmt.Sprintf("### Pain Point #%d: %s\n- **Impact:** %d/10\n- **Business Cost:** %s\n- **Owner:** %s\n- **Solution:** %s",
			p.ID, p.Name, p.Impact, p.WhyCostly, p.Owner, p.Solution))
	}
	return "## 🚨 Critical Priority Items (P0)\n\n" +
		"These require immediate attention due to their high business impact:\n\n" +
		strings.Join(items, "\n\n") +
		"\n\n**Strategic Note:** While all P0 items are critical, Pain Point #9 (Leadership Bottleneck) is a force multiplier - solving it accelerates progress on all other initiatives."
}

func painPointReply(p knowledge.PainPoint) string {
	metrics := make([]string, len(p.Metrics))
	for i, m := range p.Metrics {
		metrics[i] = fmt.Sprintf("- **%s:** %s → %s", m.Label, m.Current, m.Target)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Pain Point #%d: %s\n\n", p.ID, p.Name)
	b.WriteString("### Overview\n")
	fmt.Fprintf(&b, "- **Priority:** %s | **Category:** %s\n", p.Priority, p.Category)
	fmt.Fprintf(&b, "- **Impact:** %d/10 | **Effort:** %d/10\n", p.Impact, p.Effort)
	fmt.Fprintf(&b, "- **Owner:** %s\n", p.Owner)
	fmt.Fprintf(&b, "- **Quick Win Potential:** %s\n\n", p.QuickWin)
	fmt.Fprintf(&b, "### The Problem\n%s\n\n", p.Pain)
	fmt.Fprintf(&b, "### Business Impact\n%s\n\n", p.WhyCostly)
	fmt.Fprintf(&b, "### Recommended Solution\n%s\n\n", p.Solution)
	fmt.Fprintf(&b, "### Action Items\n%s\n\n", knowledge.NumberedActions(p))
	fmt.Fprintf(&b, "### Success Metrics\n%s\n\n", strings.Join(metrics, "\n"))
	b.WriteString("Would you like me to create a detailed implementation plan or identify dependencies with other pain points?")
	return b.String()
}

const roiReply = `## 💰 ROI Analysis Summary

### Highest Revenue Impact
1. **#1 Lead Intake** - Direct revenue recovery through faster lead response
2. **#2 Sales Rep Performance** - Revenue multiplier through rep enablement
3. **#9 Leadership Bottleneck** - Strategic capacity unlock

### Highest Cost Reduction
1. **#4 Production Handoffs** - 25% rework reduction potential
2. **#5 Scheduling & Capacity** - 20% margin improvement through utilization
3. **#6 Vendor Quality** - Callback cost elimination

### Fastest Payback (< 90 days)
1. **#7 Homeowner Communication** - Immediate staff time savings
2. **#4 Production Handoffs** - Quick checklist implementation
3. **#1 Lead Intake** - Lead routing automation

Would you like me to create a detailed ROI projection for any specific pain point?`

const roadmapReply = `## 📅 Recommended 90-Day Roadmap

### Month 1: Foundation (Days 1-30)
- **Week 1-2:** Launch Pain Point #4 (Production Handoffs)
  - Create mandatory handoff checklist
  - Implement digital handoff form
- **Week 3-4:** Begin Pain Point #7 (Homeowner Communication)
  - Build automated status notifications
  - Set up FAQ automation

### Month 2: Acceleration (Days 31-60)
- **Week 5-6:** Launch Pain Point #1 (Lead Intake)
  - Implement unified lead capture
  - Set up automated qualification scoring
- **Week 7-8:** Begin Pain Point #9 (Leadership Bottleneck)
  - Document decision authority matrix
  - Create functional ownership chart

### Month 3: Scale (Days 61-90)
- **Week 9-10:** Expand automation coverage
  - AI-assisted lead scoring
  - Customer portal launch
- **Week 11-12:** Measure and optimize
  - Review metrics against targets
  - Plan Phase 2 initiatives

**Success Metrics to Track:**
- Lead response time: >24h → <15min
- Rework rate: 25% → <10%
- Customer satisfaction: 3.8 → 4.2

Would you like me to detail the action items for any specific phase?`

const overviewReply = `## 📊 Guardian Roofing 2026 Pain Points Overview

### By Priority
**P0 - Critical (4 items):** #1 Lead Intake, #5 Scheduling, #8 Data Fragmentation, #9 Leadership
**P1 - High (4 items):** #2 Sales Performance, #4 Handoffs, #6 Crew Quality, #10 Training
**P2 - Medium (2 items):** #3 Insurance Claims, #7 Homeowner Communication

### By Category
- **Sales (2):** Lead Intake, Sales Performance
- **Operations (4):** Handoffs, Scheduling, Crew Quality, Training
- **Claims (1):** Insurance Process
- **Customer Experience (1):** Homeowner Communication
- **Technology (1):** Data Fragmentation
- **Leadership (1):** Leadership Bottleneck

### Quick Stats
- 🎯 Quick Wins: 4 items with High ROI potential
- ⚡ Average Impact: 7.9/10
- 📊 Solution Types: Automation (40%), Standardization (35%), Centralization (25%)

What would you like to explore? I can help with:
- Detailed analysis of any pain point
- Quick wins and prioritization
- 90-day implementation roadmaps
- ROI projections
- Dependency mapping`

const helpReply = `## 🤖 How Can I Help?

I'm GuardianAI, your strategic advisor for the 2026 Pain Points initiative. I can help you with:

### Quick Actions
- **"Show me quick wins"** - Low-effort, high-impact opportunities
- **"What's critical?"** - P0 priority items needing immediate attention
- **"Create a 90-day plan"** - Phased implementation roadmap

### Deep Dives
- **"Tell me about [pain point name]"** - Detailed analysis
- **"What's the ROI?"** - Cost/benefit analysis
- **"Show dependencies"** - How pain points connect

### Specific Questions
- Ask about any of the 10 pain points by name or number
- Ask about categories (Sales, Operations, etc.)
- Ask about owners or solution types

What would you like to explore?`
