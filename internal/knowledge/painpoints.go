// Package knowledge 提供只读的痛点知识库，作为系统提示词与本地应答器的数据来源。
package knowledge

import (
	"fmt"
	"strings"
)

// Metric 描述一个痛点的成功指标（现状 → 目标）。
type Metric struct {
	Label   string `json:"label"`
	Current string `json:"current"`
	Target  string `json:"target"`
}

// PainPoint 是一条战略痛点记录。
type PainPoint struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	Impact       int      `json:"impact"`
	Effort       int      `json:"effort"`
	CostType     string   `json:"costType"`
	PrimaryCost  string   `json:"primaryCost"`
	SolutionType string   `json:"solutionType"`
	Owner        string   `json:"owner"`
	QuickWin     string   `json:"quickWin"` // High | Medium | Low
	Priority     string   `json:"priority"` // P0 | P1 | P2
	Category     string   `json:"category"`
	Pain         string   `json:"pain"`
	WhyCostly    string   `json:"whyCostly"`
	Solution     string   `json:"solution"`
	ActionItems  []string `json:"actionItems"`
	Metrics      []Metric `json:"metrics"`
}

// All 返回全部痛点的副本，按编号升序。
func All() []PainPoint {
	out := make([]PainPoint, len(painPoints))
	copy(out, painPoints)
	return out
}

// ByID 按编号查找痛点。
func ByID(id int) (PainPoint, bool) {
	for _, p := range painPoints {
		if p.ID == id {
			return p, true
		}
	}
	return PainPoint{}, false
}

// Categories 返回去重后的分类，保持首次出现的顺序。
func Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range painPoints {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out
}

// ByCategory 返回某一分类下的痛点。
func ByCategory(category string) []PainPoint {
	return filter(func(p PainPoint) bool { return p.Category == category })
}

// QuickWins 返回 QuickWin 为 High 且 Effort <= 6 的痛点。
func QuickWins() []PainPoint {
	return filter(func(p PainPoint) bool { return p.QuickWin == "High" && p.Effort <= 6 })
}

// Critical 返回 P0 优先级的痛点。
func Critical() []PainPoint {
	return filter(func(p PainPoint) bool { return p.Priority == "P0" })
}

// ReferencedIDs 返回在文本中以 "#编号" 或名称出现的痛点编号。
func ReferencedIDs(text string) []int {
	var ids []int
	for _, p := range painPoints {
		if MentionsNumber(text, "#", p.ID) || strings.Contains(text, p.Name) {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// MentionsNumber 判断 text 是否包含 prefix 紧跟 id，且其后不是数字（"#1" 不匹配 "#10"）。
func MentionsNumber(text, prefix string, id int) bool {
	token := fmt.Sprintf("%s%d", prefix, id)
	for i := 0; ; {
		j := strings.Index(text[i:], token)
		if j < 0 {
			return false
		}
		end := i + j + len(token)
		if end >= len(text) || text[end] < '0' || text[end] > '9' {
			return true
		}
		i = end
	}
}

// PromptContext 将知识库格式化为系统提示词中使用的 Markdown。
func PromptContext() string {
	blocks := make([]string, 0, len(painPoints))
	for _, p := range painPoints {
		var b strings.Builder
		fmt.Fprintf(&b, "\n## Pain Point #%d: %s\n", p.ID, p.Name)
		fmt.Fprintf(&b, "- **Category:** %s\n", p.Category)
		fmt.Fprintf(&b, "- **Priority:** %s\n", p.Priority)
		fmt.Fprintf(&b, "- **Impact:** %d/10 | **Effort:** %d/10\n", p.Impact, p.Effort)
		fmt.Fprintf(&b, "- **Owner:** %s\n", p.Owner)
		fmt.Fprintf(&b, "- **Quick Win Potential:** %s\n", p.QuickWin)
		fmt.Fprintf(&b, "\n### Problem\n%s\n", p.Pain)
		fmt.Fprintf(&b, "\n### Business Impact\n%s\n", p.WhyCostly)
		fmt.Fprintf(&b, "\n### Recommended Solution\n%s\n", p.Solution)
		fmt.Fprintf(&b, "\n### Action Items\n%s\n", NumberedActions(p))
		b.WriteString("\n### Success Metrics\n")
		for i, m := range p.Metrics {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "- %s: %s → %s", m.Label, m.Current, m.Target)
		}
		b.WriteString("\n")
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n---\n")
}

// NumberedActions 将行动项格式化为编号列表。
func NumberedActions(p PainPoint) string {
	lines := make([]string, len(p.ActionItems))
	for i, item := range p.ActionItems {
		lines[i] = fmt.Sprintf("%d. %s", i+1, item)
	}
	return strings.Join(lines, "\n")
}

func filter(keep func(PainPoint) bool) []PainPoint {
	var out []PainPoint
	for _, p := range painPoints {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
