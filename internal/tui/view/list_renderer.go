package view

import (
	"strings"

	tuitree "github.com/glabrego/copilotlog/internal/tui/tree"
)

type ListRenderInput struct {
	Rows              []tuitree.Row
	Start             int
	End               int
	Cursor            int
	SectionCounts     map[string]int
	CollapsedSections map[string]bool

	RenderSectionLine func(label string, count int, collapsed, active bool) string
	RenderChatLine    func(chatIndex int, active bool) string
}

func RenderListBody(in ListRenderInput) string {
	if len(in.Rows) == 0 || in.Start >= in.End || in.Start < 0 {
		return ""
	}
	if in.End > len(in.Rows) {
		in.End = len(in.Rows)
	}
	var b strings.Builder
	for i := in.Start; i < in.End; i++ {
		row := in.Rows[i]
		switch row.Kind {
		case tuitree.RowSection:
			b.WriteString(in.RenderSectionLine(row.Label, in.SectionCounts[row.Section], in.CollapsedSections[row.Section], i == in.Cursor))
			b.WriteString("\n")
		case tuitree.RowChat:
			b.WriteString(in.RenderChatLine(row.ChatIndex, i == in.Cursor))
			b.WriteString("\n")
		}
	}
	return b.String()
}
