package view

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/glabrego/copilotlog/internal/chat"
	tuitheme "github.com/glabrego/copilotlog/internal/tui/theme"
)

var reANSICodes = regexp.MustCompile(`\x1b\[[0-9;]*m`)

type ChatLineParams struct {
	Chat     chat.Chat
	Now      time.Time
	Compact  bool
	Active   bool
	Selected bool
	Width    int
}

func RenderChatLine(p ChatLineParams, th tuitheme.Theme) string {
	cursorMarker := " "
	if p.Active {
		cursorMarker = ">"
	}
	selectedMarker := " "
	if p.Selected {
		selectedMarker = "*"
	}
	prefix := fmt.Sprintf("  %s%s", cursorMarker, selectedMarker)
	if p.Compact {
		prefix = fmt.Sprintf("%s%s", cursorMarker, selectedMarker)
	}

	dateLabel := "[" + TimeLabel(p.Now, p.Chat.Created()) + "]"
	// StyleChatTitle adds a two-cell shared badge or pad.
	available := p.Width - visibleLen(prefix) - 2 - 1 - visibleLen(dateLabel)
	if available < 1 {
		available = 1
	}
	label := truncateWidth(ChatLabel(p.Chat), available)
	styledTitle := th.StyleChatTitle(p.Chat, label)
	gap := p.Width - visibleLen(prefix) - visibleLen(styledTitle) - visibleLen(dateLabel)
	if gap < 1 {
		gap = 1
	}
	return th.RenderActiveLine(p.Active, prefix+styledTitle+strings.Repeat(" ", gap)+dateLabel)
}

func RenderSectionLine(label string, count, width int, collapsed, active bool, th tuitheme.Theme) string {
	icon := "▾"
	if collapsed {
		icon = "▸"
	}
	left := th.Section.Render(icon + " " + label)
	right := th.MetaLabel.Render(fmt.Sprintf("%d", count))
	gap := width - visibleLen(left) - visibleLen(right)
	if gap < 1 {
		gap = 1
	}
	return th.RenderActiveLine(active, left+strings.Repeat(" ", gap)+right)
}

func ChatLabel(c chat.Chat) string {
	title := strings.TrimSpace(c.Title)
	if title == "" {
		return "(untitled)"
	}
	return title
}

// TimeLabel renders then relative to now, e.g. "3 hours ago".
func TimeLabel(now, then time.Time) string {
	if then.IsZero() {
		return "unknown"
	}
	if now.IsZero() {
		now = time.Now()
	}
	if then.After(now) {
		return "now"
	}
	return humanize.RelTime(then, now, "ago", "from now")
}

func truncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return strings.Repeat(".", maxWidth)
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

func visibleLen(s string) int {
	return runewidth.StringWidth(stripANSIText(s))
}

func stripANSIText(s string) string {
	return reANSICodes.ReplaceAllString(s, "")
}
