package view

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/glabrego/copilotlog/internal/chat"
	"github.com/glabrego/copilotlog/internal/render/preview"
)

type WrapFunc func(string, int) []string

func DetailMetaLines(c chat.Chat, width int, wrap WrapFunc) []string {
	title := ChatLabel(c)
	lines := make([]string, 0, 8)
	lines = append(lines, wrap(title, width)...)
	lines = append(lines, strings.Repeat("=", max(1, min(width, runewidth.StringWidth(title)))))
	lines = append(lines, "")

	created := c.Created()
	if created.IsZero() {
		lines = append(lines, "Created: unknown")
	} else {
		lines = append(lines, "Created: "+c.CreatedAt+" ("+humanize.Time(created)+")")
	}
	if c.Shared {
		lines = append(lines, "Shared: yes")
	} else {
		lines = append(lines, "Shared: no")
	}
	lines = append(lines, "Size: "+humanize.Bytes(uint64(len(c.HTML))))
	lines = append(lines, wrap("ID: "+c.ID, width)...)
	return lines
}

// DetailLines renders the metadata header followed by the chat body.
func DetailLines(c chat.Chat, contentWidth, horizontalMargin int, styles preview.Styles) []string {
	lines := DetailMetaLines(c, contentWidth, preview.Wrap)
	body := preview.LinesWithStyles(c.HTML, contentWidth, styles)
	if len(body) > 0 {
		lines = append(lines, "")
		lines = append(lines, body...)
	}
	return leftPadLines(lines, horizontalMargin)
}

func DetailMaxTop(linesLen, bodyHeight int) int {
	maxTop := linesLen - bodyHeight
	if maxTop < 0 {
		return 0
	}
	return maxTop
}

func RenderDetailLines(lines []string, top, maxLines int) string {
	if len(lines) == 0 {
		return ""
	}
	if top < 0 {
		top = 0
	}
	if top > len(lines)-1 {
		top = len(lines) - 1
	}
	end := len(lines)
	if maxLines > 0 && top+maxLines < end {
		end = top + maxLines
	}
	return strings.Join(lines[top:end], "\n") + "\n"
}

func leftPadLines(lines []string, padding int) []string {
	if padding <= 0 || len(lines) == 0 {
		return lines
	}
	prefix := strings.Repeat(" ", padding)
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = prefix + line
	}
	return out
}
