package preview

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// Wrap word-wraps plain text to width display cells.
func Wrap(text string, width int) []string {
	return wrapText(text, width)
}

// wrapText word-wraps text to width display cells. Words longer than width
// are split.
func wrapText(text string, width int) []string {
	if width < 1 {
		return []string{text}
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	out := make([]string, 0, 4)
	line := ""
	for _, word := range words {
		for runewidth.StringWidth(word) > width {
			if line != "" {
				out = append(out, line)
				line = ""
			}
			head, rest := splitWidth(word, width)
			out = append(out, head)
			word = rest
		}
		switch {
		case line == "":
			line = word
		case runewidth.StringWidth(line)+1+runewidth.StringWidth(word) <= width:
			line += " " + word
		default:
			out = append(out, line)
			line = word
		}
	}
	if line != "" {
		out = append(out, line)
	}
	return out
}

// hardWrap splits a preformatted line at width cells without touching spaces.
func hardWrap(line string, width int) []string {
	if width < 1 || runewidth.StringWidth(line) <= width {
		return []string{line}
	}
	out := make([]string, 0, 2)
	for runewidth.StringWidth(line) > width {
		var head string
		head, line = splitWidth(line, width)
		out = append(out, head)
	}
	if line != "" {
		out = append(out, line)
	}
	return out
}

func trimBlankLines(lines []string) []string {
	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	end := len(lines) - 1
	for end >= start && strings.TrimSpace(lines[end]) == "" {
		end--
	}
	if end < start {
		return nil
	}
	return lines[start : end+1]
}

// splitWidth cuts s after at most width cells, always consuming at least
// one rune.
func splitWidth(s string, width int) (string, string) {
	head := runewidth.Truncate(s, width, "")
	if head == "" {
		_, size := utf8.DecodeRuneInString(s)
		head = s[:size]
	}
	return head, s[len(head):]
}
