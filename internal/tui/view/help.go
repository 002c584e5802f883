package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"

	"github.com/glabrego/copilotlog/internal/chat"
)

type helpKey struct {
	keys, action string
}

var helpKeys = []helpKey{
	{"j/k, up/down", "move through chats"},
	{"g/G", "first / last chat"},
	{"enter", "open the chat under the cursor"},
	{"space", "collapse or expand a day section"},
	{"i", "import a JSON file (type or drop a path)"},
	{"p", "paste a chat from the clipboard"},
	{"d", "delete the selected chat (confirm with y)"},
	{"s", "toggle shared"},
	{"e", "export the selected chat as HTML"},
	{"f", "cycle filter: all, shared, unshared"},
	{"t", "toggle light/dark theme"},
	{"b", "toggle the sidebar"},
	{"c", "compact list"},
	{"?", "toggle this help"},
	{"q, ctrl+c", "quit"},
}

// HelpLines is the plain key reference.
func HelpLines() []string {
	out := make([]string, 0, len(helpKeys))
	for _, k := range helpKeys {
		out = append(out, fmt.Sprintf("%-14s %s", k.keys, k.action))
	}
	return out
}

func HelpMarkdown() string {
	var b strings.Builder
	b.WriteString("# Keys\n\n")
	b.WriteString("| Key | Action |\n|---|---|\n")
	for _, k := range helpKeys {
		fmt.Fprintf(&b, "| `%s` | %s |\n", k.keys, k.action)
	}
	b.WriteString("\nDrop `.json` files into the watched folder to import them without the prompt.\n")
	return b.String()
}

// RenderHelp renders the key reference as markdown for the given theme,
// falling back to HelpLines when glamour cannot render.
func RenderHelp(theme chat.Theme, width int) string {
	style := styles.LightStyle
	if theme == chat.ThemeDark {
		style = styles.DarkStyle
	}
	if width <= 0 {
		width = defaultHelpWidth
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return strings.Join(HelpLines(), "\n")
	}
	out, err := r.Render(HelpMarkdown())
	if err != nil {
		return strings.Join(HelpLines(), "\n")
	}
	return strings.Trim(out, "\n")
}

const defaultHelpWidth = 80
