package theme

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/glabrego/copilotlog/internal/chat"
	"github.com/glabrego/copilotlog/internal/render/highlight"
	"github.com/glabrego/copilotlog/internal/render/preview"
)

type Theme struct {
	Name        chat.Theme
	Title       lipgloss.Style
	ModePill    lipgloss.Style
	Section     lipgloss.Style
	ActiveLine  lipgloss.Style
	MetaLabel   lipgloss.Style
	MetaValue   lipgloss.Style
	StateIdle   lipgloss.Style
	StateWarn   lipgloss.Style
	StateLoad   lipgloss.Style
	SharedBadge lipgloss.Style
	ChatTitle   lipgloss.Style
	Border      lipgloss.Style
	Preview     preview.Styles
}

type palette struct {
	rosewater, mauve, red, peach, yellow, green, teal, lavender lipgloss.Color
	text, subtext0, subtext1, overlay1, surface0                lipgloss.Color
}

// Catppuccin Mocha.
var dark = palette{
	rosewater: "#f5e0dc", mauve: "#cba6f7", red: "#f38ba8", peach: "#fab387",
	yellow: "#f9e2af", green: "#a6e3a1", teal: "#94e2d5", lavender: "#b4befe",
	text: "#cdd6f4", subtext0: "#a6adc8", subtext1: "#bac2de", overlay1: "#7f849c", surface0: "#313244",
}

// Catppuccin Latte.
var light = palette{
	rosewater: "#dc8a78", mauve: "#8839ef", red: "#d20f39", peach: "#fe640b",
	yellow: "#df8e1d", green: "#40a02b", teal: "#179299", lavender: "#7287fd",
	text: "#4c4f69", subtext0: "#6c6f85", subtext1: "#5c5f77", overlay1: "#8c8fa1", surface0: "#ccd0da",
}

func For(name chat.Theme) Theme {
	p, code := light, highlight.LightStyle
	if name == chat.ThemeDark {
		p, code = dark, highlight.DarkStyle
	} else {
		name = chat.ThemeLight
	}
	return Theme{
		Name:        name,
		Title:       lipgloss.NewStyle().Bold(true).Foreground(p.mauve),
		ModePill:    lipgloss.NewStyle().Foreground(p.lavender).Background(p.surface0).Padding(0, 1),
		Section:     lipgloss.NewStyle().Bold(true).Foreground(p.teal),
		ActiveLine:  lipgloss.NewStyle().Background(p.surface0).Foreground(p.text),
		MetaLabel:   lipgloss.NewStyle().Foreground(p.overlay1),
		MetaValue:   lipgloss.NewStyle().Foreground(p.subtext1),
		StateIdle:   lipgloss.NewStyle().Foreground(p.green),
		StateWarn:   lipgloss.NewStyle().Foreground(p.red),
		StateLoad:   lipgloss.NewStyle().Foreground(p.peach),
		SharedBadge: lipgloss.NewStyle().Foreground(p.yellow).Bold(true),
		ChatTitle:   lipgloss.NewStyle().Foreground(p.text),
		Border:      lipgloss.NewStyle().Foreground(p.overlay1),
		Preview: preview.Styles{
			Heading:   lipgloss.NewStyle().Bold(true).Foreground(p.lavender),
			Code:      lipgloss.NewStyle().Foreground(p.peach),
			Quote:     lipgloss.NewStyle().Italic(true).Foreground(p.subtext0),
			Border:    lipgloss.NewStyle().Foreground(p.overlay1),
			Highlight: highlight.JSON(code),
		},
	}
}

func Default() Theme {
	return For(chat.ThemeLight)
}

func (t Theme) StyleChatTitle(c chat.Chat, title string) string {
	if title == "" {
		return title
	}
	if c.Shared {
		return t.SharedBadge.Render("◆") + " " + t.ChatTitle.Render(title)
	}
	return "  " + t.ChatTitle.Render(title)
}

func (t Theme) RenderActiveLine(active bool, line string) string {
	if !active {
		return line
	}
	return t.ActiveLine.Render(line)
}

// Apply sets the process-wide dark-background flag used by adaptive styles.
func Apply(name chat.Theme) {
	lipgloss.SetHasDarkBackground(name == chat.ThemeDark)
}

// Detect reports the terminal's color scheme. ok is false when stdout is not
// a terminal.
func Detect() (chat.Theme, bool) {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return "", false
	}
	if lipgloss.HasDarkBackground() {
		return chat.ThemeDark, true
	}
	return chat.ThemeLight, true
}
