package view

import (
	"fmt"
	"strings"

	"github.com/glabrego/copilotlog/internal/chat"
	tuitheme "github.com/glabrego/copilotlog/internal/tui/theme"
)

func Toolbar(inPreview bool, prompting bool) string {
	if prompting {
		return "enter confirm | esc cancel | tab complete"
	}
	if inPreview {
		return "j/k scroll | [ ] prev/next | s share | e export | esc back | ? help"
	}
	return "j/k move | enter open | i import | p paste | f filter | t theme | ? help"
}

func Footer(filter chat.Filter, theme chat.Theme, shown, total int, dropDir string, th tuitheme.Theme) string {
	parts := []string{
		th.MetaLabel.Render("filter") + " " + th.MetaValue.Render(string(filter)),
		th.MetaLabel.Render("theme") + " " + th.MetaValue.Render(string(theme)),
		th.MetaValue.Render(fmt.Sprintf("%d/%d chats", shown, total)),
	}
	if dropDir != "" {
		parts = append(parts, th.MetaLabel.Render("watching")+" "+th.MetaValue.Render(dropDir))
	}
	return strings.Join(parts, " • ")
}

func Message(busy bool, hasError bool, status, errMsg string, th tuitheme.Theme) string {
	state := "idle"
	if busy {
		state = "working"
	}
	if hasError {
		state = "error"
	}
	main := "Ready"
	if status != "" {
		main = status
	} else if hasError {
		main = errMsg
	}
	stateLabel := th.StateIdle.Render("state")
	switch state {
	case "error":
		stateLabel = th.StateWarn.Render("state")
	case "working":
		stateLabel = th.StateLoad.Render("state")
	}
	return fmt.Sprintf("%s: %s | %s", stateLabel, state, th.MetaValue.Render(main))
}

func EmptyList(filter chat.Filter) string {
	switch filter {
	case chat.FilterShared:
		return "No shared chats."
	case chat.FilterUnshared:
		return "No unshared chats."
	default:
		return "No chats yet. Press i to import a JSON file or p to paste one."
	}
}
