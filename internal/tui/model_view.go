package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/glabrego/copilotlog/internal/store"
	tuistate "github.com/glabrego/copilotlog/internal/tui/state"
	tuitheme "github.com/glabrego/copilotlog/internal/tui/theme"
	tuitree "github.com/glabrego/copilotlog/internal/tui/tree"
	"github.com/glabrego/copilotlog/internal/tui/view"
)

const (
	defaultWidth = 100
	// title, toolbar, blank, blank, message, footer
	chromeLines = 6
)

func (m Model) View() string {
	state := m.service.State()
	th := tuitheme.For(state.Theme)

	var b strings.Builder
	b.WriteString(th.Title.Render("copilotlog") + " " + th.ModePill.Render(m.mode()))
	b.WriteString("\n")
	b.WriteString(th.MetaLabel.Render(view.Toolbar(m.focus == focusPreview, m.prompting)))
	b.WriteString("\n\n")

	switch {
	case m.showHelp:
		b.WriteString(view.RenderHelp(state.Theme, m.totalWidth()))
		b.WriteString("\n")
	case m.prompting:
		b.WriteString("Import a chat export (type a path or drop the file here)\n")
		b.WriteString(m.prompt.View())
		b.WriteString("\n")
	default:
		b.WriteString(m.bodyView(state, th))
	}

	b.WriteString("\n")
	b.WriteString(m.messagePanel(state, th))
	b.WriteString("\n")
	b.WriteString(view.Footer(state.Filter, state.Theme, len(store.FilteredChats(state)), len(state.Chats), m.watchingDir(), th))
	b.WriteString("\n")
	return b.String()
}

func (m Model) mode() string {
	switch {
	case m.showHelp:
		return "help"
	case m.prompting:
		return "import"
	case m.pendingDeleteID != "":
		return "confirm"
	case m.focus == focusPreview || !m.service.State().UI.SidebarOpen:
		return "preview"
	default:
		return "list"
	}
}

func (m Model) bodyView(state store.AppState, th tuitheme.Theme) string {
	if len(state.Chats) == 0 {
		return view.EmptyList(state.Filter) + "\n"
	}
	if !state.UI.SidebarOpen {
		return m.previewView(m.totalWidth())
	}
	listWidth := m.listWidth()
	previewWidth := m.totalWidth() - listWidth - 3
	left := lipgloss.NewStyle().Width(listWidth).Render(strings.TrimRight(m.listView(state, th, listWidth), "\n"))
	sep := th.Border.Render(strings.TrimRight(strings.Repeat("│\n", max(1, lipgloss.Height(left))), "\n"))
	right := strings.TrimRight(m.previewView(previewWidth), "\n")
	return lipgloss.JoinHorizontal(lipgloss.Top, left, " ", sep, " ", right) + "\n"
}

func (m Model) listView(state store.AppState, th tuitheme.Theme, width int) string {
	chats := store.FilteredChats(state)
	if len(chats) == 0 {
		return view.EmptyList(state.Filter)
	}
	rows := m.rows()
	cursor := tuistate.ClampCursor(m.cursor, len(rows))
	start, end := tuistate.CenteredWindow(len(rows), cursor, m.bodyHeight())
	now := m.nowFn()
	return view.RenderListBody(view.ListRenderInput{
		Rows:              rows,
		Start:             start,
		End:               end,
		Cursor:            cursor,
		SectionCounts:     tuitree.SectionCount(chats, now),
		CollapsedSections: m.collapsedSections,
		RenderSectionLine: func(label string, count int, collapsed, active bool) string {
			return view.RenderSectionLine(label, count, width, collapsed, active && m.focus == focusList, th)
		},
		RenderChatLine: func(chatIndex int, active bool) string {
			c := chats[chatIndex]
			return view.RenderChatLine(view.ChatLineParams{
				Chat:     c,
				Now:      now,
				Compact:  m.compact,
				Active:   active && m.focus == focusList,
				Selected: c.ID == state.SelectedChatID,
				Width:    width,
			}, th)
		},
	})
}

func (m Model) previewView(width int) string {
	state := m.service.State()
	if _, ok := store.SelectedChat(state); !ok {
		return "No chat selected. Press enter on a chat to preview it.\n"
	}
	lines := m.previewLinesWidth(width)
	top := min(m.previewTop, view.DetailMaxTop(len(lines), m.bodyHeight()))
	return view.RenderDetailLines(lines, top, m.bodyHeight())
}

func (m Model) previewLines() []string {
	width := m.totalWidth()
	if m.service.State().UI.SidebarOpen {
		width = m.totalWidth() - m.listWidth() - 3
	}
	return m.previewLinesWidth(width)
}

func (m Model) previewLinesWidth(width int) []string {
	state := m.service.State()
	c, ok := store.SelectedChat(state)
	if !ok {
		return nil
	}
	return view.DetailLines(c, max(10, width-1), 1, tuitheme.For(state.Theme).Preview)
}

func (m Model) messagePanel(state store.AppState, th tuitheme.Theme) string {
	if m.pendingDeleteID != "" {
		title := m.pendingDeleteID
		for _, c := range state.Chats {
			if c.ID == m.pendingDeleteID {
				title = view.ChatLabel(c)
				break
			}
		}
		return th.StateWarn.Render(fmt.Sprintf("Delete %q? (y/n)", title))
	}
	return view.Message(m.busy, m.failure != "", m.status, m.failure, th)
}

func (m Model) watchingDir() string {
	if m.dropEvents == nil {
		return ""
	}
	return m.dropDir
}

func (m Model) totalWidth() int {
	if m.width <= 0 {
		return defaultWidth
	}
	return m.width
}

func (m Model) listWidth() int {
	return max(30, m.totalWidth()*2/5)
}

// bodyHeight is 0 (unbounded) until the first WindowSizeMsg.
func (m Model) bodyHeight() int {
	if m.height <= 0 {
		return 0
	}
	return max(3, m.height-chromeLines)
}
