package tui

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/copilotlog/internal/chat"
	"github.com/glabrego/copilotlog/internal/ingest"
	"github.com/glabrego/copilotlog/internal/store"
	"github.com/glabrego/copilotlog/internal/tui/actions"
	"github.com/glabrego/copilotlog/internal/tui/platform"
	tuistate "github.com/glabrego/copilotlog/internal/tui/state"
	tuitree "github.com/glabrego/copilotlog/internal/tui/tree"
	"github.com/glabrego/copilotlog/internal/tui/view"
)

// Service is the slice of the application the model drives. Only Update
// calls Dispatch.
type Service interface {
	actions.Service
	State() store.AppState
	Dispatch(a store.Action) store.AppState
}

type clearStatusMsg struct {
	id int
}

type focus int

const (
	focusList focus = iota
	focusPreview
)

type Options struct {
	ExportDir     string
	DropDir       string
	DropDirEvents <-chan string
	DropDirErrors <-chan error
	Clipboard     platform.Clipboard
	Now           func() time.Time
}

type Model struct {
	service           Service
	cursor            int
	collapsedSections map[string]bool
	compact           bool
	focus             focus
	previewTop        int
	prompt            textinput.Model
	prompting         bool
	pendingDeleteID   string
	showHelp          bool
	width             int
	height            int
	busy              bool
	status            string
	statusID          int
	failure           string
	exportDir         string
	dropDir           string
	dropEvents        <-chan string
	dropErrors        <-chan error
	clipboard         platform.Clipboard
	nowFn             func() time.Time
}

func NewModel(service Service, opts Options) Model {
	prompt := textinput.New()
	prompt.Prompt = "path> "
	prompt.Placeholder = "drop or type a .json file"
	prompt.ShowSuggestions = true
	prompt.CharLimit = 4096

	m := Model{
		service:           service,
		collapsedSections: make(map[string]bool),
		prompt:            prompt,
		exportDir:         opts.ExportDir,
		dropDir:           opts.DropDir,
		dropEvents:        opts.DropDirEvents,
		dropErrors:        opts.DropDirErrors,
		clipboard:         opts.Clipboard,
		nowFn:             opts.Now,
	}
	if m.exportDir == "" {
		m.exportDir = "."
	}
	if m.nowFn == nil {
		m.nowFn = time.Now
	}
	m.syncCursor()
	return m
}

func (m Model) Init() tea.Cmd {
	if m.dropEvents == nil {
		return nil
	}
	return actions.WaitDropCmd(m.dropEvents, m.dropErrors)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.prompt.Width = max(10, msg.Width-len(m.prompt.Prompt)-2)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case actions.ImportSuccessMsg:
		m.busy = false
		m.failure = ""
		m.service.Dispatch(store.AddChat{Chat: msg.Chat})
		m.service.Dispatch(store.SetUploadMode{Mode: chat.UploadNone})
		m.focus = focusList
		m.previewTop = 0
		m.syncCursor()
		return m.setStatus(fmt.Sprintf("Imported %q", msg.Chat.Title))
	case actions.ImportErrorMsg:
		m.busy = false
		m.service.Dispatch(store.SetUploadMode{Mode: chat.UploadNone})
		if errors.Is(msg.Err, ingest.ErrEmptyPaste) {
			return m, nil
		}
		m.status = ""
		m.failure = "Upload failed: " + msg.Err.Error()
		return m, nil
	case actions.ExportSuccessMsg:
		m.busy = false
		m.failure = ""
		shared := true
		m.service.Dispatch(store.UpdateChat{ID: msg.ChatID, Update: chat.Update{Shared: &shared}})
		m.syncCursor()
		return m.setStatus("Exported to " + msg.Path)
	case actions.ExportErrorMsg:
		m.busy = false
		m.status = ""
		m.failure = "Export failed: " + msg.Err.Error()
		return m, nil
	case actions.DropEventMsg:
		m.busy = true
		return m, tea.Batch(
			actions.ImportFileCmd(m.service, msg.Path, actions.SourceDrop),
			actions.WaitDropCmd(m.dropEvents, m.dropErrors),
		)
	case actions.DropErrorMsg:
		m.failure = "Drop folder: " + msg.Err.Error()
		return m, actions.WaitDropCmd(m.dropEvents, m.dropErrors)
	case actions.DropClosedMsg:
		m.dropEvents = nil
		m.dropErrors = nil
		return m, nil
	case actions.CopySuccessMsg:
		m.failure = ""
		return m.setStatus(msg.Status)
	case actions.CopyErrorMsg:
		m.status = ""
		m.failure = msg.Err.Error()
		return m, nil
	case clearStatusMsg:
		if msg.id == m.statusID {
			m.status = ""
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.prompting {
		return m.handlePromptKey(msg)
	}
	if m.pendingDeleteID != "" {
		return m.handleConfirmKey(msg)
	}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "?":
		m.showHelp = !m.showHelp
		return m, nil
	}
	if m.showHelp {
		switch msg.String() {
		case "esc":
			m.showHelp = false
		case "q":
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "i":
		return m.startFilePrompt()
	case "p":
		m.service.Dispatch(store.SetUploadMode{Mode: chat.UploadPaste})
		m.busy = true
		m.failure = ""
		return m, actions.PasteClipboardCmd(m.service, m.clipboard.Read)
	case "f":
		state := m.service.Dispatch(store.SetFilter{Filter: m.service.State().Filter.Next()})
		m.syncCursor()
		return m.setStatus("Filter: " + string(state.Filter))
	case "t":
		state := m.service.Dispatch(store.SetTheme{Theme: m.service.State().Theme.Toggle()})
		return m.setStatus("Theme: " + string(state.Theme))
	case "b":
		m.service.Dispatch(store.ToggleSidebar{})
		if !m.service.State().UI.SidebarOpen {
			m.focus = focusPreview
		} else {
			m.focus = focusList
		}
		return m, nil
	case "c":
		m.compact = !m.compact
		m.syncCursor()
		if m.compact {
			return m.setStatus("Compact list: on")
		}
		return m.setStatus("Compact list: off")
	}

	if m.focus == focusPreview || !m.service.State().UI.SidebarOpen {
		return m.handlePreviewKey(msg)
	}
	return m.handleListKey(msg)
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.rows()
	// rows are rebuilt against the clock, so sections can merge under the cursor
	m.cursor = tuistate.ClampCursor(m.cursor, len(rows))
	switch msg.String() {
	case "up", "k":
		m.cursor = tuistate.ClampCursor(m.cursor-1, len(rows))
	case "down", "j":
		m.cursor = tuistate.ClampCursor(m.cursor+1, len(rows))
	case "pgup", "ctrl+b":
		m.cursor = tuistate.ClampCursor(m.cursor-tuistate.PageStep(m.height, m.hasMessage()), len(rows))
	case "pgdown", "ctrl+f":
		m.cursor = tuistate.ClampCursor(m.cursor+tuistate.PageStep(m.height, m.hasMessage()), len(rows))
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		m.cursor = tuistate.ClampCursor(len(rows)-1, len(rows))
	case " ", "left", "h", "right", "l":
		m.toggleSectionAtCursor(rows, msg.String())
	case "enter":
		if len(rows) == 0 {
			return m, nil
		}
		if rows[m.cursor].Kind == tuitree.RowSection {
			m.toggleSectionAtCursor(rows, " ")
			return m, nil
		}
		c, ok := m.chatAtCursor()
		if !ok {
			return m, nil
		}
		m.service.Dispatch(store.SelectChat{ID: c.ID})
		m.focus = focusPreview
		m.previewTop = 0
	case "d", "s", "e", "y":
		c, ok := m.chatAtCursor()
		if !ok {
			return m, nil
		}
		return m.chatAction(msg.String(), c)
	}
	return m, nil
}

func (m Model) handlePreviewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace":
		m.focus = focusList
		m.previewTop = 0
		if !m.service.State().UI.SidebarOpen {
			m.service.Dispatch(store.ToggleSidebar{})
		}
		return m, nil
	case "up", "k":
		if m.previewTop > 0 {
			m.previewTop--
		}
		return m, nil
	case "down", "j":
		maxTop := view.DetailMaxTop(len(m.previewLines()), m.bodyHeight())
		if m.previewTop < maxTop {
			m.previewTop++
		}
		return m, nil
	case "[", "]":
		return m.stepSelection(msg.String() == "]")
	case "d", "s", "e", "y":
		c, ok := store.SelectedChat(m.service.State())
		if !ok {
			return m, nil
		}
		return m.chatAction(msg.String(), c)
	}
	return m, nil
}

func (m Model) chatAction(key string, c chat.Chat) (tea.Model, tea.Cmd) {
	switch key {
	case "d":
		m.pendingDeleteID = c.ID
		m.status = ""
		m.failure = ""
		return m, nil
	case "s":
		shared := !c.Shared
		m.service.Dispatch(store.UpdateChat{ID: c.ID, Update: chat.Update{Shared: &shared}})
		m.syncCursor()
		if shared {
			return m.setStatus("Marked as shared")
		}
		return m.setStatus("Marked as not shared")
	case "e":
		m.busy = true
		m.failure = ""
		return m, actions.ExportCmd(m.service, c, m.service.State().Theme, m.exportDir)
	case "y":
		return m, actions.CopyIDCmd(c.ID, m.clipboard.Write)
	}
	return m, nil
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.pendingDeleteID
	m.pendingDeleteID = ""
	switch msg.String() {
	case "y", "Y":
		m.service.Dispatch(store.DeleteChat{ID: id})
		m.syncCursor()
		if m.focus == focusPreview {
			if _, ok := store.SelectedChat(m.service.State()); !ok {
				m.focus = focusList
			}
		}
		m.previewTop = 0
		return m.setStatus("Deleted chat")
	case "ctrl+c":
		return m, tea.Quit
	}
	return m.setStatus("Delete cancelled")
}

func (m Model) startFilePrompt() (tea.Model, tea.Cmd) {
	m.service.Dispatch(store.SetUploadMode{Mode: chat.UploadFile})
	m.prompting = true
	m.failure = ""
	m.prompt.SetValue("")
	m.prompt.SetSuggestions(jsonCandidates(".", m.dropDir))
	return m, m.prompt.Focus()
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.prompting = false
		m.prompt.Blur()
		m.service.Dispatch(store.SetUploadMode{Mode: chat.UploadNone})
		return m, nil
	case "enter":
		m.prompting = false
		m.prompt.Blur()
		path, err := platform.NormalizeDroppedPath(m.prompt.Value())
		if err != nil {
			m.service.Dispatch(store.SetUploadMode{Mode: chat.UploadNone})
			m.failure = "Upload failed: " + err.Error()
			return m, nil
		}
		m.busy = true
		return m, actions.ImportFileCmd(m.service, path, actions.SourceFile)
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m Model) stepSelection(forward bool) (tea.Model, tea.Cmd) {
	state := m.service.State()
	chats := store.FilteredChats(state)
	if len(chats) == 0 {
		return m, nil
	}
	idx := tuistate.ChatIndexByID(chats, state.SelectedChatID)
	switch {
	case idx < 0:
		idx = 0
	case forward && idx < len(chats)-1:
		idx++
	case !forward && idx > 0:
		idx--
	default:
		return m, nil
	}
	m.service.Dispatch(store.SelectChat{ID: chats[idx].ID})
	m.previewTop = 0
	m.syncCursor()
	return m, nil
}

func (m *Model) toggleSectionAtCursor(rows []tuitree.Row, key string) {
	if len(rows) == 0 {
		return
	}
	m.cursor = tuistate.ClampCursor(m.cursor, len(rows))
	section := rows[m.cursor].Section
	if section == "" || m.compact {
		return
	}
	switch key {
	case "left", "h":
		m.collapsedSections[section] = true
	case "right", "l":
		delete(m.collapsedSections, section)
	default:
		if m.collapsedSections[section] {
			delete(m.collapsedSections, section)
		} else {
			m.collapsedSections[section] = true
		}
	}
	if row := tuistate.RowForSection(m.rows(), section); row >= 0 {
		m.cursor = row
	}
}

func (m Model) setStatus(status string) (tea.Model, tea.Cmd) {
	m.status = status
	m.statusID++
	return m, clearStatusCmd(m.statusID, 4*time.Second)
}

func clearStatusCmd(id int, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return clearStatusMsg{id: id}
	})
}

func (m Model) rows() []tuitree.Row {
	return tuitree.BuildRows(store.FilteredChats(m.service.State()), tuitree.BuildOptions{
		Compact:           m.compact,
		Now:               m.nowFn(),
		CollapsedSections: m.collapsedSections,
	})
}

func (m *Model) syncCursor() {
	state := m.service.State()
	m.cursor = tuistate.CursorAfterRebuild(m.rows(), store.FilteredChats(state), state.SelectedChatID, m.cursor)
}

func (m Model) chatAtCursor() (chat.Chat, bool) {
	idx, ok := tuistate.ChatAtRow(m.rows(), m.cursor)
	if !ok {
		return chat.Chat{}, false
	}
	return store.FilteredChats(m.service.State())[idx], true
}

func (m Model) hasMessage() bool {
	return m.status != "" || m.failure != ""
}

// jsonCandidates lists .json files in dirs for prompt completion.
func jsonCandidates(dirs ...string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, 16)
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
		if err != nil {
			continue
		}
		for _, match := range matches {
			if seen[match] {
				continue
			}
			seen[match] = true
			out = append(out, match)
		}
	}
	sort.Strings(out)
	return out
}
