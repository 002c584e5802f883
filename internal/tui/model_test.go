package tui

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/copilotlog/internal/app"
	"github.com/glabrego/copilotlog/internal/chat"
	"github.com/glabrego/copilotlog/internal/ingest"
	"github.com/glabrego/copilotlog/internal/logging"
	"github.com/glabrego/copilotlog/internal/persist"
	"github.com/glabrego/copilotlog/internal/storage"
	"github.com/glabrego/copilotlog/internal/tui/actions"
	"github.com/glabrego/copilotlog/internal/tui/platform"
)

var ansiScreenStrip = regexp.MustCompile(`\x1b\[[0-9;]*m`)

var testNow = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

func newTestModel(t *testing.T, opts Options) (Model, *app.Service) {
	t.Helper()
	svc := app.NewService(storage.NewMemory(), logging.Discard(),
		app.WithClock(func() time.Time { return testNow }),
		app.WithPersistOptions(persist.WithSystemTheme(func() (chat.Theme, bool) { return "", false })),
	)
	if opts.Now == nil {
		opts.Now = func() time.Time { return testNow }
	}
	return NewModel(svc, opts), svc
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var updated tea.Model
		updated, cmd = m.Update(key(k))
		m = updated.(Model)
	}
	return m, cmd
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func plainView(m Model) string {
	return ansiScreenStrip.ReplaceAllString(m.View(), "")
}

func writeJSON(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func seed(t *testing.T, m Model, titles ...string) Model {
	t.Helper()
	for i, title := range titles {
		m, _ = send(t, m, actions.ImportSuccessMsg{
			Chat: chat.Chat{
				ID:        "id-" + title,
				Title:     title,
				HTML:      "<pre>{}</pre>",
				CreatedAt: chat.FormatTimestamp(testNow.Add(time.Duration(i) * time.Minute)),
			},
			Source: actions.SourceFile,
		})
	}
	return m
}

func TestModelView_EmptyStateHint(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	view := plainView(m)
	if !strings.Contains(view, "No chats yet") {
		t.Fatalf("expected empty hint, got:\n%s", view)
	}
	if !strings.Contains(view, "state: idle | Ready") {
		t.Fatalf("expected idle message panel, got:\n%s", view)
	}
}

func TestModelUpdate_FilePromptImportsChat(t *testing.T) {
	dir := t.TempDir()
	path := writeJSON(t, dir, "chat.json", `{"a":1}`)
	m, svc := newTestModel(t, Options{})

	m, _ = press(t, m, "i")
	if !m.prompting {
		t.Fatal("expected prompt to open")
	}
	if got := svc.State().UI.UploadMode; got != chat.UploadFile {
		t.Fatalf("expected upload mode file, got %q", got)
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("'" + path + "'")})
	m, cmd := press(t, m, "enter")
	if cmd == nil {
		t.Fatal("expected import command")
	}
	m, _ = send(t, m, cmd())

	st := svc.State()
	if len(st.Chats) != 1 || st.Chats[0].Title != "chat" {
		t.Fatalf("unexpected chats: %+v", st.Chats)
	}
	if st.SelectedChatID != st.Chats[0].ID || !st.UI.SidebarOpen {
		t.Fatalf("expected new chat selected and sidebar open: %+v", st)
	}
	if st.UI.UploadMode != chat.UploadNone {
		t.Fatalf("expected upload mode reset, got %q", st.UI.UploadMode)
	}
	view := plainView(m)
	if !strings.Contains(view, `Imported "chat"`) || !strings.Contains(view, `"a": 1`) {
		t.Fatalf("expected status and preview in view, got:\n%s", view)
	}
}

func TestModelUpdate_RejectedUploadLeavesStore(t *testing.T) {
	m, svc := newTestModel(t, Options{})
	before := svc.State()

	m, _ = send(t, m, actions.ImportErrorMsg{Err: ingest.ErrNotJSONFile, Source: actions.SourceFile})
	if len(svc.State().Chats) != len(before.Chats) {
		t.Fatal("store must be unchanged")
	}
	if !strings.Contains(plainView(m), "Upload failed: Please upload a JSON file") {
		t.Fatalf("expected upload failure in view, got:\n%s", plainView(m))
	}
}

func TestModelUpdate_PasteInvalidAndEmpty(t *testing.T) {
	clip := "not json"
	m, svc := newTestModel(t, Options{Clipboard: platform.Clipboard{
		Read: func() (string, error) { return clip, nil },
	}})

	m, cmd := press(t, m, "p")
	if got := svc.State().UI.UploadMode; got != chat.UploadPaste {
		t.Fatalf("expected paste upload mode, got %q", got)
	}
	m, _ = send(t, m, cmd())
	if m.failure != "Upload failed: Invalid JSON in clipboard" {
		t.Fatalf("unexpected failure: %q", m.failure)
	}
	if len(svc.State().Chats) != 0 {
		t.Fatal("invalid paste must not add a chat")
	}

	clip = ""
	m.failure = ""
	m, cmd = press(t, m, "p")
	m, _ = send(t, m, cmd())
	if m.failure != "" {
		t.Fatalf("empty paste should be ignored silently, got %q", m.failure)
	}

	clip = `{"ok":true}`
	m, cmd = press(t, m, "p")
	_, _ = send(t, m, cmd())
	st := svc.State()
	if len(st.Chats) != 1 || !strings.HasPrefix(st.Chats[0].Title, "Chat ") {
		t.Fatalf("expected pasted chat, got %+v", st.Chats)
	}
}

func TestModelUpdate_FilterThemeSidebar(t *testing.T) {
	m, svc := newTestModel(t, Options{})
	m = seed(t, m, "one")

	m, _ = press(t, m, "f")
	if got := svc.State().Filter; got != chat.FilterShared {
		t.Fatalf("expected shared filter, got %q", got)
	}
	if !strings.Contains(plainView(m), "No shared chats.") {
		t.Fatalf("expected shared empty hint, got:\n%s", plainView(m))
	}
	m, _ = press(t, m, "f", "f")
	if got := svc.State().Filter; got != chat.FilterAll {
		t.Fatalf("expected filter to cycle back to all, got %q", got)
	}

	m, _ = press(t, m, "t")
	if got := svc.State().Theme; got != chat.ThemeDark {
		t.Fatalf("expected dark theme, got %q", got)
	}
	if !strings.Contains(plainView(m), "theme dark") {
		t.Fatalf("expected footer to show theme, got:\n%s", plainView(m))
	}

	open := svc.State().UI.SidebarOpen
	_, _ = press(t, m, "b")
	if svc.State().UI.SidebarOpen == open {
		t.Fatal("expected sidebar toggle")
	}
}

func TestModelUpdate_NavigateAndSelect(t *testing.T) {
	m, svc := newTestModel(t, Options{})
	m = seed(t, m, "first", "second")
	// second is newest and selected; rows: Today header, second, first.
	m, _ = press(t, m, "g", "j", "j", "enter")
	if got := svc.State().SelectedChatID; got != "id-first" {
		t.Fatalf("expected first selected, got %q", got)
	}
	if m.focus != focusPreview {
		t.Fatal("expected preview focus after enter")
	}
	_, _ = press(t, m, "[")
	if got := svc.State().SelectedChatID; got != "id-second" {
		t.Fatalf("expected [ to step to previous chat, got %q", got)
	}
}

func TestModelUpdate_DeleteNeedsConfirmation(t *testing.T) {
	m, svc := newTestModel(t, Options{})
	m = seed(t, m, "doomed")

	m, _ = press(t, m, "d")
	if !strings.Contains(plainView(m), `Delete "doomed"? (y/n)`) {
		t.Fatalf("expected confirmation prompt, got:\n%s", plainView(m))
	}
	m, _ = press(t, m, "n")
	if len(svc.State().Chats) != 1 {
		t.Fatal("expected chat kept after cancel")
	}

	_, _ = press(t, m, "d", "y")
	st := svc.State()
	if len(st.Chats) != 0 || st.SelectedChatID != "" {
		t.Fatalf("expected chat deleted and selection cleared: %+v", st)
	}
}

func TestModelUpdate_ShareAndExport(t *testing.T) {
	dir := t.TempDir()
	m, svc := newTestModel(t, Options{ExportDir: dir})
	m = seed(t, m, "report")

	m, _ = press(t, m, "s")
	if !svc.State().Chats[0].Shared {
		t.Fatal("expected chat marked shared")
	}
	m, _ = press(t, m, "s")
	if svc.State().Chats[0].Shared {
		t.Fatal("expected chat unshared")
	}

	m, cmd := press(t, m, "e")
	if cmd == nil {
		t.Fatal("expected export command")
	}
	msg := cmd()
	done, ok := msg.(actions.ExportSuccessMsg)
	if !ok {
		t.Fatalf("expected export success, got %#v", msg)
	}
	if _, err := os.Stat(done.Path); err != nil {
		t.Fatalf("expected export file: %v", err)
	}
	if svc.State().Chats[0].Shared {
		t.Fatal("export command must not dispatch")
	}
	m, _ = send(t, m, msg)
	if !svc.State().Chats[0].Shared {
		t.Fatal("expected export to mark the chat shared")
	}
	if !strings.Contains(plainView(m), "Exported to") {
		t.Fatalf("expected export status, got:\n%s", plainView(m))
	}
}

func TestModelUpdate_DropFolderEvents(t *testing.T) {
	events := make(chan string, 1)
	errs := make(chan error, 1)
	m, _ := newTestModel(t, Options{DropDir: "/drop", DropDirEvents: events, DropDirErrors: errs})
	if m.Init() == nil {
		t.Fatal("expected init to start listening on the drop folder")
	}
	if !strings.Contains(plainView(m), "watching /drop") {
		t.Fatalf("expected drop dir in footer, got:\n%s", plainView(m))
	}

	m, cmd := send(t, m, actions.DropEventMsg{Path: "/drop/chat.json"})
	if cmd == nil || !m.busy {
		t.Fatal("expected import and re-listen commands")
	}
	m, _ = send(t, m, actions.DropClosedMsg{})
	if strings.Contains(plainView(m), "watching") {
		t.Fatal("expected watcher hint removed after close")
	}
}

func TestModelUpdate_ClearStatusOnlyForLatest(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	m = seed(t, m, "a")
	if m.status == "" {
		t.Fatal("expected status after import")
	}
	m, _ = send(t, m, clearStatusMsg{id: m.statusID - 1})
	if m.status == "" {
		t.Fatal("stale clear must not wipe status")
	}
	m, _ = send(t, m, clearStatusMsg{id: m.statusID})
	if m.status != "" {
		t.Fatalf("expected status cleared, got %q", m.status)
	}
}

func TestModelUpdate_HelpToggle(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	m, _ = press(t, m, "?")
	if !strings.Contains(plainView(m), "light/dark") {
		t.Fatalf("expected help, got:\n%s", plainView(m))
	}
	m, _ = press(t, m, "esc")
	if m.showHelp {
		t.Fatal("expected help closed")
	}
}

func TestModelUpdate_EnterAfterSectionsMergeAtMidnight(t *testing.T) {
	now := time.Date(2026, 3, 10, 23, 59, 0, 0, time.Local)
	m, svc := newTestModel(t, Options{Now: func() time.Time { return now }})
	for _, c := range []chat.Chat{
		{ID: "id-older", Title: "older", HTML: "<pre>{}</pre>", CreatedAt: chat.FormatTimestamp(now.AddDate(0, 0, -3))},
		{ID: "id-yesterday", Title: "yesterday", HTML: "<pre>{}</pre>", CreatedAt: chat.FormatTimestamp(now.AddDate(0, 0, -1))},
	} {
		m, _ = send(t, m, actions.ImportSuccessMsg{Chat: c, Source: actions.SourceFile})
	}
	if got := len(m.rows()); got != 4 {
		t.Fatalf("expected two sections with one chat each, got %d rows", got)
	}
	m, _ = press(t, m, "G")

	now = now.Add(2 * time.Minute)
	if got := len(m.rows()); got != 3 {
		t.Fatalf("expected sections to merge after midnight, got %d rows", got)
	}
	m, _ = press(t, m, "enter")
	if got := svc.State().SelectedChatID; got != "id-older" {
		t.Fatalf("expected last chat selected, got %q", got)
	}
	if m.focus != focusPreview {
		t.Fatal("expected preview focus after enter")
	}
}
