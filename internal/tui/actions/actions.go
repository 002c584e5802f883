package actions

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/copilotlog/internal/chat"
)

type Service interface {
	ChatFromFile(path string) (chat.Chat, error)
	ChatFromPaste(text string) (chat.Chat, error)
	WriteExport(c chat.Chat, theme chat.Theme, dir string) (string, error)
}

type Source string

const (
	SourceFile  Source = "file"
	SourcePaste Source = "paste"
	SourceDrop  Source = "drop"
)

type ImportSuccessMsg struct {
	Chat   chat.Chat
	Source Source
	Path   string
}

type ImportErrorMsg struct {
	Err    error
	Source Source
	Path   string
}

type ExportSuccessMsg struct {
	ChatID string
	Path   string
}

type ExportErrorMsg struct {
	ChatID string
	Err    error
}

type DropEventMsg struct {
	Path string
}

type DropErrorMsg struct {
	Err error
}

// DropClosedMsg is returned once the watcher's channels are closed.
type DropClosedMsg struct{}

type CopySuccessMsg struct {
	Status string
}

type CopyErrorMsg struct {
	Err error
}

func ImportFileCmd(service Service, path string, source Source) tea.Cmd {
	return func() tea.Msg {
		c, err := service.ChatFromFile(path)
		if err != nil {
			return ImportErrorMsg{Err: err, Source: source, Path: path}
		}
		return ImportSuccessMsg{Chat: c, Source: source, Path: path}
	}
}

func PasteClipboardCmd(service Service, readFn func() (string, error)) tea.Cmd {
	return func() tea.Msg {
		if readFn == nil {
			return ImportErrorMsg{Err: fmt.Errorf("clipboard is not available"), Source: SourcePaste}
		}
		text, err := readFn()
		if err != nil {
			return ImportErrorMsg{Err: fmt.Errorf("read clipboard: %w", err), Source: SourcePaste}
		}
		c, err := service.ChatFromPaste(text)
		if err != nil {
			return ImportErrorMsg{Err: err, Source: SourcePaste}
		}
		return ImportSuccessMsg{Chat: c, Source: SourcePaste}
	}
}

func ExportCmd(service Service, c chat.Chat, theme chat.Theme, dir string) tea.Cmd {
	return func() tea.Msg {
		path, err := service.WriteExport(c, theme, dir)
		if err != nil {
			return ExportErrorMsg{ChatID: c.ID, Err: err}
		}
		return ExportSuccessMsg{ChatID: c.ID, Path: path}
	}
}

// WaitDropCmd blocks until the drop folder reports a file or an error.
// The model re-issues it after every message to keep listening.
func WaitDropCmd(events <-chan string, errs <-chan error) tea.Cmd {
	return func() tea.Msg {
		select {
		case path, ok := <-events:
			if !ok {
				return DropClosedMsg{}
			}
			return DropEventMsg{Path: path}
		case err, ok := <-errs:
			if !ok {
				return DropClosedMsg{}
			}
			return DropErrorMsg{Err: err}
		}
	}
}

func CopyIDCmd(id string, copyFn func(string) error) tea.Cmd {
	return func() tea.Msg {
		if copyFn != nil {
			if err := copyFn(id); err == nil {
				return CopySuccessMsg{Status: "Chat ID copied to clipboard"}
			}
		}
		return CopyErrorMsg{Err: fmt.Errorf("could not copy chat ID to clipboard")}
	}
}
