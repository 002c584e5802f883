package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
)

// Clipboard reads and writes the system clipboard.
type Clipboard struct {
	Read  func() (string, error)
	Write func(string) error
}

// SystemClipboard returns the OS clipboard, or an empty Clipboard when no
// clipboard utility is installed.
func SystemClipboard() Clipboard {
	if clipboard.Unsupported {
		return Clipboard{}
	}
	return Clipboard{Read: clipboard.ReadAll, Write: clipboard.WriteAll}
}

func (c Clipboard) ReadText() (string, error) {
	if c.Read == nil {
		return "", fmt.Errorf("no clipboard available")
	}
	return c.Read()
}

func (c Clipboard) WriteText(text string) error {
	if c.Write == nil {
		return fmt.Errorf("no clipboard available")
	}
	return c.Write(text)
}

// NormalizeDroppedPath cleans a path typed or dropped into the terminal:
// surrounding quotes, escaped spaces, file:// prefixes and a leading ~.
func NormalizeDroppedPath(raw string) (string, error) {
	p := strings.TrimSpace(raw)
	if len(p) >= 2 {
		if (p[0] == '\'' && p[len(p)-1] == '\'') || (p[0] == '"' && p[len(p)-1] == '"') {
			p = p[1 : len(p)-1]
		}
	}
	p = strings.TrimPrefix(p, "file://")
	p = strings.ReplaceAll(p, `\ `, " ")
	if p == "" {
		return "", fmt.Errorf("no file path given")
	}
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand ~: %w", err)
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return filepath.Clean(p), nil
}
