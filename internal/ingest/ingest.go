package ingest

import (
	"errors"
	"fmt"
	"html"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"github.com/glabrego/copilotlog/internal/chat"
)

// MaxUploadBytes is the largest file accepted for import.
const MaxUploadBytes = 5 * 1024 * 1024

const jsonMIME = "application/json"

// User-visible ingestion errors. Error() is the exact message shown.
var (
	ErrNotJSONFile     = errors.New("Please upload a JSON file")
	ErrFileTooLarge    = errors.New("File is too large (max 5MB)")
	ErrInvalidJSONFile = errors.New("Invalid JSON file")
	ErrInvalidPaste    = errors.New("Invalid JSON in clipboard")
	ErrEmptyPaste      = errors.New("Clipboard is empty")
)

// Upload is a file offered for import.
type Upload struct {
	Name string
	Type string
	Size int64
	Data []byte
}

var newID = func() string { return uuid.NewString() }

// ValidateUpload checks type and size before the content is parsed.
func ValidateUpload(u Upload) error {
	if u.Type != jsonMIME && !strings.HasSuffix(u.Name, ".json") {
		return ErrNotJSONFile
	}
	if u.Size > MaxUploadBytes {
		return ErrFileTooLarge
	}
	return nil
}

// FromUpload turns a validated JSON file into a new chat titled after the file.
func FromUpload(u Upload, now time.Time) (chat.Chat, error) {
	if err := ValidateUpload(u); err != nil {
		return chat.Chat{}, err
	}
	body, ok := renderJSON(u.Data)
	if !ok {
		return chat.Chat{}, ErrInvalidJSONFile
	}
	return chat.Chat{
		ID:        newID(),
		Title:     strings.Replace(u.Name, ".json", "", 1),
		HTML:      body,
		Shared:    false,
		CreatedAt: chat.FormatTimestamp(now),
	}, nil
}

// FromPaste turns pasted JSON text into a new chat titled after the local time.
func FromPaste(text string, now time.Time) (chat.Chat, error) {
	if text == "" {
		return chat.Chat{}, ErrEmptyPaste
	}
	body, ok := renderJSON([]byte(text))
	if !ok {
		return chat.Chat{}, ErrInvalidPaste
	}
	return chat.Chat{
		ID:        newID(),
		Title:     "Chat " + now.Local().Format("3:04:05 PM"),
		HTML:      body,
		Shared:    false,
		CreatedAt: chat.FormatTimestamp(now),
	}, nil
}

// renderJSON is a placeholder transform: the parsed document is dumped as
// preformatted, pretty-printed text.
func renderJSON(data []byte) (string, bool) {
	if !gjson.ValidBytes(data) {
		return "", false
	}
	formatted := pretty.PrettyOptions(data, &pretty.Options{
		Width:    -1,
		Prefix:   "",
		Indent:   "  ",
		SortKeys: false,
	})
	text := strings.TrimRight(string(formatted), "\n")
	return "<pre>" + html.EscapeString(text) + "</pre>", true
}

// ReadFile loads path into an Upload. Oversized and non-JSON files are
// rejected before their content is read.
func ReadFile(path string) (Upload, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Upload{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return Upload{}, fmt.Errorf("%s is a directory", path)
	}

	u := Upload{
		Name: filepath.Base(path),
		Type: mimeType(path),
		Size: info.Size(),
	}
	if err := ValidateUpload(u); err != nil {
		return u, err
	}

	f, err := os.Open(path)
	if err != nil {
		return u, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxUploadBytes+1))
	if err != nil {
		return u, fmt.Errorf("read %s: %w", path, err)
	}
	u.Data = data
	u.Size = int64(len(data))
	return u, nil
}

func mimeType(path string) string {
	t := mime.TypeByExtension(filepath.Ext(path))
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = t[:i]
	}
	return strings.TrimSpace(t)
}
