package chat

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the ISO-8601 layout used for CreatedAt.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Chat is one imported conversation export and its rendered preview payload.
type Chat struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	HTML      string `json:"html"`
	Shared    bool   `json:"shared"`
	CreatedAt string `json:"createdAt"`
}

// Update carries the subset of fields to merge into an existing chat.
// Nil fields are left unchanged.
type Update struct {
	Title     *string
	HTML      *string
	Shared    *bool
	CreatedAt *string
}

// Apply returns c with the non-nil fields of u merged in.
func (u Update) Apply(c Chat) Chat {
	if u.Title != nil {
		c.Title = *u.Title
	}
	if u.HTML != nil {
		c.HTML = *u.HTML
	}
	if u.Shared != nil {
		c.Shared = *u.Shared
	}
	if u.CreatedAt != nil {
		c.CreatedAt = *u.CreatedAt
	}
	return c
}

// Created parses CreatedAt. The zero time is returned for malformed values.
func (c Chat) Created() time.Time {
	t, err := time.Parse(time.RFC3339Nano, c.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

type Filter string

const (
	FilterAll      Filter = "all"
	FilterShared   Filter = "shared"
	FilterUnshared Filter = "unshared"
)

func ParseFilter(raw string) (Filter, error) {
	f := Filter(strings.ToLower(strings.TrimSpace(raw)))
	if !f.Valid() {
		return "", fmt.Errorf("filter must be all, shared or unshared: %q", raw)
	}
	return f, nil
}

func (f Filter) Valid() bool {
	switch f {
	case FilterAll, FilterShared, FilterUnshared:
		return true
	}
	return false
}

// Next cycles all -> shared -> unshared -> all.
func (f Filter) Next() Filter {
	switch f {
	case FilterAll:
		return FilterShared
	case FilterShared:
		return FilterUnshared
	default:
		return FilterAll
	}
}

// Match reports whether c is visible under f.
func (f Filter) Match(c Chat) bool {
	switch f {
	case FilterShared:
		return c.Shared
	case FilterUnshared:
		return !c.Shared
	default:
		return true
	}
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func ParseTheme(raw string) (Theme, error) {
	t := Theme(strings.ToLower(strings.TrimSpace(raw)))
	if !t.Valid() {
		return "", fmt.Errorf("theme must be light or dark: %q", raw)
	}
	return t, nil
}

func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// UploadMode is the import prompt currently open. UploadNone means no prompt.
type UploadMode string

const (
	UploadNone  UploadMode = ""
	UploadFile  UploadMode = "file"
	UploadPaste UploadMode = "paste"
)

func (m UploadMode) Valid() bool {
	return m == UploadNone || m == UploadFile || m == UploadPaste
}

// Equal reports whether two chat lists hold the same records in the same order.
func Equal(a, b []Chat) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
