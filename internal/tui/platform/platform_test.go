package platform

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestNormalizeDroppedPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cases := []struct {
		raw  string
		want string
	}{
		{raw: "  /tmp/chat.json  ", want: "/tmp/chat.json"},
		{raw: "'/tmp/my chat.json'", want: "/tmp/my chat.json"},
		{raw: `"/tmp/my chat.json"`, want: "/tmp/my chat.json"},
		{raw: `/tmp/my\ chat.json`, want: "/tmp/my chat.json"},
		{raw: "file:///tmp/chat.json", want: "/tmp/chat.json"},
		{raw: "~/exports/chat.json", want: filepath.Join(home, "exports", "chat.json")},
	}
	for _, tc := range cases {
		got, err := NormalizeDroppedPath(tc.raw)
		if err != nil {
			t.Fatalf("NormalizeDroppedPath(%q) returned error: %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("NormalizeDroppedPath(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}

	if _, err := NormalizeDroppedPath("   "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestClipboard_Fallbacks(t *testing.T) {
	var empty Clipboard
	if _, err := empty.ReadText(); err == nil {
		t.Fatal("expected error without reader")
	}
	if err := empty.WriteText("x"); err == nil {
		t.Fatal("expected error without writer")
	}

	var written string
	c := Clipboard{
		Read:  func() (string, error) { return "", errors.New("denied") },
		Write: func(s string) error { written = s; return nil },
	}
	if _, err := c.ReadText(); err == nil || err.Error() != "denied" {
		t.Fatalf("expected reader error, got %v", err)
	}
	if err := c.WriteText("abc"); err != nil || written != "abc" {
		t.Fatalf("unexpected write result: %q %v", written, err)
	}
}
