package ingest

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 14, 15, 9, 26, 535_000_000, time.UTC)

func TestValidateUpload(t *testing.T) {
	cases := []struct {
		name string
		u    Upload
		want error
	}{
		{name: "txt extension", u: Upload{Name: "a.txt", Type: "text/plain", Size: 10}, want: ErrNotJSONFile},
		{name: "json extension", u: Upload{Name: "chat.json", Size: 10}},
		{name: "json mime", u: Upload{Name: "export", Type: "application/json", Size: 10}},
		{name: "exactly at limit", u: Upload{Name: "big.json", Size: MaxUploadBytes}},
		{name: "over limit", u: Upload{Name: "big.json", Size: MaxUploadBytes + 1}, want: ErrFileTooLarge},
		{name: "type checked before size", u: Upload{Name: "big.bin", Size: MaxUploadBytes + 1}, want: ErrNotJSONFile},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, ValidateUpload(tc.u), tc.want)
		})
	}
}

func TestFromUpload(t *testing.T) {
	c, err := FromUpload(Upload{Name: "chat.json", Size: 7, Data: []byte(`{"a":1}`)}, fixedNow)
	require.NoError(t, err)
	require.Equal(t, "chat", c.Title)
	require.False(t, c.Shared)
	require.NotEmpty(t, c.ID)
	require.Equal(t, "2026-03-14T15:09:26.535Z", c.CreatedAt)
	require.True(t, strings.HasPrefix(c.HTML, "<pre>"))
	require.True(t, strings.HasSuffix(c.HTML, "</pre>"))
	require.Contains(t, c.HTML, "&#34;a&#34;: 1")
}

func TestFromUpload_Errors(t *testing.T) {
	_, err := FromUpload(Upload{Name: "a.txt", Size: 10, Data: []byte("0123456789")}, fixedNow)
	require.EqualError(t, err, "Please upload a JSON file")

	_, err = FromUpload(Upload{Name: "broken.json", Size: 5, Data: []byte(`{"a":`)}, fixedNow)
	require.EqualError(t, err, "Invalid JSON file")
}

func TestFromUpload_TitleStripsFirstJSONSuffixOnly(t *testing.T) {
	c, err := FromUpload(Upload{Name: "my.json.backup.json", Data: []byte(`[]`)}, fixedNow)
	require.NoError(t, err)
	require.Equal(t, "my.backup.json", c.Title)
}

func TestFromUpload_EscapesMarkup(t *testing.T) {
	c, err := FromUpload(Upload{Name: "x.json", Data: []byte(`{"text":"<script>alert(1)</script>"}`)}, fixedNow)
	require.NoError(t, err)
	require.NotContains(t, c.HTML, "<script>")
	require.Contains(t, c.HTML, "&lt;script&gt;")
}

func TestFromPaste(t *testing.T) {
	c, err := FromPaste(`{"requests": []}`, fixedNow)
	require.NoError(t, err)
	require.Equal(t, "Chat "+fixedNow.Local().Format("3:04:05 PM"), c.Title)

	_, err = FromPaste("not json", fixedNow)
	require.ErrorIs(t, err, ErrInvalidPaste)
	require.EqualError(t, err, "Invalid JSON in clipboard")

	_, err = FromPaste("", fixedNow)
	require.ErrorIs(t, err, ErrEmptyPaste)
}

func TestNewChatsGetDistinctIDs(t *testing.T) {
	a, err := FromPaste(`1`, fixedNow)
	require.NoError(t, err)
	b, err := FromPaste(`1`, fixedNow)
	require.NoError(t, err)
	require.NotEqual(t, a.ID, b.ID)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "chat.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"a":1}`), 0o644))
	u, err := ReadFile(good)
	require.NoError(t, err)
	require.Equal(t, "chat.json", u.Name)
	require.Equal(t, int64(7), u.Size)
	require.Equal(t, `{"a":1}`, string(u.Data))

	txt := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(txt, []byte("0123456789"), 0o644))
	_, err = ReadFile(txt)
	require.ErrorIs(t, err, ErrNotJSONFile)

	big := filepath.Join(dir, "big.json")
	require.NoError(t, os.WriteFile(big, bytes.Repeat([]byte(" "), MaxUploadBytes+1), 0o644))
	u, err = ReadFile(big)
	require.ErrorIs(t, err, ErrFileTooLarge)
	require.Nil(t, u.Data)

	_, err = ReadFile(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
}

func TestFromPaste_ArraysOneElementPerLine(t *testing.T) {
	c, err := FromPaste(`{"a":[1,2],"b":[],"c":{}}`, fixedNow)
	require.NoError(t, err)
	require.Equal(t, "<pre>{\n  &#34;a&#34;: [\n    1,\n    2\n  ],\n  &#34;b&#34;: [],\n  &#34;c&#34;: {}\n}</pre>", c.HTML)
}
