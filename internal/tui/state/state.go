package state

import (
	"github.com/glabrego/copilotlog/internal/chat"
	tuitree "github.com/glabrego/copilotlog/internal/tui/tree"
)

func ClampCursor(cursor, size int) int {
	if size <= 0 {
		return 0
	}
	if cursor >= size {
		return size - 1
	}
	if cursor < 0 {
		return 0
	}
	return cursor
}

func PageStep(height int, hasStatus bool) int {
	if height <= 0 {
		return 10
	}
	headerLines := 6
	if hasStatus {
		headerLines += 2
	}
	step := height - headerLines
	if step < 3 {
		step = 3
	}
	return step
}

func CenteredWindow(totalRows, cursor, height int) (int, int) {
	if totalRows <= 0 {
		return 0, 0
	}
	if height <= 0 || totalRows <= height {
		return 0, totalRows
	}
	cursor = ClampCursor(cursor, totalRows)
	start := cursor - height/2
	if start < 0 {
		start = 0
	}
	maxStart := totalRows - height
	if start > maxStart {
		start = maxStart
	}
	return start, start + height
}

func ChatIndexByID(chats []chat.Chat, id string) int {
	if id == "" {
		return -1
	}
	for i, c := range chats {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// RowForChat returns the tree row showing chats[chatIndex], or -1 when the
// chat is hidden by a collapsed section.
func RowForChat(rows []tuitree.Row, chatIndex int) int {
	for i, row := range rows {
		if row.Kind == tuitree.RowChat && row.ChatIndex == chatIndex {
			return i
		}
	}
	return -1
}

// RowForSection returns the header row of the named section, or -1.
func RowForSection(rows []tuitree.Row, section string) int {
	for i, row := range rows {
		if row.Kind == tuitree.RowSection && row.Section == section {
			return i
		}
	}
	return -1
}

// ChatAtRow resolves the chat under the cursor. Section rows resolve to
// nothing so that moving over a header never changes the selection.
func ChatAtRow(rows []tuitree.Row, cursor int) (int, bool) {
	if cursor < 0 || cursor >= len(rows) {
		return 0, false
	}
	if rows[cursor].Kind != tuitree.RowChat {
		return 0, false
	}
	return rows[cursor].ChatIndex, true
}

// CursorAfterRebuild keeps the cursor on the selected chat when it is still
// visible, otherwise clamps the previous cursor to the new rows.
func CursorAfterRebuild(rows []tuitree.Row, chats []chat.Chat, selectedID string, prevCursor int) int {
	if idx := ChatIndexByID(chats, selectedID); idx >= 0 {
		if row := RowForChat(rows, idx); row >= 0 {
			return row
		}
	}
	return ClampCursor(prevCursor, len(rows))
}
