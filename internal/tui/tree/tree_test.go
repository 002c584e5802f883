package tree

import (
	"reflect"
	"testing"
	"time"

	"github.com/glabrego/copilotlog/internal/chat"
)

var testNow = time.Date(2026, 3, 12, 15, 0, 0, 0, time.UTC)

func stamp(t time.Time) string {
	return chat.FormatTimestamp(t)
}

func TestSectionFor(t *testing.T) {
	cases := []struct {
		created string
		want    string
	}{
		{stamp(testNow.Add(-time.Hour)), SectionToday},
		{stamp(time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)), SectionToday},
		{stamp(time.Date(2026, 3, 11, 23, 59, 0, 0, time.UTC)), SectionYesterday},
		{stamp(time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC)), SectionThisWeek},
		{stamp(time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)), SectionEarlier},
		{"garbage", SectionEarlier},
		{"", SectionEarlier},
	}
	for _, tc := range cases {
		if got := SectionFor(chat.Chat{CreatedAt: tc.created}, testNow); got != tc.want {
			t.Fatalf("SectionFor(%q)=%q want %q", tc.created, got, tc.want)
		}
	}
}

func TestBuildRows_GroupsBySectionInListOrder(t *testing.T) {
	chats := []chat.Chat{
		{ID: "a", CreatedAt: stamp(testNow.Add(-time.Minute))},
		{ID: "b", CreatedAt: stamp(testNow.AddDate(0, 0, -30))},
		{ID: "c", CreatedAt: stamp(testNow.Add(-2 * time.Hour))},
		{ID: "d", CreatedAt: stamp(testNow.AddDate(0, 0, -1))},
	}
	rows := BuildRows(chats, BuildOptions{Now: testNow})

	var got []string
	for _, row := range rows {
		if row.Kind == RowSection {
			got = append(got, "#"+row.Label)
			continue
		}
		got = append(got, chats[row.ChatIndex].ID)
	}
	want := []string{"#Today", "a", "c", "#Yesterday", "d", "#Earlier", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected rows: got=%v want=%v", got, want)
	}
}

func TestBuildRows_CollapsedSectionKeepsHeader(t *testing.T) {
	chats := []chat.Chat{
		{ID: "a", CreatedAt: stamp(testNow)},
		{ID: "b", CreatedAt: stamp(testNow.AddDate(0, 0, -1))},
	}
	rows := BuildRows(chats, BuildOptions{
		Now:               testNow,
		CollapsedSections: map[string]bool{SectionToday: true},
	})
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %+v", rows)
	}
	if rows[0].Kind != RowSection || rows[0].Label != SectionToday {
		t.Fatalf("expected Today header first, got %+v", rows[0])
	}
	if rows[1].Kind != RowSection || rows[1].Label != SectionYesterday {
		t.Fatalf("expected Yesterday header second, got %+v", rows[1])
	}
	if rows[2].Kind != RowChat || rows[2].ChatIndex != 1 {
		t.Fatalf("expected chat b under Yesterday, got %+v", rows[2])
	}
}

func TestBuildRows_CompactIsFlat(t *testing.T) {
	chats := []chat.Chat{
		{ID: "a", CreatedAt: stamp(testNow.AddDate(0, 0, -30))},
		{ID: "b", CreatedAt: stamp(testNow)},
	}
	rows := BuildRows(chats, BuildOptions{Compact: true, Now: testNow})
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %+v", rows)
	}
	for i, row := range rows {
		if row.Kind != RowChat || row.ChatIndex != i {
			t.Fatalf("unexpected compact row %d: %+v", i, row)
		}
	}
	if rows[0].Section != SectionEarlier || rows[1].Section != SectionToday {
		t.Fatalf("compact rows should still carry their section: %+v", rows)
	}
}

func TestBuildRows_Empty(t *testing.T) {
	if rows := BuildRows(nil, BuildOptions{Now: testNow}); len(rows) != 0 {
		t.Fatalf("expected no rows, got %+v", rows)
	}
}

func TestSectionCount(t *testing.T) {
	chats := []chat.Chat{
		{CreatedAt: stamp(testNow)},
		{CreatedAt: stamp(testNow)},
		{CreatedAt: "bad"},
	}
	got := SectionCount(chats, testNow)
	want := map[string]int{SectionToday: 2, SectionEarlier: 1}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected counts: got=%v want=%v", got, want)
	}
}
