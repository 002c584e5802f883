package tree

import (
	"time"

	"github.com/glabrego/copilotlog/internal/chat"
)

type RowKind string

const (
	RowSection RowKind = "section"
	RowChat    RowKind = "chat"
)

const (
	SectionToday     = "Today"
	SectionYesterday = "Yesterday"
	SectionThisWeek  = "This week"
	SectionEarlier   = "Earlier"
)

var sectionOrder = []string{SectionToday, SectionYesterday, SectionThisWeek, SectionEarlier}

type Row struct {
	Kind      RowKind
	Label     string
	Section   string
	ChatIndex int
}

type BuildOptions struct {
	Compact           bool
	Now               time.Time
	CollapsedSections map[string]bool
}

// SectionFor buckets a chat by its local creation day relative to now.
// Chats with an unparseable timestamp land in Earlier.
func SectionFor(c chat.Chat, now time.Time) string {
	created := c.Created()
	if created.IsZero() {
		return SectionEarlier
	}
	loc := now.Location()
	today := startOfDay(now)
	day := startOfDay(created.In(loc))
	switch {
	case !day.Before(today):
		return SectionToday
	case !day.Before(today.AddDate(0, 0, -1)):
		return SectionYesterday
	case !day.Before(today.AddDate(0, 0, -6)):
		return SectionThisWeek
	default:
		return SectionEarlier
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// BuildRows lays out chats under day sections. Within a section the list
// order is preserved, so the store's newest-first ordering carries through.
func BuildRows(chats []chat.Chat, opts BuildOptions) []Row {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	if opts.Compact {
		rows := make([]Row, 0, len(chats))
		for i, c := range chats {
			rows = append(rows, Row{
				Kind:      RowChat,
				Section:   SectionFor(c, now),
				ChatIndex: i,
			})
		}
		return rows
	}

	grouped := make(map[string][]int, len(sectionOrder))
	for i, c := range chats {
		s := SectionFor(c, now)
		grouped[s] = append(grouped[s], i)
	}

	rows := make([]Row, 0, len(chats)+len(sectionOrder))
	for _, section := range sectionOrder {
		indices := grouped[section]
		if len(indices) == 0 {
			continue
		}
		rows = append(rows, Row{Kind: RowSection, Label: section, Section: section})
		if opts.CollapsedSections[section] {
			continue
		}
		for _, idx := range indices {
			rows = append(rows, Row{
				Kind:      RowChat,
				Section:   section,
				ChatIndex: idx,
			})
		}
	}
	return rows
}

// SectionCount reports how many chats fall into each non-empty section.
func SectionCount(chats []chat.Chat, now time.Time) map[string]int {
	out := make(map[string]int, len(sectionOrder))
	for _, c := range chats {
		out[SectionFor(c, now)]++
	}
	return out
}
