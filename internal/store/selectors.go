package store

import "github.com/glabrego/copilotlog/internal/chat"

// SelectedChat returns the chat referenced by SelectedChatID, if any.
func SelectedChat(s AppState) (chat.Chat, bool) {
	if s.SelectedChatID == "" {
		return chat.Chat{}, false
	}
	idx := indexOf(s.Chats, s.SelectedChatID)
	if idx < 0 {
		return chat.Chat{}, false
	}
	return s.Chats[idx], true
}

// FilteredChats returns the chats visible under the current filter.
func FilteredChats(s AppState) []chat.Chat {
	if s.Filter == chat.FilterAll || !s.Filter.Valid() {
		return s.Chats
	}
	out := make([]chat.Chat, 0, len(s.Chats))
	for _, c := range s.Chats {
		if s.Filter.Match(c) {
			out = append(out, c)
		}
	}
	return out
}
