package store

import "github.com/glabrego/copilotlog/internal/chat"

type UIState struct {
	SidebarOpen bool
	UploadMode  chat.UploadMode
}

// AppState is the session view of chats, selection, filter and theme.
// SelectedChatID is empty when nothing is selected.
type AppState struct {
	User           *chat.User
	Chats          []chat.Chat
	SelectedChatID string
	Filter         chat.Filter
	Theme          chat.Theme
	UI             UIState
}

func InitialState() AppState {
	return AppState{
		Chats:  []chat.Chat{},
		Filter: chat.FilterAll,
		Theme:  chat.ThemeLight,
	}
}

// Reduce returns the state that results from applying a to s. It never
// mutates s; unknown actions return s unchanged.
func Reduce(s AppState, a Action) AppState {
	switch a := a.(type) {
	case SetUser:
		s.User = a.User
	case AddChat:
		chats := make([]chat.Chat, 0, len(s.Chats)+1)
		chats = append(chats, a.Chat)
		s.Chats = append(chats, s.Chats...)
		s.SelectedChatID = a.Chat.ID
		s.UI.SidebarOpen = true
	case UpdateChat:
		idx := indexOf(s.Chats, a.ID)
		if idx < 0 {
			return s
		}
		chats := append([]chat.Chat(nil), s.Chats...)
		merged := a.Update.Apply(chats[idx])
		merged.ID = chats[idx].ID
		chats[idx] = merged
		s.Chats = chats
	case DeleteChat:
		chats := make([]chat.Chat, 0, len(s.Chats))
		for _, c := range s.Chats {
			if c.ID != a.ID {
				chats = append(chats, c)
			}
		}
		s.Chats = chats
		if s.SelectedChatID == a.ID {
			s.SelectedChatID = ""
		}
	case SelectChat:
		s.SelectedChatID = a.ID
	case SetChats:
		s.Chats = append([]chat.Chat{}, a.Chats...)
	case SetFilter:
		if a.Filter.Valid() {
			s.Filter = a.Filter
		}
	case SetTheme:
		if a.Theme.Valid() {
			s.Theme = a.Theme
		}
	case ToggleSidebar:
		s.UI.SidebarOpen = !s.UI.SidebarOpen
	case SetUploadMode:
		if a.Mode.Valid() {
			s.UI.UploadMode = a.Mode
		}
	}
	return s
}

func indexOf(chats []chat.Chat, id string) int {
	for i, c := range chats {
		if c.ID == id {
			return i
		}
	}
	return -1
}
