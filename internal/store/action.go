package store

import "github.com/glabrego/copilotlog/internal/chat"

// Action is the closed set of state transitions understood by Reduce.
type Action interface {
	action()
}

type SetUser struct{ User *chat.User }

type AddChat struct{ Chat chat.Chat }

type UpdateChat struct {
	ID     string
	Update chat.Update
}

type DeleteChat struct{ ID string }

// SelectChat selects ID. An empty ID clears the selection.
type SelectChat struct{ ID string }

type SetChats struct{ Chats []chat.Chat }

type SetFilter struct{ Filter chat.Filter }

type SetTheme struct{ Theme chat.Theme }

type ToggleSidebar struct{}

type SetUploadMode struct{ Mode chat.UploadMode }

func (SetUser) action()       {}
func (AddChat) action()       {}
func (UpdateChat) action()    {}
func (DeleteChat) action()    {}
func (SelectChat) action()    {}
func (SetChats) action()      {}
func (SetFilter) action()     {}
func (SetTheme) action()      {}
func (ToggleSidebar) action() {}
func (SetUploadMode) action() {}
