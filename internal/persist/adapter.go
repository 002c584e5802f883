package persist

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/glabrego/copilotlog/internal/chat"
	"github.com/glabrego/copilotlog/internal/logging"
	"github.com/glabrego/copilotlog/internal/storage"
	"github.com/glabrego/copilotlog/internal/store"
)

const (
	KeyChats    = "copilotlog_chats"
	KeySelected = "copilotlog_selected"
	KeyVersion  = "copilotlog_version"
	KeyTheme    = "copilotlog_theme"

	// SchemaVersion gates the stored chat list. Stored chats written under any
	// other version are discarded on hydration.
	SchemaVersion = 1
)

const defaultTimeout = 3 * time.Second

// Adapter mirrors store state into a KV and rehydrates it at startup.
// Storage failures are logged and never returned.
type Adapter struct {
	kv          storage.KV
	log         *logging.Logger
	timeout     time.Duration
	systemTheme func() (chat.Theme, bool)
	applyTheme  func(chat.Theme)
}

type Option func(*Adapter)

// WithSystemTheme sets the color-scheme preference used when no theme is stored.
func WithSystemTheme(fn func() (chat.Theme, bool)) Option {
	return func(a *Adapter) { a.systemTheme = fn }
}

// WithThemeApplier sets the hook that flips the visual dark flag on theme changes.
func WithThemeApplier(fn func(chat.Theme)) Option {
	return func(a *Adapter) { a.applyTheme = fn }
}

func WithTimeout(d time.Duration) Option {
	return func(a *Adapter) {
		if d > 0 {
			a.timeout = d
		}
	}
}

func New(kv storage.KV, log *logging.Logger, opts ...Option) *Adapter {
	a := &Adapter{kv: kv, log: log, timeout: defaultTimeout}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Hydrate builds the startup state from storage.
func (a *Adapter) Hydrate() store.AppState {
	initial := store.InitialState()
	if a.kv == nil {
		initial.Theme = a.defaultTheme("")
		return initial
	}

	ctx, cancel := a.context()
	defer cancel()

	stored, hasChats, err := a.kv.Get(ctx, KeyChats)
	if err != nil {
		a.log.Error("hydrate: read chats: %v", err)
		return initial
	}
	selected, _, err := a.kv.Get(ctx, KeySelected)
	if err != nil {
		a.log.Error("hydrate: read selected chat: %v", err)
		return initial
	}
	version, _, err := a.kv.Get(ctx, KeyVersion)
	if err != nil {
		a.log.Error("hydrate: read schema version: %v", err)
		return initial
	}
	storedTheme, _, err := a.kv.Get(ctx, KeyTheme)
	if err != nil {
		a.log.Error("hydrate: read theme: %v", err)
		return initial
	}

	state := initial
	state.Theme = a.defaultTheme(storedTheme)

	if !hasChats || stored == "" || version != strconv.Itoa(SchemaVersion) {
		if hasChats {
			a.log.Info("hydrate: discarding chats stored under schema version %q", version)
		}
		return state
	}

	var chats []chat.Chat
	if err := json.Unmarshal([]byte(stored), &chats); err != nil {
		a.log.Error("hydrate: decode chats: %v", err)
		return initial
	}
	if chats == nil {
		chats = []chat.Chat{}
	}
	state.Chats = chats
	state.SelectedChatID = selected
	state.UI.SidebarOpen = len(chats) > 0
	a.log.Info("hydrate: loaded %d chats", len(chats))
	return state
}

func (a *Adapter) defaultTheme(stored string) chat.Theme {
	if t := chat.Theme(stored); t.Valid() {
		return t
	}
	if a.systemTheme != nil {
		if t, ok := a.systemTheme(); ok && t.Valid() {
			return t
		}
	}
	return chat.ThemeLight
}

// Sync writes through whatever changed between prev and next. It is meant
// to be registered as a store observer.
func (a *Adapter) Sync(prev, next store.AppState) {
	if !chat.Equal(prev.Chats, next.Chats) {
		a.saveChats(next.Chats)
	}
	if prev.SelectedChatID != next.SelectedChatID {
		a.saveSelected(next.SelectedChatID)
	}
	if prev.Theme != next.Theme {
		a.saveTheme(next.Theme)
	}
}

// SyncAll writes the whole persisted subset of s.
func (a *Adapter) SyncAll(s store.AppState) {
	a.saveChats(s.Chats)
	a.saveSelected(s.SelectedChatID)
	a.saveTheme(s.Theme)
}

func (a *Adapter) saveChats(chats []chat.Chat) {
	if chats == nil {
		chats = []chat.Chat{}
	}
	data, err := json.Marshal(chats)
	if err != nil {
		a.log.Error("sync: encode chats: %v", err)
		return
	}
	if a.kv == nil {
		return
	}

	ctx, cancel := a.context()
	defer cancel()

	version := strconv.Itoa(SchemaVersion)
	if batch, ok := a.kv.(storage.BatchKV); ok {
		err = batch.SetMany(ctx, map[string]string{KeyChats: string(data), KeyVersion: version})
	} else {
		err = a.kv.Set(ctx, KeyChats, string(data))
		if err == nil {
			err = a.kv.Set(ctx, KeyVersion, version)
		}
	}
	if err != nil {
		a.log.Error("sync: save chats: %v", err)
	}
}

func (a *Adapter) saveSelected(id string) {
	if a.kv == nil {
		return
	}
	ctx, cancel := a.context()
	defer cancel()

	var err error
	if id != "" {
		err = a.kv.Set(ctx, KeySelected, id)
	} else {
		err = a.kv.Remove(ctx, KeySelected)
	}
	if err != nil {
		a.log.Error("sync: save selected chat: %v", err)
	}
}

func (a *Adapter) saveTheme(t chat.Theme) {
	if a.kv != nil {
		ctx, cancel := a.context()
		if err := a.kv.Set(ctx, KeyTheme, string(t)); err != nil {
			a.log.Error("sync: save theme: %v", err)
		}
		cancel()
	}
	if a.applyTheme != nil {
		a.applyTheme(t)
	}
}

// ApplyTheme runs the theme hook without touching storage.
func (a *Adapter) ApplyTheme(t chat.Theme) {
	if a.applyTheme != nil {
		a.applyTheme(t)
	}
}

func (a *Adapter) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), a.timeout)
}
