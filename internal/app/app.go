package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glabrego/copilotlog/internal/chat"
	"github.com/glabrego/copilotlog/internal/config"
	"github.com/glabrego/copilotlog/internal/export"
	"github.com/glabrego/copilotlog/internal/ingest"
	"github.com/glabrego/copilotlog/internal/logging"
	"github.com/glabrego/copilotlog/internal/persist"
	"github.com/glabrego/copilotlog/internal/storage"
	"github.com/glabrego/copilotlog/internal/store"
)

var (
	ErrChatNotFound  = errors.New("chat not found")
	ErrAmbiguousChat = errors.New("chat id prefix is ambiguous")
)

// Service wires storage, persistence and the store together. All methods
// that dispatch must be called from the goroutine that owns the store.
type Service struct {
	store   *store.Store
	adapter *persist.Adapter
	log     *logging.Logger
	closer  func() error
	now     func() time.Time
}

type Option func(*serviceOptions)

type serviceOptions struct {
	persistOpts []persist.Option
	now         func() time.Time
}

func WithPersistOptions(opts ...persist.Option) Option {
	return func(o *serviceOptions) { o.persistOpts = append(o.persistOpts, opts...) }
}

func WithClock(now func() time.Time) Option {
	return func(o *serviceOptions) { o.now = now }
}

// NewService hydrates state from kv and returns a ready service.
func NewService(kv storage.KV, log *logging.Logger, opts ...Option) *Service {
	o := serviceOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if log == nil {
		log = logging.Discard()
	}
	adapter := persist.New(kv, log, o.persistOpts...)
	initial := adapter.Hydrate()
	adapter.ApplyTheme(initial.Theme)
	adapter.SyncAll(initial)
	svc := &Service{
		store:   store.New(initial, adapter.Sync),
		adapter: adapter,
		log:     log,
		now:     o.now,
	}
	if log.Enabled() {
		svc.store.Subscribe(svc.logTransition)
	}
	return svc
}

func (s *Service) logTransition(prev, next store.AppState) {
	if len(prev.Chats) != len(next.Chats) {
		s.log.Debug("chats %d -> %d", len(prev.Chats), len(next.Chats))
	}
	if prev.SelectedChatID != next.SelectedChatID {
		s.log.Debug("selected %q -> %q", prev.SelectedChatID, next.SelectedChatID)
	}
	if prev.Filter != next.Filter || prev.Theme != next.Theme {
		s.log.Debug("filter %s theme %s", next.Filter, next.Theme)
	}
}

// Open builds a service on the SQLite database named by cfg. If the database
// cannot be opened or written the service runs on in-memory storage.
func Open(ctx context.Context, cfg config.Config, log *logging.Logger, opts ...Option) *Service {
	kv, closer := openKV(ctx, cfg.DBPath, log)
	svc := NewService(kv, log, opts...)
	svc.closer = closer
	return svc
}

func openKV(ctx context.Context, path string, log *logging.Logger) (storage.KV, func() error) {
	repo, err := storage.NewRepository(path)
	if err != nil {
		log.Error("storage init: %v; falling back to memory", err)
		return storage.NewMemory(), nil
	}
	if err := repo.Init(ctx); err != nil {
		log.Error("storage schema: %v; falling back to memory", err)
		_ = repo.Close()
		return storage.NewMemory(), nil
	}
	if err := repo.CheckWritable(ctx); err != nil {
		log.Error("storage write check (%s): %v; falling back to memory", path, err)
		_ = repo.Close()
		return storage.NewMemory(), nil
	}
	return repo, repo.Close
}

func (s *Service) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

func (s *Service) Store() *store.Store { return s.store }

func (s *Service) State() store.AppState { return s.store.State() }

func (s *Service) Dispatch(a store.Action) store.AppState { return s.store.Dispatch(a) }

// ChatFromFile reads and converts path without touching the store.
func (s *Service) ChatFromFile(path string) (chat.Chat, error) {
	u, err := ingest.ReadFile(path)
	if err != nil {
		return chat.Chat{}, err
	}
	return ingest.FromUpload(u, s.now())
}

// ChatFromPaste converts pasted text without touching the store.
func (s *Service) ChatFromPaste(text string) (chat.Chat, error) {
	return ingest.FromPaste(text, s.now())
}

func (s *Service) Add(c chat.Chat) {
	s.store.Dispatch(store.AddChat{Chat: c})
	s.log.Info("added chat %s (%q)", c.ID, c.Title)
}

func (s *Service) ImportFile(path string) (chat.Chat, error) {
	c, err := s.ChatFromFile(path)
	if err != nil {
		s.log.Info("import %s rejected: %v", path, err)
		return chat.Chat{}, err
	}
	s.Add(c)
	return c, nil
}

func (s *Service) ImportPaste(text string) (chat.Chat, error) {
	c, err := s.ChatFromPaste(text)
	if err != nil {
		s.log.Info("paste rejected: %v", err)
		return chat.Chat{}, err
	}
	s.Add(c)
	return c, nil
}

// FindChat resolves a full id or a unique id prefix.
func (s *Service) FindChat(idOrPrefix string) (chat.Chat, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return chat.Chat{}, ErrChatNotFound
	}
	chats := s.store.State().Chats
	var match *chat.Chat
	for i, c := range chats {
		if c.ID == idOrPrefix {
			return c, nil
		}
		if strings.HasPrefix(c.ID, idOrPrefix) {
			if match != nil {
				return chat.Chat{}, fmt.Errorf("%w: %s", ErrAmbiguousChat, idOrPrefix)
			}
			match = &chats[i]
		}
	}
	if match == nil {
		return chat.Chat{}, fmt.Errorf("%w: %s", ErrChatNotFound, idOrPrefix)
	}
	return *match, nil
}

func (s *Service) SetShared(id string, shared bool) {
	s.store.Dispatch(store.UpdateChat{ID: id, Update: chat.Update{Shared: &shared}})
}

// ExportHTML renders the chat to out and marks it shared. out is either a
// directory or a file path ending in .html. It returns the written path.
func (s *Service) ExportHTML(id, out string) (string, error) {
	c, err := s.FindChat(id)
	if err != nil {
		return "", err
	}
	path, err := s.WriteExport(c, s.store.State().Theme, out)
	if err != nil {
		return "", err
	}
	s.SetShared(c.ID, true)
	return path, nil
}

// WriteExport writes c as a standalone HTML page without touching the store.
func (s *Service) WriteExport(c chat.Chat, theme chat.Theme, out string) (string, error) {
	opts := export.DefaultOptions()
	opts.Theme = theme
	opts.Now = s.now
	page, err := export.HTML(c, opts)
	if err != nil {
		return "", fmt.Errorf("render export: %w", err)
	}
	path := exportPath(c, out)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	if err := os.WriteFile(path, page, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	s.log.Info("exported chat %s to %s", c.ID, path)
	return path, nil
}

func exportPath(c chat.Chat, out string) string {
	if out == "" {
		out = "."
	}
	if strings.EqualFold(filepath.Ext(out), ".html") {
		return out
	}
	return filepath.Join(out, export.FileName(c))
}
