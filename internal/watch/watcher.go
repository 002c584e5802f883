package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"
)

const (
	defaultDebounce = 250 * time.Millisecond
	defaultEvery    = 100 * time.Millisecond
	defaultBurst    = 8
)

// DropDir reports JSON files created or rewritten in a directory. Bursts of
// events for the same path are collapsed into one after the debounce window,
// and emits across paths are rate limited.
type DropDir struct {
	dir      string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	limiter  *rate.Limiter
	events   chan string
	errors   chan error
	done     chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	mu       sync.Mutex
	idle     *sync.Cond
	closed   bool
	inflight int
	pending  map[string]*time.Timer
}

type Option func(*DropDir)

// WithRateLimit allows burst emits at once and one more every interval.
func WithRateLimit(every time.Duration, burst int) Option {
	return func(d *DropDir) {
		d.limiter = rate.NewLimiter(rate.Every(every), max(1, burst))
	}
}

func New(dir string, debounce time.Duration, opts ...Option) (*DropDir, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	dir = abs
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &DropDir{
		dir:      dir,
		watcher:  w,
		debounce: debounce,
		limiter:  rate.NewLimiter(rate.Every(defaultEvery), defaultBurst),
		events:   make(chan string, 16),
		errors:   make(chan error, 4),
		done:     make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
		pending:  make(map[string]*time.Timer),
	}
	d.idle = sync.NewCond(&d.mu)
	for _, opt := range opts {
		opt(d)
	}
	d.wg.Add(1)
	go d.loop()
	return d, nil
}

func (d *DropDir) Dir() string { return d.dir }

// Events yields absolute paths of JSON files ready for import. It is closed
// by Close, like Errors.
func (d *DropDir) Events() <-chan string { return d.events }

func (d *DropDir) Errors() <-chan error { return d.errors }

func (d *DropDir) Close() error {
	select {
	case <-d.done:
		return nil
	default:
	}
	close(d.done)
	d.cancel()
	err := d.watcher.Close()
	d.wg.Wait()

	d.mu.Lock()
	d.closed = true
	for path, t := range d.pending {
		t.Stop()
		delete(d.pending, path)
	}
	for d.inflight > 0 {
		d.idle.Wait()
	}
	d.mu.Unlock()

	close(d.events)
	close(d.errors)
	return err
}

func (d *DropDir) loop() {
	defer d.wg.Done()
	for {
		select {
		case <-d.done:
			return
		case ev, ok := <-d.watcher.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if !IsJSONPath(ev.Name) {
				continue
			}
			d.schedule(ev.Name)
		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			select {
			case d.errors <- err:
			default:
			}
		}
	}
}

func (d *DropDir) schedule(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.pending[path]; ok {
		t.Reset(d.debounce)
		return
	}
	d.pending[path] = time.AfterFunc(d.debounce, func() { d.emit(path) })
}

func (d *DropDir) emit(path string) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	delete(d.pending, path)
	d.inflight++
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.inflight--
		d.idle.Broadcast()
		d.mu.Unlock()
	}()

	if err := d.limiter.Wait(d.ctx); err != nil {
		return
	}
	select {
	case <-d.done:
	case d.events <- path:
	}
}

// IsJSONPath reports whether name looks like a JSON export.
func IsJSONPath(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(base), ".json")
}
