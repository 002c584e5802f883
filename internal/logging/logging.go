package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger writes leveled lines to a file. A nil or disabled Logger is a no-op.
type Logger struct {
	mu     sync.Mutex
	out    io.Writer
	closer io.Closer
	echo   io.Writer
	now    func() time.Time
}

// Open creates a logger appending to path. An empty path yields a disabled
// logger.
func Open(path string) (*Logger, error) {
	if path == "" {
		return Discard(), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	l := New(f)
	l.closer = f
	return l, nil
}

func New(w io.Writer) *Logger {
	return &Logger{out: w, now: time.Now}
}

func Discard() *Logger {
	return &Logger{}
}

func (l *Logger) Enabled() bool {
	return l != nil && l.out != nil
}

// SetErrorEcho copies Error lines to w as well, e.g. stderr for CLI runs.
// Passing nil turns echoing off.
func (l *Logger) SetErrorEcho(w io.Writer) {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.echo = w
	l.mu.Unlock()
}

func (l *Logger) logf(level, format string, args ...any) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.out == nil && (l.echo == nil || level != "ERROR") {
		return
	}

	msg := fmt.Sprintf(format, args...)
	if l.out != nil {
		ts := l.now().Format("2006-01-02 15:04:05.000")
		fmt.Fprintf(l.out, "[%s] %s %s\n", ts, level, msg)
	}
	if level == "ERROR" && l.echo != nil {
		fmt.Fprintf(l.echo, "warning: %s\n", msg)
	}
}

func (l *Logger) Debug(format string, args ...any) { l.logf("DEBUG", format, args...) }

func (l *Logger) Info(format string, args ...any) { l.logf("INFO", format, args...) }

func (l *Logger) Error(format string, args ...any) { l.logf("ERROR", format, args...) }

func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
