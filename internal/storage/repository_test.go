package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "copilotlog.db")
	repo, err := NewRepository(dbPath)
	if err != nil {
		t.Fatalf("NewRepository returned error: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	if err := repo.Init(context.Background()); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}
	return repo
}

func TestRepository_SetGetRemove(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	if _, ok, err := repo.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}

	if err := repo.Set(ctx, "copilotlog_theme", "dark"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	value, ok, err := repo.Get(ctx, "copilotlog_theme")
	if err != nil || !ok || value != "dark" {
		t.Fatalf("unexpected Get result: %q ok=%v err=%v", value, ok, err)
	}

	if err := repo.Remove(ctx, "copilotlog_theme"); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if _, ok, _ := repo.Get(ctx, "copilotlog_theme"); ok {
		t.Fatal("expected key to be removed")
	}
}

func TestRepository_SetUpserts(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	if err := repo.Set(ctx, "k", "one"); err != nil {
		t.Fatalf("initial Set returned error: %v", err)
	}
	if err := repo.Set(ctx, "k", "two"); err != nil {
		t.Fatalf("second Set returned error: %v", err)
	}
	value, _, err := repo.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if value != "two" {
		t.Fatalf("expected updated value, got %q", value)
	}
}

func TestRepository_SetManyAndCheckWritable(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	if err := repo.CheckWritable(ctx); err != nil {
		t.Fatalf("CheckWritable returned error: %v", err)
	}
	if _, ok, _ := repo.Get(ctx, "__write_check__"); ok {
		t.Fatal("write check must not leave a row behind")
	}

	err := repo.SetMany(ctx, map[string]string{"a": "1", "b": "2"})
	if err != nil {
		t.Fatalf("SetMany returned error: %v", err)
	}
	for key, want := range map[string]string{"a": "1", "b": "2"} {
		got, ok, err := repo.Get(ctx, key)
		if err != nil || !ok || got != want {
			t.Fatalf("Get(%q) = %q ok=%v err=%v, want %q", key, got, ok, err, want)
		}
	}
}

func TestRepository_PersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "copilotlog.db")
	ctx := context.Background()

	first, err := NewRepository(dbPath)
	if err != nil {
		t.Fatalf("NewRepository returned error: %v", err)
	}
	if err := first.Init(ctx); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}
	if err := first.Set(ctx, "copilotlog_version", "1"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	_ = first.Close()

	second, err := NewRepository(dbPath)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	t.Cleanup(func() { _ = second.Close() })
	value, ok, err := second.Get(ctx, "copilotlog_version")
	if err != nil || !ok || value != "1" {
		t.Fatalf("unexpected value after reopen: %q ok=%v err=%v", value, ok, err)
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	_ = m.Set(ctx, "a", "1")
	if v, ok, _ := m.Get(ctx, "a"); !ok || v != "1" {
		t.Fatalf("unexpected memory value: %q ok=%v", v, ok)
	}
	_ = m.Remove(ctx, "a")
	if len(m.Snapshot()) != 0 {
		t.Fatalf("expected empty snapshot, got %v", m.Snapshot())
	}
}

var _ BatchKV = (*Repository)(nil)
var _ KV = (*Memory)(nil)
