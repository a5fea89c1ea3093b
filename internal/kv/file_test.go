package kv

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"
)

func newTestFileStore(t *testing.T, opts ...Option) *FileStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewFileStore(filepath.Join(dir, "store.json"), filepath.Join(dir, "store.lock"), opts...)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	return s
}

func TestFileStoreGetMissing(t *testing.T) {
	s := newTestFileStore(t)

	_, err := s.Get("tasks")
	if !errors.Is(err, ErrNotExist) {
		t.Fatalf("Get() error = %v, want ErrNotExist", err)
	}
}

func TestFileStoreSetGet(t *testing.T) {
	s := newTestFileStore(t)

	if err := s.Set("tasks", []byte(`[{"id":"a"}]`)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := s.Get("tasks")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != `[{"id":"a"}]` {
		t.Errorf("Get() = %s", got)
	}

	// Replace
	if err := s.Set("tasks", []byte(`[]`)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, _ = s.Get("tasks")
	if string(got) != `[]` {
		t.Errorf("Get() after replace = %s, want []", got)
	}
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state", "store.json")
	lock := filepath.Join(dir, "state", "store.lock")

	first, err := NewFileStore(path, lock)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if err := first.Set("tasks", []byte("persisted")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := first.Set("other", []byte("x")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	second, err := NewFileStore(path, lock)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	got, err := second.Get("tasks")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "persisted" {
		t.Errorf("Get() = %q, want persisted", got)
	}

	keys, err := second.Keys()
	if err != nil {
		t.Fatalf("Keys() error = %v", err)
	}
	if strings.Join(keys, ",") != "other,tasks" {
		t.Errorf("Keys() = %v, want [other tasks]", keys)
	}
}

func TestFileStoreDelete(t *testing.T) {
	s := newTestFileStore(t)

	if err := s.Delete("missing"); err != nil {
		t.Fatalf("Delete(missing) error = %v", err)
	}
	if err := s.Set("tasks", []byte("v")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Delete("tasks"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get("tasks"); !errors.Is(err, ErrNotExist) {
		t.Errorf("Get() after Delete error = %v, want ErrNotExist", err)
	}
}

func TestFileStoreQuota(t *testing.T) {
	s := newTestFileStore(t, WithMaxBytes(16))

	if err := s.Set("tasks", []byte("small")); err != nil {
		t.Fatalf("Set(small) error = %v", err)
	}
	err := s.Set("tasks", []byte("this value is far too large"))
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("Set(large) error = %v, want ErrQuotaExceeded", err)
	}

	// The previous value is untouched.
	got, err := s.Get("tasks")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "small" {
		t.Errorf("Get() = %q, want small", got)
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	s := newTestFileStore(t)
	if err := os.WriteFile(s.Path(), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Get("tasks"); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("Get() error = %v, want ErrCorrupt", err)
	}

	// Writes recover the file.
	if err := s.Set("tasks", []byte("fresh")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := s.Get("tasks")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "fresh" {
		t.Errorf("Get() = %q, want fresh", got)
	}
}

func TestFileStoreEmptyFile(t *testing.T) {
	s := newTestFileStore(t)
	if err := os.WriteFile(s.Path(), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get("tasks"); !errors.Is(err, ErrNotExist) {
		t.Fatalf("Get() error = %v, want ErrNotExist", err)
	}
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	s := newTestFileStore(t)
	for i := 0; i < 3; i++ {
		if err := s.Set("tasks", []byte("v")); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp.") {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}

func TestNewFileStoreEmptyPath(t *testing.T) {
	if _, err := NewFileStore("", ""); err == nil {
		t.Error("NewFileStore(\"\") should return error")
	}
}

func TestFileStoreLockTimeout(t *testing.T) {
	dir := t.TempDir()
	lockPath := filepath.Join(dir, "store.lock")
	s, err := NewFileStore(filepath.Join(dir, "store.json"), lockPath, WithLockTimeout(50*time.Millisecond))
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	holder := flock.New(lockPath)
	if err := holder.Lock(); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}

	start := time.Now()
	if err := s.Set("tasks", []byte("[]")); !errors.Is(err, ErrLocked) {
		t.Fatalf("Set() while locked error = %v, want ErrLocked", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("Set() gave up after %s, want about 50ms", elapsed)
	}

	if err := holder.Unlock(); err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
	if err := s.Set("tasks", []byte("[]")); err != nil {
		t.Fatalf("Set() after unlock error = %v", err)
	}
}
