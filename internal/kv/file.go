package kv

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 10 * time.Millisecond

// Option configures a FileStore.
type Option func(*FileStore)

// WithMaxBytes sets the store quota. Zero or negative disables the quota.
func WithMaxBytes(n int64) Option {
	return func(s *FileStore) {
		s.maxBytes = n
	}
}

// WithLockTimeout sets how long operations wait for the file lock.
func WithLockTimeout(d time.Duration) Option {
	return func(s *FileStore) {
		s.lockTimeout = d
	}
}

// FileStore keeps every key in a single JSON object file. Each operation
// takes a file lock so separate processes sharing the file see whole writes,
// and writes replace the file atomically.
type FileStore struct {
	path        string
	lock        *flock.Flock
	maxBytes    int64
	lockTimeout time.Duration
}

// NewFileStore opens (without reading) a store backed by path, locking
// through lockPath. The parent directories are created if missing.
func NewFileStore(path, lockPath string, opts ...Option) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("store path is empty")
	}
	if lockPath == "" {
		lockPath = path + ".lock"
	}
	for _, dir := range []string{filepath.Dir(path), filepath.Dir(lockPath)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}

	s := &FileStore{
		path:        path,
		lock:        flock.New(lockPath),
		maxBytes:    DefaultMaxBytes,
		lockTimeout: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Get returns the value stored under key.
func (s *FileStore) Get(key string) ([]byte, error) {
	var value []byte
	err := s.withLock(true, func() error {
		data, err := s.read()
		if err != nil {
			return err
		}
		v, ok := data[key]
		if !ok {
			return ErrNotExist
		}
		value = []byte(v)
		return nil
	})
	return value, err
}

// Set replaces the value stored under key. A corrupt backing file is
// replaced rather than blocking every future write.
func (s *FileStore) Set(key string, value []byte) error {
	return s.withLock(false, func() error {
		data, err := s.read()
		if err != nil && !errors.Is(err, ErrCorrupt) {
			return err
		}
		if data == nil {
			data = make(map[string]string)
		}
		data[key] = string(value)
		if s.maxBytes > 0 && sizeOf(data) > s.maxBytes {
			return fmt.Errorf("set %q (%d bytes): %w", key, len(value), ErrQuotaExceeded)
		}
		return s.write(data)
	})
}

// Delete removes key.
func (s *FileStore) Delete(key string) error {
	return s.withLock(false, func() error {
		data, err := s.read()
		if err != nil {
			return err
		}
		if _, ok := data[key]; !ok {
			return nil
		}
		delete(data, key)
		return s.write(data)
	})
}

// Keys returns all keys in sorted order.
func (s *FileStore) Keys() ([]string, error) {
	var keys []string
	err := s.withLock(true, func() error {
		data, err := s.read()
		if err != nil {
			return err
		}
		keys = make([]string, 0, len(data))
		for k := range data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return nil
	})
	return keys, err
}

func (s *FileStore) withLock(shared bool, fn func() error) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.lockTimeout)
	defer cancel()

	var locked bool
	var err error
	if shared {
		locked, err = s.lock.TryRLockContext(ctx, lockRetryDelay)
	} else {
		locked, err = s.lock.TryLockContext(ctx, lockRetryDelay)
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrLocked
		}
		return fmt.Errorf("lock store: %w", err)
	}
	if !locked {
		return ErrLocked
	}
	defer func() { _ = s.lock.Unlock() }()

	return fn()
}

// read loads the whole store. A missing file is an empty store.
func (s *FileStore) read() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read store: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]string{}, nil
	}

	data := make(map[string]string)
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return data, nil
}

func (s *FileStore) write(data map[string]string) error {
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	encoded = append(encoded, '\n')
	if err := writeFileAtomic(s.path, encoded, 0o644); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return nil
}
