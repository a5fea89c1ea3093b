package kv

import (
	"fmt"
	"sort"
)

// MemoryStore is an in-process Store. It is used for ephemeral sessions
// and tests.
type MemoryStore struct {
	data     map[string]string
	maxBytes int64

	// Fail, when set, is consulted before every operation; a non-nil
	// return aborts the operation with that error.
	Fail func(op, key string) error
}

// NewMemoryStore returns an empty store with the given quota.
// Zero or negative disables the quota.
func NewMemoryStore(maxBytes int64) *MemoryStore {
	return &MemoryStore{
		data:     make(map[string]string),
		maxBytes: maxBytes,
	}
}

// Get returns the value stored under key.
func (m *MemoryStore) Get(key string) ([]byte, error) {
	if err := m.fail("get", key); err != nil {
		return nil, err
	}
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotExist
	}
	return []byte(v), nil
}

// Set replaces the value stored under key.
func (m *MemoryStore) Set(key string, value []byte) error {
	if err := m.fail("set", key); err != nil {
		return err
	}
	prev, had := m.data[key]
	m.data[key] = string(value)
	if m.maxBytes > 0 && sizeOf(m.data) > m.maxBytes {
		if had {
			m.data[key] = prev
		} else {
			delete(m.data, key)
		}
		return fmt.Errorf("set %q (%d bytes): %w", key, len(value), ErrQuotaExceeded)
	}
	return nil
}

// Delete removes key.
func (m *MemoryStore) Delete(key string) error {
	if err := m.fail("delete", key); err != nil {
		return err
	}
	delete(m.data, key)
	return nil
}

// Keys returns all keys in sorted order.
func (m *MemoryStore) Keys() ([]string, error) {
	if err := m.fail("keys", ""); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemoryStore) fail(op, key string) error {
	if m.Fail == nil {
		return nil
	}
	return m.Fail(op, key)
}
