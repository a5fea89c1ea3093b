// Package kv provides a small local key-value store for durable state.
//
// Values are opaque strings addressed by key, in the manner of browser
// local storage: a write replaces the previous value for that key and the
// store enforces a total size quota.
package kv

import "errors"

var (
	// ErrNotExist is returned by Get when the key has no value.
	ErrNotExist = errors.New("kv: key does not exist")
	// ErrQuotaExceeded is returned when a write would grow the store past its quota.
	ErrQuotaExceeded = errors.New("kv: quota exceeded")
	// ErrLocked is returned when the store lock could not be acquired in time.
	ErrLocked = errors.New("kv: store is locked")
	// ErrCorrupt is returned when the backing file cannot be decoded.
	ErrCorrupt = errors.New("kv: store file is corrupt")
)

// Store is a durable key-value store.
type Store interface {
	// Get returns the value stored under key, or ErrNotExist.
	Get(key string) ([]byte, error)
	// Set replaces the value stored under key.
	Set(key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
	// Keys returns all keys in sorted order.
	Keys() ([]string, error)
}

// DefaultMaxBytes matches the per-origin quota most browsers give local storage.
const DefaultMaxBytes int64 = 5 << 20

func sizeOf(data map[string]string) int64 {
	var n int64
	for k, v := range data {
		n += int64(len(k) + len(v))
	}
	return n
}
