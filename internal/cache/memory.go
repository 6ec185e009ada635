package cache

import (
	"sync"
	"time"
)

// MemoryStorage is the default in-process backend. Expiration is ignored:
// view entries live until invalidated or flushed.
type MemoryStorage struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryStorage creates an empty in-process storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{entries: make(map[string][]byte)}
}

// Get returns the stored value for key, or nil when absent.
func (m *MemoryStorage) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries[key], nil
}

// Set stores val under key.
func (m *MemoryStorage) Set(key string, val []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = append([]byte(nil), val...)
	return nil
}

// Delete removes key.
func (m *MemoryStorage) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Reset removes all keys.
func (m *MemoryStorage) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string][]byte)
	return nil
}

// Len reports the number of stored entries.
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
