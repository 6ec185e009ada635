// Package cache memoizes rendered record views keyed by EIN.
//
// Entries are removed, never updated in place, when a mutation touches a
// record; a full reload or persistence cycle flushes everything. The backing
// storage follows the gofiber storage contract so the cache can run on the
// in-process default or on Redis.
package cache

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"einnames/internal/models"
)

// Storage is the subset of the gofiber storage contract the cache needs.
// github.com/gofiber/storage/redis/v3 satisfies it directly.
type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, val []byte, exp time.Duration) error
	Delete(key string) error
	Reset() error
}

// ViewCache is a read-through cache of rendered record views.
type ViewCache struct {
	storage Storage

	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a cache over the given storage backend.
func New(storage Storage) *ViewCache {
	return &ViewCache{storage: storage}
}

// NewMemory creates a cache backed by the in-process memory storage.
func NewMemory() *ViewCache {
	return New(NewMemoryStorage())
}

// Get returns the cached view for ein, if present.
func (c *ViewCache) Get(ein int64) (*models.RecordView, bool) {
	raw, err := c.storage.Get(key(ein))
	if err != nil || raw == nil {
		if err != nil {
			slog.Error("cache get failed", "ein", ein, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}

	var view models.RecordView
	if err := json.Unmarshal(raw, &view); err != nil {
		slog.Error("cache entry corrupt, dropping", "ein", ein, "error", err)
		_ = c.storage.Delete(key(ein))
		c.misses.Add(1)
		return nil, false
	}

	c.hits.Add(1)
	return &view, true
}

// Set stores a freshly rendered view. Entries do not expire; they are
// removed explicitly when the underlying record changes.
func (c *ViewCache) Set(ein int64, view *models.RecordView) {
	raw, err := json.Marshal(view)
	if err != nil {
		slog.Error("cache marshal failed", "ein", ein, "error", err)
		return
	}
	if err := c.storage.Set(key(ein), raw, 0); err != nil {
		slog.Error("cache set failed", "ein", ein, "error", err)
	}
}

// Invalidate removes the entries for the given EINs.
func (c *ViewCache) Invalidate(eins ...int64) {
	for _, ein := range eins {
		if err := c.storage.Delete(key(ein)); err != nil {
			slog.Error("cache invalidate failed", "ein", ein, "error", err)
		}
	}
}

// Flush removes every entry.
func (c *ViewCache) Flush() {
	if err := c.storage.Reset(); err != nil {
		slog.Error("cache flush failed", "error", err)
	}
}

// Hits returns the number of cache hits since startup.
func (c *ViewCache) Hits() int64 { return c.hits.Load() }

// Misses returns the number of cache misses since startup.
func (c *ViewCache) Misses() int64 { return c.misses.Load() }

func key(ein int64) string {
	return "view:" + strconv.FormatInt(ein, 10)
}
