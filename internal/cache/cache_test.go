package cache

import (
	"errors"
	"testing"
	"time"

	"einnames/internal/models"
)

func view(ein int64, names ...string) *models.RecordView {
	return &models.RecordView{
		EIN:        ein,
		Names:      names,
		TotalNames: len(names),
		Status:     models.StatusNotStarted,
	}
}

func TestViewCacheGetSet(t *testing.T) {
	c := NewMemory()

	if _, ok := c.Get(100); ok {
		t.Fatal("Get on empty cache returned a view")
	}
	if c.Misses() != 1 {
		t.Errorf("Misses = %d, want 1", c.Misses())
	}

	c.Set(100, view(100, "Acme Inc"))

	got, ok := c.Get(100)
	if !ok {
		t.Fatal("Get after Set returned no view")
	}
	if got.EIN != 100 || len(got.Names) != 1 || got.Names[0] != "Acme Inc" {
		t.Errorf("cached view = %+v", got)
	}
	if c.Hits() != 1 {
		t.Errorf("Hits = %d, want 1", c.Hits())
	}
}

func TestViewCacheInvalidate(t *testing.T) {
	c := NewMemory()
	c.Set(100, view(100, "Acme Inc"))
	c.Set(200, view(200, "Beta LLC"))

	c.Invalidate(100)

	if _, ok := c.Get(100); ok {
		t.Error("invalidated entry still cached")
	}
	if _, ok := c.Get(200); !ok {
		t.Error("untouched entry was dropped")
	}
}

func TestViewCacheInvalidateMultiple(t *testing.T) {
	c := NewMemory()
	c.Set(1, view(1))
	c.Set(2, view(2))
	c.Set(3, view(3))

	c.Invalidate(1, 3)

	if _, ok := c.Get(1); ok {
		t.Error("entry 1 still cached")
	}
	if _, ok := c.Get(3); ok {
		t.Error("entry 3 still cached")
	}
	if _, ok := c.Get(2); !ok {
		t.Error("entry 2 was dropped")
	}
}

func TestViewCacheFlush(t *testing.T) {
	storage := NewMemoryStorage()
	c := New(storage)
	c.Set(1, view(1))
	c.Set(2, view(2))

	c.Flush()

	if storage.Len() != 0 {
		t.Errorf("storage has %d entries after Flush, want 0", storage.Len())
	}
}

func TestViewCacheCorruptEntry(t *testing.T) {
	storage := NewMemoryStorage()
	c := New(storage)

	if err := storage.Set(key(5), []byte("{not json"), 0); err != nil {
		t.Fatal(err)
	}

	if _, ok := c.Get(5); ok {
		t.Error("corrupt entry returned as hit")
	}
	raw, _ := storage.Get(key(5))
	if raw != nil {
		t.Error("corrupt entry was not dropped")
	}
}

// failingStorage errors on every operation.
type failingStorage struct{}

func (failingStorage) Get(string) ([]byte, error)              { return nil, errors.New("down") }
func (failingStorage) Set(string, []byte, time.Duration) error { return errors.New("down") }
func (failingStorage) Delete(string) error                     { return errors.New("down") }
func (failingStorage) Reset() error                            { return errors.New("down") }

func TestViewCacheBackendFailureIsMiss(t *testing.T) {
	c := New(failingStorage{})

	c.Set(9, view(9))
	if _, ok := c.Get(9); ok {
		t.Error("failing backend produced a hit")
	}
	// Invalidate and Flush must not panic on a broken backend.
	c.Invalidate(9)
	c.Flush()
}
