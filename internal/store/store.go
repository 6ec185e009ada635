// Package store owns the full record collection and is the sole entry point
// for mutation. A single RWMutex serializes every mutation (including the
// persistence call) against all reads, so readers never observe a record
// mid-mutation and the persisted snapshot is always a consistent
// point-in-time view.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"einnames/internal/cache"
	"einnames/internal/models"
	"einnames/internal/persist"
)

// SeedSource supplies the immutable initial dataset when no working snapshot
// exists yet.
type SeedSource interface {
	Load(ctx context.Context) ([]persist.RecordSnapshot, error)
}

// Store holds every record keyed by EIN, plus the derived edited set and the
// stable listing order.
type Store struct {
	mu      sync.RWMutex
	records map[int64]*models.Record
	order   []int64
	edited  map[int64]struct{}
	loaded  bool

	cache *cache.ViewCache
	snap  persist.Snapshotter
}

// New creates an empty store wired to its persistence collaborator and view
// cache. Call Load before serving.
func New(snap persist.Snapshotter, viewCache *cache.ViewCache) *Store {
	return &Store{
		records: make(map[int64]*models.Record),
		edited:  make(map[int64]struct{}),
		cache:   viewCache,
		snap:    snap,
	}
}

// Load rebuilds the store wholesale: from the working snapshot when one
// exists, otherwise from the seed source, in which case the first snapshot is
// written immediately. Used both at startup and for an explicit reload. The
// cache is flushed before the lock is released so no reader can observe
// records from two generations.
func (s *Store) Load(ctx context.Context, seeder SeedSource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snap.Exists(ctx) {
		snap, err := s.snap.Load(ctx)
		if err != nil {
			return fmt.Errorf("load working snapshot: %w", err)
		}
		s.replaceLocked(snap.Records)
		s.cache.Flush()
		return nil
	}

	records, err := seeder.Load(ctx)
	if err != nil {
		return fmt.Errorf("load seed data: %w", err)
	}
	s.replaceLocked(records)
	s.cache.Flush()

	if err := s.snap.Save(ctx, s.snapshotLocked()); err != nil {
		return fmt.Errorf("persist initial snapshot: %w", err)
	}
	return nil
}

// replaceLocked installs a new generation of records. The edited set is
// recomputed by full scan here and only here; every other mutation maintains
// it incrementally. Statuses are always reclassified, which doubles as the
// missing-field migration for older snapshots.
func (s *Store) replaceLocked(snapshots []persist.RecordSnapshot) {
	s.records = make(map[int64]*models.Record, len(snapshots))
	s.order = make([]int64, 0, len(snapshots))
	s.edited = make(map[int64]struct{})

	for _, rs := range snapshots {
		if _, dup := s.records[rs.EIN]; dup {
			slog.Warn("duplicate EIN in snapshot, keeping first occurrence", "ein", rs.EIN)
			continue
		}

		rec := &models.Record{
			EIN:      rs.EIN,
			Names:    dedupeNames(rs.Names),
			Marked:   append([]string{}, rs.Marked...),
			Mappings: make(map[string]int64, len(rs.Mappings)),
		}
		for name, target := range rs.Mappings {
			rec.Mappings[name] = target
		}
		if rs.Representative != nil {
			rep := *rs.Representative
			rec.Representative = &rep
			s.edited[rs.EIN] = struct{}{}
		}
		rec.Reclassify()

		s.records[rs.EIN] = rec
		s.order = append(s.order, rs.EIN)
	}

	s.loaded = true
}

// Get returns the rendered view for an EIN, read through the view cache.
func (s *Store) Get(ein int64) (*models.RecordView, error) {
	if view, ok := s.cache.Get(ein); ok {
		return view, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return nil, ErrNotLoaded
	}
	rec, ok := s.records[ein]
	if !ok {
		return nil, ErrRecordNotFound
	}

	view := renderView(rec)
	s.cache.Set(ein, view)
	return view, nil
}

// List returns one page of records in stable store order. Callers are
// expected to pass normalized parameters; out-of-range pages yield an empty
// item list with correct metadata.
func (s *Store) List(page, pageSize int) (*models.ListResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return nil, ErrNotLoaded
	}

	total := len(s.order)
	totalPages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	items := make([]models.ListItem, 0, end-start)
	for _, ein := range s.order[start:end] {
		rec := s.records[ein]
		_, isEdited := s.edited[ein]
		items = append(items, models.ListItem{
			EIN:      ein,
			IsEdited: isEdited,
			Status:   rec.Status,
		})
	}

	return &models.ListResponse{
		Items: items,
		Pagination: models.Pagination{
			Page:        page,
			PageSize:    pageSize,
			TotalCount:  total,
			TotalPages:  totalPages,
			HasNext:     (page-1)*pageSize+pageSize < total,
			HasPrevious: page > 1,
		},
	}, nil
}

// Stats aggregates review progress over the whole store. Empty records are
// counted in the total but excluded from the status breakdown.
func (s *Store) Stats() (*models.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return nil, ErrNotLoaded
	}

	stats := &models.Stats{
		TotalRecords:  len(s.order),
		EditedRecords: len(s.edited),
	}
	for _, rec := range s.records {
		stats.TotalNames += len(rec.Names)
		stats.TotalMappings += len(rec.Mappings)
		switch rec.Status {
		case models.StatusDone:
			stats.DoneCount++
		case models.StatusPartiallyDone:
			stats.PartiallyDoneCount++
		case models.StatusNotStarted:
			stats.NotStartedCount++
		}
	}
	return stats, nil
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Loaded reports whether the store holds a dataset.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// snapshotLocked renders the full store for persistence. Caller holds mu.
func (s *Store) snapshotLocked() *persist.Snapshot {
	snap := &persist.Snapshot{
		Meta:    persist.NewMeta(len(s.order), len(s.edited)),
		Records: make([]persist.RecordSnapshot, 0, len(s.order)),
	}
	for _, ein := range s.order {
		rec := s.records[ein]
		c := rec.Clone()
		snap.Records = append(snap.Records, persist.RecordSnapshot{
			EIN:            c.EIN,
			Names:          c.Names,
			Marked:         c.Marked,
			Mappings:       c.Mappings,
			Representative: c.Representative,
			Status:         c.Status,
		})
	}
	return snap
}

// renderView builds a cacheable view with no aliasing into store state.
func renderView(rec *models.Record) *models.RecordView {
	c := rec.Clone()
	view := &models.RecordView{
		EIN:            c.EIN,
		Names:          c.Names,
		Marked:         c.Marked,
		Representative: c.Representative,
		TotalNames:     len(c.Names),
		Mappings:       c.Mappings,
		Status:         c.Status,
	}
	if view.Names == nil {
		view.Names = []string{}
	}
	if view.Marked == nil {
		view.Marked = []string{}
	}
	if view.Mappings == nil {
		view.Mappings = map[string]int64{}
	}
	return view
}

// dedupeNames drops exact duplicate variants, preserving first-seen order.
func dedupeNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
