package store

import (
	"context"

	"einnames/internal/models"
	"einnames/internal/validation"
)

// NameMapping associates one name variant with a target EIN, in the order
// the caller supplied.
type NameMapping struct {
	Name      string
	TargetEIN int64
}

// UpdateRequest carries one save operation against a single record.
type UpdateRequest struct {
	EIN            int64
	Marked         []string
	Representative string
	Mappings       []NameMapping
}

// ApplyUpdate is the store's single mutation entry point. Under the global
// mutation lock it replaces the record's marked set, resolves each mapping
// into either a transfer (target EIN exists) or a pending mapping (it does
// not), executes the transfers, reclassifies the touched records, updates the
// representative and the edited set, invalidates cache entries for every
// touched EIN, and persists the full snapshot.
//
// A persistence failure does not roll the mutation back: losing the edit is
// worse for an interactive tool than retrying the write. The returned
// *PersistError carries the applied result so the caller can surface both.
func (s *Store) ApplyUpdate(ctx context.Context, req UpdateRequest) (*models.UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return nil, ErrNotLoaded
	}
	rec, ok := s.records[req.EIN]
	if !ok {
		return nil, ErrRecordNotFound
	}

	// Step 1: full replacement of the marked set. The request may reference
	// names no longer present; they are kept as-is and simply never counted
	// as present.
	rec.Marked = append([]string{}, req.Marked...)

	// Step 2: split mappings into transfers and pending entries. When the
	// same name appears more than once the later occurrence wins, matching
	// sequential map-building semantics.
	transfers, pendingCount := s.splitMappingsLocked(rec, collapseMappings(req.Mappings))

	// Step 3: execute the transfers.
	transferred, touched := s.transferNamesLocked(rec, transfers)

	// Step 4: reclassify the source; modified targets were reclassified as
	// they changed.
	rec.Reclassify()

	// Step 5: representative and the edited set.
	if rep := validation.NormalizeRepresentative(req.Representative); rep != "" {
		rec.Representative = &rep
		s.edited[req.EIN] = struct{}{}
	} else {
		rec.Representative = nil
		delete(s.edited, req.EIN)
	}

	// Step 6: drop cached views for every record this mutation touched.
	s.cache.Invalidate(append(touched, req.EIN)...)

	result := &models.UpdateResult{
		TransferredCount: transferred,
		PendingCount:     pendingCount,
		MappingsCount:    len(rec.Mappings),
		MarkedCount:      len(rec.Marked),
		TotalNames:       len(rec.Names),
		Status:           rec.Status,
	}
	if rec.Representative != nil {
		rep := *rec.Representative
		result.Representative = &rep
	}

	// Step 7: persist the full snapshot while still holding the lock, then
	// flush the cache for the completed persistence cycle.
	if err := s.snap.Save(ctx, s.snapshotLocked()); err != nil {
		return result, &PersistError{Result: result, Err: err}
	}
	s.cache.Flush()

	return result, nil
}

// collapseMappings deduplicates by name: first occurrence keeps its position,
// the last occurrence supplies the target.
func collapseMappings(mappings []NameMapping) []NameMapping {
	if len(mappings) < 2 {
		return mappings
	}
	out := make([]NameMapping, 0, len(mappings))
	index := make(map[string]int, len(mappings))
	for _, m := range mappings {
		if i, ok := index[m.Name]; ok {
			out[i].TargetEIN = m.TargetEIN
			continue
		}
		index[m.Name] = len(out)
		out = append(out, m)
	}
	return out
}

// splitMappingsLocked classifies each mapping: targets present in the store
// become transfer candidates; the rest merge into the record's pending
// mappings (new pairs overwrite same-key old pairs). Returns the transfer
// list and the number of pending names in this request.
func (s *Store) splitMappingsLocked(rec *models.Record, mappings []NameMapping) ([]NameMapping, int) {
	var transfers []NameMapping
	pending := 0
	for _, m := range mappings {
		if _, exists := s.records[m.TargetEIN]; exists {
			transfers = append(transfers, m)
			continue
		}
		if rec.Mappings == nil {
			rec.Mappings = make(map[string]int64)
		}
		rec.Mappings[m.Name] = m.TargetEIN
		pending++
	}
	return transfers, pending
}

// transferNamesLocked moves each candidate name from the source record to its
// target. A name absent from the source is skipped silently (stale client
// state). A target already holding the name still causes the source removal
// but is not modified and not counted. Returns the transfer count and the
// distinct targets actually modified.
func (s *Store) transferNamesLocked(rec *models.Record, transfers []NameMapping) (int, []int64) {
	transferred := 0
	var touched []int64
	touchedSet := make(map[int64]struct{})

	for _, tr := range transfers {
		if !rec.RemoveName(tr.Name) {
			continue
		}
		target := s.records[tr.TargetEIN]
		if target.HasName(tr.Name) {
			continue
		}
		target.Names = append(target.Names, tr.Name)
		target.Reclassify()
		transferred++
		if _, seen := touchedSet[tr.TargetEIN]; !seen {
			touchedSet[tr.TargetEIN] = struct{}{}
			touched = append(touched, tr.TargetEIN)
		}
	}

	return transferred, touched
}
