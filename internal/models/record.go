package models

// Status classifies how far an operator has gotten reviewing a record's names.
type Status string

// Completion status values, derived and never set directly by callers.
const (
	StatusEmpty         Status = "empty"
	StatusNotStarted    Status = "not_started"
	StatusPartiallyDone Status = "partially_done"
	StatusDone          Status = "done"
)

// Record holds the curated name state for one EIN.
//
// Names is an ordered sequence of distinct variants (case-sensitive).
// Marked is always a subset of Names once a mutation has completed.
// Mappings retains name-to-EIN associations whose target EIN does not exist
// in the store; names transferred to an existing EIN are never stored here.
type Record struct {
	EIN            int64
	Names          []string
	Marked         []string
	Mappings       map[string]int64
	Representative *string
	Status         Status
}

// HasName reports whether name is currently one of the record's variants.
func (r *Record) HasName(name string) bool {
	for _, n := range r.Names {
		if n == name {
			return true
		}
	}
	return false
}

// RemoveName drops name from the record's variant list, preserving order.
// Returns false if the name was not present.
func (r *Record) RemoveName(name string) bool {
	for i, n := range r.Names {
		if n == name {
			r.Names = append(r.Names[:i], r.Names[i+1:]...)
			return true
		}
	}
	return false
}

// Reclassify recomputes the derived completion status.
func (r *Record) Reclassify() {
	r.Status = ClassifyStatus(r.Names, r.Marked, r.Mappings)
}

// Clone returns a deep copy so callers can hold a record outside the store's
// lock without aliasing its slices or map.
func (r *Record) Clone() *Record {
	c := &Record{
		EIN:    r.EIN,
		Status: r.Status,
	}
	if r.Names != nil {
		c.Names = append([]string(nil), r.Names...)
	}
	if r.Marked != nil {
		c.Marked = append([]string(nil), r.Marked...)
	}
	if r.Mappings != nil {
		c.Mappings = make(map[string]int64, len(r.Mappings))
		for k, v := range r.Mappings {
			c.Mappings[k] = v
		}
	}
	if r.Representative != nil {
		rep := *r.Representative
		c.Representative = &rep
	}
	return c
}

// ClassifyStatus derives a completion status from a record's name state.
//
// A name counts as processed when it is marked or appears as a mappings key.
// The processed set is deliberately not intersected with names: a name kept
// in mappings for audit after leaving the variant list still counts, so the
// processed count can exceed the name count (classified partially_done) or
// coincidentally equal it (classified done). Changing that would change the
// meaning of stored statuses, so it stays.
func ClassifyStatus(names, marked []string, mappings map[string]int64) Status {
	if len(names) == 0 {
		return StatusEmpty
	}

	processed := make(map[string]struct{}, len(marked)+len(mappings))
	for _, n := range marked {
		processed[n] = struct{}{}
	}
	for n := range mappings {
		processed[n] = struct{}{}
	}

	switch {
	case len(processed) == 0:
		return StatusNotStarted
	case len(processed) == len(names):
		return StatusDone
	default:
		return StatusPartiallyDone
	}
}
