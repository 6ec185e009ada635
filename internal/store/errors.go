package store

import (
	"errors"

	"einnames/internal/models"
)

// Domain-level store error sentinels.
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrNotLoaded      = errors.New("data not loaded")
)

// PersistError reports a snapshot write that failed after the in-memory
// mutation already succeeded. The mutation is not rolled back; Result carries
// the applied outcome so the caller can report it alongside the warning.
// Retrying the same update is safe: it fully replaces the marked list and
// re-derives the name deltas.
type PersistError struct {
	Result *models.UpdateResult
	Err    error
}

func (e *PersistError) Error() string {
	return "changes saved in memory but snapshot write failed: " + e.Err.Error()
}

func (e *PersistError) Unwrap() error { return e.Err }
