// Package persist implements the durable snapshot collaborators. A snapshot
// is always the full record set plus a small metadata summary; there is no
// incremental write path.
package persist

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"einnames/internal/models"
)

// SchemaVersion tags persisted snapshots. Loading an older version applies
// missing-field defaults once, at load, rather than guarding every access.
const SchemaVersion = 2

// ErrNoSnapshot means no working snapshot has been written yet.
var ErrNoSnapshot = errors.New("no snapshot available")

// Meta summarizes a persisted snapshot.
type Meta struct {
	SchemaVersion int       `json:"schema_version"`
	SnapshotID    uuid.UUID `json:"snapshot_id"`
	SavedAt       time.Time `json:"saved_at"`
	TotalRecords  int       `json:"total_records"`
	EditedRecords int       `json:"edited_records"`
}

// RecordSnapshot is one record as written to durable storage.
type RecordSnapshot struct {
	EIN            int64
	Names          []string
	Marked         []string
	Mappings       map[string]int64
	Representative *string
	Status         models.Status
}

// Snapshot is a consistent point-in-time view of the whole store.
type Snapshot struct {
	Meta    Meta
	Records []RecordSnapshot
}

// NewMeta builds metadata for a snapshot about to be saved.
func NewMeta(total, edited int) Meta {
	return Meta{
		SchemaVersion: SchemaVersion,
		SnapshotID:    uuid.New(),
		SavedAt:       time.Now().UTC(),
		TotalRecords:  total,
		EditedRecords: edited,
	}
}

// statusFromCell validates a stored status value. Unknown values come back
// empty; the store reclassifies every record at load regardless, so the
// stored status is informational.
func statusFromCell(cell string) models.Status {
	switch s := models.Status(cell); s {
	case models.StatusEmpty, models.StatusNotStarted, models.StatusPartiallyDone, models.StatusDone:
		return s
	default:
		return ""
	}
}

// Snapshotter accepts full snapshots and loads the most recent one back.
type Snapshotter interface {
	// Exists reports whether a previously written snapshot is available.
	Exists(ctx context.Context) bool
	// Load returns the stored snapshot, or ErrNoSnapshot.
	Load(ctx context.Context) (*Snapshot, error)
	// Save durably replaces the stored snapshot.
	Save(ctx context.Context, snap *Snapshot) error
}
