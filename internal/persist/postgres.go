package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"einnames/migrations"
)

// PostgresStore persists snapshots in Postgres. Each save replaces the whole
// record table and the single metadata row inside one transaction, so the
// stored snapshot is always a consistent point-in-time view.
//
// List and map columns hold the same canonical JSON encoding as the file
// store, so the two collaborators are interchangeable.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to Postgres and verifies the connection.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// RunMigrations applies all embedded SQL migrations.
func (p *PostgresStore) RunMigrations(connString string) error {
	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, connString)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

// Close closes the connection pool.
func (p *PostgresStore) Close() {
	p.pool.Close()
}

// Exists reports whether a snapshot has been saved.
func (p *PostgresStore) Exists(ctx context.Context) bool {
	var exists bool
	err := p.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM snapshot_meta)").Scan(&exists)
	return err == nil && exists
}

// Load reads the stored snapshot, records in their original order.
func (p *PostgresStore) Load(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}

	err := p.pool.QueryRow(ctx, `
		SELECT schema_version, snapshot_id, saved_at, total_records, edited_records
		FROM snapshot_meta WHERE id = 1
	`).Scan(
		&snap.Meta.SchemaVersion,
		&snap.Meta.SnapshotID,
		&snap.Meta.SavedAt,
		&snap.Meta.TotalRecords,
		&snap.Meta.EditedRecords,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("load snapshot metadata: %w", err)
	}

	rows, err := p.pool.Query(ctx, `
		SELECT ein, names, marked_names, name_ein_mappings, representative, completion_status
		FROM ein_records ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("load snapshot records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rec            RecordSnapshot
			names          string
			marked         string
			mappings       string
			representative *string
			status         string
		)
		if err := rows.Scan(&rec.EIN, &names, &marked, &mappings, &representative, &status); err != nil {
			return nil, fmt.Errorf("scan snapshot record: %w", err)
		}
		rec.Names = DecodeNames(names)
		rec.Marked = DecodeNames(marked)
		rec.Mappings = DecodeMappings(mappings)
		rec.Representative = representative
		rec.Status = statusFromCell(status)
		snap.Records = append(snap.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read snapshot records: %w", err)
	}

	return snap, nil
}

// Save replaces the stored snapshot in one transaction using COPY for the
// bulk insert.
func (p *PostgresStore) Save(ctx context.Context, snap *Snapshot) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin snapshot transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "TRUNCATE ein_records"); err != nil {
		return fmt.Errorf("truncate records: %w", err)
	}

	copyRows := make([][]any, 0, len(snap.Records))
	for i, rec := range snap.Records {
		var representative any
		if rec.Representative != nil {
			representative = *rec.Representative
		}
		copyRows = append(copyRows, []any{
			i,
			rec.EIN,
			encodeNames(rec.Names),
			encodeNames(rec.Marked),
			encodeMappings(rec.Mappings),
			representative,
			string(rec.Status),
		})
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"ein_records"},
		[]string{"position", "ein", "names", "marked_names", "name_ein_mappings", "representative", "completion_status"},
		pgx.CopyFromRows(copyRows),
	)
	if err != nil {
		return fmt.Errorf("copy records: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO snapshot_meta (id, schema_version, snapshot_id, saved_at, total_records, edited_records)
		VALUES (1, $1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			schema_version = EXCLUDED.schema_version,
			snapshot_id = EXCLUDED.snapshot_id,
			saved_at = EXCLUDED.saved_at,
			total_records = EXCLUDED.total_records,
			edited_records = EXCLUDED.edited_records
	`, snap.Meta.SchemaVersion, snap.Meta.SnapshotID, snap.Meta.SavedAt, snap.Meta.TotalRecords, snap.Meta.EditedRecords)
	if err != nil {
		return fmt.Errorf("save snapshot metadata: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}
