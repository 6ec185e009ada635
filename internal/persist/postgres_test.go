package persist

import (
	"context"
	"errors"
	"os"
	"testing"
)

func setupTestPostgres(t *testing.T) (*PostgresStore, func()) {
	t.Helper()
	if os.Getenv("TEST_DATABASE_URL") == "" {
		t.Skip("Skipping integration test: TEST_DATABASE_URL not set")
	}

	connString := os.Getenv("TEST_DATABASE_URL")

	ctx := context.Background()
	store, err := NewPostgresStore(ctx, connString)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	if err := store.RunMigrations(connString); err != nil {
		store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	cleanup := func() {
		store.pool.Exec(ctx, "DELETE FROM ein_records")
		store.pool.Exec(ctx, "DELETE FROM snapshot_meta")
		store.Close()
	}

	store.pool.Exec(ctx, "DELETE FROM ein_records")
	store.pool.Exec(ctx, "DELETE FROM snapshot_meta")

	return store, cleanup
}

func TestPostgresStoreRoundTrip(t *testing.T) {
	store, cleanup := setupTestPostgres(t)
	defer cleanup()

	ctx := context.Background()

	if store.Exists(ctx) {
		t.Fatal("Exists() = true before any save")
	}
	if _, err := store.Load(ctx); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("Load() error = %v, want ErrNoSnapshot", err)
	}

	want := testSnapshot()
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !store.Exists(ctx) {
		t.Fatal("Exists() = false after save")
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got.Meta.SnapshotID != want.Meta.SnapshotID {
		t.Errorf("SnapshotID = %v, want %v", got.Meta.SnapshotID, want.Meta.SnapshotID)
	}
	if len(got.Records) != 2 {
		t.Fatalf("len(Records) = %d, want 2", len(got.Records))
	}
	if got.Records[0].EIN != 100 || got.Records[1].EIN != 200 {
		t.Errorf("record order = %d, %d, want 100, 200", got.Records[0].EIN, got.Records[1].EIN)
	}
	if got.Records[0].Mappings["Ghost Name"] != 777 {
		t.Errorf("Mappings = %v", got.Records[0].Mappings)
	}
	if got.Records[0].Representative == nil || *got.Records[0].Representative != "ACME INC" {
		t.Errorf("Representative = %v", got.Records[0].Representative)
	}
}

func TestPostgresStoreSaveReplaces(t *testing.T) {
	store, cleanup := setupTestPostgres(t)
	defer cleanup()

	ctx := context.Background()

	if err := store.Save(ctx, testSnapshot()); err != nil {
		t.Fatalf("first Save() error = %v", err)
	}

	smaller := &Snapshot{
		Meta: NewMeta(1, 0),
		Records: []RecordSnapshot{
			{EIN: 300, Names: []string{"Gamma Co"}, Marked: []string{}, Mappings: map[string]int64{}},
		},
	}
	if err := store.Save(ctx, smaller); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got.Records) != 1 || got.Records[0].EIN != 300 {
		t.Errorf("Records = %+v, want only the replacement snapshot", got.Records)
	}
	if got.Meta.TotalRecords != 1 {
		t.Errorf("TotalRecords = %d, want 1", got.Meta.TotalRecords)
	}
}
