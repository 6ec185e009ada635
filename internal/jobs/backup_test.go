package jobs

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeWorkingFile(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "working_data.csv")
	if err := os.WriteFile(path, []byte("spons_dfe_ein,unique_names_v2\n100,\"[\"\"A\"\"]\"\n"), 0o644); err != nil {
		t.Fatalf("write working file: %v", err)
	}
	return path
}

func TestBackupRotatorRunOnce(t *testing.T) {
	dir := t.TempDir()
	working := writeWorkingFile(t, dir)
	backupDir := filepath.Join(dir, "backups")

	b := NewBackupRotator(working, backupDir, time.Minute, 3)
	if err := b.runOnce(); err != nil {
		t.Fatalf("runOnce: %v", err)
	}

	entries, err := os.ReadDir(backupDir)
	if err != nil {
		t.Fatalf("read backup dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 backup, got %d", len(entries))
	}

	got, err := os.ReadFile(filepath.Join(backupDir, entries[0].Name()))
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	want, _ := os.ReadFile(working)
	if string(got) != string(want) {
		t.Error("backup content does not match working file")
	}
}

func TestBackupRotatorMissingWorkingFile(t *testing.T) {
	dir := t.TempDir()
	b := NewBackupRotator(filepath.Join(dir, "missing.csv"), filepath.Join(dir, "backups"), time.Minute, 3)

	if err := b.runOnce(); err != nil {
		t.Fatalf("runOnce should ignore a missing working file, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "backups")); !os.IsNotExist(err) {
		t.Error("backup dir should not be created when there is nothing to back up")
	}
}

func TestBackupRotatorPrune(t *testing.T) {
	dir := t.TempDir()
	working := writeWorkingFile(t, dir)
	backupDir := filepath.Join(dir, "backups")
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		t.Fatal(err)
	}

	b := NewBackupRotator(working, backupDir, time.Minute, 2)

	// Seed older backups; timestamped names sort chronologically.
	stale := []string{
		"working_data_20240101T000000.csv",
		"working_data_20240102T000000.csv",
		"working_data_20240103T000000.csv",
	}
	for _, name := range stale {
		if err := os.WriteFile(filepath.Join(backupDir, name), []byte("old"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if err := b.runOnce(); err != nil {
		t.Fatalf("runOnce: %v", err)
	}

	entries, err := os.ReadDir(backupDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 backups after prune, got %d", len(entries))
	}
	for _, e := range entries {
		if e.Name() == stale[0] || e.Name() == stale[1] {
			t.Errorf("oldest backup %s should have been pruned", e.Name())
		}
	}
}

func TestBackupName(t *testing.T) {
	b := NewBackupRotator("/data/working_data.csv", "/data/backups", time.Minute, 3)
	ts := time.Date(2024, 6, 1, 12, 30, 45, 0, time.UTC)

	got := b.backupName(ts)
	want := "working_data_20240601T123045.csv"
	if got != want {
		t.Errorf("backupName = %q, want %q", got, want)
	}
}
