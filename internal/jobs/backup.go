package jobs

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// BackupRotator periodically copies the working file into timestamped backups
// and prunes old ones.
type BackupRotator struct {
	workingPath string
	backupDir   string
	interval    time.Duration
	keep        int
}

// NewBackupRotator creates a new backup rotator for the working file.
func NewBackupRotator(workingPath, backupDir string, interval time.Duration, keep int) *BackupRotator {
	return &BackupRotator{
		workingPath: workingPath,
		backupDir:   backupDir,
		interval:    interval,
		keep:        keep,
	}
}

// Start begins the backup loop. Returns immediately if the interval is zero.
func (b *BackupRotator) Start(ctx context.Context) {
	if b.interval <= 0 {
		return
	}

	log.Printf("Backup rotator started (interval: %v, keep: %d)", b.interval, b.keep)

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Backup rotator stopped")
			return
		case <-ticker.C:
			if err := b.runOnce(); err != nil {
				log.Printf("Backup rotator: %v", err)
			}
		}
	}
}

// runOnce takes one backup and prunes old ones.
func (b *BackupRotator) runOnce() error {
	if _, err := os.Stat(b.workingPath); err != nil {
		if os.IsNotExist(err) {
			// Nothing to back up yet
			return nil
		}
		return err
	}

	if err := os.MkdirAll(b.backupDir, 0o755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}

	name := b.backupName(time.Now())
	if err := copyFile(b.workingPath, filepath.Join(b.backupDir, name)); err != nil {
		return fmt.Errorf("copy backup: %w", err)
	}

	return b.prune()
}

// backupName builds a timestamped file name next to the working file's stem.
func (b *BackupRotator) backupName(now time.Time) string {
	base := filepath.Base(b.workingPath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return fmt.Sprintf("%s_%s%s", stem, now.UTC().Format("20060102T150405"), ext)
}

// prune removes the oldest backups beyond the retention limit.
func (b *BackupRotator) prune() error {
	base := filepath.Base(b.workingPath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	entries, err := os.ReadDir(b.backupDir)
	if err != nil {
		return err
	}

	var backups []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasPrefix(e.Name(), stem+"_") && strings.HasSuffix(e.Name(), ext) {
			backups = append(backups, e.Name())
		}
	}

	if len(backups) <= b.keep {
		return nil
	}

	// Timestamped names sort chronologically
	sort.Strings(backups)
	for _, name := range backups[:len(backups)-b.keep] {
		if err := os.Remove(filepath.Join(b.backupDir, name)); err != nil {
			log.Printf("Backup rotator: failed to remove %s: %v", name, err)
		}
	}

	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
