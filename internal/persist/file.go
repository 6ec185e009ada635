package persist

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Working-file column names, kept compatible with earlier revisions of the
// dataset so an existing working file loads unchanged.
const (
	colEIN            = "spons_dfe_ein"
	colNames          = "unique_names_v2"
	colMarked         = "marked_names"
	colMappings       = "name_ein_mappings"
	colRepresentative = "new_name"
	colStatus         = "completion_status"
)

// FileStore persists snapshots as a CSV working file with JSON-encoded
// list/map columns, plus a sidecar metadata JSON file.
type FileStore struct {
	workingPath string
	metaPath    string
}

// NewFileStore creates a file-backed snapshot store. The metadata file sits
// next to the working file as "<stem>_metadata.json".
func NewFileStore(workingPath string) *FileStore {
	dir := filepath.Dir(workingPath)
	stem := strings.TrimSuffix(filepath.Base(workingPath), filepath.Ext(workingPath))
	return &FileStore{
		workingPath: workingPath,
		metaPath:    filepath.Join(dir, stem+"_metadata.json"),
	}
}

// WorkingPath returns the path of the working CSV file.
func (f *FileStore) WorkingPath() string { return f.workingPath }

// Exists reports whether a working file has been written.
func (f *FileStore) Exists(_ context.Context) bool {
	_, err := os.Stat(f.workingPath)
	return err == nil
}

// Load reads the working file back into a snapshot. Columns added after the
// first schema revision are defaulted here, once, when absent.
func (f *FileStore) Load(_ context.Context) (*Snapshot, error) {
	file, err := os.Open(f.workingPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("open working file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read working file header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	for _, required := range []string{colEIN, colNames} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("working file missing required column %q", required)
		}
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read working file rows: %w", err)
	}

	snap := &Snapshot{
		Meta:    f.loadMeta(),
		Records: make([]RecordSnapshot, 0, len(rows)),
	}

	cell := func(row []string, col string) string {
		idx, ok := cols[col]
		if !ok || idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	for i, row := range rows {
		ein, err := strconv.ParseInt(cell(row, colEIN), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("working file row %d: bad EIN %q: %w", i+2, cell(row, colEIN), err)
		}

		rec := RecordSnapshot{
			EIN:      ein,
			Names:    DecodeNames(cell(row, colNames)),
			Marked:   DecodeNames(cell(row, colMarked)),
			Mappings: DecodeMappings(cell(row, colMappings)),
		}
		if rep := cell(row, colRepresentative); rep != "" {
			rec.Representative = &rep
		}
		rec.Status = statusFromCell(cell(row, colStatus))

		snap.Records = append(snap.Records, rec)
	}

	return snap, nil
}

// Save writes the snapshot to a temp file and renames it into place, so a
// crash mid-write never leaves a truncated working file.
func (f *FileStore) Save(_ context.Context, snap *Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(f.workingPath), 0o755); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.workingPath), ".working-*.csv")
	if err != nil {
		return fmt.Errorf("create temp working file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	writer := csv.NewWriter(tmp)
	header := []string{colEIN, colNames, colMarked, colMappings, colRepresentative, colStatus}
	if err := writer.Write(header); err != nil {
		tmp.Close()
		return fmt.Errorf("write working file header: %w", err)
	}

	for _, rec := range snap.Records {
		rep := ""
		if rec.Representative != nil {
			rep = *rec.Representative
		}
		row := []string{
			strconv.FormatInt(rec.EIN, 10),
			encodeNames(rec.Names),
			encodeNames(rec.Marked),
			encodeMappings(rec.Mappings),
			rep,
			string(rec.Status),
		}
		if err := writer.Write(row); err != nil {
			tmp.Close()
			return fmt.Errorf("write working file row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush working file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp working file: %w", err)
	}
	if err := os.Rename(tmpPath, f.workingPath); err != nil {
		return fmt.Errorf("replace working file: %w", err)
	}

	return f.saveMeta(snap.Meta)
}

func (f *FileStore) loadMeta() Meta {
	raw, err := os.ReadFile(f.metaPath)
	if err != nil {
		// A working file written before metadata existed: schema version 1.
		return Meta{SchemaVersion: 1}
	}
	var meta Meta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return Meta{SchemaVersion: 1}
	}
	if meta.SchemaVersion == 0 {
		meta.SchemaVersion = 1
	}
	return meta
}

func (f *FileStore) saveMeta(meta Meta) error {
	raw, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal snapshot metadata: %w", err)
	}
	if err := os.WriteFile(f.metaPath, raw, 0o644); err != nil {
		return fmt.Errorf("write snapshot metadata: %w", err)
	}
	return nil
}
