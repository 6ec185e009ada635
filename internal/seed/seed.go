// Package seed loads the immutable source dataset used when no working
// snapshot exists yet.
package seed

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"einnames/internal/persist"
)

// Source reads the read-only seed CSV: one row per EIN with a JSON-encoded
// list of observed name variants.
type Source struct {
	path string
}

// New creates a seed source for the given CSV path.
func New(path string) *Source {
	return &Source{path: path}
}

// Path returns the seed file location.
func (s *Source) Path() string { return s.path }

// Exists reports whether the seed file is present.
func (s *Source) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load reads every seed row. Seed data carries only the EIN and its name
// variants; review state starts empty.
func (s *Source) Load(_ context.Context) ([]persist.RecordSnapshot, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read seed header: %w", err)
	}

	einIdx, namesIdx := -1, -1
	for i, name := range header {
		switch name {
		case "spons_dfe_ein":
			einIdx = i
		case "unique_names_v2":
			namesIdx = i
		}
	}
	if einIdx < 0 || namesIdx < 0 {
		return nil, fmt.Errorf("seed file missing required columns (have %v)", header)
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read seed rows: %w", err)
	}

	records := make([]persist.RecordSnapshot, 0, len(rows))
	for i, row := range rows {
		if einIdx >= len(row) || namesIdx >= len(row) {
			return nil, fmt.Errorf("seed row %d: too few columns", i+2)
		}
		ein, err := strconv.ParseInt(row[einIdx], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("seed row %d: bad EIN %q: %w", i+2, row[einIdx], err)
		}
		records = append(records, persist.RecordSnapshot{
			EIN:      ein,
			Names:    persist.DecodeNames(row[namesIdx]),
			Marked:   []string{},
			Mappings: map[string]int64{},
		})
	}

	return records, nil
}
