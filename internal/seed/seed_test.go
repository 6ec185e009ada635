package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeSeedFile(t *testing.T, content string) *Source {
	t.Helper()
	path := filepath.Join(t.TempDir(), "unique_ein_spons.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return New(path)
}

func TestSeedLoad(t *testing.T) {
	src := writeSeedFile(t,
		"spons_dfe_ein,unique_names_v2\n"+
			`100,"[""Acme Inc"",""ACME INCORPORATED""]"`+"\n"+
			`200,"[""Beta LLC""]"`+"\n")

	records, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	if records[0].EIN != 100 || records[1].EIN != 200 {
		t.Errorf("EINs = %d, %d, want 100, 200 (order preserved)", records[0].EIN, records[1].EIN)
	}
	if len(records[0].Names) != 2 || records[0].Names[0] != "Acme Inc" {
		t.Errorf("Names = %v", records[0].Names)
	}
	// Seed rows start with empty review state.
	if records[0].Marked == nil || len(records[0].Marked) != 0 {
		t.Errorf("Marked = %v, want empty", records[0].Marked)
	}
	if records[0].Mappings == nil || len(records[0].Mappings) != 0 {
		t.Errorf("Mappings = %v, want empty", records[0].Mappings)
	}
}

func TestSeedLoadExtraColumnsIgnored(t *testing.T) {
	src := writeSeedFile(t,
		"plan_name,spons_dfe_ein,unique_names_v2\n"+
			`Some Plan,100,"[""Acme Inc""]"`+"\n")

	records, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(records) != 1 || records[0].EIN != 100 {
		t.Errorf("records = %+v", records)
	}
}

func TestSeedLoadMalformedNamesDefaultEmpty(t *testing.T) {
	src := writeSeedFile(t,
		"spons_dfe_ein,unique_names_v2\n"+
			"100,not a list\n")

	records, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(records[0].Names) != 0 {
		t.Errorf("Names = %v, want empty fallback", records[0].Names)
	}
}

func TestSeedLoadBadEIN(t *testing.T) {
	src := writeSeedFile(t,
		"spons_dfe_ein,unique_names_v2\n"+
			`abc,"[""Acme Inc""]"`+"\n")

	if _, err := src.Load(context.Background()); err == nil {
		t.Error("Load() error = nil, want error for non-numeric EIN")
	}
}

func TestSeedLoadMissingColumns(t *testing.T) {
	src := writeSeedFile(t, "foo,bar\n1,2\n")

	if _, err := src.Load(context.Background()); err == nil {
		t.Error("Load() error = nil, want error for missing columns")
	}
}

func TestSeedMissingFile(t *testing.T) {
	src := New(filepath.Join(t.TempDir(), "missing.csv"))

	if src.Exists() {
		t.Error("Exists() = true for missing file")
	}
	if _, err := src.Load(context.Background()); err == nil {
		t.Error("Load() error = nil, want error for missing file")
	}
}
