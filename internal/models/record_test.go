package models

import "testing"

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name     string
		names    []string
		marked   []string
		mappings map[string]int64
		want     Status
	}{
		{
			name: "no names",
			want: StatusEmpty,
		},
		{
			name:     "no names ignores mappings",
			mappings: map[string]int64{"A": 1},
			want:     StatusEmpty,
		},
		{
			name:  "nothing processed",
			names: []string{"A", "B"},
			want:  StatusNotStarted,
		},
		{
			name:   "some marked",
			names:  []string{"A", "B", "C"},
			marked: []string{"A"},
			want:   StatusPartiallyDone,
		},
		{
			name:   "all marked",
			names:  []string{"A", "B"},
			marked: []string{"A", "B"},
			want:   StatusDone,
		},
		{
			name:     "marked plus mapped covers all",
			names:    []string{"A", "B"},
			marked:   []string{"A"},
			mappings: map[string]int64{"B": 99},
			want:     StatusDone,
		},
		{
			name:     "marked and mapped overlap counts once",
			names:    []string{"A", "B"},
			marked:   []string{"A"},
			mappings: map[string]int64{"A": 99},
			want:     StatusPartiallyDone,
		},
		{
			// A mapping retained for a name no longer in the list still counts
			// as processed, so the processed count can exceed the name count.
			name:     "processed exceeds names",
			names:    []string{"A"},
			marked:   []string{"A"},
			mappings: map[string]int64{"B": 99, "C": 99},
			want:     StatusPartiallyDone,
		},
		{
			// Fixed vector: the raw-label count equals the name count even
			// though "A" itself was never marked. The literal rule says done.
			name:     "absent mapped name satisfies count",
			names:    []string{"A"},
			mappings: map[string]int64{"B": 99},
			want:     StatusDone,
		},
		{
			name:   "duplicate marked entries count once",
			names:  []string{"A", "B"},
			marked: []string{"A", "A"},
			want:   StatusPartiallyDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyStatus(tt.names, tt.marked, tt.mappings)
			if got != tt.want {
				t.Errorf("ClassifyStatus(%v, %v, %v) = %q, want %q",
					tt.names, tt.marked, tt.mappings, got, tt.want)
			}
		})
	}
}

func TestClassifyStatusIsPure(t *testing.T) {
	names := []string{"A", "B"}
	marked := []string{"A"}
	mappings := map[string]int64{"B": 12}

	first := ClassifyStatus(names, marked, mappings)
	for i := 0; i < 10; i++ {
		if got := ClassifyStatus(names, marked, mappings); got != first {
			t.Fatalf("ClassifyStatus not stable: got %q then %q", first, got)
		}
	}
}

func TestRecordRemoveName(t *testing.T) {
	r := &Record{EIN: 1, Names: []string{"A", "B", "C"}}

	if !r.RemoveName("B") {
		t.Fatal("RemoveName(B) = false, want true")
	}
	if len(r.Names) != 2 || r.Names[0] != "A" || r.Names[1] != "C" {
		t.Errorf("Names after remove = %v, want [A C]", r.Names)
	}
	if r.RemoveName("B") {
		t.Error("RemoveName(B) second call = true, want false")
	}
}

func TestRecordClone(t *testing.T) {
	rep := "ACME INC"
	r := &Record{
		EIN:            42,
		Names:          []string{"A", "B"},
		Marked:         []string{"A"},
		Mappings:       map[string]int64{"C": 7},
		Representative: &rep,
		Status:         StatusPartiallyDone,
	}

	c := r.Clone()
	c.Names[0] = "mutated"
	c.Mappings["C"] = 99
	*c.Representative = "OTHER"

	if r.Names[0] != "A" {
		t.Error("Clone aliased Names")
	}
	if r.Mappings["C"] != 7 {
		t.Error("Clone aliased Mappings")
	}
	if *r.Representative != "ACME INC" {
		t.Error("Clone aliased Representative")
	}
}
