package fingerprint

import (
	"strings"
	"testing"

	"github.com/MPAN-cpu/Automation-Test/pkg/sheets"
)

func testSnapshot() *sheets.Snapshot {
	return &sheets.Snapshot{
		Header: []string{"Instance ID", "Region", "Status"},
		Rows: [][]string{
			{"i-001", "us-east-1", "running"},
			{"i-002", "eu-west-1", "stopped"},
		},
	}
}

func TestComputeDeterminism(t *testing.T) {
	snap := testSnapshot()

	// Same snapshot hashed repeatedly
	first := Compute(snap)
	for i := 0; i < 5; i++ {
		if got := Compute(snap); got != first {
			t.Errorf("Expected stable fingerprint, got %s then %s", first, got)
		}
	}

	// Independently constructed snapshot with identical content
	if got := Compute(testSnapshot()); got != first {
		t.Errorf("Expected identical content to produce identical fingerprint, got %s and %s", first, got)
	}
}

func TestComputeFormat(t *testing.T) {
	fp := Compute(testSnapshot())

	if len(fp) != 32 {
		t.Errorf("Expected 32 hex characters, got %d (%q)", len(fp), fp)
	}
	if fp != strings.ToLower(fp) {
		t.Errorf("Expected lowercase hex, got %q", fp)
	}
	for _, c := range fp {
		if !strings.ContainsRune("0123456789abcdef", c) {
			t.Errorf("Expected hex digits only, found %q in %q", c, fp)
		}
	}
}

func TestComputeSensitivity(t *testing.T) {
	base := Compute(testSnapshot())

	// Single cell edit
	edited := testSnapshot()
	edited.Rows[1][2] = "running"
	if Compute(edited) == base {
		t.Error("Expected a cell edit to change the fingerprint")
	}

	// Row order swap
	swapped := testSnapshot()
	swapped.Rows[0], swapped.Rows[1] = swapped.Rows[1], swapped.Rows[0]
	if Compute(swapped) == base {
		t.Error("Expected reordered rows to change the fingerprint")
	}

	// Header rename
	renamed := testSnapshot()
	renamed.Header[0] = "InstanceID"
	if Compute(renamed) == base {
		t.Error("Expected a header change to change the fingerprint")
	}

	// Appended row
	grown := testSnapshot()
	grown.Rows = append(grown.Rows, []string{"i-003", "ap-south-1", "running"})
	if Compute(grown) == base {
		t.Error("Expected an appended row to change the fingerprint")
	}
}

func TestComputeNormalization(t *testing.T) {
	plain := &sheets.Snapshot{
		Header: []string{"ID", "Count"},
		Rows:   [][]string{{"a", "42"}},
	}
	drifted := &sheets.Snapshot{
		Header: []string{"ID", "Count"},
		Rows:   [][]string{{" a ", "42.0"}},
	}

	// Whitespace and numeric formatting drift must not register as change
	if Compute(plain) != Compute(drifted) {
		t.Error("Expected normalized representations to produce identical fingerprints")
	}

	// A genuinely different value still must
	changed := &sheets.Snapshot{
		Header: []string{"ID", "Count"},
		Rows:   [][]string{{"a", "43"}},
	}
	if Compute(plain) == Compute(changed) {
		t.Error("Expected a different numeric value to change the fingerprint")
	}

	// Case differences in text are real changes
	upper := &sheets.Snapshot{
		Header: []string{"ID", "Count"},
		Rows:   [][]string{{"A", "42"}},
	}
	if Compute(plain) == Compute(upper) {
		t.Error("Expected a case change in a text cell to change the fingerprint")
	}
}

func TestComputeEmptySnapshot(t *testing.T) {
	empty := &sheets.Snapshot{}

	first := Compute(empty)
	if first == "" {
		t.Error("Expected empty snapshot to still produce a fingerprint")
	}
	if got := Compute(empty); got != first {
		t.Errorf("Expected deterministic fingerprint for empty snapshot, got %s and %s", first, got)
	}

	// nil behaves like empty
	if got := Compute(nil); got != first {
		t.Errorf("Expected nil snapshot to hash like an empty one, got %s and %s", first, got)
	}
}

func TestCanonical(t *testing.T) {
	snap := &sheets.Snapshot{
		Header: []string{"ID", "Value"},
		Rows: [][]string{
			{"1", "a"},
			{"2.50", " b "},
		},
	}

	got := string(Canonical(snap))
	want := `[["ID","Value"],["1","a"],["2.5","b"]]`
	if got != want {
		t.Errorf("Expected canonical form %s, got %s", want, got)
	}

	// Empty and nil snapshots canonicalize to an empty table
	if got := string(Canonical(&sheets.Snapshot{})); got != "[]" {
		t.Errorf("Expected empty snapshot to canonicalize to [], got %s", got)
	}
	if got := string(Canonical(nil)); got != "[]" {
		t.Errorf("Expected nil snapshot to canonicalize to [], got %s", got)
	}
}

func TestNormalizeCell(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"hello", "hello"},
		{"  spaced  ", "spaced"},
		{"", ""},
		{"   ", ""},
		{"42", "42"},
		{"42.0", "42"},
		{"42.50", "42.5"},
		{"-3.14", "-3.14"},
		{"1e3", "1000"},
		{"0.0001", "0.0001"},
		{"i-00123", "i-00123"},
		{"2024-01-15", "2024-01-15"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := normalizeCell(tt.input); got != tt.expected {
				t.Errorf("normalizeCell(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}
