package fingerprint

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/MPAN-cpu/Automation-Test/pkg/sheets"
)

// Compute returns the content fingerprint of a snapshot as a 32-character
// lowercase hex string. Two snapshots with the same content always produce
// the same fingerprint; a change to any cell, the header, or the row order
// produces a different one. The digest detects incidental change between
// fetches and is not meant to resist deliberate collisions.
func Compute(snap *sheets.Snapshot) string {
	sum := md5.Sum(Canonical(snap))
	return hex.EncodeToString(sum[:])
}

// Canonical serializes a snapshot to its canonical form: a JSON array of
// rows with the header first and every cell normalized. Normalization is
// what keeps the fingerprint stable across fetches: "42", "42.0" and
// " 42" all canonicalize to the same cell, so representation drift in the
// source does not register as a content change.
func Canonical(snap *sheets.Snapshot) []byte {
	table := make([][]string, 0, 1)
	if snap != nil {
		if snap.Header != nil {
			table = append(table, normalizeRow(snap.Header))
		}
		for _, row := range snap.Rows {
			table = append(table, normalizeRow(row))
		}
	}

	// Marshaling a [][]string cannot fail.
	data, _ := json.Marshal(table)
	return data
}

// normalizeRow normalizes every cell of a row into a new slice.
func normalizeRow(cells []string) []string {
	out := make([]string, len(cells))
	for i, cell := range cells {
		out[i] = normalizeCell(cell)
	}
	return out
}

// normalizeCell trims surrounding whitespace and rewrites numeric cells in
// a fixed format. Empty cells stay empty.
func normalizeCell(cell string) string {
	s := strings.TrimSpace(cell)
	if s == "" {
		return ""
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}

	return s
}
