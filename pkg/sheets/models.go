package sheets

import "strings"

// Snapshot is one fetched and parsed copy of the sheet at a point in time.
// Row 0 of the export becomes Header; the remaining rows become Rows.
// A Snapshot is never mutated after parsing.
type Snapshot struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// RowCount returns the number of data rows (header excluded)
func (s *Snapshot) RowCount() int {
	if s == nil {
		return 0
	}
	return len(s.Rows)
}

// ColumnCount returns the number of columns in the header
func (s *Snapshot) ColumnCount() int {
	if s == nil {
		return 0
	}
	return len(s.Header)
}

// IsEmpty reports whether the fetch produced no tabular content at all,
// not even a header row
func (s *Snapshot) IsEmpty() bool {
	return s == nil || (len(s.Header) == 0 && len(s.Rows) == 0)
}

// ColumnIndex returns the position of the named column. The lookup is
// exact first, then falls back to a case-insensitive match on trimmed
// names, since sheet authors rarely keep header casing stable.
func (s *Snapshot) ColumnIndex(name string) (int, bool) {
	if s == nil || name == "" {
		return 0, false
	}

	for i, col := range s.Header {
		if col == name {
			return i, true
		}
	}

	want := strings.ToLower(strings.TrimSpace(name))
	for i, col := range s.Header {
		if strings.ToLower(strings.TrimSpace(col)) == want {
			return i, true
		}
	}

	return 0, false
}

// FirstRow returns the first data row
func (s *Snapshot) FirstRow() ([]string, bool) {
	if s.RowCount() == 0 {
		return nil, false
	}
	return s.Rows[0], true
}

// LastRow returns the final data row, which for an append-only sheet is
// the most recently added record
func (s *Snapshot) LastRow() ([]string, bool) {
	if s.RowCount() == 0 {
		return nil, false
	}
	return s.Rows[len(s.Rows)-1], true
}

// Cell returns the value at the given data row and column, or "" when
// the row is ragged and has no such column
func (s *Snapshot) Cell(row, col int) string {
	if s == nil || row < 0 || row >= len(s.Rows) {
		return ""
	}
	cells := s.Rows[row]
	if col < 0 || col >= len(cells) {
		return ""
	}
	return cells[col]
}
