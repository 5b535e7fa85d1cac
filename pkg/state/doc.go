// Package state persists the monitor's memory between runs.
//
// Each run reads the previous state, compares it against the freshly fetched
// sheet, and writes a new state back. The state records:
//   - The content fingerprint of the sheet at the last successful check
//   - The data row count at that check
//   - When the check ran
//
// The file is plain JSON so it can be committed to the repository by the
// automation pipeline and inspected by hand:
//
//	{"last_hash": "d41d8...", "last_check": "2025-07-01T06:00:00Z", "last_row_count": 42}
//
// Loading never fails: a missing or corrupt file falls back to the default
// empty state, which makes the next run behave like a first run. Saves are
// atomic (write to a temporary file, then rename) so an interrupted run
// cannot leave a truncated file behind.
package state
