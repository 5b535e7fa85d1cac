// Package fingerprint computes content fingerprints of sheet snapshots.
//
// A fingerprint is a compact digest of the entire snapshot (header and all
// data rows) used as a cheap equality test between runs: if the fingerprint
// matches the one persisted by the previous run, the sheet has not changed
// and the run can report "no updates" without any further work.
//
// Canonicalization:
//
// Before hashing, every cell is normalized so that two fetches of the same
// sheet always hash identically even when the export layer represents
// values differently:
//   - surrounding whitespace is trimmed
//   - numeric cells are rewritten in a fixed format ("42.0" becomes "42")
//   - empty cells stay empty
//
// The normalized table is serialized as a JSON array of rows (header row
// first) and hashed with a 128-bit digest, returned as lowercase hex.
//
// Usage:
//
//	snap, err := client.FetchSnapshot(ctx, sheetID, sheetName)
//	if err != nil {
//	    return err
//	}
//
//	current := fingerprint.Compute(snap)
//	if previous != nil && *previous == current {
//	    // Nothing changed since the last run.
//	}
package fingerprint
