// Package monitor implements the change-detection core and the run
// orchestration around it.
//
// A run is a single stateless transformation: (previous persisted state,
// current snapshot) in, (change report, next persisted state) out. The
// Analyzer holds the policy:
//
//   - The sheet changed iff its fingerprint differs from the persisted one,
//     or no previous fingerprint exists.
//   - The new-record count is the data-row delta against the previous run.
//     First runs count every row as new. The delta can be negative and is
//     an approximation when edits or removals are mixed with additions:
//     only growth is tracked, not a true set difference.
//   - The latest identifier is read from the configured identifier column
//     of the last data row, and only when the row count actually grew, so
//     pure edits never resurface an old identifier.
//
// The Monitor wraps the Analyzer with the boundary work: loading state,
// fetching the snapshot, short-circuiting the empty-sheet case, persisting
// the refreshed state, and emitting pipeline outputs. Each invocation does
// exactly one fetch, one comparison and one state write; nothing runs
// concurrently within a run, and concurrent invocations sharing a state
// file are the scheduler's problem, not handled here.
package monitor
