package monitor

import (
	"strings"
	"time"

	"github.com/MPAN-cpu/Automation-Test/pkg/fingerprint"
	"github.com/MPAN-cpu/Automation-Test/pkg/logger"
	"github.com/MPAN-cpu/Automation-Test/pkg/sheets"
	"github.com/MPAN-cpu/Automation-Test/pkg/state"
)

// Report is the outcome of comparing the current snapshot against the state
// persisted by the previous run.
type Report struct {
	// HasUpdates is true when the sheet content differs from the last check,
	// or when no previous check exists.
	HasUpdates bool

	// NewRecordsCount is the row-count delta against the previous check. On
	// a first run it equals the full data row count. It can be negative when
	// rows were removed, and it is an approximation whenever edits or
	// removals are mixed with additions.
	NewRecordsCount int

	// LatestInstanceID is the identifier-column value of the last data row.
	// Empty when the sheet did not grow, the column is missing, or no
	// identifier column is configured.
	LatestInstanceID string

	// CurrentHash is the fingerprint of the current snapshot.
	CurrentHash string

	// CurrentRowCount is the number of data rows in the current snapshot.
	CurrentRowCount int

	// FirstRun is true when no previous fingerprint existed.
	FirstRun bool
}

// Analyzer decides whether a snapshot represents an update and derives the
// values reported to the automation pipeline.
type Analyzer struct {
	idColumn string
	logger   logger.Logger
}

// NewAnalyzer creates an analyzer. idColumn names the column whose value
// identifies a row; an empty name disables identifier extraction.
func NewAnalyzer(idColumn string) *Analyzer {
	return &Analyzer{
		idColumn: idColumn,
		logger:   logger.GetLogger(),
	}
}

// Analyze compares the current snapshot against the previous state and
// returns the change report plus the state to persist for the next run.
// The returned state is always fresh, even when nothing changed, so the
// recorded check time never goes stale while checks keep succeeding.
//
// Callers must handle empty snapshots before calling Analyze: "the sheet
// returned no data" is a separate outcome, not a change.
func (a *Analyzer) Analyze(snap *sheets.Snapshot, prev *state.State) (*Report, *state.State) {
	if prev == nil {
		prev = state.Default()
	}

	currentHash := fingerprint.Compute(snap)
	currentRows := snap.RowCount()

	report := &Report{
		CurrentHash:     currentHash,
		CurrentRowCount: currentRows,
		FirstRun:        prev.IsFirstRun(),
	}
	report.HasUpdates = prev.IsFirstRun() || *prev.LastHash != currentHash

	if report.HasUpdates {
		if report.FirstRun {
			// Every data row counts as new the first time around
			report.NewRecordsCount = currentRows
		} else {
			report.NewRecordsCount = currentRows - prev.LastRowCount
		}
		report.LatestInstanceID = a.latestIdentifier(snap, prev.LastRowCount)
	}

	now := time.Now().UTC()
	next := &state.State{
		LastHash:     &currentHash,
		LastCheck:    &now,
		LastRowCount: currentRows,
	}

	return report, next
}

// latestIdentifier reads the identifier column from the last data row, but
// only when the sheet actually grew. Without growth the last row predates
// this check, and reporting its identifier again would be misleading.
func (a *Analyzer) latestIdentifier(snap *sheets.Snapshot, previousRows int) string {
	if a.idColumn == "" {
		return ""
	}
	if snap.RowCount() <= previousRows {
		return ""
	}

	col, ok := snap.ColumnIndex(a.idColumn)
	if !ok {
		a.logger.WarnWithFields("Identifier column not found in sheet", map[string]interface{}{
			"column": a.idColumn,
			"header": snap.Header,
		})
		return ""
	}

	id := strings.TrimSpace(snap.Cell(snap.RowCount()-1, col))
	if id == "" {
		a.logger.WarnWithFields("Identifier cell is empty in the latest row", map[string]interface{}{
			"column": a.idColumn,
			"row":    snap.RowCount(),
		})
	}
	return id
}
