package monitor

import (
	"context"
	"fmt"

	"github.com/MPAN-cpu/Automation-Test/pkg/config"
	"github.com/MPAN-cpu/Automation-Test/pkg/logger"
	"github.com/MPAN-cpu/Automation-Test/pkg/output"
	"github.com/MPAN-cpu/Automation-Test/pkg/sheets"
	"github.com/MPAN-cpu/Automation-Test/pkg/state"
)

// Outcome classifies a completed run.
type Outcome string

const (
	// OutcomeUpdated means the sheet content changed since the last check.
	OutcomeUpdated Outcome = "updated"

	// OutcomeNoChange means the sheet is identical to the last check.
	OutcomeNoChange Outcome = "no_change"

	// OutcomeNoData means the fetch succeeded but the sheet was empty. No
	// outputs are emitted and state is left untouched.
	OutcomeNoData Outcome = "no_data"
)

// RunResult summarizes a completed check.
type RunResult struct {
	Outcome  Outcome
	Report   *Report // nil when Outcome is OutcomeNoData
	Snapshot *sheets.Snapshot
}

// Monitor wires the fetch, analysis, persistence and output stages into a
// single run.
type Monitor struct {
	fetcher       SheetFetcher
	analyzer      *Analyzer
	stateMgr      *state.Manager
	emitter       *output.Emitter
	spreadsheetID string
	sheetName     string
	config        *config.Config
	logger        logger.Logger
}

// New creates a Monitor from the given configuration.
func New(cfg *config.Config) (*Monitor, error) {
	log := logger.GetLogger()

	// Accept a full sheet URL as well as a bare ID
	id := sheets.SanitizeSpreadsheetID(cfg.Sheet.SpreadsheetID)
	if !sheets.IsValidSpreadsheetID(id) {
		return nil, fmt.Errorf("invalid spreadsheet ID %q", cfg.Sheet.SpreadsheetID)
	}

	return &Monitor{
		fetcher:       sheets.NewClientWithConfig(cfg, log),
		analyzer:      NewAnalyzer(cfg.Sheet.IDColumn),
		stateMgr:      state.NewManager(cfg.State.File),
		emitter:       output.NewEmitter(cfg.Output.GithubOutput),
		spreadsheetID: id,
		sheetName:     cfg.Sheet.SheetName,
		config:        cfg,
		logger:        log,
	}, nil
}

// SetFetcher replaces the sheet fetcher, primarily for tests.
func (m *Monitor) SetFetcher(f SheetFetcher) {
	m.fetcher = f
}

// Run performs one complete check: load the previous state, fetch the
// current snapshot, analyze, persist the new state, and emit the result.
//
// Fetch and parse failures abort the run with an error before any state or
// output is written. A state save or output failure after a successful
// analysis is logged but does not fail the run: the report was already
// computed and the worst case is re-detecting the same change next time.
func (m *Monitor) Run(ctx context.Context) (*RunResult, error) {
	previous := m.stateMgr.Load()

	snap, err := m.fetcher.FetchSnapshot(ctx, m.spreadsheetID, m.sheetName)
	if err != nil {
		return nil, err
	}

	if snap.IsEmpty() {
		m.logger.WarnWithFields("No data found in sheet", map[string]interface{}{
			"spreadsheet_id": m.spreadsheetID,
			"sheet_name":     m.sheetName,
		})
		return &RunResult{Outcome: OutcomeNoData, Snapshot: snap}, nil
	}

	report, next := m.analyzer.Analyze(snap, previous)

	if report.HasUpdates {
		if report.FirstRun {
			m.logger.InfoWithFields("First check for this sheet", map[string]interface{}{
				"row_count": report.CurrentRowCount,
			})
		} else {
			logger.LogFingerprintChange(*previous.LastHash, report.CurrentHash)
		}
	}

	if err := m.stateMgr.Save(next); err != nil {
		m.logger.ErrorWithFields("Failed to save state, next run will re-detect this change", map[string]interface{}{
			"error": err.Error(),
			"path":  m.stateMgr.Path(),
		})
	}

	if err := m.emit(report, next); err != nil {
		m.logger.ErrorWithFields("Failed to write outputs", map[string]interface{}{
			"error": err.Error(),
		})
	}

	outcome := OutcomeNoChange
	if report.HasUpdates {
		outcome = OutcomeUpdated
	}
	logger.LogCheckResult(string(outcome), report.CurrentRowCount, report.NewRecordsCount)

	return &RunResult{Outcome: outcome, Report: report, Snapshot: snap}, nil
}

// emit publishes the report as key=value pairs for the pipeline.
func (m *Monitor) emit(report *Report, next *state.State) error {
	if report.HasUpdates {
		return m.emitter.EmitUpdate(report.NewRecordsCount, *next.LastCheck, report.LatestInstanceID)
	}
	return m.emitter.EmitNoChange()
}

// StateManager exposes the monitor's state manager for inspection commands.
func (m *Monitor) StateManager() *state.Manager {
	return m.stateMgr
}
