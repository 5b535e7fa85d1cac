package monitor

import (
	"context"

	"github.com/MPAN-cpu/Automation-Test/pkg/sheets"
)

// SheetFetcher defines the interface for retrieving sheet snapshots
type SheetFetcher interface {
	FetchSnapshot(ctx context.Context, spreadsheetID, sheetName string) (*sheets.Snapshot, error)
}
