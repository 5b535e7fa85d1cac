package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MPAN-cpu/Automation-Test/pkg/config"
	errs "github.com/MPAN-cpu/Automation-Test/pkg/errors"
	"github.com/MPAN-cpu/Automation-Test/pkg/logger"
	"github.com/MPAN-cpu/Automation-Test/pkg/sheets"
	"github.com/MPAN-cpu/Automation-Test/pkg/ui"
)

var (
	// Test command flags
	testSheetID   string
	testSheetName string
	testTimeout   int
)

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test access to the configured sheet",
	Long: `Verify that the configured sheet can be fetched and parsed before
wiring it into a scheduled workflow.

The test fetches the CSV export once and reports what it found: row and
column counts, a sample of the first data row, and the full column list.
It also checks whether the configured identifier column exists.

Nothing is persisted and no outputs are emitted; the state file is left
exactly as it was.`,
	Example: `  # Test using environment configuration (GOOGLE_SHEETS_ID, SHEET_NAME)
  sheetwatch test

  # Test a specific sheet and tab
  sheetwatch test --sheet-id 1AbC...XyZ --sheet-name "Deployed Instances"`,
	Args: cobra.NoArgs,
	Run:  runTest,
}

func init() {
	rootCmd.AddCommand(testCmd)

	testCmd.Flags().StringVar(&testSheetID, "sheet-id", "", "spreadsheet ID or full sheet URL")
	testCmd.Flags().StringVar(&testSheetName, "sheet-name", "", "named tab to export")
	testCmd.Flags().IntVar(&testTimeout, "timeout", 30, "fetch timeout in seconds")
}

// testFlags builds the flag override map from explicitly set flags
func testFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})

	if cmd.Flags().Changed("sheet-id") {
		flags["sheet-id"] = testSheetID
	}
	if cmd.Flags().Changed("sheet-name") {
		flags["sheet-name"] = testSheetName
	}
	if cmd.Flags().Changed("timeout") {
		flags["timeout"] = testTimeout
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	return flags
}

func runTest(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, testFlags(cmd))
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		fmt.Println("\nAt minimum, set the spreadsheet ID:")
		fmt.Println("  export GOOGLE_SHEETS_ID=<id from the sheet URL>")
		os.Exit(1)
	}

	logger.Initialize(&cfg.Logging)

	id := sheets.SanitizeSpreadsheetID(cfg.Sheet.SpreadsheetID)
	if !sheets.IsValidSpreadsheetID(id) {
		ui.PrintError("Invalid spreadsheet ID", cfg.Sheet.SpreadsheetID)
		os.Exit(1)
	}

	ui.PrintHighlight("Google Sheets Connection Test")
	fmt.Println()
	ui.PrintInfo("Spreadsheet", id)
	ui.PrintInfo("Sheet", cfg.Sheet.SheetName)
	ui.PrintInfo("URL", sheets.GetCSVExportURL(id, cfg.Sheet.SheetName))
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := sheets.NewClientWithConfig(cfg, logger.GetLogger())
	snap, err := client.FetchSnapshot(ctx, id, cfg.Sheet.SheetName)
	if err != nil {
		printTestFailure(err)
		os.Exit(1)
	}

	ui.PrintSuccess("Successfully accessed sheet")

	if snap.IsEmpty() {
		ui.PrintWarning("The sheet is completely empty")
		fmt.Println("The monitor will report a \"no data\" outcome until rows appear.")
		return
	}

	ui.PrintInfo("Data rows", strconv.Itoa(snap.RowCount()))
	ui.PrintInfo("Columns", strconv.Itoa(snap.ColumnCount()))

	if first, ok := snap.FirstRow(); ok {
		fmt.Println("\nSample data (first row):")
		fmt.Printf("  %s\n", ui.FormatRow(first, ui.Width()-2))
	}

	fmt.Println("\nColumn names:")
	for i, col := range snap.Header {
		fmt.Printf("  %d. %s\n", i+1, col)
	}

	fmt.Println()
	checkIdentifierColumn(cfg, snap)

	ui.PrintSuccess("All tests passed, the monitor is ready to run")
	fmt.Println("\nNext step: run 'sheetwatch check' to record the first state.")
}

// checkIdentifierColumn verifies the configured identifier column exists in
// the fetched header, since a missing column silently suppresses
// latest_instance_id on every run
func checkIdentifierColumn(cfg *config.Config, snap *sheets.Snapshot) {
	if cfg.Sheet.IDColumn == "" {
		ui.PrintWarning("No identifier column configured; latest_instance_id will never be emitted")
		return
	}

	if _, ok := snap.ColumnIndex(cfg.Sheet.IDColumn); ok {
		ui.PrintSuccess("Identifier column found: " + cfg.Sheet.IDColumn)
		return
	}

	ui.PrintWarning("Identifier column not found: " + cfg.Sheet.IDColumn)
	fmt.Println("Checks will still detect changes, but latest_instance_id will be omitted.")
	fmt.Println("Set SHEETWATCH_ID_COLUMN (or --id-column on check) to one of the columns above.")
}

// printTestFailure renders a failed connection test with setup hints for
// the failure modes new users actually hit
func printTestFailure(err error) {
	var typed *errs.Error
	if !errors.As(err, &typed) {
		ui.PrintError("Connection test failed", err.Error())
		return
	}

	switch typed.Type {
	case errs.ErrorTypeAccessDenied:
		ui.PrintError("Access denied", typed.Message)
		fmt.Println("\nThis is usually a sharing problem. Make sure:")
		fmt.Println("  1. The sheet is shared as \"Anyone with the link can view\"")
		fmt.Println("  2. Sharing is not restricted to specific accounts or a domain")
	case errs.ErrorTypeNotFound:
		ui.PrintError("Sheet not found", typed.Message)
		fmt.Println("\nCheck that:")
		fmt.Println("  1. The spreadsheet ID matches the sheet URL")
		fmt.Println("  2. The sheet (tab) name is spelled exactly as in the document")
		fmt.Println("  3. The document still exists")
	case errs.ErrorTypeParsing:
		ui.PrintError("Sheet content could not be parsed as CSV", typed.Message)
	case errs.ErrorTypeNetwork:
		ui.PrintError("Network error", typed.Message)
		fmt.Println("\nCheck your connection and try again.")
	default:
		ui.PrintError("Connection test failed", typed.Message)
	}
}
