package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MPAN-cpu/Automation-Test/pkg/config"
	errs "github.com/MPAN-cpu/Automation-Test/pkg/errors"
	"github.com/MPAN-cpu/Automation-Test/pkg/logger"
	"github.com/MPAN-cpu/Automation-Test/pkg/monitor"
	"github.com/MPAN-cpu/Automation-Test/pkg/ui"
)

var (
	// Check command flags
	sheetID      string
	sheetName    string
	idColumn     string
	stateFile    string
	githubOutput string
	httpTimeout  int
	maxRetries   int
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the sheet for changes once",
	Long: `Run one complete check: fetch the sheet, compare it against the persisted
state, write the new state, and emit key=value outputs.

Outputs (appended to $GITHUB_OUTPUT and echoed to stdout):
  has_updates            "true" or "false"
  new_records_count      only when has_updates=true; may be negative
  last_check             only when has_updates=true (RFC 3339)
  latest_instance_id     only when has_updates=true and the identifier
                         column was found on a grown sheet

When the sheet yields no data at all, nothing is emitted, state is left
untouched, and the command still exits 0. Fetch and parse failures exit 1.`,
	Example: `  # Check using environment configuration (GOOGLE_SHEETS_ID, SHEET_NAME)
  sheetwatch check

  # Check a specific sheet and tab
  sheetwatch check --sheet-id 1AbC...XyZ --sheet-name "Deployed Instances"

  # Use a custom identifier column and state location
  sheetwatch check --id-column instance_id --state-file /var/lib/sheetwatch/state.json`,
	Args: cobra.NoArgs,
	Run:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&sheetID, "sheet-id", "", "spreadsheet ID or full sheet URL")
	checkCmd.Flags().StringVar(&sheetName, "sheet-name", "", "named tab to export")
	checkCmd.Flags().StringVar(&idColumn, "id-column", "", "identifier column name (empty disables extraction)")
	checkCmd.Flags().StringVar(&stateFile, "state-file", "", "path of the JSON state file")
	checkCmd.Flags().StringVar(&githubOutput, "github-output", "", "output file for key=value results (default: $GITHUB_OUTPUT)")
	checkCmd.Flags().IntVar(&httpTimeout, "timeout", 30, "fetch timeout in seconds")
	checkCmd.Flags().IntVar(&maxRetries, "max-retries", 3, "maximum fetch attempts")
}

// checkFlags builds the flag override map from explicitly set flags
func checkFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})

	if cmd.Flags().Changed("sheet-id") {
		flags["sheet-id"] = sheetID
	}
	if cmd.Flags().Changed("sheet-name") {
		flags["sheet-name"] = sheetName
	}
	if cmd.Flags().Changed("id-column") {
		flags["id-column"] = idColumn
	}
	if cmd.Flags().Changed("state-file") {
		flags["state-file"] = stateFile
	}
	if cmd.Flags().Changed("github-output") {
		flags["github-output"] = githubOutput
	}
	if cmd.Flags().Changed("timeout") {
		flags["timeout"] = httpTimeout
	}
	if cmd.Flags().Changed("max-retries") {
		flags["max-retries"] = maxRetries
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	return flags
}

func runCheck(cmd *cobra.Command, args []string) {
	// Load configuration
	cfg, err := config.Load(configFile, checkFlags(cmd))
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	// Initialize logger
	logger.Initialize(&cfg.Logging)
	logger.WithField("version", version).Info("Sheetwatch starting")

	m, err := monitor.New(cfg)
	if err != nil {
		ui.PrintError("Failed to initialize monitor", err.Error())
		os.Exit(1)
	}

	// Ctrl-C and SIGTERM cancel the in-flight fetch
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := m.Run(ctx)
	if err != nil {
		logger.WithError(err).Error("Check failed")
		printCheckError(err)
		os.Exit(1)
	}

	printCheckSummary(cfg, result)
}

// printCheckError renders a fetch or parse failure for humans
func printCheckError(err error) {
	var typed *errs.Error
	if !errors.As(err, &typed) {
		ui.PrintError("CHECK FAILED", err.Error())
		return
	}

	switch typed.Type {
	case errs.ErrorTypeAccessDenied:
		ui.PrintError("Sheet is not accessible", typed.Message)
		fmt.Println("Run 'sheetwatch test' for sharing instructions.")
	case errs.ErrorTypeNotFound:
		ui.PrintError("Sheet not found", typed.Message)
		fmt.Println("Check the spreadsheet ID and sheet name, or run 'sheetwatch test'.")
	case errs.ErrorTypeParsing:
		ui.PrintError("Sheet content could not be parsed", typed.Message)
	default:
		ui.PrintError("CHECK FAILED", typed.Message)
	}
}

// printCheckSummary renders the human-readable result after a run
func printCheckSummary(cfg *config.Config, result *monitor.RunResult) {
	if result.Outcome == monitor.OutcomeNoData {
		ui.PrintWarning("No data found in sheet")
		return
	}

	report := result.Report

	ui.PrintInfo("Sheet", cfg.Sheet.SheetName)
	ui.PrintInfo("Total rows", strconv.Itoa(report.CurrentRowCount))
	ui.PrintInfo("Last check", time.Now().UTC().Format(time.RFC3339))

	switch {
	case report.FirstRun:
		ui.PrintSuccess("First check recorded")
	case report.HasUpdates:
		ui.PrintSuccess(fmt.Sprintf("Changes detected (%+d records)", report.NewRecordsCount))
		if report.LatestInstanceID != "" {
			ui.PrintInfo("Latest instance", report.LatestInstanceID)
		}
	default:
		fmt.Println("No updates detected")
	}
}
