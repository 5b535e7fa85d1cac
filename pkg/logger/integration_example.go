package logger

// This file shows how to integrate the logger into the check command

/*
Example integration in the check command:

package cmd

import (
	"context"
	"os"

	"github.com/MPAN-cpu/Automation-Test/pkg/config"
	"github.com/MPAN-cpu/Automation-Test/pkg/logger"
	"github.com/MPAN-cpu/Automation-Test/pkg/monitor"
	"github.com/MPAN-cpu/Automation-Test/pkg/ui"
)

func runCheck(ctx context.Context, configFile string, flags map[string]interface{}) {
	// Load configuration
	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	// Initialize the logger
	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		os.Exit(1)
	}

	// Now you can use the logger throughout the application
	logger.Info("Sheet monitor starting")
	logger.WithField("sheet_id", cfg.Sheet.SpreadsheetID).Info("Checking sheet for updates")

	// Log configuration (the sheet ID is public, nothing sensitive here)
	logger.WithFields(map[string]interface{}{
		"sheet_name": cfg.Sheet.SheetName,
		"id_column":  cfg.Sheet.IDColumn,
		"state_file": cfg.State.File,
		"log_level":  cfg.Logging.Level,
	}).Debug("Configuration loaded")

	m, err := monitor.New(cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize monitor")
	}

	logger.LogComponentStart("monitor", map[string]interface{}{
		"sheet_id": cfg.Sheet.SpreadsheetID,
	})

	result, err := m.Run(ctx)
	if err != nil {
		logger.WithError(err).Error("Check failed")
		logger.LogComponentStop("monitor", "error")
		os.Exit(1)
	}

	logger.LogComponentStop("monitor", "completed")
	if result.Report != nil {
		logger.LogCheckResult(string(result.Outcome), result.Report.CurrentRowCount, result.Report.NewRecordsCount)
	}
}
*/

// Example integration in the sheets client:
/*
func (c *Client) FetchSnapshot(ctx context.Context) (*Snapshot, error) {
	log := logger.GetLogger().
		WithField("component", "sheets").
		WithField("sheet_name", c.sheetName)

	log.Debug("Fetching CSV export")

	start := time.Now()
	resp, err := c.doRequest(ctx, url)
	if err != nil {
		log.WithError(err).Error("Fetch failed")
		return nil, err
	}

	// Use helper function for standardized logging
	logger.LogRequest("GET", url, resp.StatusCode, float64(time.Since(start).Milliseconds()))

	// ... parse the body ...
}
*/
