// Package logger provides a structured logging interface for the sheet monitor.
//
// It wraps the zerolog library to provide a clean, easy-to-use API with support for:
// - Multiple log levels (Debug, Info, Warn, Error, Fatal)
// - Structured logging with fields
// - Pretty console output with colors
// - Rotating file output via lumberjack
// - A run_id field on every line so scheduled runs can be told apart
// - Global logger instance for easy access
//
// Basic Usage:
//
//	import "github.com/MPAN-cpu/Automation-Test/pkg/logger"
//
//	// Initialize the global logger
//	cfg := &config.LoggingConfig{
//	    Level: "info",
//	    File: "/var/log/sheetwatch.log",
//	}
//	err := logger.Initialize(cfg)
//
//	// Use the global logger
//	logger.Info("Monitor started")
//	logger.WithField("sheet_id", id).Info("Fetching sheet")
//	logger.WithError(err).Error("Failed to save state")
//
// Advanced Usage:
//
//	// Create a logger instance with fields
//	log := logger.GetLogger().
//	    WithField("component", "monitor").
//	    WithField("sheet_name", "Sheet1")
//
//	// Use structured logging
//	log.InfoWithFields("Check completed", map[string]interface{}{
//	    "outcome": "updated",
//	    "row_count": 42,
//	    "duration": time.Second * 2,
//	})
//
// The logger supports the following configuration options:
// - Level: Log level (debug, info, warn, error, fatal)
// - File: Path to log file (empty for console only)
// - MaxSize: Maximum size in MB before rotation
// - MaxBackups: Number of old log files to keep
// - MaxAge: Maximum age in days for log files
// - Compress: Whether to compress old log files
package logger
