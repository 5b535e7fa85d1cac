package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/MPAN-cpu/Automation-Test/pkg/config"
	"github.com/MPAN-cpu/Automation-Test/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage sheetwatch configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables
  - A .env file in the working directory
  - Configuration file
  - Default values (lowest priority)`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as 'sheetwatch.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the current configuration including values from all sources:
  - Environment variables
  - Configuration file
  - Default values

Nothing in the configuration is sensitive; the spreadsheet ID only works
for publicly shared sheets.`,
	Run: runConfigShow,
}

// configValidateCmd represents the config validate command
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Validate the effective configuration for missing or invalid values.

This command checks:
  - YAML syntax of the configuration file
  - Required fields (spreadsheet ID, sheet name, state file)
  - Value types and ranges
  - Path accessibility for the state file and log file`,
	Run: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

// loadConfigLenient assembles the configuration without failing on
// validation errors, so show/validate can report an incomplete setup
// instead of refusing to look at it. The returned error is the validation
// result; file read or parse problems are fatal here.
func loadConfigLenient() (*config.Config, error) {
	cfg := config.DefaultConfig()

	if err := cfg.LoadFromFile(configFile); err != nil {
		ui.PrintError("Failed to read configuration file", err.Error())
		os.Exit(1)
	}
	cfg.LoadFromEnv()

	return cfg, cfg.Validate()
}

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = "sheetwatch.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	exampleConfig := `# Sheetwatch Configuration File
#
# This file contains all available configuration options.
# Most options can also be set through environment variables; the sheet
# source uses the names the automation workflow already exports
# (GOOGLE_SHEETS_ID, SHEET_NAME), everything else uses SHEETWATCH_*.

# Sheet source
sheet:
  # Document ID from the sheet URL (required)
  # https://docs.google.com/spreadsheets/d/<this part>/edit
  spreadsheet_id: "YOUR_SPREADSHEET_ID"

  # Named tab to export
  sheet_name: "Sheet1"

  # Column whose value identifies a row, reported as latest_instance_id
  # when the sheet grows. Leave empty to disable identifier extraction.
  id_column: "instance_id"

# Fetch transport
http:
  # Fetch timeout in seconds
  # Range: 1-300
  timeout_seconds: 30

  # User agent string (optional)
  # Leave empty to use the default
  user_agent: ""

# Retry behaviour for transient fetch failures
retry:
  # Maximum number of fetch attempts
  # Range: 0-10
  max_attempts: 3

  # Initial backoff duration in seconds
  initial_backoff_seconds: 1

  # Maximum backoff duration in seconds
  max_backoff_seconds: 60

  # Backoff multiplier
  multiplier: 2.0

# State persistence
state:
  # Path of the JSON state file written after every successful check
  file: "sheets_state.json"

# Automation outputs
output:
  # File that key=value results are appended to.
  # Leave empty to use the GITHUB_OUTPUT environment variable.
  github_output: ""

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: "info"

  # Log file path (optional)
  # Leave empty to log to the console only
  file: ""

  # Maximum log file size in MB before rotation
  max_size: 100

  # Maximum number of rotated log files to keep
  max_backups: 3

  # Maximum age of rotated log files in days
  max_age: 7

  # Whether to compress rotated log files
  compress: false
`

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Edit the file and set your spreadsheet ID")
	fmt.Println("2. Run 'sheetwatch config validate' to check the configuration")
	fmt.Println("3. Run 'sheetwatch test' to verify the sheet is reachable")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, validationErr := loadConfigLenient()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		os.Exit(1)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (GOOGLE_SHEETS_ID, SHEET_NAME, SHEETWATCH_*)")
	fmt.Println("3. A .env file in the working directory")
	if configFile != "" {
		fmt.Printf("4. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("4. Configuration file: (searched in default locations)")
	}
	fmt.Println("5. Default values")

	if validationErr != nil {
		fmt.Println()
		ui.PrintWarning("Configuration is incomplete:")
		for _, line := range strings.Split(validationErr.Error(), "\n") {
			fmt.Printf("  - %s\n", line)
		}
	}
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	if configFile != "" {
		ui.PrintInfo("Validating configuration", configFile)
	} else {
		ui.PrintInfo("Validating configuration", "environment + default locations")
	}

	cfg, validationErr := loadConfigLenient()

	var errors []string
	var warnings []string

	if validationErr != nil {
		for _, line := range strings.Split(validationErr.Error(), "\n") {
			errors = append(errors, line)
		}
	}

	// Check that the state file location is usable
	if cfg.State.File != "" {
		if dir := filepath.Dir(cfg.State.File); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				errors = append(errors, fmt.Sprintf("cannot create state directory: %v", err))
			}
		}
	}

	// Check the log file location
	if cfg.Logging.File != "" {
		dir := filepath.Dir(cfg.Logging.File)
		if err := os.MkdirAll(dir, 0755); err != nil {
			errors = append(errors, fmt.Sprintf("cannot create log directory: %v", err))
		}
	}

	// Check value ranges
	if cfg.HTTP.TimeoutSeconds > 300 {
		errors = append(errors, "timeout_seconds must be at most 300")
	}
	if cfg.Retry.MaxAttempts > 10 {
		errors = append(errors, "max_attempts must be at most 10")
	}

	// Things that work but probably indicate an unfinished setup
	if cfg.Sheet.SpreadsheetID == "YOUR_SPREADSHEET_ID" {
		warnings = append(warnings, "spreadsheet_id still has the template placeholder value")
	}
	if cfg.Sheet.IDColumn == "" {
		warnings = append(warnings, "no identifier column configured; latest_instance_id will never be emitted")
	}

	if len(errors) > 0 {
		ui.PrintError("Configuration has errors:")
		for _, e := range errors {
			fmt.Printf("  - %s\n", e)
		}
		os.Exit(1)
	}

	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings:")
		for _, w := range warnings {
			fmt.Printf("  - %s\n", w)
		}
		fmt.Println()
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Spreadsheet ID: %s\n", cfg.Sheet.SpreadsheetID)
	fmt.Printf("  Sheet name: %s\n", cfg.Sheet.SheetName)
	fmt.Printf("  Identifier column: %s\n", cfg.Sheet.IDColumn)
	fmt.Printf("  State file: %s\n", cfg.State.File)
	fmt.Printf("  Fetch timeout: %ds\n", cfg.HTTP.TimeoutSeconds)
	fmt.Printf("  Max fetch attempts: %d\n", cfg.Retry.MaxAttempts)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
}
