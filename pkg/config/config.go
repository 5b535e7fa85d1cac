package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the sheet monitor
type Config struct {
	// Sheet source settings
	Sheet SheetConfig `yaml:"sheet" json:"sheet"`

	// HTTP fetch settings
	HTTP HTTPConfig `yaml:"http" json:"http"`

	// Retry behaviour for the fetch boundary
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// State persistence settings
	State StateConfig `yaml:"state" json:"state"`

	// Automation output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// SheetConfig identifies the monitored sheet and its identifier column
type SheetConfig struct {
	// SpreadsheetID is the document ID from the sheet URL
	SpreadsheetID string `yaml:"spreadsheet_id" json:"spreadsheet_id"`

	// SheetName is the named sub-sheet (tab) to export
	SheetName string `yaml:"sheet_name" json:"sheet_name"`

	// IDColumn names the column whose value identifies a row.
	// An empty value disables identifier extraction.
	IDColumn string `yaml:"id_column" json:"id_column"`
}

// HTTPConfig holds fetch transport configuration
type HTTPConfig struct {
	TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds"`
	UserAgent      string `yaml:"user_agent" json:"user_agent"`
}

// Timeout returns the configured fetch timeout as a duration
func (c HTTPConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RetryConfig holds retry configuration for transient fetch failures
type RetryConfig struct {
	MaxAttempts           int     `yaml:"max_attempts" json:"max_attempts"`
	InitialBackoffSeconds int     `yaml:"initial_backoff_seconds" json:"initial_backoff_seconds"`
	MaxBackoffSeconds     int     `yaml:"max_backoff_seconds" json:"max_backoff_seconds"`
	Multiplier            float64 `yaml:"multiplier" json:"multiplier"`
}

// InitialBackoff returns the first retry delay as a duration
func (c RetryConfig) InitialBackoff() time.Duration {
	return time.Duration(c.InitialBackoffSeconds) * time.Second
}

// MaxBackoff returns the retry delay ceiling as a duration
func (c RetryConfig) MaxBackoff() time.Duration {
	return time.Duration(c.MaxBackoffSeconds) * time.Second
}

// StateConfig holds persisted state file configuration
type StateConfig struct {
	// File is the path of the JSON state file
	File string `yaml:"file" json:"file"`
}

// OutputConfig holds automation output configuration
type OutputConfig struct {
	// GithubOutput is the file that key=value results are appended to.
	// Defaults to the GITHUB_OUTPUT environment variable when unset.
	GithubOutput string `yaml:"github_output" json:"github_output"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level" json:"level"`
	File       string `yaml:"file" json:"file"`
	MaxSize    int    `yaml:"max_size" json:"max_size"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups"`
	MaxAge     int    `yaml:"max_age" json:"max_age"`
	Compress   bool   `yaml:"compress" json:"compress"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Sheet: SheetConfig{
			SheetName: "Sheet1",
			IDColumn:  "instance_id",
		},
		HTTP: HTTPConfig{
			TimeoutSeconds: 30,
			UserAgent:      "sheetwatch/2.0 (+https://github.com/MPAN-cpu/Automation-Test)",
		},
		Retry: RetryConfig{
			MaxAttempts:           3,
			InitialBackoffSeconds: 1,
			MaxBackoffSeconds:     60,
			Multiplier:            2.0,
		},
		State: StateConfig{
			File: "sheets_state.json",
		},
		Output: OutputConfig{
			GithubOutput: "",
		},
		Logging: LoggingConfig{
			Level:      "info",
			File:       "",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   false,
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	// Sheet source. The unprefixed names are kept for compatibility with
	// the workflows that already export GOOGLE_SHEETS_ID and SHEET_NAME.
	if id := os.Getenv("SHEETWATCH_SHEET_ID"); id != "" {
		c.Sheet.SpreadsheetID = id
	} else if id := os.Getenv("GOOGLE_SHEETS_ID"); id != "" {
		c.Sheet.SpreadsheetID = id
	}
	if name := os.Getenv("SHEETWATCH_SHEET_NAME"); name != "" {
		c.Sheet.SheetName = name
	} else if name := os.Getenv("SHEET_NAME"); name != "" {
		c.Sheet.SheetName = name
	}
	if col, ok := os.LookupEnv("SHEETWATCH_ID_COLUMN"); ok {
		c.Sheet.IDColumn = col
	}

	// Fetch transport
	if timeout := os.Getenv("SHEETWATCH_HTTP_TIMEOUT"); timeout != "" {
		var val int
		fmt.Sscanf(timeout, "%d", &val)
		if val > 0 {
			c.HTTP.TimeoutSeconds = val
		}
	}
	if ua := os.Getenv("SHEETWATCH_USER_AGENT"); ua != "" {
		c.HTTP.UserAgent = ua
	}
	if retries := os.Getenv("SHEETWATCH_MAX_RETRIES"); retries != "" {
		var val int
		fmt.Sscanf(retries, "%d", &val)
		if val >= 0 {
			c.Retry.MaxAttempts = val
		}
	}

	// State file
	if stateFile := os.Getenv("SHEETWATCH_STATE_FILE"); stateFile != "" {
		c.State.File = stateFile
	}

	// Automation output file (contract name used by GitHub Actions)
	if out := os.Getenv("GITHUB_OUTPUT"); out != "" {
		c.Output.GithubOutput = out
	}

	// Logging
	if logLevel := os.Getenv("SHEETWATCH_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv("SHEETWATCH_LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	// Check in order of precedence
	locations := []string{
		".sheetwatch.yaml",
		".sheetwatch.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "sheetwatch", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "sheetwatch", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".sheetwatch.yaml"),
		filepath.Join(os.Getenv("HOME"), ".sheetwatch.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	// Validate sheet source
	if c.Sheet.SpreadsheetID == "" {
		errs = append(errs, errors.New("spreadsheet ID is required"))
	}
	if c.Sheet.SheetName == "" {
		errs = append(errs, errors.New("sheet name is required"))
	}

	// Validate fetch transport
	if c.HTTP.TimeoutSeconds <= 0 {
		errs = append(errs, errors.New("HTTP timeout must be positive"))
	}
	if c.Retry.MaxAttempts < 0 {
		errs = append(errs, errors.New("max retry attempts cannot be negative"))
	}
	if c.Retry.Multiplier < 1.0 {
		errs = append(errs, errors.New("retry multiplier must be at least 1.0"))
	}

	// Validate state persistence
	if c.State.File == "" {
		errs = append(errs, errors.New("state file path is required"))
	}

	// Validate logging
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if id, ok := flags["sheet-id"].(string); ok && id != "" {
		c.Sheet.SpreadsheetID = id
	}
	if name, ok := flags["sheet-name"].(string); ok && name != "" {
		c.Sheet.SheetName = name
	}
	if col, ok := flags["id-column"].(string); ok {
		c.Sheet.IDColumn = col
	}
	if stateFile, ok := flags["state-file"].(string); ok && stateFile != "" {
		c.State.File = stateFile
	}
	if out, ok := flags["github-output"].(string); ok && out != "" {
		c.Output.GithubOutput = out
	}
	if timeout, ok := flags["timeout"].(int); ok && timeout > 0 {
		c.HTTP.TimeoutSeconds = timeout
	}
	if retries, ok := flags["max-retries"].(int); ok && retries >= 0 {
		c.Retry.MaxAttempts = retries
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".sheetwatch.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
