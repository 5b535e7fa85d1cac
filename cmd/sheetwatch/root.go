package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/MPAN-cpu/Automation-Test/pkg/ui"
)

var (
	// Version information, overridable at build time
	version   = "2.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	noColor    bool
	quiet      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sheetwatch",
	Short: "Google Sheets change monitor for automation pipelines",
	Long: `Sheetwatch polls a publicly shared Google Sheet through its CSV export,
compares it against the state persisted by the previous run, and reports
whether anything changed, how many rows appeared, and the identifier of
the newest row.

Results are written as key=value pairs to the file named by GITHUB_OUTPUT
(and echoed to stdout), so a scheduled GitHub Actions job can trigger
follow-up steps whenever the sheet changes. State lives in a small JSON
file that the job persists between runs.

The sheet must be shared as "Anyone with the link can view"; no credentials
are used.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			color.NoColor = true
		}

		// Logo only for humans: workflow logs stay machine-readable
		if ui.IsInteractive() && !quiet {
			switch cmd.Name() {
			case "version", "help", "completion":
			default:
				ui.PrintLogo()
			}
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is .sheetwatch.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress decorative output")

	// Version template
	rootCmd.SetVersionTemplate(`Sheetwatch {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	// Disable default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
