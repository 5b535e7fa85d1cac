package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MPAN-cpu/Automation-Test/pkg/config"
	"github.com/MPAN-cpu/Automation-Test/pkg/state"
	"github.com/MPAN-cpu/Automation-Test/pkg/ui"
)

var (
	// State command flags
	stateFilePath string
	stateResetYes bool
)

// stateCmd represents the state command
var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect or reset the persisted state",
	Long: `Inspect or reset the JSON state file that checks compare against.

The file records the fingerprint, data row count and timestamp of the last
successful check. Removing it makes the next check behave like a first run:
every row counts as new.`,
}

// stateShowCmd represents the state show command
var stateShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the persisted state",
	Run:   runStateShow,
}

// stateResetCmd represents the state reset command
var stateResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the persisted state",
	Long: `Delete the state file so the next check is treated as a first run.

Useful after pointing the monitor at a different sheet, or when the
recorded state no longer matches reality.`,
	Run: runStateReset,
}

func init() {
	rootCmd.AddCommand(stateCmd)
	stateCmd.AddCommand(stateShowCmd)
	stateCmd.AddCommand(stateResetCmd)

	stateCmd.PersistentFlags().StringVar(&stateFilePath, "state-file", "", "path of the JSON state file")
	stateResetCmd.Flags().BoolVarP(&stateResetYes, "yes", "y", false, "skip the confirmation prompt")
}

// stateManager resolves the state file path from config sources without
// requiring a complete configuration: inspecting state must work even when
// no sheet is configured yet.
func stateManager() *state.Manager {
	cfg := config.DefaultConfig()
	cfg.LoadFromFile(configFile)
	cfg.LoadFromEnv()
	if stateFilePath != "" {
		cfg.State.File = stateFilePath
	}
	return state.NewManager(cfg.State.File)
}

func runStateShow(cmd *cobra.Command, args []string) {
	mgr := stateManager()

	info := mgr.Info()
	if info == nil {
		ui.PrintWarning("No state recorded yet")
		fmt.Printf("The first 'sheetwatch check' will create %s\n", mgr.Path())
		return
	}

	ui.PrintHighlight("Persisted State")
	fmt.Println()
	ui.PrintInfo("File", fmt.Sprint(info["path"]))

	if hash, ok := info["last_hash"].(string); ok {
		ui.PrintInfo("Last hash", hash)
	} else {
		ui.PrintInfo("Last hash", "(none)")
	}

	if check, ok := info["last_check"].(string); ok {
		ui.PrintInfo("Last check", fmt.Sprintf("%s (%v ago)", check, info["age"]))
	} else {
		ui.PrintInfo("Last check", "(none)")
	}

	ui.PrintInfo("Data rows", fmt.Sprint(info["last_row_count"]))
}

func runStateReset(cmd *cobra.Command, args []string) {
	mgr := stateManager()

	if !mgr.Exists() {
		ui.PrintWarning("No state file to remove")
		fmt.Printf("Looked for %s\n", mgr.Path())
		return
	}

	if !stateResetYes && ui.IsInteractive() {
		fmt.Printf("Delete state file %s? The next check will treat every row as new. (y/N): ", mgr.Path())
		reader := bufio.NewReader(os.Stdin)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}
	}

	if err := mgr.Reset(); err != nil {
		ui.PrintError("Failed to reset state", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("State reset, the next check will be treated as a first run")
}
