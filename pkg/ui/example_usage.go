// Package ui provides terminal output helpers for the sheetwatch commands.
// This file demonstrates example usage of the helpers.
package ui

/*
Example usage of the UI helpers:

// Terminal colors and output
ui.PrintLogo()                                   // Print ASCII logo
ui.PrintInfo("Sheet", "Sheet1")                  // Cyan label, yellow value
ui.PrintSuccess("Connection test passed!")       // Green success message
ui.PrintError("Failed to fetch sheet", err)      // Red error message
ui.PrintWarning("Identifier column not found")   // Yellow warning message
ui.PrintHighlight("Google Sheets Connection Test") // Magenta heading

// Terminal awareness
if ui.IsInteractive() {                          // Only decorate real terminals
    ui.PrintLogo()
}
width := ui.Width()                              // Columns, 80 off-terminal

// Row samples fitted to the terminal
fmt.Println(ui.FormatRow(row, width-2))          // "i-042 | us-east-1 | running"
fmt.Println(ui.Truncate(longValue, 40))          // "aaaa...")

// Direct color usage
fmt.Printf("%s: %s\n", ui.Cyan("Sheet"), ui.Yellow("Sheet1"))
fmt.Println(ui.Green("✓ Success"))
fmt.Println(ui.Red("✗ Failed"))
fmt.Println(ui.Dim("(no state file yet)"))
*/
