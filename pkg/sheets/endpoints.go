package sheets

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// BaseURL is the base URL for Google Sheets
	BaseURL = "https://docs.google.com"

	// GvizEndpoint is the endpoint pattern for the CSV export of a named sheet
	GvizEndpoint = "/spreadsheets/d/%s/gviz/tq"

	// ExportEndpoint is the endpoint pattern for the CSV export of a sheet by gid
	ExportEndpoint = "/spreadsheets/d/%s/export"
)

// GetCSVExportURL constructs the CSV export URL for a named sheet.
// This is the gviz endpoint, which works for any publicly shared
// spreadsheet without credentials.
func GetCSVExportURL(spreadsheetID, sheetName string) string {
	params := url.Values{}
	params.Set("tqx", "out:csv")
	params.Set("sheet", sheetName)

	return fmt.Sprintf("%s"+GvizEndpoint+"?%s", BaseURL, spreadsheetID, params.Encode())
}

// GetExportURLByGID constructs the CSV export URL for a sheet addressed by
// its numeric gid rather than its name
func GetExportURLByGID(spreadsheetID, gid string) string {
	params := url.Values{}
	params.Set("format", "csv")
	params.Set("gid", gid)

	return fmt.Sprintf("%s"+ExportEndpoint+"?%s", BaseURL, spreadsheetID, params.Encode())
}

// GetSpreadsheetURL constructs the browser URL for a spreadsheet
func GetSpreadsheetURL(spreadsheetID string) string {
	if spreadsheetID == "" {
		return ""
	}
	return fmt.Sprintf("%s/spreadsheets/d/%s/edit", BaseURL, spreadsheetID)
}

// IsValidSpreadsheetID checks if a spreadsheet ID looks plausible.
// IDs are opaque tokens of letters, digits, hyphens and underscores.
func IsValidSpreadsheetID(id string) bool {
	if id == "" {
		return false
	}

	for _, char := range id {
		if !((char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') ||
			char == '-' || char == '_') {
			return false
		}
	}

	return true
}

// SanitizeSpreadsheetID extracts a spreadsheet ID from user input.
// Accepts either a bare ID or a full spreadsheet URL pasted from the
// browser address bar.
func SanitizeSpreadsheetID(raw string) string {
	id := strings.TrimSpace(raw)
	if id == "" {
		return ""
	}

	// Extract the ID from a full URL like
	// https://docs.google.com/spreadsheets/d/<id>/edit#gid=0
	if idx := strings.Index(id, "/spreadsheets/d/"); idx != -1 {
		id = id[idx+len("/spreadsheets/d/"):]
		if end := strings.IndexAny(id, "/?#"); end != -1 {
			id = id[:end]
		}
	}

	return strings.Trim(id, "/ ")
}
