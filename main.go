package main

import (
	"crypto/md5"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// First version of the sheet monitor, kept runnable at the repository root.
// The maintained version with retries, typed errors and structured logging
// lives in cmd/sheetwatch.

type State struct {
	LastHash     *string `json:"last_hash"`
	LastCheck    *string `json:"last_check"`
	LastRowCount int     `json:"last_row_count"`
}

const stateFile = "sheets_state.json"

func main() {
	spreadsheetID := os.Getenv("GOOGLE_SHEETS_ID")
	if spreadsheetID == "" {
		fmt.Println("Error: GOOGLE_SHEETS_ID environment variable not set")
		os.Exit(1)
	}

	sheetName := os.Getenv("SHEET_NAME")
	if sheetName == "" {
		sheetName = "Sheet1"
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	records, err := fetchSheet(client, spreadsheetID, sheetName)
	if err != nil {
		fmt.Printf("Error fetching sheet data: %v\n", err)
		os.Exit(1)
	}

	if len(records) == 0 {
		fmt.Println("No data found in sheet")
		return
	}

	fmt.Printf("Successfully fetched %d rows from sheet\n", len(records))

	currentHash := dataHash(records)
	rowCount := len(records) - 1 // header excluded

	previous := loadState()

	hasUpdates := previous.LastHash == nil || *previous.LastHash != currentHash
	newRecords := 0
	if hasUpdates {
		fmt.Println("Changes detected in Google Sheet!")
		if previous.LastHash != nil {
			fmt.Printf("Previous hash: %s\n", *previous.LastHash)
			newRecords = rowCount - previous.LastRowCount
		} else {
			newRecords = rowCount
		}
		fmt.Printf("Current hash: %s\n", currentHash)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	saveState(State{
		LastHash:     &currentHash,
		LastCheck:    &now,
		LastRowCount: rowCount,
	})

	writeOutputs(hasUpdates, newRecords, now)

	if !hasUpdates {
		fmt.Println("No updates detected")
	}
	fmt.Printf("Sheet: %s\n", sheetName)
	fmt.Printf("Total rows: %d\n", rowCount)
	fmt.Printf("Last check: %s\n", now)
}

func fetchSheet(client *http.Client, spreadsheetID, sheetName string) ([][]string, error) {
	maxRetries := 3
	retryDelay := time.Second * 2

	url := fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/gviz/tq?tqx=out:csv&sheet=%s", spreadsheetID, sheetName)
	fmt.Printf("Fetching data from: %s\n", url)

	for i := 0; i < maxRetries; i++ {
		resp, err := client.Get(url)
		if err != nil {
			fmt.Printf("Request error on attempt %d: %v\n", i+1, err)
			if i == maxRetries-1 {
				return nil, fmt.Errorf("error making request: %v", err)
			}
			time.Sleep(retryDelay)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("error reading response: %v", err)
		}

		if resp.StatusCode != http.StatusOK {
			fmt.Printf("Response status code: %d\n", resp.StatusCode)
			if resp.StatusCode == 401 || resp.StatusCode == 403 {
				return nil, fmt.Errorf("sheet is not shared publicly")
			}
			if i == maxRetries-1 {
				return nil, fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
			}
			time.Sleep(retryDelay)
			continue
		}

		if len(strings.TrimSpace(string(body))) == 0 {
			return nil, nil
		}

		reader := csv.NewReader(strings.NewReader(string(body)))
		records, err := reader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("error parsing CSV data: %v", err)
		}

		return records, nil
	}

	return nil, fmt.Errorf("max retries exceeded")
}

func dataHash(records [][]string) string {
	data, _ := json.Marshal(records)
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

func loadState() State {
	var state State

	data, err := os.ReadFile(stateFile)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Printf("Error loading state file: %v\n", err)
		}
		return state
	}

	if err := json.Unmarshal(data, &state); err != nil {
		fmt.Printf("Error parsing state file: %v\n", err)
		return State{}
	}

	return state
}

func saveState(state State) {
	data, err := json.Marshal(state)
	if err != nil {
		fmt.Printf("Error encoding state: %v\n", err)
		return
	}

	if err := os.WriteFile(stateFile, data, 0644); err != nil {
		fmt.Printf("Error saving state file: %v\n", err)
	}
}

func writeOutputs(hasUpdates bool, newRecords int, lastCheck string) {
	var lines string
	if hasUpdates {
		lines = fmt.Sprintf("has_updates=true\nnew_records_count=%d\nlast_check=%s\n", newRecords, lastCheck)
	} else {
		lines = "has_updates=false\n"
	}

	fmt.Print(lines)

	githubOutput := os.Getenv("GITHUB_OUTPUT")
	if githubOutput == "" {
		return
	}

	f, err := os.OpenFile(githubOutput, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Printf("Error opening output file: %v\n", err)
		return
	}
	defer f.Close()

	if _, err := f.WriteString(lines); err != nil {
		fmt.Printf("Error writing output file: %v\n", err)
	}
}
