package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/MPAN-cpu/Automation-Test/pkg/logger"
)

// State is the monitor's only memory between runs: the fingerprint and data
// row count recorded by the last successful check, plus when it ran. A nil
// LastHash means no check has ever completed.
type State struct {
	LastHash     *string    `json:"last_hash"`
	LastCheck    *time.Time `json:"last_check"`
	LastRowCount int        `json:"last_row_count"`
}

// Default returns the state assumed when nothing has been persisted yet.
func Default() *State {
	return &State{}
}

// stateJSON mirrors State with the timestamp kept as a raw string so both
// RFC 3339 and the zone-less layout written by older state files can be
// accepted.
type stateJSON struct {
	LastHash     *string `json:"last_hash"`
	LastCheck    *string `json:"last_check"`
	LastRowCount int     `json:"last_row_count"`
}

// UnmarshalJSON decodes a state file, tolerating the timestamp format of
// state files written before this implementation.
func (s *State) UnmarshalJSON(data []byte) error {
	var raw stateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.LastHash = raw.LastHash
	s.LastRowCount = raw.LastRowCount
	s.LastCheck = nil

	if raw.LastCheck != nil && *raw.LastCheck != "" {
		t, err := parseTimestamp(*raw.LastCheck)
		if err != nil {
			return fmt.Errorf("invalid last_check timestamp %q: %w", *raw.LastCheck, err)
		}
		s.LastCheck = &t
	}

	return nil
}

// parseTimestamp accepts RFC 3339 as written by Save, plus the zone-less
// ISO-8601 form older state files carry.
func parseTimestamp(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05", value)
}

// IsFirstRun reports whether no fingerprint has ever been recorded.
func (s *State) IsFirstRun() bool {
	return s == nil || s.LastHash == nil
}

// Manager reads and writes the persisted state file.
type Manager struct {
	path   string
	logger logger.Logger
}

// NewManager creates a manager for the given state file path.
func NewManager(path string) *Manager {
	return &Manager{
		path:   path,
		logger: logger.GetLogger(),
	}
}

// Path returns the state file path.
func (m *Manager) Path() string {
	return m.path
}

// Exists checks if a state file is present on disk.
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.path)
	return err == nil
}

// Load reads the persisted state. A missing, unreadable, or corrupt file is
// never fatal: the manager logs what happened and falls back to the default
// empty state, so the run behaves like a first run.
func (m *Manager) Load() *State {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			m.logger.DebugWithFields("No previous state found, treating as first run", map[string]interface{}{
				"path": m.path,
			})
		} else {
			m.logger.WarnWithFields("Cannot read state file, falling back to defaults", map[string]interface{}{
				"path":  m.path,
				"error": err.Error(),
			})
		}
		return Default()
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		m.logger.WarnWithFields("State file is corrupt, falling back to defaults", map[string]interface{}{
			"path":  m.path,
			"error": err.Error(),
		})
		return Default()
	}

	// Row count must stay non-negative
	if st.LastRowCount < 0 {
		m.logger.WarnWithFields("State file has a negative row count, resetting to zero", map[string]interface{}{
			"path":           m.path,
			"last_row_count": st.LastRowCount,
		})
		st.LastRowCount = 0
	}

	m.logger.DebugWithFields("State loaded", map[string]interface{}{
		"path":           m.path,
		"first_run":      st.IsFirstRun(),
		"last_row_count": st.LastRowCount,
	})

	return &st
}

// Save atomically replaces the state file with the given state. The new
// content is written to a temporary file, synced, and renamed over the old
// one so a crash mid-write never leaves a partial file behind.
func (m *Manager) Save(st *State) error {
	if dir := filepath.Dir(m.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	tempPath := m.path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary state file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(st); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode state: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync state file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close state file: %w", err)
	}

	if err := os.Rename(tempPath, m.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	m.logger.DebugWithFields("State saved", map[string]interface{}{
		"path":           m.path,
		"last_row_count": st.LastRowCount,
	})

	return nil
}

// Reset removes the state file so the next run starts from scratch.
func (m *Manager) Reset() error {
	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete state file: %w", err)
	}

	m.logger.InfoWithFields("State reset", map[string]interface{}{
		"path": m.path,
	})
	return nil
}

// Info returns a summary of the persisted state for display, or nil when no
// state file exists.
func (m *Manager) Info() map[string]interface{} {
	if !m.Exists() {
		return nil
	}

	st := m.Load()
	info := map[string]interface{}{
		"path":           m.path,
		"last_row_count": st.LastRowCount,
	}
	if st.LastHash != nil {
		info["last_hash"] = *st.LastHash
	}
	if st.LastCheck != nil {
		info["last_check"] = st.LastCheck.Format(time.RFC3339)
		info["age"] = time.Since(*st.LastCheck).Round(time.Second)
	}

	return info
}
