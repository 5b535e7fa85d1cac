package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MPAN-cpu/Automation-Test/pkg/logger"
)

func TestStateManager(t *testing.T) {
	tempDir := t.TempDir()

	t.Run("SaveAndLoad", func(t *testing.T) {
		mgr := NewManager(filepath.Join(tempDir, "save_load.json"))

		hash := "0f5a1c9e2b7d4e6f8a0b1c2d3e4f5a6b"
		now := time.Now().UTC().Truncate(time.Second)
		st := &State{LastHash: &hash, LastCheck: &now, LastRowCount: 17}

		if err := mgr.Save(st); err != nil {
			t.Fatalf("Failed to save state: %v", err)
		}

		loaded := mgr.Load()
		if loaded.IsFirstRun() {
			t.Error("Expected loaded state to not be a first run")
		}
		if loaded.LastHash == nil || *loaded.LastHash != hash {
			t.Errorf("Expected hash %s, got %v", hash, loaded.LastHash)
		}
		if loaded.LastCheck == nil || !loaded.LastCheck.Equal(now) {
			t.Errorf("Expected check time %v, got %v", now, loaded.LastCheck)
		}
		if loaded.LastRowCount != 17 {
			t.Errorf("Expected row count 17, got %d", loaded.LastRowCount)
		}
	})

	t.Run("LoadMissing", func(t *testing.T) {
		mgr := NewManager(filepath.Join(tempDir, "does_not_exist.json"))

		st := mgr.Load()
		if !st.IsFirstRun() {
			t.Error("Expected missing state file to produce a first-run state")
		}
		if st.LastRowCount != 0 {
			t.Errorf("Expected row count 0, got %d", st.LastRowCount)
		}
		if st.LastCheck != nil {
			t.Errorf("Expected no check time, got %v", st.LastCheck)
		}
	})

	t.Run("LoadCorrupt", func(t *testing.T) {
		tl := logger.NewTestLogger()
		prev := logger.GetLogger()
		logger.SetLogger(tl)
		defer logger.SetLogger(prev)

		path := filepath.Join(tempDir, "corrupt.json")
		if err := os.WriteFile(path, []byte("{not valid json"), 0644); err != nil {
			t.Fatalf("Failed to write corrupt file: %v", err)
		}

		st := NewManager(path).Load()
		if !st.IsFirstRun() {
			t.Error("Expected corrupt state file to fall back to first-run state")
		}
		if !tl.HasMessage("State file is corrupt, falling back to defaults") {
			t.Errorf("Expected a corruption warning, got:\n%s", tl.String())
		}
	})

	t.Run("LoadLegacyLayout", func(t *testing.T) {
		// Older state files have no row count and a zone-less timestamp
		path := filepath.Join(tempDir, "legacy.json")
		content := `{"last_hash": "abc123", "last_check": "2024-01-15T10:30:00.123456"}`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write legacy file: %v", err)
		}

		st := NewManager(path).Load()
		if st.IsFirstRun() {
			t.Error("Expected legacy state file to load, not fall back to defaults")
		}
		if st.LastHash == nil || *st.LastHash != "abc123" {
			t.Errorf("Expected hash abc123, got %v", st.LastHash)
		}
		if st.LastCheck == nil {
			t.Fatal("Expected legacy timestamp to parse")
		}
		if st.LastCheck.Year() != 2024 || st.LastCheck.Hour() != 10 {
			t.Errorf("Expected 2024-01-15 10:30, got %v", st.LastCheck)
		}
		if st.LastRowCount != 0 {
			t.Errorf("Expected missing row count to default to 0, got %d", st.LastRowCount)
		}
	})

	t.Run("LoadNegativeRowCount", func(t *testing.T) {
		tl := logger.NewTestLogger()
		prev := logger.GetLogger()
		logger.SetLogger(tl)
		defer logger.SetLogger(prev)

		path := filepath.Join(tempDir, "negative.json")
		content := `{"last_hash": "abc123", "last_check": null, "last_row_count": -5}`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write state file: %v", err)
		}

		st := NewManager(path).Load()
		if st.LastRowCount != 0 {
			t.Errorf("Expected negative row count to be reset to 0, got %d", st.LastRowCount)
		}
		if len(tl.EntriesByLevel("WARN")) == 0 {
			t.Error("Expected a warning about the negative row count")
		}
	})

	t.Run("AtomicWrite", func(t *testing.T) {
		mgr := NewManager(filepath.Join(tempDir, "atomic.json"))

		// Hammer the file with concurrent saves
		done := make(chan bool, 10)
		for i := 0; i < 10; i++ {
			go func(n int) {
				hash := "hash"
				mgr.Save(&State{LastHash: &hash, LastRowCount: n})
				done <- true
			}(i)
		}
		for i := 0; i < 10; i++ {
			<-done
		}

		// Whatever save won, the file must still parse
		loaded := mgr.Load()
		if loaded.IsFirstRun() {
			t.Error("State file corrupted after concurrent saves")
		}
		if loaded.LastRowCount < 0 || loaded.LastRowCount > 9 {
			t.Errorf("Expected row count from one of the saves, got %d", loaded.LastRowCount)
		}
	})

	t.Run("Reset", func(t *testing.T) {
		mgr := NewManager(filepath.Join(tempDir, "reset.json"))

		hash := "abc"
		if err := mgr.Save(&State{LastHash: &hash, LastRowCount: 3}); err != nil {
			t.Fatalf("Failed to save state: %v", err)
		}
		if !mgr.Exists() {
			t.Fatal("Expected state file to exist after save")
		}

		if err := mgr.Reset(); err != nil {
			t.Fatalf("Failed to reset state: %v", err)
		}
		if mgr.Exists() {
			t.Error("Expected state file to be gone after reset")
		}

		// Resetting again is not an error
		if err := mgr.Reset(); err != nil {
			t.Errorf("Expected second reset to succeed, got %v", err)
		}
	})

	t.Run("Info", func(t *testing.T) {
		mgr := NewManager(filepath.Join(tempDir, "info.json"))

		if info := mgr.Info(); info != nil {
			t.Errorf("Expected nil info for missing state, got %v", info)
		}

		hash := "abc123"
		now := time.Now().UTC()
		if err := mgr.Save(&State{LastHash: &hash, LastCheck: &now, LastRowCount: 8}); err != nil {
			t.Fatalf("Failed to save state: %v", err)
		}

		info := mgr.Info()
		if info == nil {
			t.Fatal("Expected info for existing state")
		}
		if info["last_hash"] != "abc123" {
			t.Errorf("Expected last_hash abc123, got %v", info["last_hash"])
		}
		if info["last_row_count"] != 8 {
			t.Errorf("Expected last_row_count 8, got %v", info["last_row_count"])
		}
		if _, ok := info["age"]; !ok {
			t.Error("Expected age in info")
		}
	})

	t.Run("SaveCreatesParentDir", func(t *testing.T) {
		mgr := NewManager(filepath.Join(tempDir, "nested", "dir", "state.json"))

		if err := mgr.Save(Default()); err != nil {
			t.Fatalf("Failed to save into nested directory: %v", err)
		}
		if !mgr.Exists() {
			t.Error("Expected state file to exist in nested directory")
		}
	})
}

func TestStateJSONLayout(t *testing.T) {
	// A default state serializes with explicit nulls
	data, err := json.Marshal(Default())
	if err != nil {
		t.Fatalf("Failed to marshal default state: %v", err)
	}
	expected := `{"last_hash":null,"last_check":null,"last_row_count":0}`
	if string(data) != expected {
		t.Errorf("Expected %s, got %s", expected, string(data))
	}

	// A populated state writes an RFC 3339 timestamp
	hash := "abc"
	now := time.Date(2025, 7, 1, 6, 0, 0, 0, time.UTC)
	data, err = json.Marshal(&State{LastHash: &hash, LastCheck: &now, LastRowCount: 42})
	if err != nil {
		t.Fatalf("Failed to marshal state: %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Failed to re-read marshaled state: %v", err)
	}
	if raw["last_hash"] != "abc" {
		t.Errorf("Expected last_hash abc, got %v", raw["last_hash"])
	}
	if raw["last_check"] != "2025-07-01T06:00:00Z" {
		t.Errorf("Expected RFC 3339 last_check, got %v", raw["last_check"])
	}
	if raw["last_row_count"] != float64(42) {
		t.Errorf("Expected last_row_count 42, got %v", raw["last_row_count"])
	}
}

func TestIsFirstRun(t *testing.T) {
	var nilState *State
	if !nilState.IsFirstRun() {
		t.Error("Expected nil state to count as first run")
	}
	if !Default().IsFirstRun() {
		t.Error("Expected default state to count as first run")
	}

	hash := "abc"
	if (&State{LastHash: &hash}).IsFirstRun() {
		t.Error("Expected state with a hash to not count as first run")
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"rfc3339", "2025-07-01T06:00:00Z", false},
		{"rfc3339 with offset", "2025-07-01T08:00:00+02:00", false},
		{"zone-less", "2024-01-15T10:30:00", false},
		{"zone-less with micros", "2024-01-15T10:30:00.123456", false},
		{"garbage", "yesterday", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseTimestamp(tt.input)
			if tt.wantErr && err == nil {
				t.Errorf("Expected error for %q", tt.input)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected %q to parse, got %v", tt.input, err)
			}
		})
	}
}
