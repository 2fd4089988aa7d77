package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"sidecoach/internal/snapshot"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a recorded snapshot stream.
type Fixture struct {
	Description string              `json:"description"`
	SessionID   string              `json:"session_id"`
	RulesPath   string              `json:"rules_path,omitempty"`
	Snapshots   []snapshot.Snapshot `json:"snapshots"`
	Expected    []ExpectedTick      `json:"expected,omitempty"`
}

// ExpectedTick captures the expected per-tick outcome, by snapshot index.
type ExpectedTick struct {
	Tick       int `json:"tick"`
	Delivered  int `json:"delivered"`
	Suppressed int `json:"suppressed"`
	Queued     int `json:"queued"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// WriteFixture marshals a fixture to disk, indented for hand-editing.
func WriteFixture(path string, f *Fixture) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// #endregion fixture-loader
