package extractor

import (
	"encoding/json"
	"errors"
	"os"
	"time"
)

// State carries what the previous run accomplished, so that the next run
// can pick up its export window where the last one ended.
type State struct {
	LastExportedEnd string `json:"last_exported_end"`
	EventCount      int    `json:"event_count"`
	LastRun         string `json:"last_run"`
}

// LoadState reads the state file at path. A missing file is not an error,
// it just means this is the first run.
func LoadState(path string) (*State, error) {
	body, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &State{}, nil
	}
	if err != nil {
		return nil, err
	}

	state := &State{}
	err = json.Unmarshal(body, state)
	if err != nil {
		return nil, err
	}

	return state, nil
}

func (s *State) Save(path string) error {
	s.LastRun = time.Now().Format(time.RFC3339)

	body, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, body, 0o644)
}
