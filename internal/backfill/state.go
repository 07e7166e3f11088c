package backfill

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"
)

// DefaultStatePath is where run progress is kept between invocations.
const DefaultStatePath = "~/.compass/backfill-state.json"

// State tracks progress for resumable backfill runs.
type State struct {
	StartedAt       time.Time `json:"started_at"`
	LastProcessedAt time.Time `json:"last_processed_at"`
	UsersProcessed  []string  `json:"users_processed"`
	SessionsScanned int       `json:"sessions_scanned"`
	SessionsUpdated int       `json:"sessions_updated"`
	InsightsAdded   int       `json:"insights_added"`
	Errors          []string  `json:"errors"`

	path string
}

// LoadState loads run state from path, or starts a fresh one. An empty path
// keeps state in memory only.
func LoadState(path string) (*State, error) {
	if path == "" {
		return &State{StartedAt: time.Now().UTC()}, nil
	}
	p := expandHome(path)

	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{StartedAt: time.Now().UTC(), path: p}, nil
		}
		return nil, fmt.Errorf("read state: %w", err)
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	s.path = p
	return &s, nil
}

// Save persists the state. It is a no-op for in-memory state.
func (s *State) Save() error {
	s.LastProcessedAt = time.Now().UTC()
	if s.path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	return os.WriteFile(s.path, data, 0o644)
}

func (s *State) IsProcessed(userID string) bool {
	return slices.Contains(s.UsersProcessed, userID)
}

func (s *State) MarkProcessed(userID string) {
	s.UsersProcessed = append(s.UsersProcessed, userID)
}

func (s *State) AddError(msg string) {
	s.Errors = append(s.Errors, msg)
}

func expandHome(path string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
