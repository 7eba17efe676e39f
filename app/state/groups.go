package state

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// GroupStateStore persists the one-shot dispatch flag per (feed, normalized
// group title) as a single JSON document:
//
//	{ "<feed URL>": { "<group title>": true } }
//
// The flag is monotonic: the store exposes no way to clear it, so a group
// is eligible for exactly one notification ever. Every write reloads the
// document, mutates one entry and rewrites the whole document; correctness
// relies on the single-writer poll loop.
type GroupStateStore struct {
	path string
}

func NewGroupStateStore(dataDir string) *GroupStateStore {
	return &GroupStateStore{path: filepath.Join(dataDir, "groups_state.json")}
}

// IsDispatched reports whether a notification was already sent for the
// group. A missing document or a read failure degrades to false.
func (s *GroupStateStore) IsDispatched(feedURL, groupTitle string) bool {
	states := s.load()
	return states[feedURL][groupTitle]
}

// MarkDispatched records that the group's notification was sent. Marking
// an already dispatched group is a no-op in effect.
func (s *GroupStateStore) MarkDispatched(feedURL, groupTitle string) error {
	states := s.load()

	if states[feedURL] == nil {
		states[feedURL] = make(map[string]bool)
	}
	states[feedURL][groupTitle] = true

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.Marshal(states)
	if err != nil {
		return fmt.Errorf("failed to encode group states: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write group states: %w", err)
	}

	return nil
}

func (s *GroupStateStore) load() map[string]map[string]bool {
	states := make(map[string]map[string]bool)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Failed to read group states", "path", s.path, "error", err)
		}
		return states
	}

	if err := json.Unmarshal(data, &states); err != nil {
		slog.Warn("Failed to parse group states", "path", s.path, "error", err)
		return make(map[string]map[string]bool)
	}

	return states
}
