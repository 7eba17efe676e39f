package state

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// HistoryLimit caps the per-feed history window. The engine only ever
// compares against the last HistoryLimit observed ids, so a history file
// never grows beyond that.
const HistoryLimit = 4

// HistoryStore persists the bounded list of recently seen item ids for
// each feed, one comma-joined text document per feed. Files are addressed
// by a hash of the feed URL; the hash is storage addressing only, never
// used for identity comparisons.
type HistoryStore struct {
	dir string
}

func NewHistoryStore(dataDir string) *HistoryStore {
	return &HistoryStore{dir: filepath.Join(dataDir, "history")}
}

// Read returns the persisted item ids for a feed, oldest first. A missing
// file or a read failure degrades to an empty list; failures are logged,
// never propagated.
func (s *HistoryStore) Read(feedURL string) []string {
	data, err := os.ReadFile(s.filePath(feedURL))
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Failed to read feed history", "feed", feedURL, "error", err)
		}
		return nil
	}

	raw := strings.TrimSpace(string(data))
	if raw == "" {
		return nil
	}

	return strings.Split(raw, ",")
}

// Write persists the given ids for a feed, keeping only the last
// HistoryLimit entries. The previous content is overwritten; callers merge
// old and new ids before writing.
func (s *HistoryStore) Write(feedURL string, ids []string) error {
	if len(ids) > HistoryLimit {
		ids = ids[len(ids)-HistoryLimit:]
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	content := strings.TrimSpace(strings.Join(ids, ","))
	if err := os.WriteFile(s.filePath(feedURL), []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write feed history: %w", err)
	}

	return nil
}

func (s *HistoryStore) filePath(feedURL string) string {
	sum := sha256.Sum256([]byte(feedURL))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:])+".txt")
}
