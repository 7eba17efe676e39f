package config

import (
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader reads the feed URL list from disk. The file is re-read on every
// poll cycle so the list can be edited without restarting the process.
type Loader struct {
	path string
}

func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load returns the configured feed URLs in file order. A missing or
// malformed file is logged and yields an empty list for the current cycle;
// the next cycle reads the file again.
func (l *Loader) Load() []string {
	data, err := os.ReadFile(l.path)
	if err != nil {
		slog.Warn("Failed to read feed list", "path", l.path, "error", err)
		return nil
	}

	var list FeedList
	if err := yaml.Unmarshal(data, &list); err != nil {
		slog.Warn("Failed to parse feed list", "path", l.path, "error", err)
		return nil
	}

	urls := make([]string, 0, len(list.URLs))
	for _, u := range list.URLs {
		if u == "" {
			continue
		}
		urls = append(urls, u)
	}

	return urls
}
