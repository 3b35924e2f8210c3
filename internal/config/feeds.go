package config

import (
	"fmt"
	"log/slog"
	"os"

	"cryptopress/internal/infra/collector"

	"gopkg.in/yaml.v3"
)

// feedsFile is the shape of the optional feeds configuration file.
type feedsFile struct {
	Feeds []collector.FeedSource `yaml:"feeds"`
}

// LoadFeedSources reads the feed list from the file named by FEEDS_FILE.
// A missing variable, unreadable file or empty list falls back to the
// built-in sources with a log line, never an error.
func LoadFeedSources() []collector.FeedSource {
	path := os.Getenv("FEEDS_FILE")
	if path == "" {
		return collector.DefaultFeedSources()
	}

	sources, err := parseFeedsFile(path)
	if err != nil {
		slog.Warn("feeds file unusable, using built-in sources",
			slog.String("path", path),
			slog.Any("error", err))
		return collector.DefaultFeedSources()
	}

	slog.Info("feed sources loaded",
		slog.String("path", path),
		slog.Int("count", len(sources)))
	return sources
}

func parseFeedsFile(path string) ([]collector.FeedSource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file feedsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, err
	}

	if len(file.Feeds) == 0 {
		return nil, fmt.Errorf("no feeds defined")
	}
	for i, f := range file.Feeds {
		if f.Name == "" || f.URL == "" {
			return nil, fmt.Errorf("feed %d: name and url are required", i)
		}
	}

	return file.Feeds, nil
}
