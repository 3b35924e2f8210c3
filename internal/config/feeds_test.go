package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptopress/internal/infra/collector"
)

func writeFeedsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "feeds.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFeedSources_FromFile(t *testing.T) {
	path := writeFeedsFile(t, `feeds:
  - name: Cointelegraph
    url: https://cointelegraph.com/rss
  - name: Decrypt
    url: https://decrypt.co/feed
`)
	t.Setenv("FEEDS_FILE", path)

	got := LoadFeedSources()
	require.Len(t, got, 2)
	assert.Equal(t, collector.FeedSource{Name: "Cointelegraph", URL: "https://cointelegraph.com/rss"}, got[0])
	assert.Equal(t, "Decrypt", got[1].Name)
}

func TestLoadFeedSources_UnsetFallsBack(t *testing.T) {
	t.Setenv("FEEDS_FILE", "")

	got := LoadFeedSources()
	assert.Equal(t, collector.DefaultFeedSources(), got)
}

func TestLoadFeedSources_BadFileFallsBack(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "invalid yaml", content: "feeds: ["},
		{name: "empty list", content: "feeds: []"},
		{name: "missing url", content: "feeds:\n  - name: OnlyName\n"},
		{name: "missing name", content: "feeds:\n  - url: https://x.example.com/rss\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("FEEDS_FILE", writeFeedsFile(t, tt.content))
			assert.Equal(t, collector.DefaultFeedSources(), LoadFeedSources())
		})
	}
}

func TestLoadFeedSources_MissingFileFallsBack(t *testing.T) {
	t.Setenv("FEEDS_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Equal(t, collector.DefaultFeedSources(), LoadFeedSources())
}
