package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptopress/internal/resilience/retry"
)

var testNow = time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)

func feedXML(items ...string) string {
	body := ""
	for _, it := range items {
		body += it
	}
	return `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>test feed</title>` + body + `</channel></rss>`
}

func feedItem(title, link string) string {
	return fmt.Sprintf(`<item><title>%s</title><link>%s</link><description>desc of %s</description><pubDate>Mon, 03 Nov 2025 09:00:00 GMT</pubDate></item>`, title, link, title)
}

func serveFeed(t *testing.T, xml string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(xml))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestCollector(sources []FeedSource) *RSSCollector {
	c := NewRSSCollector(sources, &http.Client{Timeout: 5 * time.Second})
	// Single attempt keeps failure cases fast.
	c.retryConfig = retry.Config{MaxAttempts: 1}
	c.now = func() time.Time { return testNow }
	return c
}

func TestListCandidates_MergesFeeds(t *testing.T) {
	srvA := serveFeed(t, feedXML(
		feedItem("a1", "https://a.example.com/2025/one"),
		feedItem("a2", "https://a.example.com/2025/two"),
	))
	srvB := serveFeed(t, feedXML(
		feedItem("b1", "https://b.example.com/2025/three"),
	))

	c := newTestCollector([]FeedSource{
		{Name: "FeedA", URL: srvA.URL},
		{Name: "FeedB", URL: srvB.URL},
	})

	got, err := c.ListCandidates(context.Background(), 40)
	require.NoError(t, err)
	require.Len(t, got, 3)

	urls := make(map[string]string)
	for _, cand := range got {
		urls[cand.URL] = cand.SourceName
	}
	assert.Equal(t, "FeedA", urls["https://a.example.com/2025/one"])
	assert.Equal(t, "FeedB", urls["https://b.example.com/2025/three"])
}

func TestListCandidates_DeduplicatesByURL(t *testing.T) {
	shared := feedItem("same story", "https://shared.example.com/2025/story")
	srvA := serveFeed(t, feedXML(shared))
	srvB := serveFeed(t, feedXML(shared))

	c := newTestCollector([]FeedSource{
		{Name: "FeedA", URL: srvA.URL},
		{Name: "FeedB", URL: srvB.URL},
	})

	got, err := c.ListCandidates(context.Background(), 40)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestListCandidates_FreshnessFilter(t *testing.T) {
	srv := serveFeed(t, feedXML(
		feedItem("current", "https://ex.com/2025/current"),
		feedItem("evergreen", "https://ex.com/guides/what-is-bitcoin"),
		feedItem("stale", "https://ex.com/2021/old-news"),
	))

	c := newTestCollector([]FeedSource{{Name: "Feed", URL: srv.URL}})

	got, err := c.ListCandidates(context.Background(), 40)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "https://ex.com/2025/current", got[0].URL)
}

func TestListCandidates_Limit(t *testing.T) {
	srv := serveFeed(t, feedXML(
		feedItem("one", "https://ex.com/2025/one"),
		feedItem("two", "https://ex.com/2025/two"),
		feedItem("three", "https://ex.com/2025/three"),
	))

	c := newTestCollector([]FeedSource{{Name: "Feed", URL: srv.URL}})

	got, err := c.ListCandidates(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestListCandidates_FailingFeedSkipped(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	t.Cleanup(broken.Close)

	healthy := serveFeed(t, feedXML(feedItem("ok", "https://ex.com/2025/ok")))

	c := newTestCollector([]FeedSource{
		{Name: "Broken", URL: broken.URL},
		{Name: "Healthy", URL: healthy.URL},
	})

	got, err := c.ListCandidates(context.Background(), 40)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "https://ex.com/2025/ok", got[0].URL)
}

func TestListCandidates_AllFeedsFailYieldsEmpty(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	t.Cleanup(broken.Close)

	c := newTestCollector([]FeedSource{
		{Name: "A", URL: broken.URL},
		{Name: "B", URL: broken.URL},
	})

	got, err := c.ListCandidates(context.Background(), 40)
	require.NoError(t, err, "total discovery failure is not an error")
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestListCandidates_CandidateFields(t *testing.T) {
	srv := serveFeed(t, feedXML(
		`<item><title>with author</title><link>https://ex.com/2025/authored</link><description>summary text</description><author>reporter@ex.com (Jane Reporter)</author><pubDate>Mon, 03 Nov 2025 09:00:00 GMT</pubDate></item>`,
	))

	c := newTestCollector([]FeedSource{{Name: "Feed", URL: srv.URL}})

	got, err := c.ListCandidates(context.Background(), 40)
	require.NoError(t, err)
	require.Len(t, got, 1)

	cand := got[0]
	assert.Equal(t, "Feed", cand.SourceName)
	assert.Equal(t, "summary text", cand.Summary)
	assert.Equal(t, time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC), cand.PublishedAt.UTC())
}

func TestDefaultFeedSources(t *testing.T) {
	sources := DefaultFeedSources()
	require.NotEmpty(t, sources)
	for _, s := range sources {
		assert.NotEmpty(t, s.Name)
		assert.Contains(t, s.URL, "https://")
	}
}
