package generate

import (
	"context"
	"time"
)

// Candidate is a discovered external article location. Candidates are
// ephemeral: produced by the collector, consumed immediately by the
// orchestrator, never persisted.
type Candidate struct {
	URL         string
	SourceName  string
	Summary     string
	Image       string
	Author      string
	PublishedAt time.Time
}

// ScrapedContent is the extracted representation of one external page.
// Title and Body are guaranteed non-empty; a scrape that cannot fill both
// yields no ScrapedContent at all.
type ScrapedContent struct {
	Title        string
	Body         string
	HeroImageURL string
	Author       string
	PublishedAt  time.Time
	SourceURL    string
}

// Rewrite is the localized output of the rewrite engine. Both fields are
// non-empty on success.
type Rewrite struct {
	Title       string
	ContentHTML string
}

// CandidateSource discovers candidate article URLs from external feeds.
// A total discovery failure yields an empty slice, not an error; fewer
// candidates than requested is a valid outcome.
type CandidateSource interface {
	ListCandidates(ctx context.Context, limit int) ([]Candidate, error)
}

// PageScraper turns a candidate URL into structured content.
// Any failure (network, timeout, missing title or body) returns an error
// and no partial result.
type PageScraper interface {
	Scrape(ctx context.Context, url string) (*ScrapedContent, error)
}

// Rewriter localizes scraped content through a generative-text backend.
// Backend and parse failures are returned as errors, never as a partially
// populated Rewrite.
type Rewriter interface {
	Rewrite(ctx context.Context, title, body string) (*Rewrite, error)
}

// BatchResult summarizes a GenerateMany invocation.
type BatchResult struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}
