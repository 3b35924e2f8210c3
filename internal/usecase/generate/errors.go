// Package generate provides the use case that turns discovered external
// articles into published localized content. It orchestrates candidate
// discovery, page scraping, LLM rewriting and persistence, and keeps the
// generation run log current throughout.
package generate

import "errors"

// Sentinel errors for generation pipeline operations.
var (
	// ErrGenerationInProgress indicates another generation attempt currently
	// holds the single-run guard.
	ErrGenerationInProgress = errors.New("a generation run is already in progress")

	// ErrContentExtraction indicates the scraper could not produce usable
	// structured content for the picked candidate.
	ErrContentExtraction = errors.New("failed to extract article content")

	// ErrRewriteFailed indicates the rewrite step failed after all recovery
	// attempts, or the backend itself errored.
	ErrRewriteFailed = errors.New("failed to rewrite article content")
)

// DiagnosticError is implemented by errors that carry full diagnostic detail
// beyond the message, e.g. the raw backend response that could not be parsed.
// The orchestrator preserves the diagnostic text in the run log so operators
// can audit prompt/response mismatches.
type DiagnosticError interface {
	error
	Diagnostic() string
}
