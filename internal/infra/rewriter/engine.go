// Package rewriter localizes scraped articles through a generative backend.
// It includes adapters for Claude (Anthropic) and OpenAI APIs with
// reliability patterns, plus a recovery pipeline for the fragile JSON the
// backends return.
package rewriter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cryptopress/internal/observability/metrics"
	"cryptopress/internal/usecase/generate"
)

// Completer is a generative backend capable of answering a single prompt.
type Completer interface {
	// Complete sends the prompt and returns the raw response text.
	Complete(ctx context.Context, prompt string) (string, error)

	// Name identifies the backend for logging.
	Name() string
}

// Engine implements generate.Rewriter on top of a Completer.
type Engine struct {
	completer Completer
	cfg       Config
}

// NewEngine creates a rewrite engine. A nil completer is allowed; Rewrite
// then fails with ErrNoBackend so callers record the failure instead of
// crashing at startup.
func NewEngine(completer Completer, cfg Config) *Engine {
	if cfg.HeadingSimilarity <= 0 || cfg.HeadingSimilarity > 1 {
		cfg.HeadingSimilarity = DefaultHeadingSimilarity
	}
	return &Engine{completer: completer, cfg: cfg}
}

// Rewrite localizes the given title and body. Backend and parse failures
// propagate as typed errors; they are never swallowed into an empty result.
func (e *Engine) Rewrite(ctx context.Context, title, body string) (*generate.Rewrite, error) {
	if e.completer == nil {
		return nil, ErrNoBackend
	}

	prompt := buildPrompt(title, body)

	start := time.Now()
	raw, err := e.completer.Complete(ctx, prompt)
	duration := time.Since(start)
	metrics.RecordRewriteDuration(duration)

	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBackendUnavailable, e.completer.Name(), err)
	}

	p, strategy, err := parseResponse(raw)
	if err != nil {
		slog.Error("rewrite response unparsable",
			slog.String("backend", e.completer.Name()),
			slog.Int("response_length", len(raw)))
		return nil, err
	}
	metrics.RecordRewriteParse(strategy)
	if strategy != "direct" {
		slog.Warn("rewrite response recovered",
			slog.String("backend", e.completer.Name()),
			slog.String("strategy", strategy))
	}

	content := convertBoldMarkers(p.Content)
	content = stripRedundantHeading(content, p.Title, e.cfg.HeadingSimilarity)

	result := &generate.Rewrite{Title: p.Title, ContentHTML: content}
	if result.Title == "" || result.ContentHTML == "" {
		return nil, &ParseError{Raw: raw}
	}

	slog.Info("rewrite completed",
		slog.String("backend", e.completer.Name()),
		slog.String("parse_strategy", strategy),
		slog.Duration("duration", duration))

	return result, nil
}
