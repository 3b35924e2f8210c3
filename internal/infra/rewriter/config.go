package rewriter

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// DefaultHeadingSimilarity is the word-overlap threshold above which a
// leading heading is considered a restatement of the title.
const DefaultHeadingSimilarity = 0.6

// Config holds rewrite engine tunables.
type Config struct {
	// HeadingSimilarity is the redundant-heading strip threshold (0-1].
	// Loaded from REWRITER_HEADING_SIMILARITY.
	HeadingSimilarity float64

	// MaxTokens is the maximum number of tokens for the backend response.
	MaxTokens int

	// Timeout bounds a single backend call.
	Timeout time.Duration
}

// LoadConfig loads rewrite configuration from environment variables.
// Invalid values fall back to defaults with a warning log.
func LoadConfig() Config {
	cfg := Config{
		HeadingSimilarity: DefaultHeadingSimilarity,
		MaxTokens:         4096,
		Timeout:           60 * time.Second,
	}

	if env := os.Getenv("REWRITER_HEADING_SIMILARITY"); env != "" {
		parsed, err := strconv.ParseFloat(env, 64)
		if err != nil || parsed <= 0 || parsed > 1 {
			slog.Warn("invalid REWRITER_HEADING_SIMILARITY, using default",
				slog.String("value", env),
				slog.Float64("default", DefaultHeadingSimilarity))
		} else {
			cfg.HeadingSimilarity = parsed
		}
	}

	return cfg
}

// NewFromEnv selects a backend from environment variables and returns the
// ready engine. REWRITER_TYPE chooses the backend ("claude" or "openai",
// default "claude"); a missing API key yields an engine with no backend,
// whose Rewrite calls fail with ErrNoBackend.
//
// Environment variables:
//   - REWRITER_TYPE: "claude" or "openai" (default: "claude")
//   - ANTHROPIC_API_KEY: Claude API key
//   - OPENAI_API_KEY: OpenAI API key
//   - REWRITER_HEADING_SIMILARITY: heading strip threshold (default: 0.6)
func NewFromEnv() *Engine {
	cfg := LoadConfig()

	var completer Completer
	switch os.Getenv("REWRITER_TYPE") {
	case "openai":
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			completer = NewOpenAICompleter(key, cfg)
		} else {
			slog.Error("REWRITER_TYPE=openai but OPENAI_API_KEY is not set")
		}
	default:
		if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
			completer = NewClaudeCompleter(key, cfg)
		} else {
			slog.Error("ANTHROPIC_API_KEY is not set, rewrite backend disabled")
		}
	}

	if completer != nil {
		slog.Info("rewrite backend initialized",
			slog.String("backend", completer.Name()),
			slog.Float64("heading_similarity", cfg.HeadingSimilarity))
	}

	return NewEngine(completer, cfg)
}
