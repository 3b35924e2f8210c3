package rewriter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sony/gobreaker"

	"cryptopress/internal/resilience/circuitbreaker"
	"cryptopress/internal/resilience/retry"
)

// ClaudeCompleter calls Anthropic's Claude API with circuit breaker and
// retry logic.
type ClaudeCompleter struct {
	client         anthropic.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	model          string
	maxTokens      int
	timeout        time.Duration
}

// NewClaudeCompleter creates a Claude backend with the given API key.
func NewClaudeCompleter(apiKey string, cfg Config) *ClaudeCompleter {
	return &ClaudeCompleter{
		client:         anthropic.NewClient(option.WithAPIKey(apiKey)),
		circuitBreaker: circuitbreaker.New(circuitbreaker.RewriteBackendConfig()),
		retryConfig:    retry.RewriteBackendConfig(),
		model:          string(anthropic.ModelClaudeSonnet4_5_20250929),
		maxTokens:      cfg.MaxTokens,
		timeout:        cfg.Timeout,
	}
}

// Name implements Completer.
func (c *ClaudeCompleter) Name() string { return "claude" }

// Complete sends the prompt through retry and circuit breaker wrappers.
func (c *ClaudeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var result string

	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		cbResult, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doComplete(ctx, prompt)
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("claude api circuit breaker open, request rejected",
					slog.String("service", "claude-api"),
					slog.String("state", c.circuitBreaker.State().String()))
				return fmt.Errorf("claude api unavailable: circuit breaker open")
			}
			return err
		}

		result = cbResult.(string)
		return nil
	})

	if retryErr != nil {
		return "", fmt.Errorf("claude complete failed after retries: %w", retryErr)
	}

	return result, nil
}

// doComplete performs the actual API call without retry or circuit breaker.
func (c *ClaudeCompleter) doComplete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(c.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(prompt),
			),
		},
	})

	duration := time.Since(start)

	if err != nil {
		slog.ErrorContext(ctx, "claude api call failed",
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("claude api error: %w", err)
	}

	if len(message.Content) == 0 {
		return "", fmt.Errorf("claude api returned empty response")
	}

	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return "", fmt.Errorf("claude api returned unexpected response type")
	}

	slog.InfoContext(ctx, "claude api call completed",
		slog.Int("response_length", len(textBlock.Text)),
		slog.Duration("duration", duration))

	return textBlock.Text, nil
}
