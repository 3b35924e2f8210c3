package rewriter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"cryptopress/internal/resilience/circuitbreaker"
	"cryptopress/internal/resilience/retry"
)

// OpenAICompleter calls OpenAI's chat completion API with circuit breaker
// and retry logic.
type OpenAICompleter struct {
	client         *openai.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	model          string
	timeout        time.Duration
}

// NewOpenAICompleter creates an OpenAI backend with the given API key.
func NewOpenAICompleter(apiKey string, cfg Config) *OpenAICompleter {
	return &OpenAICompleter{
		client:         openai.NewClient(apiKey),
		circuitBreaker: circuitbreaker.New(circuitbreaker.RewriteBackendConfig()),
		retryConfig:    retry.RewriteBackendConfig(),
		model:          openai.GPT4oMini,
		timeout:        cfg.Timeout,
	}
}

// Name implements Completer.
func (o *OpenAICompleter) Name() string { return "openai" }

// Complete sends the prompt through retry and circuit breaker wrappers.
func (o *OpenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	var result string

	retryErr := retry.WithBackoff(ctx, o.retryConfig, func() error {
		cbResult, err := o.circuitBreaker.Execute(func() (interface{}, error) {
			return o.doComplete(ctx, prompt)
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("openai api circuit breaker open, request rejected",
					slog.String("service", "openai-api"),
					slog.String("state", o.circuitBreaker.State().String()))
				return fmt.Errorf("openai api unavailable: circuit breaker open")
			}
			return err
		}

		result = cbResult.(string)
		return nil
	})

	if retryErr != nil {
		return "", fmt.Errorf("openai complete failed after retries: %w", retryErr)
	}

	return result, nil
}

// doComplete performs the actual API call without retry or circuit breaker.
func (o *OpenAICompleter) doComplete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		}},
	})

	duration := time.Since(start)

	if err != nil {
		slog.ErrorContext(ctx, "openai api call failed",
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai api returned empty response")
	}

	content := resp.Choices[0].Message.Content

	slog.InfoContext(ctx, "openai api call completed",
		slog.Int("response_length", len(content)),
		slog.Duration("duration", duration))

	return content, nil
}
