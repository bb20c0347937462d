package openai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jobpilot/jobpilot/internal/utils"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

const (
	defaultModel = "gpt-4o-mini"

	// maxRetries bounds retries on rate-limit responses.
	maxRetries = 3

	baseBackoff = 2 * time.Second
	maxBackoff  = 32 * time.Second
)

// ErrMaxRetriesExceeded is returned when every rate-limited retry failed.
var ErrMaxRetriesExceeded = errors.New("max retries exceeded")

// Generator wraps the OpenAI chat completions API.
type Generator struct {
	client    openai.Client
	modelName string
}

// NewGenerator creates a Generator for the chat completions backend.
func NewGenerator(apiKey, model string) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	return &Generator{
		client:    openai.NewClient(option.WithAPIKey(apiKey)),
		modelName: model,
	}, nil
}

// Complete sends the prompt as a single user message and returns the first
// choice. Rate-limit errors are retried with exponential backoff.
func (g *Generator) Complete(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			if err := utils.WaitFor(ctx, backoffDuration(attempt)); err != nil {
				return "", err
			}
		}

		params := openai.ChatCompletionNewParams{
			Model: shared.ChatModel(g.modelName),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			},
		}

		completion, err := g.client.Chat.Completions.New(ctx, params)
		if err != nil {
			lastErr = err
			if isRateLimitError(err) {
				continue
			}
			return "", fmt.Errorf("openai api call failed: %w", err)
		}

		if len(completion.Choices) == 0 {
			return "", errors.New("openai api returned no choices")
		}

		content := strings.TrimSpace(completion.Choices[0].Message.Content)
		if content == "" {
			return "", errors.New("openai api returned empty response")
		}
		return content, nil
	}

	return "", fmt.Errorf("%w: %v", ErrMaxRetriesExceeded, lastErr)
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}

// backoffDuration doubles per retry, capped at maxBackoff.
func backoffDuration(attempt int) time.Duration {
	backoff := time.Duration(math.Pow(2, float64(attempt-1))) * baseBackoff
	if backoff > maxBackoff {
		backoff = maxBackoff
	}
	return backoff
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}

	return false
}
