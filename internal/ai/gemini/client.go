package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	defaultModel = "gemini-2.5-pro"
)

// generateFunc issues one generation call for a model and prompt.
type generateFunc func(ctx context.Context, model, prompt string) (*genai.GenerateContentResponse, error)

// Generator wraps the Google GenAI client to provide simple prompt-based interactions.
type Generator struct {
	modelName string
	generate  generateFunc
}

// NewGenerator creates a new Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey, model string) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	return &Generator{
		modelName: model,
		generate: func(ctx context.Context, model, prompt string) (*genai.GenerateContentResponse, error) {
			return client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
		},
	}, nil
}

// Complete sends the prompt to Gemini and returns the joined textual response.
func (g *Generator) Complete(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.generate == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	resp, err := g.generate(ctx, g.modelName, prompt)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	output := joinCandidateText(resp)
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}

	return output, nil
}

// joinCandidateText merges candidate part texts, skipping nil or empty entries.
func joinCandidateText(resp *genai.GenerateContentResponse) string {
	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}
	return strings.TrimSpace(builder.String())
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}
