package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"google.golang.org/genai"
)

func textResponse(texts ...string) *genai.GenerateContentResponse {
	parts := make([]*genai.Part, 0, len(texts))
	for _, text := range texts {
		parts = append(parts, &genai.Part{Text: text})
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: parts},
		}},
	}
}

func fakeGenerator(resp *genai.GenerateContentResponse, err error) *Generator {
	return &Generator{
		modelName: "gemini-pro",
		generate: func(_ context.Context, _, _ string) (*genai.GenerateContentResponse, error) {
			return resp, err
		},
	}
}

func TestCompleteJoinsParts(t *testing.T) {
	g := fakeGenerator(textResponse("first", "", "  second  "), nil)

	got, err := g.Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if got != "first\nsecond" {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestCompleteSkipsNilCandidates(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			nil,
			{Content: nil},
			{Content: &genai.Content{Parts: []*genai.Part{nil, {Text: "usable"}}}},
		},
	}
	g := fakeGenerator(resp, nil)

	got, err := g.Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if got != "usable" {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestCompleteEmptyResponse(t *testing.T) {
	g := fakeGenerator(textResponse("", "   "), nil)

	if _, err := g.Complete(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error for empty response")
	}
}

func TestCompleteTransportError(t *testing.T) {
	g := fakeGenerator(nil, errors.New("rpc unavailable"))

	_, err := g.Complete(context.Background(), "prompt")
	if err == nil || !strings.Contains(err.Error(), "rpc unavailable") {
		t.Fatalf("expected wrapped transport error, got %v", err)
	}
}

func TestCompleteEmptyPrompt(t *testing.T) {
	called := false
	g := &Generator{
		modelName: "gemini-pro",
		generate: func(_ context.Context, _, _ string) (*genai.GenerateContentResponse, error) {
			called = true
			return textResponse("never"), nil
		},
	}

	if _, err := g.Complete(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty prompt")
	}
	if called {
		t.Fatal("empty prompt must not reach the backend")
	}
}

func TestNewGeneratorRequiresAPIKey(t *testing.T) {
	if _, err := NewGenerator(context.Background(), "   ", "gemini-pro"); err == nil {
		t.Fatal("expected error for blank api key")
	}
}

func TestModel(t *testing.T) {
	if got := fakeGenerator(nil, nil).Model(); got != "gemini-pro" {
		t.Fatalf("Model() = %q, want gemini-pro", got)
	}

	var nilGen *Generator
	if nilGen.Model() != "" {
		t.Fatal("nil generator must report an empty model")
	}
}
