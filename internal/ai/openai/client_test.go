package openai

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/openai/openai-go/v3"
)

func TestNewGeneratorValidation(t *testing.T) {
	if _, err := NewGenerator("   ", "gpt-4o-mini"); err == nil {
		t.Fatal("expected error for blank api key")
	}

	g, err := NewGenerator("sk-test", "")
	if err != nil {
		t.Fatalf("NewGenerator returned error: %v", err)
	}
	if g.Model() != defaultModel {
		t.Fatalf("Model() = %q, want default %q", g.Model(), defaultModel)
	}

	g, err = NewGenerator("sk-test", "gpt-4.1")
	if err != nil {
		t.Fatalf("NewGenerator returned error: %v", err)
	}
	if g.Model() != "gpt-4.1" {
		t.Fatalf("Model() = %q, want gpt-4.1", g.Model())
	}
}

func TestCompleteEmptyPrompt(t *testing.T) {
	g, err := NewGenerator("sk-test", "")
	if err != nil {
		t.Fatalf("NewGenerator returned error: %v", err)
	}

	if _, err := g.Complete(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty prompt")
	}
}

func TestBackoffDuration(t *testing.T) {
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{5, 32 * time.Second},
		{10, 32 * time.Second},
	}
	for _, tc := range cases {
		if got := backoffDuration(tc.attempt); got != tc.want {
			t.Errorf("backoffDuration(%d) = %s, want %s", tc.attempt, got, tc.want)
		}
	}
}

func TestIsRateLimitError(t *testing.T) {
	if isRateLimitError(nil) {
		t.Fatal("nil error must not classify as rate limit")
	}
	if isRateLimitError(errors.New("connection reset")) {
		t.Fatal("plain error must not classify as rate limit")
	}
	if isRateLimitError(&openai.Error{StatusCode: 500}) {
		t.Fatal("500 must not classify as rate limit")
	}
	if !isRateLimitError(&openai.Error{StatusCode: 429}) {
		t.Fatal("429 must classify as rate limit")
	}
	if !isRateLimitError(fmt.Errorf("call failed: %w", &openai.Error{StatusCode: 429})) {
		t.Fatal("wrapped 429 must classify as rate limit")
	}
}
