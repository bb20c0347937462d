package tailor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/jobpilot/jobpilot/internal/constraints"
)

type stubGenerator struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (s *stubGenerator) Complete(_ context.Context, prompt string) (string, error) {
	i := s.calls
	s.calls++
	s.prompts = append(s.prompts, prompt)
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if i < len(s.responses) {
		return s.responses[i], nil
	}
	return "", errors.New("stub exhausted")
}

func (s *stubGenerator) Model() string { return "stub-model" }

func response(score int, feedback ...string) string {
	var b strings.Builder
	b.WriteString("---BEGIN CV---\nJane Doe\nPlatform Engineer with ten years of experience.\n---END CV---\n")
	fmt.Fprintf(&b, "ATS SCORE: %d\n", score)
	if len(feedback) > 0 {
		b.WriteString("IMPROVEMENTS:\n")
		for _, f := range feedback {
			b.WriteString("- " + f + "\n")
		}
	}
	return b.String()
}

func testInput() Input {
	return Input{
		BaseCV:         "Jane Doe\nEngineer at Acme since 2016.",
		JobDescription: "We need a platform engineer with Kubernetes experience.",
		JobTitle:       "Platform Engineer",
		Employer:       "Initech",
		Profile:        constraints.Resolve("Initech"),
	}
}

func TestRunSucceedsEarly(t *testing.T) {
	gen := &stubGenerator{responses: []string{response(55, "mention Kubernetes"), response(93)}}
	engine := New(gen, zap.NewNop())

	session, err := engine.Run(context.Background(), testInput())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if session.Status != StatusSucceeded {
		t.Fatalf("status = %s, want %s", session.Status, StatusSucceeded)
	}
	if len(session.Attempts) != 2 {
		t.Fatalf("attempts = %d, want 2", len(session.Attempts))
	}

	doc, score, ok := session.Document()
	if !ok {
		t.Fatal("Document() not available on succeeded session")
	}
	if score != 93 {
		t.Fatalf("score = %d, want 93", score)
	}
	if !strings.Contains(doc, "Jane Doe") {
		t.Fatalf("unexpected document: %q", doc)
	}
}

func TestRunExhaustedKeepsBestAttempt(t *testing.T) {
	gen := &stubGenerator{responses: []string{response(72), response(81), response(68)}}
	engine := New(gen, zap.NewNop())

	session, err := engine.Run(context.Background(), testInput())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if session.Status != StatusExhausted {
		t.Fatalf("status = %s, want %s", session.Status, StatusExhausted)
	}
	if gen.calls != 3 {
		t.Fatalf("generator called %d times, want 3", gen.calls)
	}

	_, score, ok := session.Document()
	if !ok || score != 81 {
		t.Fatalf("Document() = score %d ok %v, want 81 true", score, ok)
	}
	if best := session.Best(); best.Index != 2 {
		t.Fatalf("best attempt index = %d, want 2", best.Index)
	}
}

func TestRunFeedbackFlowsIntoNextPrompt(t *testing.T) {
	gen := &stubGenerator{responses: []string{response(60, "add Kubernetes keywords"), response(95)}}
	engine := New(gen, zap.NewNop())

	if _, err := engine.Run(context.Background(), testInput()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(gen.prompts) != 2 {
		t.Fatalf("prompts = %d, want 2", len(gen.prompts))
	}
	second := gen.prompts[1]
	if !strings.Contains(second, "add Kubernetes keywords") {
		t.Fatalf("model feedback missing from second prompt")
	}
	if !strings.Contains(second, "scored 60") {
		t.Fatalf("score gap hint missing from second prompt")
	}
}

func TestRunMissingInput(t *testing.T) {
	engine := New(&stubGenerator{}, zap.NewNop())

	in := testInput()
	in.BaseCV = "   "
	if _, err := engine.Run(context.Background(), in); !errors.Is(err, ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput, got %v", err)
	}

	in = testInput()
	in.JobDescription = ""
	if _, err := engine.Run(context.Background(), in); !errors.Is(err, ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput, got %v", err)
	}
}

func TestRunUnparseableResponseContinues(t *testing.T) {
	gen := &stubGenerator{responses: []string{"I cannot help with that.", response(92)}}
	engine := New(gen, zap.NewNop())

	session, err := engine.Run(context.Background(), testInput())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if session.Status != StatusSucceeded {
		t.Fatalf("status = %s, want %s", session.Status, StatusSucceeded)
	}

	first := session.Attempts[0]
	if first.Outcome != ParseFailed || first.Scored || first.Raw == "" {
		t.Fatalf("first attempt = %+v, want unparsed with raw preserved", first)
	}
	if !strings.Contains(gen.prompts[1], "required output format") {
		t.Fatalf("format reminder missing from retry prompt")
	}
}

func TestRunTransportRetrySucceeds(t *testing.T) {
	gen := &stubGenerator{
		errs:      []error{errors.New("connection reset"), nil},
		responses: []string{"", response(94)},
	}
	engine := New(gen, zap.NewNop())

	session, err := engine.Run(context.Background(), testInput())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if session.Status != StatusSucceeded {
		t.Fatalf("status = %s, want %s", session.Status, StatusSucceeded)
	}
	if gen.calls != 2 {
		t.Fatalf("generator called %d times, want 2", gen.calls)
	}
	if gen.prompts[0] != gen.prompts[1] {
		t.Fatal("transport retry must reuse the identical prompt")
	}
}

func TestRunDoubleTransportFailure(t *testing.T) {
	gen := &stubGenerator{errs: []error{errors.New("reset"), errors.New("reset again")}}
	engine := New(gen, zap.NewNop())

	session, err := engine.Run(context.Background(), testInput())
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
	if session.Status != StatusFailed {
		t.Fatalf("status = %s, want %s", session.Status, StatusFailed)
	}
	if _, _, ok := session.Document(); ok {
		t.Fatal("Document() must not be available on a failed session")
	}
}

func TestRunConstraintRulesInPrompt(t *testing.T) {
	gen := &stubGenerator{responses: []string{response(95)}}
	engine := New(gen, zap.NewNop())

	in := testInput()
	in.Employer = "Meta Platforms"
	in.Profile = constraints.Resolve(in.Employer)

	if _, err := engine.Run(context.Background(), in); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !strings.Contains(gen.prompts[0], "Facebook") {
		t.Fatalf("constraint vocabulary missing from prompt")
	}
}
