// Package tailor generates a CV tailored to one job description, scoring
// each draft and iterating until the score target is met or the attempt
// budget runs out.
package tailor

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jobpilot/jobpilot/internal/constraints"
)

// Status is the lifecycle state of a tailoring session.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusExhausted Status = "exhausted"
	StatusFailed    Status = "failed"
)

// ParseOutcome describes how much of a model response was recoverable.
type ParseOutcome string

const (
	// ParseFull means both document markers and a score were found.
	ParseFull ParseOutcome = "full"
	// ParsePartial means a document was recovered but no score.
	ParsePartial ParseOutcome = "partial"
	// ParseFailed means no document could be recovered.
	ParseFailed ParseOutcome = "failed"
)

var (
	// ErrMissingInput is returned when the base CV or job description is empty.
	ErrMissingInput = errors.New("base CV and job description are required")
	// ErrGenerationFailed is returned when the generator failed twice on the
	// same attempt.
	ErrGenerationFailed = errors.New("cv generation failed")
)

// Input carries everything one tailoring session needs.
type Input struct {
	BaseCV         string
	JobDescription string
	JobTitle       string
	Employer       string
	Profile        constraints.Profile
}

// Attempt records one generation round. Raw always holds the unmodified
// model response so a failed parse is still inspectable.
type Attempt struct {
	Index    int          `json:"index"`
	Document string       `json:"document"`
	Score    int          `json:"score"`
	Scored   bool         `json:"scored"`
	Outcome  ParseOutcome `json:"outcome"`
	Feedback []string     `json:"feedback,omitempty"`
	Raw      string       `json:"raw"`
}

// Session is the full record of one tailoring run.
type Session struct {
	ID          string     `json:"id"`
	Status      Status     `json:"status"`
	TargetScore int        `json:"target_score"`
	Attempts    []Attempt  `json:"attempts"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

func newSession(target int, now time.Time) *Session {
	return &Session{
		ID:          uuid.NewString(),
		Status:      StatusRunning,
		TargetScore: target,
		StartedAt:   now,
	}
}

// Best returns the highest-scoring attempt, or nil when no attempt produced
// a document. On equal scores the earlier attempt wins.
func (s *Session) Best() *Attempt {
	var best *Attempt
	for i := range s.Attempts {
		a := &s.Attempts[i]
		if a.Outcome == ParseFailed {
			continue
		}
		if best == nil || a.Score > best.Score {
			best = a
		}
	}
	return best
}

// Document returns the deliverable CV for a finished session. A succeeded
// session yields the passing attempt; an exhausted one yields its best
// attempt so the caller still gets the strongest draft produced.
func (s *Session) Document() (doc string, score int, ok bool) {
	if s.Status != StatusSucceeded && s.Status != StatusExhausted {
		return "", 0, false
	}
	best := s.Best()
	if best == nil {
		return "", 0, false
	}
	return best.Document, best.Score, true
}

func (s *Session) finish(status Status, now time.Time) {
	s.Status = status
	s.FinishedAt = &now
}
