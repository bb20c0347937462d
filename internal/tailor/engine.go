package tailor

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/jobpilot/jobpilot/internal/ai"
	"github.com/jobpilot/jobpilot/internal/logger"
)

const (
	// DefaultTargetScore is the ATS score at which a draft is accepted.
	DefaultTargetScore = 90
	// DefaultMaxAttempts bounds the generate-score-refine loop.
	DefaultMaxAttempts = 3

	defaultAttemptTimeout = 2 * time.Minute
	defaultMaxLogLength   = 200
)

// Option configures an Engine.
type Option func(*Engine)

func WithTargetScore(target int) Option {
	return func(e *Engine) { e.targetScore = target }
}

func WithMaxAttempts(attempts int) Option {
	return func(e *Engine) { e.maxAttempts = attempts }
}

func WithAttemptTimeout(timeout time.Duration) Option {
	return func(e *Engine) { e.attemptTimeout = timeout }
}

func WithMaxLogLength(length int) Option {
	return func(e *Engine) {
		if length > 0 {
			e.maxLogLen = length
		}
	}
}

// Engine runs tailoring sessions against a text generator.
type Engine struct {
	generator      ai.Generator
	logger         *zap.Logger
	targetScore    int
	maxAttempts    int
	attemptTimeout time.Duration
	maxLogLen      int
	now            func() time.Time
}

func New(generator ai.Generator, log *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		generator:      generator,
		logger:         log,
		targetScore:    DefaultTargetScore,
		maxAttempts:    DefaultMaxAttempts,
		attemptTimeout: defaultAttemptTimeout,
		maxLogLen:      defaultMaxLogLength,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the full tailoring loop for one job. It returns the session
// in a terminal state, or an error when generation itself broke down.
func (e *Engine) Run(ctx context.Context, in Input) (*Session, error) {
	if strings.TrimSpace(in.BaseCV) == "" || strings.TrimSpace(in.JobDescription) == "" {
		return nil, ErrMissingInput
	}

	session := newSession(e.targetScore, e.now())
	log := e.logger.With(
		zap.String("session_id", session.ID),
		zap.String(logger.FieldModel, e.generator.Model()),
		zap.String("employer", in.Employer),
	)
	log.Info("tailoring session started",
		zap.String("constraint_class", string(in.Profile.Class)),
		zap.Int("target_score", e.targetScore),
	)

	var feedback []string
	for i := 1; i <= e.maxAttempts; i++ {
		prompt := buildPrompt(in, feedback)
		log.Debug("generation request",
			zap.Int("attempt", i),
			zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
			zap.String("prompt_preview", logger.TruncateForLog(prompt, e.maxLogLen)),
		)

		raw, err := e.complete(ctx, prompt)
		if err != nil {
			session.finish(StatusFailed, e.now())
			log.Warn("tailoring session failed", zap.Int("attempt", i), zap.Error(err))
			return session, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
		}

		attempt := parseResponse(raw)
		attempt.Index = i
		session.Attempts = append(session.Attempts, attempt)

		log.Debug("generation response",
			zap.Int("attempt", i),
			zap.String("outcome", string(attempt.Outcome)),
			zap.Int("score", attempt.Score),
			zap.String("response_preview", logger.TruncateForLog(raw, e.maxLogLen)),
		)

		if attempt.Outcome == ParseFull && attempt.Score >= e.targetScore {
			session.finish(StatusSucceeded, e.now())
			log.Info("tailoring session succeeded",
				zap.Int("attempt", i),
				zap.Int("score", attempt.Score),
			)
			return session, nil
		}

		feedback = nextFeedback(attempt, e.targetScore)
	}

	session.finish(StatusExhausted, e.now())
	best := session.Best()
	fields := []zap.Field{zap.Int("attempts", len(session.Attempts))}
	if best != nil {
		fields = append(fields, zap.Int("best_score", best.Score))
	}
	log.Info("tailoring session exhausted", fields...)
	return session, nil
}

// complete calls the generator with a per-attempt timeout and retries once
// with the identical prompt on a transport failure.
func (e *Engine) complete(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for try := 0; try < 2; try++ {
		actx, cancel := context.WithTimeout(ctx, e.attemptTimeout)
		raw, err := e.generator.Complete(actx, prompt)
		cancel()
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return "", lastErr
}

// nextFeedback builds the refinement hints for the following attempt from
// the model's own critique plus the score gap.
func nextFeedback(attempt Attempt, target int) []string {
	feedback := append([]string(nil), attempt.Feedback...)
	switch {
	case attempt.Outcome == ParseFailed:
		feedback = append(feedback, "The previous response did not follow the required output format. Follow it exactly.")
	case !attempt.Scored:
		feedback = append(feedback, "The previous response omitted the ATS SCORE line. Include it.")
	case attempt.Score < target:
		feedback = append(feedback, fmt.Sprintf("The previous draft scored %d, below the target of %d. Align the CV more closely with the job description's key requirements.", attempt.Score, target))
	}
	return feedback
}
