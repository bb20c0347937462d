package filtering

import (
	"context"
	"fmt"

	"github.com/jobpilot/jobpilot/internal/jobs"
	"go.uber.org/zap"
)

// Filter represents a single filtering step applied to postings after merge.
type Filter interface {
	Name() string
	Apply(ctx context.Context, p *jobs.Postings) (*jobs.Postings, Step, error)
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Run executes the supplied filters sequentially, logging per-step stats.
func Run(ctx context.Context, logger *zap.Logger, steps []Filter, p *jobs.Postings) (*jobs.Postings, error) {
	for _, step := range steps {
		next, info, err := step.Apply(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		if logger != nil {
			logger.Debug("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		p = next
	}

	return p, nil
}
