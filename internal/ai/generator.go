// Package ai defines the text-generation abstraction the tailoring engine
// drives. Concrete backends live in the gemini and openai subpackages.
package ai

import "context"

// Generator produces a completion for a single prompt. Implementations must
// be safe for concurrent use.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Model() string
}
