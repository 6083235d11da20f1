package generator

import "context"

// Generator produces a completion for a single prompt string.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
