package embedder

import "context"

// Embedder maps a batch of strings to fixed-dimension vectors, one per
// input, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
