package index

import "context"

// Store holds embedded text records and answers nearest-neighbor queries.
// Backing-store failures degrade to empty results; only caller contract
// violations (mismatched input lengths) are returned as errors.
type Store interface {
	// Add stores one record per text and returns the final ids in input
	// order. metadatas and ids may be nil; when given, their lengths must
	// match texts.
	Add(ctx context.Context, texts []string, vectors [][]float32, metadatas []map[string]string, ids []string) ([]string, error)
	// Search returns up to k records ranked by descending similarity to
	// vector. filter is accepted for contract compatibility but is not
	// applied yet.
	Search(ctx context.Context, vector []float32, k int, filter string) []Record
	// Delete removes the listed records; deleting an unknown id is not an
	// error.
	Delete(ctx context.Context, ids ...string) bool
	// Clear removes every record while keeping the index itself.
	Clear(ctx context.Context) bool
}

// Record is a single indexed item. Records are immutable once added.
type Record struct {
	Id       string            `json:"id"`
	Text     string            `json:"text"`
	Score    float64           `json:"score"`
	Metadata map[string]string `json:"metadata,omitempty"`
}
