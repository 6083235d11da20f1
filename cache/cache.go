package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/w-h-a/vecstore/embedder"
	"github.com/w-h-a/vecstore/index"
)

// MetadataFields are the fields a backing index must allow for cache
// entries to round-trip.
var MetadataFields = []string{"query", "response", "timestamp", "hash"}

var ErrNoEmbedder = errors.New("embedder not provided")

// Entry is a cached query/response pair. Entries are never updated in
// place; they are invalidated or masked by TTL.
type Entry struct {
	Id        string    `json:"id"`
	Query     string    `json:"query"`
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
	Hash      string    `json:"hash"`
	Score     float64   `json:"score"`
}

// Cache memoizes expensive computations keyed by semantic similarity of the
// query string rather than exact equality. A lookup hits when the nearest
// stored query scores at or above the configured threshold.
type Cache struct {
	options Options
	store   index.Store
	embed   embedder.Embedder
	now     func() time.Time
}

func hashQuery(query string) string {
	sum := md5.Sum([]byte(query))
	return hex.EncodeToString(sum[:])
}

func (c *Cache) embedQuery(ctx context.Context, query string) ([]float32, error) {
	if c.embed == nil {
		return nil, ErrNoEmbedder
	}

	vectors, err := c.embed.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}

	if len(vectors) == 0 {
		return nil, errors.New("embedder returned no vectors")
	}

	return vectors[0], nil
}

func (c *Cache) lookup(ctx context.Context, query string) (*Entry, error) {
	vector, err := c.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	results := c.store.Search(ctx, vector, 1, "")
	if len(results) == 0 {
		return nil, nil
	}

	top := results[0]
	if top.Score < c.options.Threshold {
		return nil, nil
	}

	entry := &Entry{
		Id:       top.Id,
		Query:    top.Metadata["query"],
		Response: top.Metadata["response"],
		Hash:     top.Metadata["hash"],
		Score:    top.Score,
	}

	if raw, ok := top.Metadata["timestamp"]; ok {
		if seconds, err := strconv.ParseFloat(raw, 64); err == nil {
			entry.Timestamp = time.Unix(int64(seconds), 0)
		}
	}

	return entry, nil
}

// Get returns the cached entry nearest to query, or nil when nothing scores
// at or above the threshold. An entry past its TTL is treated as not found
// but is not deleted.
func (c *Cache) Get(ctx context.Context, query string) (*Entry, error) {
	entry, err := c.lookup(ctx, query)
	if err != nil || entry == nil {
		return nil, err
	}

	if c.options.TTL > 0 && c.now().Sub(entry.Timestamp) > c.options.TTL {
		return nil, nil
	}

	return entry, nil
}

// Set stores the query/response pair and returns the entry id.
func (c *Cache) Set(ctx context.Context, query string, response string) (string, error) {
	vector, err := c.embedQuery(ctx, query)
	if err != nil {
		return "", err
	}

	metadata := map[string]string{
		"query":     query,
		"response":  response,
		"timestamp": strconv.FormatInt(c.now().Unix(), 10),
		"hash":      hashQuery(query),
	}

	ids, err := c.store.Add(ctx, []string{query}, [][]float32{vector}, []map[string]string{metadata}, nil)
	if err != nil {
		return "", err
	}

	if len(ids) == 0 {
		return "", nil
	}

	return ids[0], nil
}

// Invalidate deletes the entry nearest to query if it clears the threshold.
func (c *Cache) Invalidate(ctx context.Context, query string) (bool, error) {
	entry, err := c.lookup(ctx, query)
	if err != nil {
		return false, err
	}

	if entry == nil {
		return false, nil
	}

	return c.store.Delete(ctx, entry.Id), nil
}

func (c *Cache) Clear(ctx context.Context) bool {
	return c.store.Clear(ctx)
}

// GetOrSet returns the cached response for query when present, otherwise
// computes, stores, and returns a fresh one. The second return reports
// whether the cache was hit; compute runs at most once per call.
func (c *Cache) GetOrSet(ctx context.Context, query string, compute func(ctx context.Context, query string) (string, error)) (string, bool, error) {
	entry, err := c.Get(ctx, query)
	if err != nil {
		return "", false, err
	}

	if entry != nil {
		return entry.Response, true, nil
	}

	response, err := compute(ctx, query)
	if err != nil {
		return "", false, err
	}

	if _, err := c.Set(ctx, query, response); err != nil {
		slog.WarnContext(ctx, "failed to cache response", "error", err)
	}

	return response, false, nil
}

// New builds a semantic cache over the given index. The index should allow
// MetadataFields so entries survive the round trip.
func New(store index.Store, embed embedder.Embedder, opts ...Option) *Cache {
	options := NewOptions(opts...)

	return &Cache{
		options: options,
		store:   store,
		embed:   embed,
		now:     time.Now,
	}
}
