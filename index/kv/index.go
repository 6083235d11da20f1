package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/w-h-a/vecstore/index"
	store "github.com/w-h-a/vecstore/kv"
)

// kvIndex is a brute-force vector index over a plain key-value store. Each
// record lives in its own field map under a prefixed id, and a membership
// set under index:<name>:docs enumerates the records for search and clear.
// Search is O(N*D) per query, which is fine for catalogs in the low
// thousands of records.
//
// Add and Delete touch the record and the membership set in two separate
// store operations with no transaction around them. Concurrent readers can
// observe the gap; callers needing stronger guarantees must serialize
// externally.
type kvIndex struct {
	options index.Options
	kv      store.KV
}

func (i *kvIndex) indexKey() string {
	return "index:" + i.options.Name
}

func (i *kvIndex) docsKey() string {
	return i.indexKey() + ":docs"
}

func (i *kvIndex) ensurePrefix(id string) string {
	if strings.HasPrefix(id, i.options.Prefix) {
		return id
	}
	return i.options.Prefix + id
}

func (i *kvIndex) initialize(ctx context.Context) {
	exists, err := i.kv.Exists(ctx, i.indexKey())
	if err != nil {
		slog.WarnContext(ctx, "failed to initialize index", "index", i.options.Name, "error", err)
		return
	}

	if exists {
		return
	}

	fields, err := json.Marshal(i.options.MetadataFields)
	if err != nil {
		fields = []byte("[]")
	}

	meta := map[string]string{
		"name":            i.options.Name,
		"prefix":          i.options.Prefix,
		"vector_field":    i.options.VectorField,
		"dimensions":      strconv.Itoa(i.options.Dimensions),
		"distance_metric": string(i.options.Metric),
		"metadata_fields": string(fields),
		"text_field":      i.options.TextField,
		"created_at":      time.Now().UTC().Format(time.RFC3339Nano),
	}

	if err := i.kv.HSet(ctx, i.indexKey(), meta); err != nil {
		slog.WarnContext(ctx, "failed to initialize index", "index", i.options.Name, "error", err)
	}
}

func (i *kvIndex) Add(ctx context.Context, texts []string, vectors [][]float32, metadatas []map[string]string, ids []string) ([]string, error) {
	if len(texts) != len(vectors) {
		return nil, fmt.Errorf("number of texts (%d) and vectors (%d) must match", len(texts), len(vectors))
	}

	if metadatas != nil && len(texts) != len(metadatas) {
		return nil, fmt.Errorf("number of texts (%d) and metadatas (%d) must match", len(texts), len(metadatas))
	}

	if ids != nil && len(texts) != len(ids) {
		return nil, fmt.Errorf("number of texts (%d) and ids (%d) must match", len(texts), len(ids))
	}

	finalIds := make([]string, len(texts))
	for n := range texts {
		if ids == nil {
			finalIds[n] = i.options.Prefix + uuid.New().String()
		} else {
			finalIds[n] = i.ensurePrefix(ids[n])
		}
	}

	for n, text := range texts {
		vector, err := json.Marshal(vectors[n])
		if err != nil {
			slog.WarnContext(ctx, "failed to encode vector", "index", i.options.Name, "error", err)
			return []string{}, nil
		}

		doc := map[string]string{
			i.options.TextField:   text,
			i.options.VectorField: string(vector),
		}

		if metadatas != nil {
			for _, field := range i.options.MetadataFields {
				if value, ok := metadatas[n][field]; ok {
					doc[field] = value
				}
			}
		}

		if err := i.kv.HSet(ctx, finalIds[n], doc); err != nil {
			slog.WarnContext(ctx, "failed to add records", "index", i.options.Name, "error", err)
			return []string{}, nil
		}

		if err := i.kv.SAdd(ctx, i.docsKey(), finalIds[n]); err != nil {
			slog.WarnContext(ctx, "failed to add records", "index", i.options.Name, "error", err)
			return []string{}, nil
		}
	}

	return finalIds, nil
}

func (i *kvIndex) Search(ctx context.Context, vector []float32, k int, filter string) []index.Record {
	_ = filter

	if k < 1 {
		return nil
	}

	docIds, err := i.kv.SMembers(ctx, i.docsKey())
	if err != nil {
		slog.WarnContext(ctx, "failed to search", "index", i.options.Name, "error", err)
		return nil
	}

	if len(docIds) == 0 {
		return nil
	}

	var results []index.Record

	for _, docId := range docIds {
		doc, err := i.kv.HGetAll(ctx, docId)
		if err != nil {
			slog.WarnContext(ctx, "failed to search", "index", i.options.Name, "error", err)
			return nil
		}

		if len(doc) == 0 {
			continue
		}

		encoded, ok := doc[i.options.VectorField]
		if !ok {
			continue
		}

		var stored []float32
		if err := json.Unmarshal([]byte(encoded), &stored); err != nil {
			// skip the malformed record rather than abort the search
			continue
		}

		rec := index.Record{
			Id:    docId,
			Text:  doc[i.options.TextField],
			Score: index.Similarity(i.options.Metric, vector, stored),
		}

		for _, field := range i.options.MetadataFields {
			if value, ok := doc[field]; ok {
				if rec.Metadata == nil {
					rec.Metadata = map[string]string{}
				}
				rec.Metadata[field] = value
			}
		}

		results = append(results, rec)
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})

	if len(results) > k {
		results = results[:k]
	}

	return results
}

func (i *kvIndex) Delete(ctx context.Context, ids ...string) bool {
	for _, id := range ids {
		id = i.ensurePrefix(id)

		if err := i.kv.SRem(ctx, i.docsKey(), id); err != nil {
			slog.WarnContext(ctx, "failed to delete records", "index", i.options.Name, "error", err)
			return false
		}

		if _, err := i.kv.Delete(ctx, id); err != nil {
			slog.WarnContext(ctx, "failed to delete records", "index", i.options.Name, "error", err)
			return false
		}
	}

	return true
}

func (i *kvIndex) Clear(ctx context.Context) bool {
	docIds, err := i.kv.SMembers(ctx, i.docsKey())
	if err != nil {
		slog.WarnContext(ctx, "failed to clear", "index", i.options.Name, "error", err)
		return false
	}

	for _, docId := range docIds {
		if _, err := i.kv.Delete(ctx, docId); err != nil {
			slog.WarnContext(ctx, "failed to clear", "index", i.options.Name, "error", err)
			return false
		}
	}

	if _, err := i.kv.Delete(ctx, i.docsKey()); err != nil {
		slog.WarnContext(ctx, "failed to clear", "index", i.options.Name, "error", err)
		return false
	}

	return true
}

// NewStore builds a brute-force index on top of the given key-value store.
// Index metadata is written once; constructing a second index with the same
// name reuses what is already there.
func NewStore(kv store.KV, opts ...index.Option) index.Store {
	options := index.NewOptions(opts...)

	i := &kvIndex{
		options: options,
		kv:      kv,
	}

	i.initialize(options.Context)

	return i
}
