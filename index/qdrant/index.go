package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/w-h-a/vecstore/index"
	getsafe "github.com/w-h-a/vecstore/util/get_safe"
)

// qdrantIndex implements the index contract over the Qdrant HTTP API. One
// collection per index name. Qdrant requires UUID point ids, so the
// prefixed record id lives in the payload and the point id is derived from
// it deterministically.
type qdrantIndex struct {
	options index.Options
	client  *http.Client
}

func (q *qdrantIndex) ensurePrefix(id string) string {
	if strings.HasPrefix(id, q.options.Prefix) {
		return id
	}
	return q.options.Prefix + id
}

func pointId(recordId string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(recordId)).String()
}

func (q *qdrantIndex) distance() string {
	switch q.options.Metric {
	case index.InnerProduct:
		return "Dot"
	case index.Euclidean:
		return "Euclid"
	default:
		return "Cosine"
	}
}

func (q *qdrantIndex) Add(ctx context.Context, texts []string, vectors [][]float32, metadatas []map[string]string, ids []string) ([]string, error) {
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
	points := make([]map[string]any, len(texts))

	for n, text := range texts {
		if ids == nil {
			finalIds[n] = q.options.Prefix + uuid.New().String()
		} else {
			finalIds[n] = q.ensurePrefix(ids[n])
		}

		metadata := map[string]any{}
		if metadatas != nil {
			for _, field := range q.options.MetadataFields {
				if value, ok := metadatas[n][field]; ok {
					metadata[field] = value
				}
			}
		}

		payload := map[string]any{
			"doc_id":            finalIds[n],
			q.options.TextField: text,
			"metadata":          metadata,
			"created_at":        time.Now().UTC().Format(time.RFC3339Nano),
		}

		points[n] = map[string]any{
			"id":      pointId(finalIds[n]),
			"vector":  vectors[n],
			"payload": payload,
		}
	}

	req := map[string]any{
		"points": points,
	}

	var rsp envelope[json.RawMessage]

	path := fmt.Sprintf("/collections/%s/points?wait=true", url.PathEscape(q.options.Name))

	if err := q.do(ctx, http.MethodPut, path, req, &rsp); err != nil {
		slog.WarnContext(ctx, "failed to add records", "index", q.options.Name, "error", err)
		return []string{}, nil
	}

	if !strings.EqualFold(rsp.Status.State, "ok") && len(rsp.Status.Error) > 0 {
		slog.WarnContext(ctx, "failed to add records", "index", q.options.Name, "error", rsp.Status.Error)
		return []string{}, nil
	}

	return finalIds, nil
}

func (q *qdrantIndex) Search(ctx context.Context, vector []float32, k int, filter string) []index.Record {
	_ = filter

	if k < 1 {
		return nil
	}

	req := map[string]any{
		"vector":       vector,
		"limit":        k,
		"with_payload": true,
	}

	var rsp envelope[[]searchHit]

	path := fmt.Sprintf("/collections/%s/points/search", url.PathEscape(q.options.Name))

	if err := q.do(ctx, http.MethodPost, path, req, &rsp); err != nil {
		slog.WarnContext(ctx, "failed to search", "index", q.options.Name, "error", err)
		return nil
	}

	results := make([]index.Record, 0, len(rsp.Result))

	for _, point := range rsp.Result {
		payload := point.Payload

		rec := index.Record{
			Id:    getsafe.String(payload, "doc_id"),
			Text:  getsafe.String(payload, q.options.TextField),
			Score: point.Score,
		}

		// points written by other clients may carry no doc_id
		if len(rec.Id) == 0 {
			rec.Id = string(point.Id)
		}

		for field, value := range getsafe.Metadata(payload, "metadata") {
			if s, ok := value.(string); ok {
				if rec.Metadata == nil {
					rec.Metadata = map[string]string{}
				}
				rec.Metadata[field] = s
			}
		}

		results = append(results, rec)
	}

	return results
}

func (q *qdrantIndex) Delete(ctx context.Context, ids ...string) bool {
	if len(ids) == 0 {
		return true
	}

	pointIds := make([]string, len(ids))
	for n, id := range ids {
		pointIds[n] = pointId(q.ensurePrefix(id))
	}

	req := map[string]any{
		"points": pointIds,
	}

	var rsp envelope[json.RawMessage]

	path := fmt.Sprintf("/collections/%s/points/delete?wait=true", url.PathEscape(q.options.Name))

	if err := q.do(ctx, http.MethodPost, path, req, &rsp); err != nil {
		slog.WarnContext(ctx, "failed to delete records", "index", q.options.Name, "error", err)
		return false
	}

	return true
}

func (q *qdrantIndex) Clear(ctx context.Context) bool {
	req := map[string]any{
		"filter": map[string]any{
			"must": []map[string]any{},
		},
	}

	var rsp envelope[json.RawMessage]

	path := fmt.Sprintf("/collections/%s/points/delete?wait=true", url.PathEscape(q.options.Name))

	if err := q.do(ctx, http.MethodPost, path, req, &rsp); err != nil {
		slog.WarnContext(ctx, "failed to clear", "index", q.options.Name, "error", err)
		return false
	}

	return true
}

func (q *qdrantIndex) do(ctx context.Context, method string, path string, req any, rsp any) error {
	u := q.options.Location + path

	var buf io.Reader
	if req != nil {
		data, err := json.Marshal(req)
		if err != nil {
			return err
		}
		buf = bytes.NewReader(data)
	}

	request, err := http.NewRequestWithContext(ctx, method, u, buf)
	if err != nil {
		return err
	}

	request.Header.Set("Content-Type", "application/json")

	response, err := q.client.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}

	if response.StatusCode >= 400 {
		return fmt.Errorf("qdrant http %d: %s", response.StatusCode, string(payload))
	}

	if rsp != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, rsp); err != nil {
			return err
		}
	}

	return nil
}

func (q *qdrantIndex) configure() error {
	exists, err := q.collectionExists()
	if err != nil {
		return err
	}

	if exists {
		return nil
	}

	return q.createCollection()
}

func (q *qdrantIndex) collectionExists() (bool, error) {
	path := fmt.Sprintf("/collections/%s", url.PathEscape(q.options.Name))

	var rsp envelope[json.RawMessage]

	err := q.do(context.Background(), http.MethodGet, path, nil, &rsp)
	if err != nil {
		if strings.Contains(err.Error(), "404") {
			return false, nil
		}
		return false, err
	}

	return strings.EqualFold(rsp.Status.State, "ok"), nil
}

func (q *qdrantIndex) createCollection() error {
	req := map[string]any{
		"vectors": map[string]any{
			"size":     q.options.Dimensions,
			"distance": q.distance(),
		},
	}

	path := fmt.Sprintf("/collections/%s", url.PathEscape(q.options.Name))

	var rsp envelope[json.RawMessage]

	if err := q.do(context.Background(), http.MethodPut, path, req, &rsp); err != nil {
		return err
	}

	if !strings.EqualFold(rsp.Status.State, "ok") {
		return errors.New(rsp.Status.Error)
	}

	return nil
}

// NewStore connects to the qdrant instance named by WithLocation, e.g.
// http://localhost:6333, creating the collection if needed.
func NewStore(opts ...index.Option) index.Store {
	options := index.NewOptions(opts...)

	if len(options.Location) == 0 || options.Dimensions == 0 {
		panic("missing location or dimensions for qdrant index")
	}

	client := &http.Client{
		Timeout: 15 * time.Second,
	}

	q := &qdrantIndex{
		options: options,
		client:  client,
	}

	if err := q.configure(); err != nil {
		panic(err)
	}

	return q
}
