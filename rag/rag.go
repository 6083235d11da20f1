package rag

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/w-h-a/vecstore/embedder"
	"github.com/w-h-a/vecstore/generator"
	"github.com/w-h-a/vecstore/index"
)

var (
	ErrNoEmbedder  = errors.New("embedder not provided")
	ErrNoGenerator = errors.New("generator not provided")
)

const promptTemplate = `Answer the question based on the following context:

Context:
%s

Question: %s

Answer:`

// Result is the answer to a query plus the documents it was grounded on.
type Result struct {
	Query    string     `json:"query"`
	Response string     `json:"response"`
	Sources  []Document `json:"source_documents"`
}

// RAG answers queries by retrieving the most similar stored documents and
// conditioning a generation step on them.
type RAG struct {
	options  Options
	store    index.Store
	embed    embedder.Embedder
	generate generator.Generator
}

// AddDocuments embeds and stores documents as-is, without splitting.
func (r *RAG) AddDocuments(ctx context.Context, documents []Document) ([]string, error) {
	if r.embed == nil {
		return nil, ErrNoEmbedder
	}

	if len(documents) == 0 {
		return nil, nil
	}

	texts := make([]string, len(documents))
	metadatas := make([]map[string]string, len(documents))
	ids := make([]string, len(documents))

	for n, doc := range documents {
		texts[n] = doc.Text
		metadatas[n] = doc.Metadata
		ids[n] = doc.Id
	}

	vectors, err := r.embed.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}

	return r.store.Add(ctx, texts, vectors, metadatas, ids)
}

// AddTexts wraps texts in documents, splits them when a splitter is
// configured, and stores the result.
func (r *RAG) AddTexts(ctx context.Context, texts []string, metadatas []map[string]string) ([]string, error) {
	if metadatas != nil && len(texts) != len(metadatas) {
		return nil, fmt.Errorf("number of texts (%d) and metadatas (%d) must match", len(texts), len(metadatas))
	}

	documents := make([]Document, len(texts))
	for n, text := range texts {
		var metadata map[string]string
		if metadatas != nil {
			metadata = metadatas[n]
		}
		documents[n] = NewDocument(text, metadata)
	}

	if r.options.Splitter != nil {
		documents = r.options.Splitter.SplitDocuments(documents)
	}

	return r.AddDocuments(ctx, documents)
}

// AddFile reads a file and stores its contents with source metadata.
func (r *RAG) AddFile(ctx context.Context, path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	metadata := map[string]string{
		"source":   path,
		"filename": filepath.Base(path),
	}

	return r.AddTexts(ctx, []string{string(data)}, []map[string]string{metadata})
}

// Retrieve returns the k documents most similar to query. k <= 0 falls back
// to the configured default.
func (r *RAG) Retrieve(ctx context.Context, query string, k int) ([]Document, error) {
	if r.embed == nil {
		return nil, ErrNoEmbedder
	}

	if k <= 0 {
		k = r.options.TopK
	}

	vectors, err := r.embed.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}

	if len(vectors) == 0 {
		return nil, errors.New("embedder returned no vectors")
	}

	results := r.store.Search(ctx, vectors[0], k, "")

	documents := make([]Document, 0, len(results))
	for _, rec := range results {
		documents = append(documents, Document{
			Id:       rec.Id,
			Text:     rec.Text,
			Metadata: rec.Metadata,
			Score:    rec.Score,
		})
	}

	return documents, nil
}

// Generate renders the context documents and query into the prompt template
// and calls the generator once.
func (r *RAG) Generate(ctx context.Context, query string, documents []Document) (string, error) {
	if r.generate == nil {
		return "", ErrNoGenerator
	}

	texts := make([]string, len(documents))
	for n, doc := range documents {
		texts[n] = doc.Text
	}

	prompt := fmt.Sprintf(promptTemplate, strings.Join(texts, "\n\n"), query)

	return r.generate.Generate(ctx, prompt)
}

// Query composes Retrieve and Generate. k <= 0 falls back to the configured
// default.
func (r *RAG) Query(ctx context.Context, query string, k int) (*Result, error) {
	documents, err := r.Retrieve(ctx, query, k)
	if err != nil {
		return nil, err
	}

	response, err := r.Generate(ctx, query, documents)
	if err != nil {
		return nil, err
	}

	return &Result{
		Query:    query,
		Response: response,
		Sources:  documents,
	}, nil
}

func New(store index.Store, embed embedder.Embedder, gen generator.Generator, opts ...Option) *RAG {
	options := NewOptions(opts...)

	return &RAG{
		options:  options,
		store:    store,
		embed:    embed,
		generate: gen,
	}
}
