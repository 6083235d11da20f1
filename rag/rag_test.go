package rag

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/vecstore/index"
	kvindex "github.com/w-h-a/vecstore/index/kv"
	"github.com/w-h-a/vecstore/kv/memory"
)

type stubEmbedder struct {
	vectors map[string][]float32
	calls   int
}

func (s *stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	s.calls++

	out := make([][]float32, len(texts))
	for n, text := range texts {
		vector, ok := s.vectors[text]
		if !ok {
			return nil, errors.New("no vector for " + text)
		}
		out[n] = vector
	}
	return out, nil
}

type stubGenerator struct {
	response string
	prompts  []string
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.response, nil
}

func newTestIndex(t *testing.T) index.Store {
	t.Helper()

	return kvindex.NewStore(
		memory.NewKV(),
		index.WithName("test_rag"),
		index.WithDimensions(3),
		index.WithMetadataFields("source", "filename", "chunk", "parent_id"),
	)
}

func TestAddTextsAndRetrieve(t *testing.T) {
	embed := &stubEmbedder{vectors: map[string][]float32{
		"dogs chase balls":   {1, 0, 0},
		"cats chase mice":    {0, 1, 0},
		"tell me about dogs": {0.95, 0.05, 0},
	}}
	r := New(newTestIndex(t), embed, nil, WithoutChunking())

	ids, err := r.AddTexts(context.Background(), []string{"dogs chase balls", "cats chase mice"}, nil)
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	documents, err := r.Retrieve(context.Background(), "tell me about dogs", 1)
	require.NoError(t, err)
	require.Len(t, documents, 1)
	assert.Equal(t, "dogs chase balls", documents[0].Text)
	assert.Greater(t, documents[0].Score, 0.9)
}

func TestRetrieveDefaultsTopK(t *testing.T) {
	embed := &stubEmbedder{vectors: map[string][]float32{
		"a":     {1, 0, 0},
		"b":     {0.9, 0.1, 0},
		"c":     {0.8, 0.2, 0},
		"query": {1, 0, 0},
	}}
	r := New(newTestIndex(t), embed, nil, WithoutChunking(), WithTopK(2))

	_, err := r.AddTexts(context.Background(), []string{"a", "b", "c"}, nil)
	require.NoError(t, err)

	documents, err := r.Retrieve(context.Background(), "query", 0)
	require.NoError(t, err)
	assert.Len(t, documents, 2)
}

func TestQueryRendersPromptTemplate(t *testing.T) {
	embed := &stubEmbedder{vectors: map[string][]float32{
		"dogs chase balls":   {1, 0, 0},
		"cats chase mice":    {0, 1, 0},
		"tell me about dogs": {0.95, 0.05, 0},
	}}
	gen := &stubGenerator{response: "they love it"}
	r := New(newTestIndex(t), embed, gen, WithoutChunking())

	_, err := r.AddTexts(context.Background(), []string{"dogs chase balls", "cats chase mice"}, nil)
	require.NoError(t, err)

	result, err := r.Query(context.Background(), "tell me about dogs", 1)
	require.NoError(t, err)

	assert.Equal(t, "tell me about dogs", result.Query)
	assert.Equal(t, "they love it", result.Response)
	require.Len(t, result.Sources, 1)
	assert.Equal(t, "dogs chase balls", result.Sources[0].Text)

	require.Len(t, gen.prompts, 1)
	expected := `Answer the question based on the following context:

Context:
dogs chase balls

Question: tell me about dogs

Answer:`
	assert.Equal(t, expected, gen.prompts[0])

	// one embed call for the documents, one for the query
	assert.Equal(t, 2, embed.calls)
}

func TestGenerateJoinsContextWithBlankLines(t *testing.T) {
	gen := &stubGenerator{response: "ok"}
	r := New(newTestIndex(t), nil, gen)

	_, err := r.Generate(context.Background(), "q", []Document{
		{Text: "first"},
		{Text: "second"},
	})
	require.NoError(t, err)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "first\n\nsecond")
}

func TestAddTextsChunksLongInput(t *testing.T) {
	embed := &stubEmbedder{vectors: map[string][]float32{
		"line one": {1, 0, 0},
		"line two": {0, 1, 0},
	}}
	splitter := &Splitter{ChunkSize: 8, ChunkOverlap: 0, Separator: "\n"}
	r := New(newTestIndex(t), embed, nil, WithSplitter(splitter))

	ids, err := r.AddTexts(context.Background(), []string{"line one\nline two"}, nil)
	require.NoError(t, err)
	assert.Len(t, ids, 2)
}

func TestAddDocumentsNoEmbedder(t *testing.T) {
	r := New(newTestIndex(t), nil, nil)

	_, err := r.AddDocuments(context.Background(), []Document{{Id: "x", Text: "y"}})
	assert.ErrorIs(t, err, ErrNoEmbedder)

	_, err = r.Retrieve(context.Background(), "q", 1)
	assert.ErrorIs(t, err, ErrNoEmbedder)
}

func TestQueryNoGenerator(t *testing.T) {
	embed := &stubEmbedder{vectors: map[string][]float32{
		"q": {1, 0, 0},
	}}
	r := New(newTestIndex(t), embed, nil)

	_, err := r.Query(context.Background(), "q", 1)
	assert.ErrorIs(t, err, ErrNoGenerator)
}

func TestAddTextsRejectsMismatchedMetadatas(t *testing.T) {
	r := New(newTestIndex(t), &stubEmbedder{}, nil)

	_, err := r.AddTexts(context.Background(), []string{"a", "b"}, []map[string]string{{}})
	assert.Error(t, err)
}

func TestAddFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("dogs chase balls"), 0o644))

	embed := &stubEmbedder{vectors: map[string][]float32{
		"dogs chase balls": {1, 0, 0},
	}}
	r := New(newTestIndex(t), embed, nil, WithoutChunking())

	ids, err := r.AddFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, ids, 1)

	documents, err := r.Retrieve(context.Background(), "dogs chase balls", 1)
	require.NoError(t, err)
	require.Len(t, documents, 1)
	assert.Equal(t, path, documents[0].Metadata["source"])
	assert.Equal(t, "notes.txt", documents[0].Metadata["filename"])
}

func TestAddFileMissing(t *testing.T) {
	r := New(newTestIndex(t), &stubEmbedder{}, nil)

	_, err := r.AddFile(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}
