package rag

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTextShortInputIsOneChunk(t *testing.T) {
	s := NewSplitter()

	chunks := s.SplitText("a single short line")
	require.Len(t, chunks, 1)
	assert.Equal(t, "a single short line", chunks[0])
}

func TestSplitTextRespectsChunkSize(t *testing.T) {
	s := &Splitter{ChunkSize: 20, ChunkOverlap: 0, Separator: "\n"}

	text := strings.Join([]string{
		"first segment",
		"second segment",
		"third segment",
	}, "\n")

	chunks := s.SplitText(text)
	require.Len(t, chunks, 3)
	assert.Equal(t, "first segment", chunks[0])
	assert.Equal(t, "second segment", chunks[1])
	assert.Equal(t, "third segment", chunks[2])
}

func TestSplitTextOverlapCarriesSegments(t *testing.T) {
	s := &Splitter{ChunkSize: 20, ChunkOverlap: 1, Separator: "\n"}

	text := strings.Join([]string{"alpha", "beta", "gamma", "delta"}, "\n")

	chunks := s.SplitText(text)
	require.GreaterOrEqual(t, len(chunks), 2)

	// the last segment of each chunk opens the next one
	for n := 1; n < len(chunks); n++ {
		prev := strings.Split(chunks[n-1], "\n")
		assert.True(t, strings.HasPrefix(chunks[n], prev[len(prev)-1]))
	}
}

func TestSplitTextSkipsBlankSegments(t *testing.T) {
	s := &Splitter{ChunkSize: 100, ChunkOverlap: 0, Separator: "\n"}

	chunks := s.SplitText("one\n\n   \ntwo")
	require.Len(t, chunks, 1)
	assert.Equal(t, "one\ntwo", chunks[0])
}

func TestSplitTextEmptyInput(t *testing.T) {
	s := NewSplitter()

	assert.Empty(t, s.SplitText(""))
	assert.Empty(t, s.SplitText("\n\n\n"))
}

func TestSplitDocuments(t *testing.T) {
	s := &Splitter{ChunkSize: 10, ChunkOverlap: 0, Separator: "\n"}

	parent := Document{
		Id:       "parent-1",
		Text:     "first line\nsecond line\nthird line",
		Metadata: map[string]string{"filename": "notes.txt"},
	}

	chunked := s.SplitDocuments([]Document{parent})
	require.Len(t, chunked, 3)

	for n, doc := range chunked {
		assert.Equal(t, "parent-1_chunk_"+strconv.Itoa(n), doc.Id)
		assert.Equal(t, strconv.Itoa(n), doc.Metadata["chunk"])
		assert.Equal(t, "parent-1", doc.Metadata["parent_id"])
		assert.Equal(t, "parent-1", doc.Metadata["source"])
		assert.Equal(t, "notes.txt", doc.Metadata["filename"])
	}

	// parent metadata is copied, not shared
	chunked[0].Metadata["filename"] = "mutated"
	assert.Equal(t, "notes.txt", parent.Metadata["filename"])
}

func TestSplitDocumentsKeepsExistingSource(t *testing.T) {
	s := &Splitter{ChunkSize: 100, ChunkOverlap: 0, Separator: "\n"}

	chunked := s.SplitDocuments([]Document{{
		Id:       "parent-1",
		Text:     "only line",
		Metadata: map[string]string{"source": "/tmp/notes.txt"},
	}})

	require.Len(t, chunked, 1)
	assert.Equal(t, "/tmp/notes.txt", chunked[0].Metadata["source"])
	assert.Equal(t, "0", chunked[0].Metadata["chunk"])
}
