package rag

import (
	"fmt"
	"maps"
	"strconv"
	"strings"
)

// Splitter breaks long text into overlapping chunks bounded by ChunkSize,
// splitting on Separator rather than mid-token. ChunkOverlap counts
// trailing segments carried into the next chunk, not characters.
type Splitter struct {
	ChunkSize    int
	ChunkOverlap int
	Separator    string
}

func NewSplitter() *Splitter {
	return &Splitter{
		ChunkSize:    1000,
		ChunkOverlap: 200,
		Separator:    "\n",
	}
}

func (s *Splitter) SplitText(text string) []string {
	segments := strings.Split(text, s.Separator)

	var chunks []string
	var current []string
	length := 0

	for _, segment := range segments {
		if len(strings.TrimSpace(segment)) == 0 {
			continue
		}

		if length+len(segment) > s.ChunkSize && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, s.Separator))

			// seed the next chunk with the trailing overlap segments
			start := max(0, len(current)-s.ChunkOverlap)
			current = current[start:]

			length = 0
			for _, kept := range current {
				length += len(kept)
			}
			if len(current) > 1 {
				length += len(s.Separator) * (len(current) - 1)
			}
		}

		current = append(current, segment)
		length += len(segment) + len(s.Separator)
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, s.Separator))
	}

	return chunks
}

// SplitDocuments chunks each document, producing child documents that carry
// a chunk index and a reference to their parent.
func (s *Splitter) SplitDocuments(documents []Document) []Document {
	var chunked []Document

	for _, doc := range documents {
		for n, chunk := range s.SplitText(doc.Text) {
			metadata := map[string]string{}
			maps.Copy(metadata, doc.Metadata)

			metadata["chunk"] = strconv.Itoa(n)
			if _, ok := metadata["source"]; !ok {
				metadata["source"] = doc.Id
			}
			metadata["parent_id"] = doc.Id

			chunked = append(chunked, Document{
				Id:       fmt.Sprintf("%s_chunk_%d", doc.Id, n),
				Text:     chunk,
				Metadata: metadata,
			})
		}
	}

	return chunked
}
