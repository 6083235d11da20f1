package rag

import "github.com/google/uuid"

// Document is a unit of retrievable text.
type Document struct {
	Id       string            `json:"id"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Score    float64           `json:"score,omitempty"`
}

func NewDocument(text string, metadata map[string]string) Document {
	if metadata == nil {
		metadata = map[string]string{}
	}
	return Document{
		Id:       uuid.New().String(),
		Text:     text,
		Metadata: metadata,
	}
}
