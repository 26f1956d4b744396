package models

import (
	"github.com/google/uuid"
)

// LegalChunk represents a reference clause stored in the pgvector index
type LegalChunk struct {
	ID             uuid.UUID `json:"id"`
	Namespace      string    `json:"namespace"`
	Category       string    `json:"category"`
	Text           string    `json:"chunk_text"`
	SourceDocument string    `json:"source_document"`
	ChunkIndex     int       `json:"chunk_index"`
	Embedding      []float32 `json:"-"`
	Distance       float64   `json:"distance,omitempty"` // Vector similarity distance
}

// Hit maps the chunk to a grounding document
func (c LegalChunk) Hit() RetrievalHit {
	return RetrievalHit{
		Title:   c.Category,
		Snippet: c.Text,
	}
}
