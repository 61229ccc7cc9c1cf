package models

import (
	"time"

	"github.com/google/uuid"
)

// Document is one ingested knowledge-base source file.
type Document struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	SourceFile string    `json:"source_file"`
	ChunkCount int       `json:"chunk_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// Chunk is a retrievable passage of a document together with its embedding.
type Chunk struct {
	ID         uuid.UUID `json:"id"`
	DocumentID uuid.UUID `json:"document_id"`
	Position   int       `json:"position"`
	Text       string    `json:"text"`
	Embedding  []float32 `json:"-"`
}
