package domain

import "time"

// Chunk represents a bounded slice of a document's extracted text.
// The zero-based Index defines the document's read order; for a completed
// document the indices are contiguous from 0.
type Chunk struct {
	ID         string
	DocumentID string
	Index      int
	Content    string
	TokenCount int
	CreatedAt  time.Time
}

// Embedding stores the fixed-length vector for exactly one chunk. It is
// written immediately after its chunk in the same ingestion step and is
// never updated.
type Embedding struct {
	ID        string
	ChunkID   string
	Vector    []float32
	CreatedAt time.Time
}
