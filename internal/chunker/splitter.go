package chunker

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
)

const (
	defaultChunkSize    = 1200
	defaultChunkOverlap = 200
)

// Splitter implements Chunker on top of a recursive character splitter.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
}

// NewSplitter creates a Splitter. Non-positive arguments fall back to the
// defaults.
func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = defaultChunkOverlap
		if chunkOverlap >= chunkSize {
			chunkOverlap = chunkSize / 4
		}
	}
	return &Splitter{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

// Chunk splits text and keeps at most maxChunks parts, in split order.
func (s *Splitter) Chunk(text string, maxChunks int) ([]Chunk, error) {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(s.chunkSize),
		textsplitter.WithChunkOverlap(s.chunkOverlap),
	)

	parts, err := splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("split text: %w", err)
	}

	if maxChunks > 0 && len(parts) > maxChunks {
		parts = parts[:maxChunks]
	}

	chunks := make([]Chunk, 0, len(parts))
	for _, part := range parts {
		content := strings.TrimSpace(part)
		if content == "" {
			continue
		}
		chunks = append(chunks, Chunk{
			Index:      len(chunks),
			Content:    content,
			TokenCount: estimateTokens(content),
		})
	}
	return chunks, nil
}

// estimateTokens approximates the token count at four characters per token,
// which is close enough for batching and display purposes.
func estimateTokens(text string) int {
	n := (len(text) + 3) / 4
	if n < 1 {
		n = 1
	}
	return n
}
