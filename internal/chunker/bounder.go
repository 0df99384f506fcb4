// Package chunker bounds extracted text and splits it into embeddable
// chunks. The bounds exist so a single huge or repetitive document cannot
// produce unbounded chunk counts, and therefore unbounded embedding calls.
package chunker

import (
	"fmt"
	"strings"

	"github.com/doctrove/doctrove/internal/config"
	"github.com/doctrove/doctrove/internal/domain"
)

// Limits caps the raw text length and the number of chunks produced.
type Limits struct {
	MaxTextChars int
	MaxChunks    int
}

// DefaultLimits provides the documented defaults.
func DefaultLimits() Limits {
	return Limits{
		MaxTextChars: config.DefaultMaxTextChars,
		MaxChunks:    config.DefaultMaxChunks,
	}
}

// Normalized returns a copy with defaults applied and floors enforced.
func (l Limits) Normalized() Limits {
	out := l
	if out.MaxTextChars <= 0 {
		out.MaxTextChars = config.DefaultMaxTextChars
	} else if out.MaxTextChars < config.MinTextChars {
		out.MaxTextChars = config.MinTextChars
	}
	if out.MaxChunks <= 0 {
		out.MaxChunks = config.DefaultMaxChunks
	} else if out.MaxChunks < config.MinChunks {
		out.MaxChunks = config.MinChunks
	}
	return out
}

// Chunk is one bounded slice of a document's text.
type Chunk struct {
	Index      int
	Content    string
	TokenCount int
}

// Chunker splits text into at most maxChunks ordered chunks.
type Chunker interface {
	Chunk(text string, maxChunks int) ([]Chunk, error)
}

// Bounder truncates extracted text to the character limit before handing it
// to the chunker, so the chunker never sees unbounded input. Truncation is a
// plain prefix cut and may land mid-word.
type Bounder struct {
	chunker Chunker
	limits  Limits
}

func NewBounder(chunker Chunker, limits Limits) *Bounder {
	return &Bounder{
		chunker: chunker,
		limits:  limits.Normalized(),
	}
}

// Limits returns the normalized limits in effect.
func (b *Bounder) Limits() Limits {
	return b.limits
}

// Bound trims, truncates, and chunks the extracted text.
func (b *Bounder) Bound(text string) ([]Chunk, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, domain.ErrEmptyContent
	}

	truncated := Truncate(trimmed, b.limits.MaxTextChars)

	chunks, err := b.chunker.Chunk(truncated, b.limits.MaxChunks)
	if err != nil {
		return nil, fmt.Errorf("failed to chunk text: %w", err)
	}
	if len(chunks) == 0 {
		return nil, domain.ErrNoChunksProduced
	}

	// Indices define document read order and must be contiguous from 0.
	for i := range chunks {
		chunks[i].Index = i
	}
	return chunks, nil
}

// Truncate cuts text to at most maxChars characters (runes, not bytes).
func Truncate(text string, maxChars int) string {
	if maxChars <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return string(runes[:maxChars])
}
