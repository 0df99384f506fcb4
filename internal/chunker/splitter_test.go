package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitter_Chunk_SingleShortText(t *testing.T) {
	s := NewSplitter(0, 0)

	chunks, err := s.Chunk("a short paragraph", 10)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, "a short paragraph", chunks[0].Content)
	assert.Greater(t, chunks[0].TokenCount, 0)
}

func TestSplitter_Chunk_RespectsMaxChunks(t *testing.T) {
	s := NewSplitter(100, 0)

	var sb strings.Builder
	for i := 0; i < 200; i++ {
		sb.WriteString("every paragraph carries enough words to overflow the window.\n\n")
	}

	chunks, err := s.Chunk(sb.String(), 5)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(chunks), 5)
}

func TestSplitter_Chunk_PreservesOrder(t *testing.T) {
	s := NewSplitter(40, 0)

	chunks, err := s.Chunk("alpha section one.\n\nbeta section two.\n\ngamma section three.", 0)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	joined := ""
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		joined += c.Content + " "
	}
	assert.Less(t, strings.Index(joined, "alpha"), strings.Index(joined, "gamma"))
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 1, estimateTokens("ab"))
	assert.Equal(t, 2, estimateTokens("abcdefgh"))
	assert.Equal(t, 1, estimateTokens(""))
}
