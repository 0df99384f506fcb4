//go:build integration

package openai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegration_GenerateEmbedding_RealAPI(t *testing.T) {
	client, err := NewClientFromEnv()
	if err != nil {
		t.Skip("OPENAI_API_KEY not set, skipping integration test")
	}

	ctx := context.Background()
	text := "This is a test document for generating embeddings."

	embedding, err := client.GenerateEmbedding(ctx, text, "integration-user")

	require.NoError(t, err)
	assert.Len(t, embedding, DefaultEmbeddingDimensions)
}
