//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doctrove/doctrove/internal/domain"
	"github.com/doctrove/doctrove/internal/testutil"
)

func insertChunkWithEmbedding(ctx context.Context, t *testing.T, repo *ChunkRepository, docID string, index int, vec []float32) *domain.Chunk {
	t.Helper()
	chunk := &domain.Chunk{
		ID:         uuid.NewString(),
		DocumentID: docID,
		Index:      index,
		Content:    "chunk content",
		TokenCount: 2,
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, repo.InsertChunk(ctx, chunk))

	full := make([]float32, 1536)
	copy(full, vec)
	require.NoError(t, repo.InsertEmbedding(ctx, &domain.Embedding{
		ID:        uuid.NewString(),
		ChunkID:   chunk.ID,
		Vector:    full,
		CreatedAt: time.Now().UTC(),
	}))
	return chunk
}

func TestChunkRepositoryIntegration_ListByDocumentOrder(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	docRepo := NewDocumentRepository(pool)
	chunkRepo := NewChunkRepository(pool)

	doc := newTestDocument("user-1")
	require.NoError(t, docRepo.Create(ctx, doc))

	// Insert out of order; reads must come back by index
	for _, idx := range []int{2, 0, 1} {
		chunk := &domain.Chunk{
			ID:         uuid.NewString(),
			DocumentID: doc.ID,
			Index:      idx,
			Content:    "content",
			TokenCount: 1,
			CreatedAt:  time.Now().UTC(),
		}
		require.NoError(t, chunkRepo.InsertChunk(ctx, chunk))
	}

	chunks, err := chunkRepo.ListByDocument(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
	}
}

func TestChunkRepositoryIntegration_DuplicateIndexRejected(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	docRepo := NewDocumentRepository(pool)
	chunkRepo := NewChunkRepository(pool)

	doc := newTestDocument("user-1")
	require.NoError(t, docRepo.Create(ctx, doc))

	first := &domain.Chunk{ID: uuid.NewString(), DocumentID: doc.ID, Index: 0, Content: "a", CreatedAt: time.Now().UTC()}
	require.NoError(t, chunkRepo.InsertChunk(ctx, first))

	dup := &domain.Chunk{ID: uuid.NewString(), DocumentID: doc.ID, Index: 0, Content: "b", CreatedAt: time.Now().UTC()}
	assert.Error(t, chunkRepo.InsertChunk(ctx, dup))
}

func TestChunkRepositoryIntegration_ListCandidatesByUser(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	docRepo := NewDocumentRepository(pool)
	chunkRepo := NewChunkRepository(pool)

	completed := newTestDocument("user-1")
	require.NoError(t, docRepo.Create(ctx, completed))
	insertChunkWithEmbedding(ctx, t, chunkRepo, completed.ID, 0, []float32{1, 0})
	insertChunkWithEmbedding(ctx, t, chunkRepo, completed.ID, 1, []float32{0, 1})
	require.NoError(t, docRepo.UpdateStatus(ctx, completed.ID, domain.DocumentStatusCompleted, ""))

	// Still processing: its chunks must not be searchable
	inflight := newTestDocument("user-1")
	require.NoError(t, docRepo.Create(ctx, inflight))
	insertChunkWithEmbedding(ctx, t, chunkRepo, inflight.ID, 0, []float32{1, 1})
	require.NoError(t, docRepo.UpdateStatus(ctx, inflight.ID, domain.DocumentStatusProcessing, ""))

	// Another user's completed document is invisible
	other := newTestDocument("user-2")
	require.NoError(t, docRepo.Create(ctx, other))
	insertChunkWithEmbedding(ctx, t, chunkRepo, other.ID, 0, []float32{1, 0})
	require.NoError(t, docRepo.UpdateStatus(ctx, other.ID, domain.DocumentStatusCompleted, ""))

	// A chunk without an embedding never becomes a candidate
	bare := &domain.Chunk{ID: uuid.NewString(), DocumentID: completed.ID, Index: 2, Content: "no vector", CreatedAt: time.Now().UTC()}
	require.NoError(t, chunkRepo.InsertChunk(ctx, bare))

	candidates, err := chunkRepo.ListCandidatesByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	for _, c := range candidates {
		assert.Equal(t, completed.ID, c.DocumentID)
		assert.Equal(t, completed.Filename, c.Filename)
		assert.Len(t, c.Vector, 1536)
	}
	assert.Equal(t, 0, candidates[0].ChunkIndex)
	assert.Equal(t, 1, candidates[1].ChunkIndex)
}
