package repository

import (
	"context"

	"github.com/doctrove/doctrove/internal/domain"
	"github.com/doctrove/doctrove/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// ChunkRepository handles persistence of chunks and their embeddings.
type ChunkRepository struct {
	pool *pgxpool.Pool
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{pool: pool}
}

func (r *ChunkRepository) InsertChunk(ctx context.Context, c *domain.Chunk) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO chunks (id, document_id, chunk_index, content, token_count, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.DocumentID, c.Index, c.Content, c.TokenCount, c.CreatedAt,
	)
	return err
}

func (r *ChunkRepository) InsertEmbedding(ctx context.Context, e *domain.Embedding) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO embeddings (id, chunk_id, embedding, created_at)
		 VALUES ($1, $2, $3, $4)`,
		e.ID, e.ChunkID, pgvector.NewVector(e.Vector), e.CreatedAt,
	)
	return err
}

// ListByDocument returns a document's chunks in read order.
func (r *ChunkRepository) ListByDocument(ctx context.Context, documentID string) ([]*domain.Chunk, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, document_id, chunk_index, content, token_count, created_at
		 FROM chunks
		 WHERE document_id = $1
		 ORDER BY chunk_index ASC`,
		documentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*domain.Chunk
	for rows.Next() {
		var c domain.Chunk
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Index, &c.Content, &c.TokenCount, &c.CreatedAt); err != nil {
			return nil, err
		}
		chunks = append(chunks, &c)
	}
	return chunks, rows.Err()
}

// ListCandidatesByUser loads every chunk/embedding pair of the user's
// completed documents. The order is deterministic (document creation, then
// chunk index) so similarity ties resolve the same way on every call.
func (r *ChunkRepository) ListCandidatesByUser(ctx context.Context, userID string) ([]*service.ChunkCandidate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT c.id, c.document_id, d.filename, c.chunk_index, c.content, c.token_count, e.embedding
		 FROM chunks c
		 INNER JOIN documents d ON d.id = c.document_id
		 INNER JOIN embeddings e ON e.chunk_id = c.id
		 WHERE d.user_id = $1 AND d.status = $2
		 ORDER BY d.created_at ASC, d.id ASC, c.chunk_index ASC`,
		userID, domain.DocumentStatusCompleted,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []*service.ChunkCandidate
	for rows.Next() {
		var cand service.ChunkCandidate
		var vec pgvector.Vector
		if err := rows.Scan(&cand.ChunkID, &cand.DocumentID, &cand.Filename, &cand.ChunkIndex, &cand.Content, &cand.TokenCount, &vec); err != nil {
			return nil, err
		}
		cand.Vector = vec.Slice()
		candidates = append(candidates, &cand)
	}
	return candidates, rows.Err()
}
