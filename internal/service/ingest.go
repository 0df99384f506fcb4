package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/doctrove/doctrove/internal/chunker"
	"github.com/doctrove/doctrove/internal/domain"
	"github.com/doctrove/doctrove/internal/telemetry"
)

// IngestDocumentRepository defines the document persistence needed during ingestion
type IngestDocumentRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMsg string) error
}

// IngestChunkRepository defines the chunk persistence needed during ingestion
type IngestChunkRepository interface {
	InsertChunk(ctx context.Context, c *domain.Chunk) error
	InsertEmbedding(ctx context.Context, e *domain.Embedding) error
}

// ObjectStore fetches raw uploaded bytes by storage key
type ObjectStore interface {
	GetObject(ctx context.Context, key string) ([]byte, error)
}

// TextExtractor converts raw document bytes into plain text
type TextExtractor interface {
	Extract(ctx context.Context, r io.Reader, mediaType string) (string, error)
}

// TextBounder applies the truncation and chunk-count limits to extracted text
type TextBounder interface {
	Bound(text string) ([]chunker.Chunk, error)
}

// EmbeddingClient produces an embedding vector for a piece of text
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text, userID string) ([]float32, error)
}

// IngestService runs the extraction, chunking, and embedding pipeline for a document
type IngestService struct {
	docRepo   IngestDocumentRepository
	chunkRepo IngestChunkRepository
	store     ObjectStore
	extractor TextExtractor
	bounder   TextBounder
	embedder  EmbeddingClient
	uuidGen   UUIDGenerator
}

// NewIngestService creates a new IngestService instance
func NewIngestService(
	docRepo IngestDocumentRepository,
	chunkRepo IngestChunkRepository,
	store ObjectStore,
	extractor TextExtractor,
	bounder TextBounder,
	embedder EmbeddingClient,
) *IngestService {
	return &IngestService{
		docRepo:   docRepo,
		chunkRepo: chunkRepo,
		store:     store,
		extractor: extractor,
		bounder:   bounder,
		embedder:  embedder,
		uuidGen:   &DefaultUUIDGenerator{},
	}
}

// NewIngestServiceWithUUIDGen creates a new IngestService with custom UUID generator (for testing)
func NewIngestServiceWithUUIDGen(
	docRepo IngestDocumentRepository,
	chunkRepo IngestChunkRepository,
	store ObjectStore,
	extractor TextExtractor,
	bounder TextBounder,
	embedder EmbeddingClient,
	uuidGen UUIDGenerator,
) *IngestService {
	s := NewIngestService(docRepo, chunkRepo, store, extractor, bounder, embedder)
	s.uuidGen = uuidGen
	return s
}

// ProcessDocument runs the full ingestion pipeline for one document. The
// document moves to processing before any work starts; a failure at any step
// marks it failed with the step's error message. Chunks and embeddings written
// before a failure are kept as-is.
func (s *IngestService) ProcessDocument(ctx context.Context, documentID, userID string) error {
	ctx, span := telemetry.StartSpan(ctx, "IngestService.ProcessDocument", telemetry.SpanAttributes{
		UserID:     userID,
		DocumentID: documentID,
		Operation:  "ingest",
	})
	defer span.End()

	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.UserID != userID {
		return domain.ErrDocumentNotFound
	}

	if err := s.docRepo.UpdateStatus(ctx, doc.ID, domain.DocumentStatusProcessing, ""); err != nil {
		return err
	}

	if err := s.run(ctx, doc); err != nil {
		span.SetError(err)
		if markErr := s.docRepo.UpdateStatus(ctx, doc.ID, domain.DocumentStatusFailed, err.Error()); markErr != nil {
			log.Printf("ingest: failed to mark document %s as failed: %v", doc.ID, markErr)
		}
		return err
	}

	return s.docRepo.UpdateStatus(ctx, doc.ID, domain.DocumentStatusCompleted, "")
}

func (s *IngestService) run(ctx context.Context, doc *domain.Document) error {
	data, err := s.store.GetObject(ctx, doc.StorageKey)
	if err != nil {
		return domain.NewStorageError("failed to fetch stored object", err)
	}

	text, err := s.extractor.Extract(ctx, bytes.NewReader(data), doc.MediaType)
	if err != nil {
		return err
	}

	chunks, err := s.bounder.Bound(text)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, c := range chunks {
		chunk := &domain.Chunk{
			ID:         s.uuidGen.NewString(),
			DocumentID: doc.ID,
			Index:      c.Index,
			Content:    c.Content,
			TokenCount: c.TokenCount,
			CreatedAt:  now,
		}
		if err := s.chunkRepo.InsertChunk(ctx, chunk); err != nil {
			return domain.NewStorageError(fmt.Sprintf("failed to persist chunk %d", c.Index), err)
		}

		vector, err := s.embedder.GenerateEmbedding(ctx, c.Content, doc.UserID)
		if err != nil {
			return domain.NewEmbeddingError(fmt.Sprintf("embedding failed for chunk %d", c.Index), err)
		}

		embedding := &domain.Embedding{
			ID:        s.uuidGen.NewString(),
			ChunkID:   chunk.ID,
			Vector:    vector,
			CreatedAt: now,
		}
		if err := s.chunkRepo.InsertEmbedding(ctx, embedding); err != nil {
			return domain.NewStorageError(fmt.Sprintf("failed to persist embedding for chunk %d", c.Index), err)
		}
	}

	return nil
}
