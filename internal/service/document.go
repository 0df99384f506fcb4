package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/doctrove/doctrove/internal/domain"
	"github.com/doctrove/doctrove/internal/pagination"
	"github.com/doctrove/doctrove/internal/telemetry"
)

// DocumentRepositoryInterface defines the repository interface for document persistence
type DocumentRepositoryInterface interface {
	Create(ctx context.Context, d *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	GetForUser(ctx context.Context, id, userID string) (*domain.Document, error)
	ListByUserWithCursor(ctx context.Context, userID string, cursor *pagination.Cursor, limit int) (*DocumentPageResult, error)
	ListFailedByUser(ctx context.Context, userID string) ([]*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMsg string) error
	Delete(ctx context.Context, id string) error
}

// DocumentPageResult is one page of documents plus cursor state
type DocumentPageResult struct {
	Items      []*domain.Document
	NextCursor string
	HasMore    bool
}

// ChunkReader loads stored chunks for a document in index order
type ChunkReader interface {
	ListByDocument(ctx context.Context, documentID string) ([]*domain.Chunk, error)
}

// DocumentObjectStore stores and removes raw uploaded files
type DocumentObjectStore interface {
	PutObject(ctx context.Context, key, contentType string, data []byte) error
	DeleteObject(ctx context.Context, key string) error
}

// MediaTypeRegistry reports whether a media type has a registered extractor
type MediaTypeRegistry interface {
	Supported(mediaType string) bool
}

// IngestEnqueuer hands a document off for background processing
type IngestEnqueuer interface {
	Enqueue(documentID, userID string)
}

// DocumentService handles upload, retrieval, and deletion of documents
type DocumentService struct {
	docRepo  DocumentRepositoryInterface
	chunks   ChunkReader
	store    DocumentObjectStore
	registry MediaTypeRegistry
	queue    IngestEnqueuer
	uuidGen  UUIDGenerator
}

// NewDocumentService creates a new DocumentService instance
func NewDocumentService(
	docRepo DocumentRepositoryInterface,
	chunks ChunkReader,
	store DocumentObjectStore,
	registry MediaTypeRegistry,
	queue IngestEnqueuer,
) *DocumentService {
	return &DocumentService{
		docRepo:  docRepo,
		chunks:   chunks,
		store:    store,
		registry: registry,
		queue:    queue,
		uuidGen:  &DefaultUUIDGenerator{},
	}
}

// NewDocumentServiceWithUUIDGen creates a new DocumentService with custom UUID generator (for testing)
func NewDocumentServiceWithUUIDGen(
	docRepo DocumentRepositoryInterface,
	chunks ChunkReader,
	store DocumentObjectStore,
	registry MediaTypeRegistry,
	queue IngestEnqueuer,
	uuidGen UUIDGenerator,
) *DocumentService {
	s := NewDocumentService(docRepo, chunks, store, registry, queue)
	s.uuidGen = uuidGen
	return s
}

// UploadInput represents an uploaded file
type UploadInput struct {
	UserID    string
	Filename  string
	MediaType string
	Data      []byte
}

// Upload stores the raw file, records the document in the uploading state, and
// queues it for ingestion. Unsupported media types are rejected before any
// bytes are stored.
func (s *DocumentService) Upload(ctx context.Context, input UploadInput) (*domain.Document, error) {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.Upload", telemetry.SpanAttributes{
		UserID:    input.UserID,
		Operation: "upload",
	})
	defer span.End()

	if !s.registry.Supported(input.MediaType) {
		return nil, domain.NewUnsupportedTypeError(input.MediaType)
	}
	if len(input.Data) == 0 {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "uploaded file is empty")
	}

	id := s.uuidGen.NewString()
	storageKey := fmt.Sprintf("documents/%s/%s", input.UserID, id)

	if err := s.store.PutObject(ctx, storageKey, input.MediaType, input.Data); err != nil {
		return nil, domain.NewStorageError("failed to store uploaded file", err)
	}

	doc := domain.NewDocument(id, input.UserID, input.Filename, input.MediaType, storageKey, int64(len(input.Data)), time.Now().UTC())
	if err := domain.ValidateDocument(doc); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid document", err)
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	s.queue.Enqueue(doc.ID, doc.UserID)
	return doc, nil
}

// GetDocument retrieves a document owned by the given user
func (s *DocumentService) GetDocument(ctx context.Context, id, userID string) (*domain.Document, error) {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.GetDocument", telemetry.SpanAttributes{
		UserID:     userID,
		DocumentID: id,
		Operation:  "get",
	})
	defer span.End()

	return s.docRepo.GetForUser(ctx, id, userID)
}

// ListDocumentsInput represents a paginated listing request
type ListDocumentsInput struct {
	UserID string
	Cursor string
	Limit  int
}

// ListDocumentsOutput is one page of a user's documents
type ListDocumentsOutput struct {
	Items   []*domain.Document
	Cursor  string
	HasMore bool
}

// ListDocuments returns the user's documents newest first, using cursor pagination
func (s *DocumentService) ListDocuments(ctx context.Context, input ListDocumentsInput) (*ListDocumentsOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.ListDocuments", telemetry.SpanAttributes{
		UserID:    input.UserID,
		Operation: "list",
	})
	defer span.End()

	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	var cursor *pagination.Cursor
	if input.Cursor != "" {
		decoded, err := pagination.DecodeCursor(input.Cursor)
		if err != nil {
			return nil, domain.NewDomainError(domain.ErrCodeValidation, "invalid cursor")
		}
		cursor = decoded
	}

	page, err := s.docRepo.ListByUserWithCursor(ctx, input.UserID, cursor, limit)
	if err != nil {
		return nil, err
	}

	return &ListDocumentsOutput{
		Items:   page.Items,
		Cursor:  page.NextCursor,
		HasMore: page.HasMore,
	}, nil
}

// DocumentContent is the reassembled text of a completed document
type DocumentContent struct {
	DocumentID string
	Filename   string
	ChunkCount int
	Text       string
}

// GetContent reassembles a completed document's text from its stored chunks,
// joined in ascending index order.
func (s *DocumentService) GetContent(ctx context.Context, id, userID string) (*DocumentContent, error) {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.GetContent", telemetry.SpanAttributes{
		UserID:     userID,
		DocumentID: id,
		Operation:  "get_content",
	})
	defer span.End()

	doc, err := s.docRepo.GetForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if doc.Status != domain.DocumentStatusCompleted {
		return nil, domain.ErrDocumentNotReady
	}

	chunks, err := s.chunks.ListByDocument(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, domain.ErrNoStoredChunks
	}

	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		parts = append(parts, c.Content)
	}

	return &DocumentContent{
		DocumentID: doc.ID,
		Filename:   doc.Filename,
		ChunkCount: len(chunks),
		Text:       strings.Join(parts, "\n\n"),
	}, nil
}

// DeleteDocument removes a document's database rows and, best effort, its
// stored file. A storage delete failure is logged but does not block the
// row deletion.
func (s *DocumentService) DeleteDocument(ctx context.Context, id, userID string) error {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.DeleteDocument", telemetry.SpanAttributes{
		UserID:     userID,
		DocumentID: id,
		Operation:  "delete",
	})
	defer span.End()

	doc, err := s.docRepo.GetForUser(ctx, id, userID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteObject(ctx, doc.StorageKey); err != nil {
		log.Printf("document: failed to delete stored object %s: %v", doc.StorageKey, err)
	}

	return s.docRepo.Delete(ctx, doc.ID)
}

// DeleteFailedDocuments removes all of the user's failed documents and
// returns how many were deleted.
func (s *DocumentService) DeleteFailedDocuments(ctx context.Context, userID string) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.DeleteFailedDocuments", telemetry.SpanAttributes{
		UserID:    userID,
		Operation: "delete_failed",
	})
	defer span.End()

	failed, err := s.docRepo.ListFailedByUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, doc := range failed {
		if err := s.store.DeleteObject(ctx, doc.StorageKey); err != nil {
			log.Printf("document: failed to delete stored object %s: %v", doc.StorageKey, err)
		}
		if err := s.docRepo.Delete(ctx, doc.ID); err != nil {
			return deleted, err
		}
		deleted++
	}

	return deleted, nil
}
