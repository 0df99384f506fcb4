package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/doctrove/doctrove/internal/domain"
	"github.com/doctrove/doctrove/internal/pagination"
)

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, d *domain.Document) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) GetForUser(ctx context.Context, id, userID string) (*domain.Document, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) ListByUserWithCursor(ctx context.Context, userID string, cursor *pagination.Cursor, limit int) (*DocumentPageResult, error) {
	args := m.Called(ctx, userID, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*DocumentPageResult), args.Error(1)
}

func (m *MockDocumentRepository) ListFailedByUser(ctx context.Context, userID string) ([]*domain.Document, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMsg string) error {
	args := m.Called(ctx, id, status, errMsg)
	return args.Error(0)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockChunkReader struct {
	mock.Mock
}

func (m *MockChunkReader) ListByDocument(ctx context.Context, documentID string) ([]*domain.Chunk, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Chunk), args.Error(1)
}

type MockDocumentObjectStore struct {
	mock.Mock
}

func (m *MockDocumentObjectStore) PutObject(ctx context.Context, key, contentType string, data []byte) error {
	args := m.Called(ctx, key, contentType, data)
	return args.Error(0)
}

func (m *MockDocumentObjectStore) DeleteObject(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type stubRegistry struct {
	supported map[string]bool
}

func (r *stubRegistry) Supported(mediaType string) bool {
	return r.supported[mediaType]
}

type recordingQueue struct {
	enqueued [][2]string
}

func (q *recordingQueue) Enqueue(documentID, userID string) {
	q.enqueued = append(q.enqueued, [2]string{documentID, userID})
}

func documentFixture() (*MockDocumentRepository, *MockChunkReader, *MockDocumentObjectStore, *recordingQueue, *DocumentService) {
	docRepo := new(MockDocumentRepository)
	chunks := new(MockChunkReader)
	store := new(MockDocumentObjectStore)
	queue := &recordingQueue{}
	registry := &stubRegistry{supported: map[string]bool{"application/pdf": true}}
	svc := NewDocumentServiceWithUUIDGen(docRepo, chunks, store, registry, queue, &sequentialUUIDGenerator{})
	return docRepo, chunks, store, queue, svc
}

func TestDocumentService_Upload_Success(t *testing.T) {
	docRepo, _, store, queue, svc := documentFixture()

	store.On("PutObject", mock.Anything, "documents/user-1/uuid-1", "application/pdf", []byte("file bytes")).Return(nil)
	docRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	doc, err := svc.Upload(context.Background(), UploadInput{
		UserID:    "user-1",
		Filename:  "report.pdf",
		MediaType: "application/pdf",
		Data:      []byte("file bytes"),
	})
	require.NoError(t, err)

	assert.Equal(t, "uuid-1", doc.ID)
	assert.Equal(t, domain.DocumentStatusUploading, doc.Status)
	assert.Equal(t, int64(len("file bytes")), doc.SizeBytes)
	assert.Equal(t, "documents/user-1/uuid-1", doc.StorageKey)

	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, [2]string{"uuid-1", "user-1"}, queue.enqueued[0])
}

func TestDocumentService_Upload_UnsupportedType(t *testing.T) {
	_, _, store, queue, svc := documentFixture()

	_, err := svc.Upload(context.Background(), UploadInput{
		UserID:    "user-1",
		Filename:  "notes.txt",
		MediaType: "text/plain",
		Data:      []byte("hello"),
	})
	require.Error(t, err)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeUnsupportedType, domainErr.Code)

	store.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, queue.enqueued)
}

func TestDocumentService_Upload_EmptyFile(t *testing.T) {
	_, _, _, _, svc := documentFixture()

	_, err := svc.Upload(context.Background(), UploadInput{
		UserID:    "user-1",
		Filename:  "empty.pdf",
		MediaType: "application/pdf",
		Data:      nil,
	})
	require.Error(t, err)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeValidation, domainErr.Code)
}

func TestDocumentService_Upload_StorageFailure(t *testing.T) {
	docRepo, _, store, queue, svc := documentFixture()

	store.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("bucket unavailable"))

	_, err := svc.Upload(context.Background(), UploadInput{
		UserID:    "user-1",
		Filename:  "report.pdf",
		MediaType: "application/pdf",
		Data:      []byte("bytes"),
	})
	require.Error(t, err)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeStorageFailed, domainErr.Code)

	docRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, queue.enqueued)
}

func TestDocumentService_GetContent_Success(t *testing.T) {
	docRepo, chunks, _, _, svc := documentFixture()

	doc := testDocument()
	doc.Status = domain.DocumentStatusCompleted
	docRepo.On("GetForUser", mock.Anything, "doc-1", "user-1").Return(doc, nil)
	chunks.On("ListByDocument", mock.Anything, "doc-1").Return([]*domain.Chunk{
		{ID: "c1", DocumentID: "doc-1", Index: 0, Content: "first part"},
		{ID: "c2", DocumentID: "doc-1", Index: 1, Content: "second part"},
	}, nil)

	content, err := svc.GetContent(context.Background(), "doc-1", "user-1")
	require.NoError(t, err)

	assert.Equal(t, "doc-1", content.DocumentID)
	assert.Equal(t, 2, content.ChunkCount)
	assert.Equal(t, "first part\n\nsecond part", content.Text)
}

func TestDocumentService_GetContent_NotCompleted(t *testing.T) {
	docRepo, chunks, _, _, svc := documentFixture()

	doc := testDocument()
	doc.Status = domain.DocumentStatusProcessing
	docRepo.On("GetForUser", mock.Anything, "doc-1", "user-1").Return(doc, nil)

	_, err := svc.GetContent(context.Background(), "doc-1", "user-1")
	assert.ErrorIs(t, err, domain.ErrDocumentNotReady)
	chunks.AssertNotCalled(t, "ListByDocument", mock.Anything, mock.Anything)
}

func TestDocumentService_GetContent_NoChunks(t *testing.T) {
	docRepo, chunks, _, _, svc := documentFixture()

	doc := testDocument()
	doc.Status = domain.DocumentStatusCompleted
	docRepo.On("GetForUser", mock.Anything, "doc-1", "user-1").Return(doc, nil)
	chunks.On("ListByDocument", mock.Anything, "doc-1").Return([]*domain.Chunk{}, nil)

	_, err := svc.GetContent(context.Background(), "doc-1", "user-1")
	assert.ErrorIs(t, err, domain.ErrNoStoredChunks)
}

func TestDocumentService_DeleteDocument_BestEffortObjectDelete(t *testing.T) {
	docRepo, _, store, _, svc := documentFixture()

	doc := testDocument()
	docRepo.On("GetForUser", mock.Anything, "doc-1", "user-1").Return(doc, nil)
	store.On("DeleteObject", mock.Anything, doc.StorageKey).Return(errors.New("object gone"))
	docRepo.On("Delete", mock.Anything, "doc-1").Return(nil)

	err := svc.DeleteDocument(context.Background(), "doc-1", "user-1")
	require.NoError(t, err)

	docRepo.AssertCalled(t, "Delete", mock.Anything, "doc-1")
}

func TestDocumentService_DeleteDocument_NotFound(t *testing.T) {
	docRepo, _, store, _, svc := documentFixture()

	docRepo.On("GetForUser", mock.Anything, "missing", "user-1").Return(nil, domain.ErrDocumentNotFound)

	err := svc.DeleteDocument(context.Background(), "missing", "user-1")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	store.AssertNotCalled(t, "DeleteObject", mock.Anything, mock.Anything)
}

func TestDocumentService_DeleteFailedDocuments(t *testing.T) {
	docRepo, _, store, _, svc := documentFixture()

	failed := []*domain.Document{
		{ID: "f1", UserID: "user-1", Status: domain.DocumentStatusFailed, StorageKey: "documents/user-1/f1"},
		{ID: "f2", UserID: "user-1", Status: domain.DocumentStatusFailed, StorageKey: "documents/user-1/f2"},
		{ID: "f3", UserID: "user-1", Status: domain.DocumentStatusFailed, StorageKey: "documents/user-1/f3"},
	}
	docRepo.On("ListFailedByUser", mock.Anything, "user-1").Return(failed, nil)
	store.On("DeleteObject", mock.Anything, mock.Anything).Return(nil)
	docRepo.On("Delete", mock.Anything, mock.Anything).Return(nil)

	count, err := svc.DeleteFailedDocuments(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	docRepo.AssertNumberOfCalls(t, "Delete", 3)
}

func TestDocumentService_ListDocuments_InvalidCursor(t *testing.T) {
	_, _, _, _, svc := documentFixture()

	_, err := svc.ListDocuments(context.Background(), ListDocumentsInput{
		UserID: "user-1",
		Cursor: "not-base64!!!",
	})
	require.Error(t, err)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeValidation, domainErr.Code)
}

func TestDocumentService_ListDocuments_DefaultLimit(t *testing.T) {
	docRepo, _, _, _, svc := documentFixture()

	docRepo.On("ListByUserWithCursor", mock.Anything, "user-1", (*pagination.Cursor)(nil), 20).Return(&DocumentPageResult{
		Items:   []*domain.Document{testDocument()},
		HasMore: false,
	}, nil)

	out, err := svc.ListDocuments(context.Background(), ListDocumentsInput{UserID: "user-1"})
	require.NoError(t, err)
	assert.Len(t, out.Items, 1)
	assert.False(t, out.HasMore)
}
