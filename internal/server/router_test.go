package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/doctrove/doctrove/internal/api/handlers"
	"github.com/doctrove/doctrove/internal/domain"
	"github.com/doctrove/doctrove/internal/service"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Upload(ctx context.Context, input service.UploadInput) (*domain.Document, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentService) GetDocument(ctx context.Context, id, userID string) (*domain.Document, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentService) ListDocuments(ctx context.Context, input service.ListDocumentsInput) (*service.ListDocumentsOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListDocumentsOutput), args.Error(1)
}

func (m *MockDocumentService) GetContent(ctx context.Context, id, userID string) (*service.DocumentContent, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentContent), args.Error(1)
}

func (m *MockDocumentService) DeleteDocument(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockDocumentService) DeleteFailedDocuments(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) SearchByText(ctx context.Context, input service.SearchInput) ([]service.SearchResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.SearchResult), args.Error(1)
}

type stubQueue struct {
	dropped int
}

func (s *stubQueue) Flush() int {
	return s.dropped
}

func testRouter(docSvc *MockDocumentService, searchSvc *MockSearchService, queue *stubQueue) http.Handler {
	return NewRouter(RouterConfig{
		DocumentHandler: handlers.NewDocumentHandler(docSvc),
		SearchHandler:   handlers.NewSearchHandler(searchSvc),
		QueueHandler:    handlers.NewQueueHandler(queue),
	})
}

func TestRouter_Health(t *testing.T) {
	router := testRouter(new(MockDocumentService), new(MockSearchService), &stubQueue{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_RequiresUserIdentity(t *testing.T) {
	router := testRouter(new(MockDocumentService), new(MockSearchService), &stubQueue{})

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/documents"},
		{http.MethodPost, "/search"},
		{http.MethodPost, "/queue/flush"},
		{http.MethodDelete, "/documents/failed"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestRouter_ListDocuments(t *testing.T) {
	docSvc := new(MockDocumentService)
	docSvc.On("ListDocuments", mock.Anything, mock.Anything).Return(&service.ListDocumentsOutput{
		Items: []*domain.Document{},
	}, nil)

	router := testRouter(docSvc, new(MockSearchService), &stubQueue{})

	req := httptest.NewRequest(http.MethodGet, "/documents", nil)
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_DeleteFailedRouteBeforeIDRoute(t *testing.T) {
	// /documents/failed must not match the {id} delete route
	docSvc := new(MockDocumentService)
	docSvc.On("DeleteFailedDocuments", mock.Anything, "user-1").Return(2, nil)

	router := testRouter(docSvc, new(MockSearchService), &stubQueue{})

	req := httptest.NewRequest(http.MethodDelete, "/documents/failed", nil)
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	docSvc.AssertNotCalled(t, "DeleteDocument", mock.Anything, mock.Anything, mock.Anything)

	var resp struct {
		Data handlers.DeleteFailedResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Data.Deleted)
}

func TestRouter_QueueFlush(t *testing.T) {
	router := testRouter(new(MockDocumentService), new(MockSearchService), &stubQueue{dropped: 5})

	req := httptest.NewRequest(http.MethodPost, "/queue/flush", nil)
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"dropped":5`)
}
