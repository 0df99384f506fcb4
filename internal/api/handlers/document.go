package handlers

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/doctrove/doctrove/internal/api"
	"github.com/doctrove/doctrove/internal/api/middleware"
	"github.com/doctrove/doctrove/internal/domain"
	"github.com/doctrove/doctrove/internal/service"
	"github.com/go-chi/chi/v5"
)

// maxUploadMemory bounds how much of a multipart upload is held in memory
// before spilling to disk.
const maxUploadMemory = 10 << 20

type DocumentServiceInterface interface {
	Upload(ctx context.Context, input service.UploadInput) (*domain.Document, error)
	GetDocument(ctx context.Context, id, userID string) (*domain.Document, error)
	ListDocuments(ctx context.Context, input service.ListDocumentsInput) (*service.ListDocumentsOutput, error)
	GetContent(ctx context.Context, id, userID string) (*service.DocumentContent, error)
	DeleteDocument(ctx context.Context, id, userID string) error
	DeleteFailedDocuments(ctx context.Context, userID string) (int, error)
}

type DocumentHandler struct {
	svc DocumentServiceInterface
}

func NewDocumentHandler(svc DocumentServiceInterface) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

type DocumentResponse struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	MediaType    string `json:"media_type"`
	SizeBytes    int64  `json:"size_bytes"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
	CreatedAt    string `json:"created_at"`
}

func documentToResponse(d *domain.Document) *DocumentResponse {
	return &DocumentResponse{
		ID:           d.ID,
		Filename:     d.Filename,
		MediaType:    d.MediaType,
		SizeBytes:    d.SizeBytes,
		Status:       string(d.Status),
		ErrorMessage: d.ErrorMessage,
		CreatedAt:    d.CreatedAt.Format(time.RFC3339),
	}
}

// Upload accepts a multipart form with a single "file" part. The part's
// Content-Type decides which extractor handles the document.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		api.Error(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	mediaType := header.Header.Get("Content-Type")
	if mediaType == "" {
		api.Error(w, http.StatusBadRequest, "file content type is required")
		return
	}

	doc, err := h.svc.Upload(r.Context(), service.UploadInput{
		UserID:    userID,
		Filename:  header.Filename,
		MediaType: mediaType,
		Data:      data,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusAccepted, documentToResponse(doc))
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	doc, err := h.svc.GetDocument(r.Context(), id, userID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, documentToResponse(doc))
}

type ListDocumentsResponse struct {
	Items   []*DocumentResponse `json:"items"`
	Cursor  string              `json:"cursor,omitempty"`
	HasMore bool                `json:"has_more"`
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			api.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	out, err := h.svc.ListDocuments(r.Context(), service.ListDocumentsInput{
		UserID: userID,
		Cursor: r.URL.Query().Get("cursor"),
		Limit:  limit,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]*DocumentResponse, 0, len(out.Items))
	for _, d := range out.Items {
		items = append(items, documentToResponse(d))
	}

	api.Success(w, http.StatusOK, ListDocumentsResponse{
		Items:   items,
		Cursor:  out.Cursor,
		HasMore: out.HasMore,
	})
}

type DocumentContentResponse struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	ChunkCount int    `json:"chunk_count"`
	Text       string `json:"text"`
}

func (h *DocumentHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	content, err := h.svc.GetContent(r.Context(), id, userID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, DocumentContentResponse{
		DocumentID: content.DocumentID,
		Filename:   content.Filename,
		ChunkCount: content.ChunkCount,
		Text:       content.Text,
	})
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.svc.DeleteDocument(r.Context(), id, userID); err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusNoContent, nil)
}

type DeleteFailedResponse struct {
	Deleted int `json:"deleted"`
}

func (h *DocumentHandler) DeleteFailed(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	deleted, err := h.svc.DeleteFailedDocuments(r.Context(), userID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, DeleteFailedResponse{Deleted: deleted})
}

// QueueFlusher drops pending ingestion jobs
type QueueFlusher interface {
	Flush() int
}

type QueueHandler struct {
	queue QueueFlusher
}

func NewQueueHandler(queue QueueFlusher) *QueueHandler {
	return &QueueHandler{queue: queue}
}

type FlushQueueResponse struct {
	Dropped int `json:"dropped"`
}

// Flush drops every queued job that has not started processing. Documents
// already picked up by the worker finish normally.
func (h *QueueHandler) Flush(w http.ResponseWriter, r *http.Request) {
	dropped := h.queue.Flush()
	api.Success(w, http.StatusOK, FlushQueueResponse{Dropped: dropped})
}
