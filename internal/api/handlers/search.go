package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/doctrove/doctrove/internal/api"
	"github.com/doctrove/doctrove/internal/api/middleware"
	"github.com/doctrove/doctrove/internal/service"
)

type SearchServiceInterface interface {
	SearchByText(ctx context.Context, input service.SearchInput) ([]service.SearchResult, error)
}

type SearchHandler struct {
	svc SearchServiceInterface
}

func NewSearchHandler(svc SearchServiceInterface) *SearchHandler {
	return &SearchHandler{svc: svc}
}

type SearchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type SearchResultResponse struct {
	ChunkID    string  `json:"chunk_id"`
	DocumentID string  `json:"document_id"`
	Filename   string  `json:"filename"`
	ChunkIndex int     `json:"chunk_index"`
	Content    string  `json:"content"`
	Score      float64 `json:"score"`
}

type SearchResponse struct {
	Results []SearchResultResponse `json:"results"`
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		api.Error(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.TopK < 0 {
		api.Error(w, http.StatusBadRequest, "top_k must not be negative")
		return
	}

	results, err := h.svc.SearchByText(r.Context(), service.SearchInput{
		UserID: userID,
		Query:  req.Query,
		TopK:   req.TopK,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	out := make([]SearchResultResponse, 0, len(results))
	for _, res := range results {
		out = append(out, SearchResultResponse{
			ChunkID:    res.ChunkID,
			DocumentID: res.DocumentID,
			Filename:   res.Filename,
			ChunkIndex: res.ChunkIndex,
			Content:    res.Content,
			Score:      res.Score,
		})
	}

	api.Success(w, http.StatusOK, SearchResponse{Results: out})
}
