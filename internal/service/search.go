package service

import (
	"context"
	"math"
	"sort"

	"github.com/doctrove/doctrove/internal/domain"
	"github.com/doctrove/doctrove/internal/telemetry"
)

const (
	// DefaultTopK is the number of results returned when the caller does not ask for a count
	DefaultTopK = 6
	// DefaultMaxPerDoc caps how many chunks a single document may contribute to a result set
	DefaultMaxPerDoc = 2
)

// ChunkCandidate is a stored chunk with its embedding, loaded for scoring
type ChunkCandidate struct {
	ChunkID    string
	DocumentID string
	Filename   string
	ChunkIndex int
	Content    string
	TokenCount int
	Vector     []float32
}

// SearchResult is a scored chunk returned to the caller
type SearchResult struct {
	ChunkID    string
	DocumentID string
	Filename   string
	ChunkIndex int
	Content    string
	Score      float64
}

// CandidateRepository loads the scoring corpus for a user
type CandidateRepository interface {
	ListCandidatesByUser(ctx context.Context, userID string) ([]*ChunkCandidate, error)
}

// QueryEmbedder produces an embedding for a search query
type QueryEmbedder interface {
	GenerateEmbedding(ctx context.Context, text, userID string) ([]float32, error)
}

// SearchService scores stored chunks against a query embedding
type SearchService struct {
	candidates CandidateRepository
	embedder   QueryEmbedder
	topK       int
	maxPerDoc  int
}

// NewSearchService creates a new SearchService with default result limits
func NewSearchService(candidates CandidateRepository, embedder QueryEmbedder) *SearchService {
	return &SearchService{
		candidates: candidates,
		embedder:   embedder,
		topK:       DefaultTopK,
		maxPerDoc:  DefaultMaxPerDoc,
	}
}

// NewSearchServiceWithLimits creates a SearchService with explicit result limits
func NewSearchServiceWithLimits(candidates CandidateRepository, embedder QueryEmbedder, topK, maxPerDoc int) *SearchService {
	s := NewSearchService(candidates, embedder)
	if topK > 0 {
		s.topK = topK
	}
	if maxPerDoc > 0 {
		s.maxPerDoc = maxPerDoc
	}
	return s
}

// SearchInput represents a search request
type SearchInput struct {
	UserID string
	Query  string
	TopK   int
}

// SearchByText embeds the query and scores it against the user's completed chunks
func (s *SearchService) SearchByText(ctx context.Context, input SearchInput) ([]SearchResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "SearchService.SearchByText", telemetry.SpanAttributes{
		UserID:    input.UserID,
		Operation: "search",
	})
	defer span.End()

	queryVec, err := s.embedder.GenerateEmbedding(ctx, input.Query, input.UserID)
	if err != nil {
		return nil, domain.NewEmbeddingError("failed to embed search query", err)
	}

	return s.SearchByVector(ctx, input.UserID, queryVec, input.TopK)
}

// SearchByVector scores a prepared query vector against the user's completed
// chunks. Results are ordered by descending cosine similarity, with ties kept
// in corpus order, and each document contributes at most maxPerDoc chunks.
func (s *SearchService) SearchByVector(ctx context.Context, userID string, queryVec []float32, topK int) ([]SearchResult, error) {
	if topK <= 0 {
		topK = s.topK
	}

	candidates, err := s.candidates.ListCandidatesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	scored := make([]SearchResult, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, SearchResult{
			ChunkID:    c.ChunkID,
			DocumentID: c.DocumentID,
			Filename:   c.Filename,
			ChunkIndex: c.ChunkIndex,
			Content:    c.Content,
			Score:      cosineSimilarity(queryVec, c.Vector),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	results := make([]SearchResult, 0, topK)
	perDoc := make(map[string]int)
	for _, r := range scored {
		if perDoc[r.DocumentID] >= s.maxPerDoc {
			continue
		}
		perDoc[r.DocumentID]++
		results = append(results, r)
		if len(results) >= topK {
			break
		}
	}

	return results, nil
}

// cosineSimilarity computes the cosine of the angle between two vectors,
// accumulating in float64. Mismatched lengths compare over the shorter
// prefix; a zero-norm vector scores exactly 0.
func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
