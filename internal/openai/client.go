package openai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultEmbeddingModel is the OpenAI model used for generating embeddings
	DefaultEmbeddingModel = openai.AdaEmbeddingV2
	// DefaultEmbeddingDimensions is the expected dimension of embeddings from ada-002
	DefaultEmbeddingDimensions = 1536
)

var (
	// ErrEmptyText is returned when text is empty
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrWrongDimensions is returned when embedding has wrong dimensions
	ErrWrongDimensions = errors.New("embedding has wrong dimensions, expected 1536")
	// ErrNoAPIKey is returned when no API key is available for the user
	ErrNoAPIKey = errors.New("no OpenAI API key available")
)

// EmbeddingAPI defines the interface for embedding generation
type EmbeddingAPI interface {
	CreateEmbeddings(ctx context.Context, text string) ([]float32, error)
}

// CredentialResolver resolves the provider API key for a user, so each
// embedding call runs against the owning user's credentials.
type CredentialResolver interface {
	APIKeyForUser(ctx context.Context, userID string) (string, error)
}

// StaticCredentials resolves every user to one server-wide API key.
type StaticCredentials struct {
	APIKey string
}

func (s *StaticCredentials) APIKeyForUser(ctx context.Context, userID string) (string, error) {
	if s.APIKey == "" {
		return "", ErrNoAPIKey
	}
	return s.APIKey, nil
}

// OpenAIAdapter wraps the go-openai client for one API key.
type OpenAIAdapter struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

func NewOpenAIAdapter(apiKey string, model openai.EmbeddingModel) *OpenAIAdapter {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &OpenAIAdapter{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// CreateEmbeddings calls the OpenAI API to create embeddings
func (a *OpenAIAdapter) CreateEmbeddings(ctx context.Context, text string) ([]float32, error) {
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: a.model,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned")
	}

	return resp.Data[0].Embedding, nil
}

type Config struct {
	Credentials         CredentialResolver
	EmbeddingModel      openai.EmbeddingModel
	EmbeddingDimensions int
}

// Client generates embeddings scoped to a user's credentials. Adapters are
// cached per API key so repeated calls for the same user reuse one client.
type Client struct {
	credentials CredentialResolver
	model       openai.EmbeddingModel
	dimensions  int

	newAPI func(apiKey string) EmbeddingAPI

	mu       sync.Mutex
	adapters map[string]EmbeddingAPI
}

// NewClient creates a new client with a single server-wide API key.
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(Config{Credentials: &StaticCredentials{APIKey: apiKey}})
}

// NewClientWithConfig creates a new client with explicit configuration.
func NewClientWithConfig(cfg Config) *Client {
	dimensions := cfg.EmbeddingDimensions
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	model := cfg.EmbeddingModel
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &Client{
		credentials: cfg.Credentials,
		model:       model,
		dimensions:  dimensions,
		newAPI: func(apiKey string) EmbeddingAPI {
			return NewOpenAIAdapter(apiKey, model)
		},
		adapters: make(map[string]EmbeddingAPI),
	}
}

// NewClientFromEnv creates a new client using the OPENAI_API_KEY environment variable
func NewClientFromEnv() (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return NewClient(apiKey), nil
}

// GenerateEmbedding generates an embedding for the given text using the
// credentials of the given user.
func (c *Client) GenerateEmbedding(ctx context.Context, text, userID string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	api, err := c.apiForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	embedding, err := api.CreateEmbeddings(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}

	if len(embedding) != c.dimensions {
		return nil, ErrWrongDimensions
	}

	return embedding, nil
}

func (c *Client) apiForUser(ctx context.Context, userID string) (EmbeddingAPI, error) {
	apiKey, err := c.credentials.APIKeyForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if api, ok := c.adapters[apiKey]; ok {
		return api, nil
	}
	api := c.newAPI(apiKey)
	c.adapters[apiKey] = api
	return api, nil
}
