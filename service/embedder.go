package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/generative-ai-go/genai"
)

// Embedder turns text into vectors for the pgvector backend
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedDocument(ctx context.Context, title, text string) ([]float32, error)
}

var (
	ErrEmbeddingFailed    = errors.New("failed to generate embedding")
	errGeminiClientNotSet = errors.New("gemini client not set")
)

const DefaultEmbeddingModel = "text-embedding-004"

// GeminiEmbedder calls the Gemini embedding model through the SDK client
type GeminiEmbedder struct {
	client *genai.Client
	model  string
}

// NewGeminiEmbedder creates a new embedder; an empty model selects text-embedding-004
func NewGeminiEmbedder(client *genai.Client, model string) *GeminiEmbedder {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &GeminiEmbedder{client: client, model: model}
}

// EmbedQuery embeds a retrieval query
func (e *GeminiEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if e.client == nil {
		return nil, errGeminiClientNotSet
	}
	em := e.client.EmbeddingModel(e.model)
	em.TaskType = genai.TaskTypeRetrievalQuery
	return e.embed(func() (*genai.EmbedContentResponse, error) {
		return em.EmbedContent(ctx, genai.Text(text))
	})
}

// EmbedDocument embeds a reference clause for storage
func (e *GeminiEmbedder) EmbedDocument(ctx context.Context, title, text string) ([]float32, error) {
	if e.client == nil {
		return nil, errGeminiClientNotSet
	}
	em := e.client.EmbeddingModel(e.model)
	em.TaskType = genai.TaskTypeRetrievalDocument
	return e.embed(func() (*genai.EmbedContentResponse, error) {
		return em.EmbedContentWithTitle(ctx, title, genai.Text(text))
	})
}

func (e *GeminiEmbedder) embed(call func() (*genai.EmbedContentResponse, error)) ([]float32, error) {
	res, err := call()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	if res == nil || res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("%w: empty embedding in response", ErrEmbeddingFailed)
	}
	return normalizeEmbedding(res.Embedding.Values), nil
}

// normalizeEmbedding scales v to unit length in place
func normalizeEmbedding(v []float32) []float32 {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return v
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return v
}
