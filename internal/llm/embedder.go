// Package llm holds the embedding clients used to vectorize chunk and query text.
package llm

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks hybridrag/internal/llm Embedder

import (
	"context"
	"errors"
)

var (
	// ErrEmbeddingCount is returned when a backend returns a different number of vectors than texts.
	ErrEmbeddingCount = errors.New("embedding count mismatch")
	// ErrEmbeddingService is returned when the embedding backend cannot be reached or fails.
	ErrEmbeddingService = errors.New("embedding service error")
)

// Embedder turns an ordered batch of texts into vectors of the same length and order.
// An empty batch yields an empty result without contacting the backend.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
