package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIEmbedder generates embeddings through the OpenAI API or any server
// that speaks its protocol.
type OpenAIEmbedder struct {
	client       *openai.Client
	model        string
	expectedSize int
}

// NewOpenAIEmbedder creates an embedder for model. An empty baseURL uses the
// public OpenAI endpoint.
func NewOpenAIEmbedder(apiKey, baseURL, model string, expectedSize int) *OpenAIEmbedder {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIEmbedder{
		client:       openai.NewClientWithConfig(cfg),
		model:        model,
		expectedSize: expectedSize,
	}
}

// Embed sends all texts in one CreateEmbeddings call and orders the result by response index.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: openai embeddings: %w", ErrEmbeddingService, err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrEmbeddingCount, len(texts), len(resp.Data))
	}

	result := make([][]float32, len(texts))
	for i, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(result) || result[d.Index] != nil {
			return nil, fmt.Errorf("embedding %d has invalid index %d", i, d.Index)
		}
		if e.expectedSize > 0 && len(d.Embedding) != e.expectedSize {
			return nil, fmt.Errorf("embedding %d has size %d, expected %d", i, len(d.Embedding), e.expectedSize)
		}
		vec := make([]float32, len(d.Embedding))
		copy(vec, d.Embedding)
		result[d.Index] = vec
	}
	return result, nil
}
