package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultEmbeddingTimeout = 60 * time.Second
	// DefaultBatchSize is the number of texts sent per request.
	DefaultBatchSize = 64
)

// EmbeddingsClient talks to an OpenAI-compatible /v1/embeddings endpoint
// such as llama.cpp or text-embeddings-inference.
type EmbeddingsClient struct {
	BaseURL      string
	APIKey       string
	Model        string
	ExpectedSize int // Expected vector size, 0 disables the check
	BatchSize    int // Texts per request, DefaultBatchSize when <= 0
	client       *http.Client
}

// NewEmbeddingsClient creates a new embeddings client.
// expectedSize is the collection vector size; every returned vector is checked against it.
func NewEmbeddingsClient(baseURL, apiKey, model string, expectedSize int) *EmbeddingsClient {
	return &EmbeddingsClient{
		BaseURL:      baseURL,
		APIKey:       apiKey,
		Model:        model,
		ExpectedSize: expectedSize,
		BatchSize:    DefaultBatchSize,
		client:       &http.Client{Timeout: defaultEmbeddingTimeout},
	}
}

// EmbeddingsRequest represents the request payload for embeddings API.
type EmbeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// EmbeddingData represents a single embedding in the response.
type EmbeddingData struct {
	Index     *int      `json:"index,omitempty"`
	Embedding []float64 `json:"embedding"`
}

// EmbeddingsResponse represents the response from the embeddings API.
type EmbeddingsResponse struct {
	Data []EmbeddingData `json:"data"`
}

// Embed generates one vector per text. Texts are sent in batches of BatchSize
// and the results keep input order. Any failed batch fails the whole call.
func (c *EmbeddingsClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	size := c.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}

	result := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += size {
		end := min(start+size, len(texts))
		vecs, err := c.embedBatch(ctx, texts[start:end])
		if err != nil {
			if end-start < len(texts) {
				return nil, fmt.Errorf("batch %d-%d: %w", start, end, err)
			}
			return nil, err
		}
		result = append(result, vecs...)
	}
	return result, nil
}

func (c *EmbeddingsClient) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(EmbeddingsRequest{
		Model: c.Model,
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimRight(c.BaseURL, "/") + "/v1/embeddings"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to send request: %w", ErrEmbeddingService, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: bad status %d: %s", ErrEmbeddingService, resp.StatusCode, string(raw))
	}

	var parsed EmbeddingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %w", ErrEmbeddingService, err)
	}
	return c.orderVectors(parsed.Data, len(texts))
}

// orderVectors places each returned embedding at its reported index and
// checks count and dimension.
func (c *EmbeddingsClient) orderVectors(data []EmbeddingData, want int) ([][]float32, error) {
	if len(data) != want {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrEmbeddingCount, want, len(data))
	}

	out := make([][]float32, want)
	for i, d := range data {
		pos := i
		if d.Index != nil {
			pos = *d.Index
		}
		if pos < 0 || pos >= want || out[pos] != nil {
			return nil, fmt.Errorf("%w: embedding %d has invalid index %d", ErrEmbeddingService, i, pos)
		}
		if c.ExpectedSize > 0 && len(d.Embedding) != c.ExpectedSize {
			return nil, fmt.Errorf("%w: embedding %d has size %d, expected %d", ErrEmbeddingService, i, len(d.Embedding), c.ExpectedSize)
		}

		vec := make([]float32, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float32(v)
		}
		out[pos] = vec
	}
	return out, nil
}
