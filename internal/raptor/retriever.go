package raptor

import (
	"context"
	"fmt"

	"hybridrag/internal/llm"
	"hybridrag/internal/similarity"
)

// Hit is a chunk reached through the tree. Level tells whether the chunk
// matched directly (0) or through its summary (1); Score is the similarity
// of the matching node.
type Hit struct {
	Text       string  `json:"text"`
	Level      int     `json:"level"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"score"`
}

// Retriever ranks tree nodes against a query and resolves them to chunks.
type Retriever struct {
	embedder llm.Embedder
}

// NewRetriever creates a multi-level retriever.
func NewRetriever(embedder llm.Embedder) *Retriever {
	return &Retriever{embedder: embedder}
}

// Retrieve embeds every node and the query in one batch and walks nodes by
// descending similarity. Each chunk index is emitted once; a summary hit
// emits all of its not yet seen children with the summary's score.
func (r *Retriever) Retrieve(ctx context.Context, query string, nodes []Node, topK int) ([]Hit, error) {
	if topK <= 0 || len(nodes) == 0 {
		return []Hit{}, nil
	}

	texts := make([]string, 0, len(nodes)+1)
	for _, n := range nodes {
		texts = append(texts, n.Text)
	}
	texts = append(texts, query)

	vecs, err := r.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed tree nodes: %w", err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d, got %d", llm.ErrEmbeddingCount, len(texts), len(vecs))
	}

	scores := similarity.Scores(vecs[len(nodes)], vecs[:len(nodes)])

	leaves := 0
	for leaves < len(nodes) && nodes[leaves].Level == 0 {
		leaves++
	}

	hits := make([]Hit, 0, topK)
	seen := make(map[int]struct{})
	for _, i := range similarity.Rank(scores) {
		node := nodes[i]
		for _, ci := range node.ChunkIndices {
			if len(hits) == topK {
				return hits, nil
			}
			if _, ok := seen[ci]; ok {
				continue
			}
			seen[ci] = struct{}{}

			text := node.Text
			if node.Level > 0 {
				if ci >= 0 && ci < leaves {
					text = nodes[ci].Text
				}
			}
			hits = append(hits, Hit{
				Text:       text,
				Level:      node.Level,
				ChunkIndex: ci,
				Score:      scores[i],
			})
		}
		if len(hits) == topK {
			break
		}
	}
	return hits, nil
}
