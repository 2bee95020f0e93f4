package graphrag

import (
	"context"
	"fmt"
	"sort"

	"hybridrag/internal/chunking"
	"hybridrag/internal/contextutil"
	"hybridrag/internal/llm"
	"hybridrag/internal/similarity"
)

// ScoredChunk is a chunk with its cosine similarity to the query.
type ScoredChunk struct {
	Chunk chunking.Chunk
	Score float64
}

// Retriever ranks chunks by embedding similarity and widens the candidate
// pool through a Graph.
type Retriever struct {
	embedder  llm.Embedder
	extractor EntityExtractor
}

// NewRetriever creates a retriever. The extractor must be the one the graph
// was built with; nil means HeuristicExtractor.
func NewRetriever(embedder llm.Embedder, extractor EntityExtractor) *Retriever {
	if extractor == nil {
		extractor = HeuristicExtractor{}
	}
	return &Retriever{embedder: embedder, extractor: extractor}
}

// Retrieve returns at most topK chunks ranked by similarity to query.
// The initial pool is the 2*topK most similar chunks. With a graph, every
// entity found in a pool chunk adds the chunk it is linked to; expansion
// only adds. A nil graph gives plain similarity ranking.
// Chunk indices stored in the graph are positions in chunks.
func (r *Retriever) Retrieve(ctx context.Context, query string, chunks []chunking.Chunk, graph *Graph, topK int) ([]ScoredChunk, error) {
	if topK <= 0 || len(chunks) == 0 {
		return []ScoredChunk{}, nil
	}

	texts := make([]string, 0, len(chunks)+1)
	for _, c := range chunks {
		texts = append(texts, c.Text)
	}
	texts = append(texts, query)

	vecs, err := r.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d, got %d", llm.ErrEmbeddingCount, len(texts), len(vecs))
	}

	scores := similarity.Scores(vecs[len(chunks)], vecs[:len(chunks)])
	ranked := similarity.Rank(scores)

	poolSize := 2 * topK
	if poolSize > len(ranked) {
		poolSize = len(ranked)
	}
	pool := append([]int(nil), ranked[:poolSize]...)

	if graph != nil {
		pool = ExpandPool(pool, chunks, graph, r.extractor)
		contextutil.LoggerFromContext(ctx).DebugContext(ctx, "graph expansion",
			"initial", poolSize,
			"added", len(pool)-poolSize,
			"nodes", graph.NodeCount(),
		)
	}

	sort.SliceStable(pool, func(a, b int) bool {
		return scores[pool[a]] > scores[pool[b]]
	})
	if len(pool) > topK {
		pool = pool[:topK]
	}

	out := make([]ScoredChunk, len(pool))
	for k, i := range pool {
		out[k] = ScoredChunk{Chunk: chunks[i], Score: scores[i]}
	}
	return out, nil
}

// ExpandPool appends to pool the chunk positions linked from entities of the
// chunks already in pool. Positions outside chunks and duplicates are skipped.
func ExpandPool(pool []int, chunks []chunking.Chunk, graph *Graph, extractor EntityExtractor) []int {
	if graph == nil {
		return pool
	}
	if extractor == nil {
		extractor = HeuristicExtractor{}
	}
	inPool := make(map[int]struct{}, len(pool))
	for _, i := range pool {
		inPool[i] = struct{}{}
	}
	initial := len(pool)
	for _, i := range pool[:initial] {
		if i < 0 || i >= len(chunks) {
			continue
		}
		for _, e := range extractor.ExtractEntities(chunks[i].Text) {
			ci, ok := graph.ChunkIndex(e)
			if !ok || ci < 0 || ci >= len(chunks) {
				continue
			}
			if _, dup := inPool[ci]; dup {
				continue
			}
			inPool[ci] = struct{}{}
			pool = append(pool, ci)
		}
	}
	return pool
}
