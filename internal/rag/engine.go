package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_engine.go -package=mocks hybridrag/internal/rag Engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"hybridrag/internal/chunking"
	"hybridrag/internal/contextutil"
	"hybridrag/internal/graphrag"
	"hybridrag/internal/llm"
	"hybridrag/internal/raptor"
	"hybridrag/internal/storage"
	"hybridrag/internal/vectorstore"
)

// ErrInvalidTopK is returned when a query asks for a negative number of chunks.
var ErrInvalidTopK = errors.New("top_k must not be negative")

// maxContextRunes caps the context the placeholder answer is computed over.
const maxContextRunes = 4000

// Options tunes how many vector hits are fetched and how deep the summary tree goes.
type Options struct {
	// FetchMultiplier scales TopK when an expansion is requested.
	FetchMultiplier int
	// MinFetch is the minimum number of vector hits fetched when expanding.
	MinFetch int
	// MaxLevels is passed to the summary tree builder.
	MaxLevels int
}

// DefaultOptions returns the standard retrieval tuning.
func DefaultOptions() Options {
	return Options{
		FetchMultiplier: 2,
		MinFetch:        10,
		MaxLevels:       raptor.DefaultMaxLevels,
	}
}

// FetchK returns how many vector hits to request for topK.
func (o Options) FetchK(topK int, expand bool) int {
	if !expand {
		return topK
	}
	mult := o.FetchMultiplier
	if mult < 1 {
		mult = 2
	}
	return max(topK*mult, o.MinFetch)
}

// Engine answers retrieval queries.
type Engine interface {
	// Query retrieves the chunks most relevant to req.Query.
	Query(ctx context.Context, req QueryRequest) (QueryResponse, error)
}

// ragEngine implements the Engine interface.
type ragEngine struct {
	embedder llm.Embedder
	store    vectorstore.VectorStore
	chunks   storage.ChunkStore
	graphs   *graphrag.Retriever
	trees    *raptor.Retriever
	opts     Options
}

// NewEngine creates a new retrieval engine.
func NewEngine(
	embedder llm.Embedder,
	store vectorstore.VectorStore,
	chunks storage.ChunkStore,
	opts Options,
) Engine {
	return &ragEngine{
		embedder: embedder,
		store:    store,
		chunks:   chunks,
		graphs:   graphrag.NewRetriever(embedder, nil),
		trees:    raptor.NewRetriever(embedder),
		opts:     opts,
	}
}

// Query runs vector search, optionally expands over the matched documents with
// the entity graph and the summary tree, and fuses the results.
func (e *ragEngine) Query(ctx context.Context, req QueryRequest) (QueryResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if req.TopK < 0 {
		return QueryResponse{}, ErrInvalidTopK
	}
	if req.TopK == 0 {
		return newResponse([]Candidate{}, StrategyInfo{}), nil
	}

	expand := req.UseGraph || req.UseHierarchy
	fetchK := e.opts.FetchK(req.TopK, expand)

	logger.InfoContext(ctx, "query started",
		"top_k", req.TopK,
		"fetch_k", fetchK,
		"use_graph", req.UseGraph,
		"use_hierarchy", req.UseHierarchy,
	)

	vecs, err := e.embedder.Embed(ctx, []string{req.Query})
	if err != nil {
		logger.ErrorContext(ctx, "failed to embed query", "error", err)
		return QueryResponse{}, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vecs) != 1 {
		return QueryResponse{}, fmt.Errorf("%w: got %d vectors for 1 query", llm.ErrEmbeddingCount, len(vecs))
	}

	hits, err := e.store.Query(ctx, vecs[0], fetchK, req.Filter)
	if err != nil {
		logger.ErrorContext(ctx, "failed to query vector store", "error", err)
		return QueryResponse{}, fmt.Errorf("failed to query vector store: %w", err)
	}

	vector := VectorCandidates(hits)
	info := StrategyInfo{FetchK: fetchK, Vector: len(vector)}

	var fromGraph, fromTree []Candidate
	if expand && len(hits) > 0 {
		corpus, err := e.loadCorpus(ctx, hits)
		if err != nil {
			return QueryResponse{}, err
		}
		info.CorpusDocuments = corpus.documents
		info.CorpusChunks = len(corpus.chunks)

		if len(corpus.chunks) > 0 {
			if req.UseGraph {
				fromGraph, err = e.graphCandidates(ctx, req.Query, corpus, 2*req.TopK)
				if err != nil {
					return QueryResponse{}, err
				}
				info.Graph = len(fromGraph)
			}
			if req.UseHierarchy {
				fromTree, err = e.treeCandidates(ctx, req.Query, corpus, 2*req.TopK)
				if err != nil {
					return QueryResponse{}, err
				}
				info.Hierarchy = len(fromTree)
			}
		}
	}

	fused := Fuse(req.TopK, vector, fromGraph, fromTree)

	logger.InfoContext(ctx, "query completed",
		"vector_hits", info.Vector,
		"graph_hits", info.Graph,
		"hierarchy_hits", info.Hierarchy,
		"returned", len(fused),
	)

	return newResponse(fused, info), nil
}

// corpus is the flat chunk list of every matched document. keys[i] is the
// (document, chunk index) of chunks[i], whose Index is i.
type corpus struct {
	chunks    []chunking.Chunk
	keys      []chunkKey
	documents int
}

func (e *ragEngine) loadCorpus(ctx context.Context, hits []vectorstore.Hit) (corpus, error) {
	var c corpus
	seen := make(map[string]bool)
	for _, h := range hits {
		if h.DocumentID == "" || seen[h.DocumentID] {
			continue
		}
		seen[h.DocumentID] = true

		rows, err := e.chunks.ListByDocument(ctx, h.DocumentID)
		if err != nil {
			return corpus{}, fmt.Errorf("failed to load chunks for document %s: %w", h.DocumentID, err)
		}
		c.documents++
		for _, r := range rows {
			c.chunks = append(c.chunks, chunking.Chunk{
				Text:  r.Text,
				Start: r.CharStart,
				End:   r.CharEnd,
				Index: len(c.chunks),
			})
			c.keys = append(c.keys, chunkKey{documentID: r.DocumentID, chunkIndex: r.ChunkIndex})
		}
	}
	return c, nil
}

func (e *ragEngine) graphCandidates(ctx context.Context, query string, c corpus, k int) ([]Candidate, error) {
	graph := graphrag.BuildGraph(c.chunks, nil)
	contextutil.LoggerFromContext(ctx).DebugContext(ctx, "entity graph built",
		"nodes", graph.NodeCount(),
		"edges", graph.EdgeCount(),
	)

	scored, err := e.graphs.Retrieve(ctx, query, c.chunks, graph, k)
	if err != nil {
		return nil, fmt.Errorf("graph retrieval failed: %w", err)
	}

	out := make([]Candidate, 0, len(scored))
	for _, s := range scored {
		key, ok := c.key(s.Chunk.Index)
		if !ok {
			continue
		}
		out = append(out, Candidate{
			Text:       s.Chunk.Text,
			DocumentID: key.documentID,
			ChunkIndex: key.chunkIndex,
			Score:      s.Score,
			Source:     SourceGraph,
		})
	}
	return out, nil
}

func (e *ragEngine) treeCandidates(ctx context.Context, query string, c corpus, k int) ([]Candidate, error) {
	nodes := raptor.BuildTree(c.chunks, e.opts.MaxLevels)
	contextutil.LoggerFromContext(ctx).DebugContext(ctx, "summary tree built", "nodes", len(nodes))

	hits, err := e.trees.Retrieve(ctx, query, nodes, k)
	if err != nil {
		return nil, fmt.Errorf("hierarchy retrieval failed: %w", err)
	}

	out := make([]Candidate, 0, len(hits))
	for _, h := range hits {
		key, ok := c.key(h.ChunkIndex)
		if !ok {
			continue
		}
		out = append(out, Candidate{
			Text:       h.Text,
			DocumentID: key.documentID,
			ChunkIndex: key.chunkIndex,
			Score:      h.Score,
			Source:     SourceHierarchy,
		})
	}
	return out, nil
}

func (c corpus) key(pos int) (chunkKey, bool) {
	if pos < 0 || pos >= len(c.keys) {
		return chunkKey{}, false
	}
	return c.keys[pos], true
}

func newResponse(chunks []Candidate, info StrategyInfo) QueryResponse {
	return QueryResponse{
		Chunks:   chunks,
		Answer:   PlaceholderAnswer(chunks),
		Strategy: info,
	}
}

// PlaceholderAnswer summarizes the retrieved context without calling a language model.
func PlaceholderAnswer(chunks []Candidate) string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	n := min(utf8.RuneCountInString(strings.Join(texts, "\n\n")), maxContextRunes)
	return fmt.Sprintf("[Retrieved %d chunk(s). Context length: %d chars.]", len(chunks), n)
}
