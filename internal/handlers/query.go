package handlers

import (
	"net/http"

	"hybridrag/internal/contextutil"
	"hybridrag/internal/rag"
	"hybridrag/internal/service"
)

// QueryHandler handles HTTP requests for retrieval queries.
type QueryHandler struct {
	svc service.RetrievalService
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(svc service.RetrievalService) *QueryHandler {
	return &QueryHandler{svc: svc}
}

// QueryRequest represents the HTTP request payload for retrieval queries.
//
// swagger:model QueryRequest
type QueryRequest struct {
	Query string `json:"query"`
	// Omitted selects the server default; 0 returns no chunks.
	TopK         *int           `json:"top_k,omitempty"`
	UseGraph     bool           `json:"use_graph,omitempty"`
	UseHierarchy bool           `json:"use_hierarchy,omitempty"`
	Filter       map[string]any `json:"filter,omitempty"`
}

// QueryResponse represents the HTTP response payload for retrieval queries.
//
// swagger:model QueryResponse
type QueryResponse struct {
	// Placeholder summary of the retrieved context
	Answer string `json:"answer"`

	// Retrieved chunks, best first
	Chunks []ChunkResponse `json:"chunks"`

	// Candidate counts per retrieval path
	Strategy rag.StrategyInfo `json:"strategy"`
}

// ChunkResponse is one ranked chunk.
//
// swagger:model ChunkResponse
type ChunkResponse struct {
	// Rank is 1-based.
	Rank       int     `json:"rank"`
	DocumentID string  `json:"document_id"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"score"`
	Source     string  `json:"source"`
	Text       string  `json:"text"`
}

// ServeHTTP handles HTTP requests for retrieval queries.
//
// swagger:route POST /api/query queryChunks
//
// # Retrieve the chunks most relevant to a query
//
// Runs vector search and, when requested, entity graph expansion and
// multi-level summary retrieval over the matched documents.
//
// responses:
//
//	'200': QueryResponse
//	'400': ErrorResponse
//	'502': ErrorResponse
//	'500': ErrorResponse
func (h *QueryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(ctx, w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req QueryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.svc.Query(ctx, service.QueryRequest{
		Query:        req.Query,
		TopK:         req.TopK,
		UseGraph:     req.UseGraph,
		UseHierarchy: req.UseHierarchy,
		Filter:       req.Filter,
	})
	if err != nil {
		writeServiceError(ctx, w, err, "Failed to process query")
		return
	}

	chunks := make([]ChunkResponse, len(resp.Chunks))
	for i, c := range resp.Chunks {
		chunks[i] = ChunkResponse{
			Rank:       i + 1,
			DocumentID: c.DocumentID,
			ChunkIndex: c.ChunkIndex,
			Score:      c.Score,
			Source:     string(c.Source),
			Text:       c.Text,
		}
	}

	writeJSON(ctx, w, http.StatusOK, QueryResponse{
		Answer:   resp.Answer,
		Chunks:   chunks,
		Strategy: resp.Strategy,
	})
}
