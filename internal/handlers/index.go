package handlers

import (
	"net/http"

	"hybridrag/internal/contextutil"
	"hybridrag/internal/service"
)

// IndexHandler handles HTTP requests for indexing a directory.
type IndexHandler struct {
	svc service.RetrievalService
}

// NewIndexHandler creates a new IndexHandler.
func NewIndexHandler(svc service.RetrievalService) *IndexHandler {
	return &IndexHandler{svc: svc}
}

// IndexRequest represents a directory ingest request.
//
// swagger:model IndexRequest
type IndexRequest struct {
	// Root directory on the server's filesystem
	Root string `json:"root"`
}

// ServeHTTP handles HTTP requests for indexing a directory. The run is
// synchronous; per-file failures are reported in the response body.
//
// swagger:route POST /api/index indexDirectory
//
// # Index every supported file under a directory
//
// responses:
//
//	'200': DirResult
//	'400': ErrorResponse
//	'404': ErrorResponse
func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(ctx, w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req IndexRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	logger.InfoContext(ctx, "directory indexing triggered via API", "root", req.Root)

	res, err := h.svc.IngestDirectory(ctx, req.Root)
	if err != nil {
		writeServiceError(ctx, w, err, "Failed to index directory")
		return
	}
	writeJSON(ctx, w, http.StatusOK, res)
}
