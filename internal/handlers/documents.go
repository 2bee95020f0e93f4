package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hybridrag/internal/contextutil"
	"hybridrag/internal/service"
)

// DocumentsHandler handles HTTP requests for ingesting and managing documents.
type DocumentsHandler struct {
	svc service.RetrievalService
}

// NewDocumentsHandler creates a new DocumentsHandler.
func NewDocumentsHandler(svc service.RetrievalService) *DocumentsHandler {
	return &DocumentsHandler{svc: svc}
}

// IngestRequest represents a request to ingest one file.
//
// swagger:model IngestRequest
type IngestRequest struct {
	// Path of the file on the server's filesystem
	Path string `json:"path"`
}

// Ingest handles POST /api/documents.
//
// swagger:route POST /api/documents ingestDocument
//
// Extracts, chunks, embeds and stores a single file.
//
// responses:
//
//	'200': IngestResult
//	'400': ErrorResponse
//	'404': ErrorResponse
//	'415': ErrorResponse
//	'502': ErrorResponse
func (h *DocumentsHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req IngestRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.svc.IngestDocument(ctx, req.Path)
	if err != nil {
		writeServiceError(ctx, w, err, "Failed to ingest document")
		return
	}

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "document ingested via API",
		"document_id", res.DocumentID,
		"chunks", res.Chunks,
		"unchanged", res.Unchanged,
	)
	writeJSON(ctx, w, http.StatusOK, res)
}

// List handles GET /api/documents.
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	docs, err := h.svc.ListDocuments(ctx)
	if err != nil {
		writeServiceError(ctx, w, err, "Failed to list documents")
		return
	}
	writeJSON(ctx, w, http.StatusOK, docs)
}

// Get handles GET /api/documents/{id}.
func (h *DocumentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	detail, err := h.svc.GetDocument(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(ctx, w, err, "Failed to get document")
		return
	}
	writeJSON(ctx, w, http.StatusOK, detail)
}

// Delete handles DELETE /api/documents/{id}.
func (h *DocumentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.svc.DeleteDocument(ctx, chi.URLParam(r, "id")); err != nil {
		writeServiceError(ctx, w, err, "Failed to delete document")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
