package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"hybridrag/internal/contextutil"
	"hybridrag/internal/service"
)

// maxBodyBytes limits JSON request bodies.
const maxBodyBytes = 1 << 20

// ErrorResponse represents an error response.
//
// swagger:model ErrorResponse
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// writeJSON writes v with the given status code.
func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// writeError writes an error response tagged with the request ID, if any.
func writeError(ctx context.Context, w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:     message,
		RequestID: contextutil.RequestIDFromContext(ctx),
	})
}

// decodeJSON reads a JSON body into v and writes a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ctx := r.Context()
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "invalid request body", "error", err)
		writeError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// writeServiceError maps service errors to HTTP status codes.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(ctx)

	switch {
	case errors.Is(err, service.ErrInvalidInput):
		logger.WarnContext(ctx, "invalid input", "error", err)
		writeError(ctx, w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		logger.InfoContext(ctx, "not found", "error", err)
		writeError(ctx, w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrUnsupportedFormat):
		logger.WarnContext(ctx, "unsupported format", "error", err)
		writeError(ctx, w, http.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, service.ErrExternalService):
		logger.ErrorContext(ctx, "external service error", "error", err)
		writeError(ctx, w, http.StatusBadGateway, "External service error")
	case errors.Is(err, context.DeadlineExceeded):
		logger.ErrorContext(ctx, "request timed out", "error", err)
		writeError(ctx, w, http.StatusGatewayTimeout, "Request timed out")
	default:
		logger.ErrorContext(ctx, "request failed", "error", err)
		writeError(ctx, w, http.StatusInternalServerError, defaultMsg)
	}
}
