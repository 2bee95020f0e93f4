package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"hybridrag/internal/contextutil"
	"hybridrag/internal/service"
)

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "invalid input",
			err:        &service.ValidationError{Field: "query", Message: "is required"},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "validation error on field query: is required",
		},
		{
			name:       "not found",
			err:        fmt.Errorf("%w: document abc", service.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantMsg:    "not found: document abc",
		},
		{
			name:       "unsupported format",
			err:        service.ErrUnsupportedFormat,
			wantStatus: http.StatusUnsupportedMediaType,
			wantMsg:    service.ErrUnsupportedFormat.Error(),
		},
		{
			name:       "external service hides details",
			err:        fmt.Errorf("%w: embeddings at 10.0.0.1 refused", service.ErrExternalService),
			wantStatus: http.StatusBadGateway,
			wantMsg:    "External service error",
		},
		{
			name:       "deadline",
			err:        fmt.Errorf("query: %w", context.DeadlineExceeded),
			wantStatus: http.StatusGatewayTimeout,
			wantMsg:    "Request timed out",
		},
		{
			name:       "unknown",
			err:        errors.New("disk on fire"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Failed to do thing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := contextutil.WithRequestID(context.Background(), "req-7")
			w := httptest.NewRecorder()

			writeServiceError(ctx, w, tt.err, "Failed to do thing")

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var resp ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Error != tt.wantMsg {
				t.Errorf("error = %q, want %q", resp.Error, tt.wantMsg)
			}
			if resp.RequestID != "req-7" {
				t.Errorf("request_id = %q, want req-7", resp.RequestID)
			}
		})
	}
}
