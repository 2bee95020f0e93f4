package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("connection refused") })

	tests := []struct {
		name       string
		method     string
		checks     map[string]Pinger
		wantStatus int
		wantState  string
		wantIssues []string
	}{
		{
			name:       "all healthy",
			method:     http.MethodGet,
			checks:     map[string]Pinger{"database": ok, "vector_store": ok},
			wantStatus: http.StatusOK,
			wantState:  "healthy",
		},
		{
			name:       "vector store down",
			method:     http.MethodGet,
			checks:     map[string]Pinger{"database": ok, "vector_store": down},
			wantStatus: http.StatusServiceUnavailable,
			wantState:  "unhealthy",
			wantIssues: []string{"vector_store_unavailable"},
		},
		{
			name:       "everything down",
			method:     http.MethodGet,
			checks:     map[string]Pinger{"vector_store": down, "database": down},
			wantStatus: http.StatusServiceUnavailable,
			wantState:  "unhealthy",
			wantIssues: []string{"database_unavailable", "vector_store_unavailable"},
		},
		{
			name:       "method not allowed",
			method:     http.MethodPost,
			checks:     map[string]Pinger{},
			wantStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(tt.checks)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(tt.method, "/api/health", nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("ServeHTTP() status = %v, want %v", w.Code, tt.wantStatus)
			}
			if tt.wantState == "" {
				return
			}

			var resp HealthResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Status != tt.wantState {
				t.Errorf("Status = %q, want %q", resp.Status, tt.wantState)
			}
			if len(resp.Checks) != len(tt.checks) {
				t.Errorf("Checks = %v", resp.Checks)
			}
			if len(resp.Issues) != len(tt.wantIssues) {
				t.Fatalf("Issues = %v, want %v", resp.Issues, tt.wantIssues)
			}
			for i := range tt.wantIssues {
				if resp.Issues[i] != tt.wantIssues[i] {
					t.Errorf("Issues[%d] = %q, want %q", i, resp.Issues[i], tt.wantIssues[i])
				}
			}
		})
	}
}
