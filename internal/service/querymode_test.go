package service

import (
	"testing"

	"hybridrag/internal/rag"
)

func TestQueryMode(t *testing.T) {
	tests := []struct {
		req  rag.QueryRequest
		want string
	}{
		{rag.QueryRequest{}, "vector"},
		{rag.QueryRequest{UseGraph: true}, "vector+graph"},
		{rag.QueryRequest{UseHierarchy: true}, "vector+hierarchy"},
		{rag.QueryRequest{UseGraph: true, UseHierarchy: true}, "vector+graph+hierarchy"},
	}
	for _, tt := range tests {
		if got := queryMode(tt.req); got != tt.want {
			t.Errorf("queryMode(%+v) = %q, want %q", tt.req, got, tt.want)
		}
	}
}
