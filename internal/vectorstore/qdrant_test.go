package vectorstore

import (
	"context"
	"errors"
	"testing"

	"github.com/qdrant/go-client/qdrant"
)

func TestGRPCAddress(t *testing.T) {
	tests := []struct {
		name     string
		urlStr   string
		wantErr  bool
		wantHost string
		wantPort int
	}{
		{
			name:     "default port",
			urlStr:   "http://localhost:6333",
			wantHost: "localhost",
			wantPort: 6334, // gRPC port is HTTP port + 1
		},
		{
			name:     "custom port",
			urlStr:   "http://qdrant:9000",
			wantHost: "qdrant",
			wantPort: 9001,
		},
		{
			name:     "no port",
			urlStr:   "http://localhost",
			wantHost: "localhost",
			wantPort: 6334,
		},
		{
			name:     "no hostname",
			urlStr:   "http://:6333",
			wantHost: "localhost",
			wantPort: 6334,
		},
		{
			name:    "invalid URL",
			urlStr:  "://invalid",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, port, err := grpcAddress(tt.urlStr)
			if tt.wantErr {
				if err == nil {
					t.Error("grpcAddress() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("grpcAddress() error = %v", err)
			}
			if host != tt.wantHost || port != tt.wantPort {
				t.Errorf("grpcAddress() = %s:%d, want %s:%d", host, port, tt.wantHost, tt.wantPort)
			}
		})
	}
}

func TestNewQdrantStore_InvalidURL(t *testing.T) {
	if _, err := NewQdrantStore("://invalid", "documents"); err == nil {
		t.Error("NewQdrantStore() with invalid URL should return error")
	}
}

func TestQdrantStore_EarlyReturns(t *testing.T) {
	// No client is needed for these paths.
	store := &QdrantStore{collection: "documents"}
	ctx := context.Background()

	if err := store.Add(ctx, nil); err != nil {
		t.Errorf("Add() with no points error = %v", err)
	}
	hits, err := store.Query(ctx, []float32{1, 0}, 0, nil)
	if err != nil || len(hits) != 0 {
		t.Errorf("Query() with topK=0 = %v, %v; want empty", hits, err)
	}
	if _, err := store.Query(ctx, []float32{1, 0}, 3, map[string]any{"x": []int{1}}); !errors.Is(err, ErrInvalidFilter) {
		t.Errorf("Query() with bad filter error = %v, want ErrInvalidFilter", err)
	}
}

func TestBuildFilter(t *testing.T) {
	f, err := buildFilter(nil)
	if err != nil || f != nil {
		t.Fatalf("buildFilter(nil) = %v, %v; want nil, nil", f, err)
	}

	f, err = buildFilter(map[string]any{
		"document_id": "abc",
		"chunk_index": float64(3),
		"archived":    false,
	})
	if err != nil {
		t.Fatalf("buildFilter() error = %v", err)
	}
	if len(f.Must) != 3 {
		t.Fatalf("got %d conditions, want 3", len(f.Must))
	}
	// Keys are sorted: archived, chunk_index, document_id.
	wantKeys := []string{"archived", "chunk_index", "document_id"}
	for i, c := range f.Must {
		if got := c.GetField().GetKey(); got != wantKeys[i] {
			t.Errorf("condition %d key = %q, want %q", i, got, wantKeys[i])
		}
	}
	if got := f.Must[1].GetField().GetMatch().GetInteger(); got != 3 {
		t.Errorf("chunk_index match = %d, want 3", got)
	}

	if _, err := buildFilter(map[string]any{"chunk_index": 1.5}); !errors.Is(err, ErrInvalidFilter) {
		t.Errorf("fractional number error = %v, want ErrInvalidFilter", err)
	}
}

func TestConvertPayloadToMap(t *testing.T) {
	result := convertPayloadToMap(nil)
	if result == nil || len(result) != 0 {
		t.Errorf("convertPayloadToMap(nil) = %v, want empty map", result)
	}

	payload := qdrant.NewValueMap(map[string]any{
		"text":        "hello",
		"chunk_index": int64(4),
		"score":       0.5,
		"flag":        true,
	})
	result = convertPayloadToMap(payload)
	if result["text"] != "hello" || result["chunk_index"] != int64(4) || result["score"] != 0.5 || result["flag"] != true {
		t.Errorf("convertPayloadToMap() = %v", result)
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	p := Point{
		ID:         "id-1",
		Text:       "chunk text",
		DocumentID: "doc",
		ChunkIndex: 7,
		Meta:       map[string]any{"strategy": "fixed"},
	}

	h := hitFromPayload(p.ID, 0.25, payloadFor(p))
	if h.Text != p.Text || h.DocumentID != p.DocumentID || h.ChunkIndex != p.ChunkIndex {
		t.Errorf("hitFromPayload() = %+v", h)
	}
	if h.Distance != 0.25 || h.ID != "id-1" {
		t.Errorf("hitFromPayload() distance/id = %v/%s", h.Distance, h.ID)
	}
	if h.Meta["strategy"] != "fixed" {
		t.Errorf("Meta = %v, want strategy kept", h.Meta)
	}
	if _, ok := h.Meta[KeyText]; ok {
		t.Error("reserved keys should not leak into Meta")
	}
}
