package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"hybridrag/internal/llm"
	llm_mocks "hybridrag/internal/llm/mocks"
	"hybridrag/internal/storage"
	storage_mocks "hybridrag/internal/storage/mocks"
	"hybridrag/internal/vectorstore"
	vectorstore_mocks "hybridrag/internal/vectorstore/mocks"
)

func TestOptions_FetchK(t *testing.T) {
	tests := []struct {
		name   string
		opts   Options
		topK   int
		expand bool
		want   int
	}{
		{"no expansion", DefaultOptions(), 5, false, 5},
		{"floor applies", DefaultOptions(), 3, true, 10},
		{"multiplier applies", DefaultOptions(), 8, true, 16},
		{"custom multiplier", Options{FetchMultiplier: 3, MinFetch: 1}, 4, true, 12},
		{"zero multiplier defaults to two", Options{}, 4, true, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.opts.FetchK(tt.topK, tt.expand); got != tt.want {
				t.Errorf("FetchK(%d, %v) = %d, want %d", tt.topK, tt.expand, got, tt.want)
			}
		})
	}
}

func TestEngine_Query_TopKBounds(t *testing.T) {
	ctrl := gomock.NewController(t)
	// No expectations: neither bound may reach a collaborator.
	engine := NewEngine(
		llm_mocks.NewMockEmbedder(ctrl),
		vectorstore_mocks.NewMockVectorStore(ctrl),
		storage_mocks.NewMockChunkStore(ctrl),
		DefaultOptions(),
	)

	_, err := engine.Query(context.Background(), QueryRequest{Query: "q", TopK: -1})
	if !errors.Is(err, ErrInvalidTopK) {
		t.Errorf("Query() with negative top_k error = %v, want ErrInvalidTopK", err)
	}

	resp, err := engine.Query(context.Background(), QueryRequest{Query: "q", TopK: 0, UseGraph: true})
	if err != nil {
		t.Fatalf("Query() with zero top_k error = %v", err)
	}
	if resp.Chunks == nil || len(resp.Chunks) != 0 {
		t.Errorf("Chunks = %v, want empty slice", resp.Chunks)
	}
	if resp.Answer != "[Retrieved 0 chunk(s). Context length: 0 chars.]" {
		t.Errorf("Answer = %q", resp.Answer)
	}
}

func TestEngine_Query_VectorOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	embedder := llm_mocks.NewMockEmbedder(ctrl)
	store := vectorstore_mocks.NewMockVectorStore(ctrl)
	chunks := storage_mocks.NewMockChunkStore(ctrl)

	filter := map[string]any{"document_id": "doc1"}
	embedder.EXPECT().Embed(gomock.Any(), []string{"what is rag"}).Return([][]float32{{1, 0}}, nil)
	store.EXPECT().Query(gomock.Any(), []float32{1, 0}, 3, filter).Return([]vectorstore.Hit{
		{Text: "first", DocumentID: "doc1", ChunkIndex: 0, Distance: 0.2},
		{Text: "second", DocumentID: "doc1", ChunkIndex: 4, Distance: 0.4},
	}, nil)

	engine := NewEngine(embedder, store, chunks, DefaultOptions())
	resp, err := engine.Query(context.Background(), QueryRequest{Query: "what is rag", TopK: 3, Filter: filter})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	if len(resp.Chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(resp.Chunks))
	}
	if resp.Chunks[0].Text != "first" || resp.Chunks[0].Score != -0.2 || resp.Chunks[0].Source != SourceVector {
		t.Errorf("first chunk = %+v", resp.Chunks[0])
	}
	if resp.Strategy.FetchK != 3 || resp.Strategy.Vector != 2 {
		t.Errorf("Strategy = %+v", resp.Strategy)
	}
	// "first\n\nsecond"
	if resp.Answer != "[Retrieved 2 chunk(s). Context length: 13 chars.]" {
		t.Errorf("Answer = %q", resp.Answer)
	}
}

func TestEngine_Query_Errors(t *testing.T) {
	errBoom := errors.New("boom")

	t.Run("embed error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		embedder := llm_mocks.NewMockEmbedder(ctrl)
		embedder.EXPECT().Embed(gomock.Any(), gomock.Any()).Return(nil, errBoom)

		engine := NewEngine(embedder, vectorstore_mocks.NewMockVectorStore(ctrl), storage_mocks.NewMockChunkStore(ctrl), DefaultOptions())
		_, err := engine.Query(context.Background(), QueryRequest{Query: "q", TopK: 2})
		if !errors.Is(err, errBoom) {
			t.Errorf("Query() error = %v, want wrapped embed error", err)
		}
	})

	t.Run("wrong vector count", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		embedder := llm_mocks.NewMockEmbedder(ctrl)
		embedder.EXPECT().Embed(gomock.Any(), gomock.Any()).Return([][]float32{}, nil)

		engine := NewEngine(embedder, vectorstore_mocks.NewMockVectorStore(ctrl), storage_mocks.NewMockChunkStore(ctrl), DefaultOptions())
		_, err := engine.Query(context.Background(), QueryRequest{Query: "q", TopK: 2})
		if !errors.Is(err, llm.ErrEmbeddingCount) {
			t.Errorf("Query() error = %v, want ErrEmbeddingCount", err)
		}
	})

	t.Run("store error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		embedder := llm_mocks.NewMockEmbedder(ctrl)
		store := vectorstore_mocks.NewMockVectorStore(ctrl)
		embedder.EXPECT().Embed(gomock.Any(), gomock.Any()).Return([][]float32{{1}}, nil)
		store.EXPECT().Query(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errBoom)

		engine := NewEngine(embedder, store, storage_mocks.NewMockChunkStore(ctrl), DefaultOptions())
		_, err := engine.Query(context.Background(), QueryRequest{Query: "q", TopK: 2})
		if !errors.Is(err, errBoom) {
			t.Errorf("Query() error = %v, want wrapped store error", err)
		}
	})

	t.Run("chunk store error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		embedder := llm_mocks.NewMockEmbedder(ctrl)
		store := vectorstore_mocks.NewMockVectorStore(ctrl)
		chunks := storage_mocks.NewMockChunkStore(ctrl)
		embedder.EXPECT().Embed(gomock.Any(), gomock.Any()).Return([][]float32{{1}}, nil)
		store.EXPECT().Query(gomock.Any(), gomock.Any(), 10, gomock.Any()).Return([]vectorstore.Hit{{DocumentID: "doc1"}}, nil)
		chunks.EXPECT().ListByDocument(gomock.Any(), "doc1").Return(nil, errBoom)

		engine := NewEngine(embedder, store, chunks, DefaultOptions())
		_, err := engine.Query(context.Background(), QueryRequest{Query: "q", TopK: 2, UseHierarchy: true})
		if !errors.Is(err, errBoom) {
			t.Errorf("Query() error = %v, want wrapped chunk store error", err)
		}
	})
}

var cairoDocument = []string{
	"Cairo University was founded in 1908 and sits in Giza.",
	"Giza Plateau hosts the pyramids visited by millions each year.",
	"The Nile River flows north through Cairo to the Mediterranean Sea.",
	"Alexandria Library was a major center of scholarship in antiquity.",
	"Modern Alexandria keeps a new library near the Mediterranean Sea.",
}

func seedDocument(t *testing.T, ctx context.Context, embedder llm.Embedder, store *vectorstore.MemoryStore, docID string, texts []string) []storage.Chunk {
	t.Helper()

	vecs, err := embedder.Embed(ctx, texts)
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	points := make([]vectorstore.Point, len(texts))
	rows := make([]storage.Chunk, len(texts))
	for i, text := range texts {
		points[i] = vectorstore.Point{
			ID:         docID + "-" + string(rune('a'+i)),
			Vec:        vecs[i],
			Text:       text,
			DocumentID: docID,
			ChunkIndex: i,
		}
		rows[i] = storage.Chunk{DocumentID: docID, ChunkIndex: i, Text: text}
	}
	if err := store.Add(ctx, points); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	return rows
}

func TestEngine_Query_WithExpansion(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	embedder := llm.NewHashEmbedder(256)
	store := vectorstore.NewMemoryStore()
	chunks := storage_mocks.NewMockChunkStore(ctrl)

	rows := seedDocument(t, ctx, embedder, store, "doc1", cairoDocument)
	// Several hits share doc1; it must be loaded once.
	chunks.EXPECT().ListByDocument(gomock.Any(), "doc1").Return(rows, nil).Times(1)

	engine := NewEngine(embedder, store, chunks, DefaultOptions())
	resp, err := engine.Query(ctx, QueryRequest{
		Query:        "Cairo University Giza",
		TopK:         2,
		UseGraph:     true,
		UseHierarchy: true,
	})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	if len(resp.Chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(resp.Chunks))
	}
	if resp.Strategy.FetchK != 10 || resp.Strategy.CorpusDocuments != 1 || resp.Strategy.CorpusChunks != len(cairoDocument) {
		t.Errorf("Strategy = %+v", resp.Strategy)
	}
	if resp.Strategy.Graph == 0 || resp.Strategy.Hierarchy == 0 {
		t.Errorf("expansion paths returned nothing: %+v", resp.Strategy)
	}

	seen := make(map[int]bool)
	for _, c := range resp.Chunks {
		if c.DocumentID != "doc1" {
			t.Errorf("chunk from unexpected document %q", c.DocumentID)
		}
		if seen[c.ChunkIndex] {
			t.Errorf("duplicate chunk index %d", c.ChunkIndex)
		}
		seen[c.ChunkIndex] = true
	}
	// Similarity scores beat negated distances for the same chunk.
	if resp.Chunks[0].Source == SourceVector {
		t.Errorf("top chunk source = %q, want an expansion source", resp.Chunks[0].Source)
	}
	if !strings.Contains(resp.Chunks[0].Text, "Cairo") && !strings.Contains(resp.Chunks[0].Text, "Giza") {
		t.Errorf("top chunk = %q, want a Cairo or Giza chunk", resp.Chunks[0].Text)
	}
}

func TestEngine_Query_ExpansionMapsBackToDocumentKeys(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	embedder := llm.NewHashEmbedder(256)
	store := vectorstore.NewMemoryStore()
	chunks := storage_mocks.NewMockChunkStore(ctrl)

	first := seedDocument(t, ctx, embedder, store, "first", cairoDocument[:2])
	second := seedDocument(t, ctx, embedder, store, "second", cairoDocument[2:])
	chunks.EXPECT().ListByDocument(gomock.Any(), "first").Return(first, nil)
	chunks.EXPECT().ListByDocument(gomock.Any(), "second").Return(second, nil)

	engine := NewEngine(embedder, store, chunks, DefaultOptions())
	resp, err := engine.Query(ctx, QueryRequest{Query: "Alexandria Library", TopK: 5, UseGraph: true})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	texts := make(map[string]string)
	for _, r := range append(first, second...) {
		texts[r.DocumentID+"/"+string(rune('0'+r.ChunkIndex))] = r.Text
	}
	for _, c := range resp.Chunks {
		key := c.DocumentID + "/" + string(rune('0'+c.ChunkIndex))
		if texts[key] != c.Text {
			t.Errorf("candidate %s has text %q, want %q", key, c.Text, texts[key])
		}
	}
	if resp.Strategy.CorpusDocuments != 2 {
		t.Errorf("CorpusDocuments = %d, want 2", resp.Strategy.CorpusDocuments)
	}
}

func TestPlaceholderAnswer(t *testing.T) {
	long := strings.Repeat("ب", 5000)
	tests := []struct {
		name   string
		chunks []Candidate
		want   string
	}{
		{"none", nil, "[Retrieved 0 chunk(s). Context length: 0 chars.]"},
		{"joined", []Candidate{{Text: "ab"}, {Text: "cd"}}, "[Retrieved 2 chunk(s). Context length: 6 chars.]"},
		{"truncated", []Candidate{{Text: long}}, "[Retrieved 1 chunk(s). Context length: 4000 chars.]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlaceholderAnswer(tt.chunks); got != tt.want {
				t.Errorf("PlaceholderAnswer() = %q, want %q", got, tt.want)
			}
		})
	}
}
