package raptor

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"hybridrag/internal/llm"
	"hybridrag/internal/llm/mocks"
)

func embedByText(t *testing.T, byText map[string][]float32) func(context.Context, []string) ([][]float32, error) {
	return func(_ context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i, text := range texts {
			v, ok := byText[text]
			if !ok {
				t.Fatalf("unexpected text %q", text)
			}
			out[i] = v
		}
		return out, nil
	}
}

func TestRetriever_ResolvesSummaryHitsToChildren(t *testing.T) {
	nodes := []Node{
		{Text: "leaf zero", Level: 0, ChunkIndices: []int{0}, Index: 0},
		{Text: "leaf one", Level: 0, ChunkIndices: []int{1}, Index: 1},
		{Text: "leaf two", Level: 0, ChunkIndices: []int{2}, Index: 2},
		{Text: "summary", Level: 1, ChunkIndices: []int{0, 1, 2}, Index: 3},
	}

	ctrl := gomock.NewController(t)
	embedder := mocks.NewMockEmbedder(ctrl)
	embedder.EXPECT().Embed(gomock.Any(), gomock.Len(5)).DoAndReturn(embedByText(t, map[string][]float32{
		"leaf zero": {0, 1},
		"leaf one":  {1, 0},
		"leaf two":  {0.1, 1},
		"summary":   {0.8, 0.6},
		"query":     {1, 0},
	})).Times(1)

	hits, err := NewRetriever(embedder).Retrieve(context.Background(), "query", nodes, 3)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}

	want := []Hit{
		{Text: "leaf one", Level: 0, ChunkIndex: 1, Score: 1},
		{Text: "leaf zero", Level: 1, ChunkIndex: 0, Score: 0.8},
		{Text: "leaf two", Level: 1, ChunkIndex: 2, Score: 0.8},
	}
	if len(hits) != len(want) {
		t.Fatalf("got %d hits %+v, want %d", len(hits), hits, len(want))
	}
	for i := range want {
		got := hits[i]
		if got.Text != want[i].Text || got.Level != want[i].Level || got.ChunkIndex != want[i].ChunkIndex {
			t.Errorf("hit %d = %+v, want %+v", i, got, want[i])
		}
		if diff := got.Score - want[i].Score; diff > 1e-6 || diff < -1e-6 {
			t.Errorf("hit %d score = %v, want %v", i, got.Score, want[i].Score)
		}
	}
}

func TestRetriever_StopsAtTopK(t *testing.T) {
	chunks := makeChunks("Alpha text.", "Beta text.", "Gamma text.", "Delta text.")
	nodes := BuildTree(chunks, DefaultMaxLevels)

	hits, err := NewRetriever(llm.NewHashEmbedder(64)).Retrieve(context.Background(), "beta", nodes, 2)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("got %d hits, want 2", len(hits))
	}
	if hits[0].ChunkIndex == hits[1].ChunkIndex {
		t.Errorf("duplicate chunk index %d", hits[0].ChunkIndex)
	}
}

func TestRetriever_SummaryChildOutOfRange(t *testing.T) {
	nodes := []Node{
		{Text: "leaf", Level: 0, ChunkIndices: []int{0}, Index: 0},
		{Text: "orphan summary", Level: 1, ChunkIndices: []int{5}, Index: 1},
	}
	ctrl := gomock.NewController(t)
	embedder := mocks.NewMockEmbedder(ctrl)
	embedder.EXPECT().Embed(gomock.Any(), gomock.Any()).DoAndReturn(embedByText(t, map[string][]float32{
		"leaf":           {0, 1},
		"orphan summary": {1, 0},
		"q":              {1, 0},
	}))

	hits, err := NewRetriever(embedder).Retrieve(context.Background(), "q", nodes, 5)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(hits) != 2 || hits[0].Text != "orphan summary" || hits[0].ChunkIndex != 5 {
		t.Errorf("Retrieve() = %+v, want summary text for unresolved child first", hits)
	}
}

func TestRetriever_EmptyAndZeroTopK(t *testing.T) {
	ctrl := gomock.NewController(t)
	embedder := mocks.NewMockEmbedder(ctrl)
	embedder.EXPECT().Embed(gomock.Any(), gomock.Any()).Times(0)
	r := NewRetriever(embedder)

	nodes := BuildTree(makeChunks("a."), 2)
	for _, tc := range []struct {
		nodes []Node
		topK  int
	}{
		{nodes, 0},
		{nil, 3},
	} {
		hits, err := r.Retrieve(context.Background(), "q", tc.nodes, tc.topK)
		if err != nil || hits == nil || len(hits) != 0 {
			t.Errorf("Retrieve(topK=%d) = %v, %v; want empty", tc.topK, hits, err)
		}
	}
}

func TestRetriever_EmbedError(t *testing.T) {
	boom := errors.New("boom")
	ctrl := gomock.NewController(t)
	embedder := mocks.NewMockEmbedder(ctrl)
	embedder.EXPECT().Embed(gomock.Any(), gomock.Any()).Return(nil, boom)

	_, err := NewRetriever(embedder).Retrieve(context.Background(), "q", BuildTree(makeChunks("a."), 2), 1)
	if !errors.Is(err, boom) {
		t.Errorf("Retrieve() error = %v, want %v", err, boom)
	}
}
