package vectorstore

import (
	"context"
	"sync"

	"hybridrag/internal/similarity"
)

type memoryEntry struct {
	vec     []float32
	payload map[string]any
}

// MemoryStore is an in-process VectorStore doing brute-force cosine search.
// It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]memoryEntry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

// Add inserts or replaces points by ID.
func (s *MemoryStore) Add(_ context.Context, points []Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range points {
		if _, ok := s.entries[p.ID]; !ok {
			s.order = append(s.order, p.ID)
		}
		vec := make([]float32, len(p.Vec))
		copy(vec, p.Vec)
		s.entries[p.ID] = memoryEntry{vec: vec, payload: payloadFor(p)}
	}
	return nil
}

// Query scores every matching point and returns the topK closest.
// Equal distances keep insertion order.
func (s *MemoryStore) Query(_ context.Context, vec []float32, topK int, filter map[string]any) ([]Hit, error) {
	if topK <= 0 {
		return []Hit{}, nil
	}

	want := make(map[string]any, len(filter))
	for k, v := range filter {
		nv, err := normalizeFilterValue(k, v)
		if err != nil {
			return nil, err
		}
		want[k] = nv
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.order))
	scores := make([]float64, 0, len(s.order))
	for _, id := range s.order {
		e := s.entries[id]
		if !matches(e.payload, want) {
			continue
		}
		ids = append(ids, id)
		scores = append(scores, similarity.Cosine(vec, e.vec))
	}

	ranked := similarity.Rank(scores)
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	hits := make([]Hit, 0, len(ranked))
	for _, i := range ranked {
		hits = append(hits, hitFromPayload(ids[i], 1-scores[i], s.entries[ids[i]].payload))
	}
	return hits, nil
}

// DeleteByDocument removes every point of documentID.
func (s *MemoryStore) DeleteByDocument(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.order[:0]
	for _, id := range s.order {
		if s.entries[id].payload[KeyDocumentID] == documentID {
			delete(s.entries, id)
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
	return nil
}

// CountByDocument returns the number of points stored for documentID.
func (s *MemoryStore) CountByDocument(_ context.Context, documentID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, e := range s.entries {
		if e.payload[KeyDocumentID] == documentID {
			n++
		}
	}
	return n, nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Len returns the number of stored points.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func matches(payload, want map[string]any) bool {
	for k, v := range want {
		got, ok := payload[k]
		if !ok {
			return false
		}
		if n, isInt := got.(int); isInt {
			got = int64(n)
		}
		if got != v {
			return false
		}
	}
	return true
}
