package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks hybridrag/internal/vectorstore VectorStore

import (
	"context"
	"errors"
)

// Payload keys every stored point carries.
const (
	KeyText       = "text"
	KeyDocumentID = "document_id"
	KeyChunkIndex = "chunk_index"
)

var (
	// ErrInvalidFilter is returned when a query filter holds a value type the store cannot match on.
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrUnavailable is returned when the backing store cannot serve a request.
	ErrUnavailable = errors.New("vector store unavailable")
)

// Point is one chunk vector with its payload.
type Point struct {
	ID         string
	Vec        []float32
	Text       string
	DocumentID string
	ChunkIndex int
	Meta       map[string]any
}

// Hit is a query result. Lower Distance means closer.
type Hit struct {
	ID         string
	Text       string
	DocumentID string
	ChunkIndex int
	Distance   float64
	Meta       map[string]any
}

// VectorStore stores chunk vectors and answers similarity queries.
type VectorStore interface {
	// Add inserts or replaces points.
	Add(ctx context.Context, points []Point) error

	// Query returns up to topK nearest points, closest first. Filter keys are
	// payload fields that must equal the given value.
	Query(ctx context.Context, vec []float32, topK int, filter map[string]any) ([]Hit, error)

	// DeleteByDocument removes every point of a document.
	DeleteByDocument(ctx context.Context, documentID string) error

	// CountByDocument returns how many points a document has.
	CountByDocument(ctx context.Context, documentID string) (int, error)

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
}
