package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_ingester.go -package=mocks hybridrag/internal/service Ingester
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_retrieval_service.go -package=mocks hybridrag/internal/service RetrievalService

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hybridrag/internal/contextutil"
	"hybridrag/internal/indexer"
	"hybridrag/internal/metrics"
	"hybridrag/internal/rag"
	"hybridrag/internal/storage"
)

// Default query limits used when Limits leaves them unset.
const (
	DefaultTopK    = 5
	DefaultMaxTopK = 50
)

// Ingester is the ingest side the service depends on. *indexer.Pipeline implements it.
type Ingester interface {
	Ingest(ctx context.Context, path string) (indexer.Result, error)
	IngestDir(ctx context.Context, root string) (indexer.DirResult, error)
	Delete(ctx context.Context, documentID string) error
	Stats(ctx context.Context) (*indexer.CoverageStats, error)
}

// Limits bounds the top_k a caller may ask for.
type Limits struct {
	// DefaultTopK is used when a request leaves top_k unset.
	DefaultTopK int
	// MaxTopK is the largest accepted top_k.
	MaxTopK int
}

// QueryRequest is a retrieval query as callers send it. A nil TopK selects
// Limits.DefaultTopK; an explicit zero returns no chunks.
type QueryRequest struct {
	Query        string
	TopK         *int
	UseGraph     bool
	UseHierarchy bool
	Filter       map[string]any
}

// DocumentDetail is a stored document with its chunks.
type DocumentDetail struct {
	Document *storage.Document `json:"document"`
	Chunks   []storage.Chunk   `json:"chunks"`
}

// RetrievalService validates requests and coordinates ingest and retrieval.
// Every returned error is classified with Classify.
type RetrievalService interface {
	// IngestDocument indexes a single file.
	IngestDocument(ctx context.Context, path string) (indexer.Result, error)
	// IngestDirectory indexes every supported file under root.
	IngestDirectory(ctx context.Context, root string) (indexer.DirResult, error)
	// ListDocuments returns every stored document.
	ListDocuments(ctx context.Context) ([]*storage.Document, error)
	// GetDocument returns a document and its chunks.
	GetDocument(ctx context.Context, id string) (*DocumentDetail, error)
	// DeleteDocument removes a document from both stores.
	DeleteDocument(ctx context.Context, id string) error
	// Query retrieves the chunks most relevant to a query.
	Query(ctx context.Context, req QueryRequest) (rag.QueryResponse, error)
	// Stats reports index coverage.
	Stats(ctx context.Context) (*indexer.CoverageStats, error)
}

type retrievalService struct {
	ingester  Ingester
	engine    rag.Engine
	documents storage.DocumentStore
	chunks    storage.ChunkStore
	limits    Limits
	metrics   *metrics.Collector
}

// NewRetrievalService creates a new RetrievalService. collector may be nil.
func NewRetrievalService(
	ingester Ingester,
	engine rag.Engine,
	documents storage.DocumentStore,
	chunks storage.ChunkStore,
	limits Limits,
	collector *metrics.Collector,
) RetrievalService {
	if limits.DefaultTopK <= 0 {
		limits.DefaultTopK = DefaultTopK
	}
	if limits.MaxTopK <= 0 {
		limits.MaxTopK = DefaultMaxTopK
	}
	limits.DefaultTopK = min(limits.DefaultTopK, limits.MaxTopK)

	return &retrievalService{
		ingester:  ingester,
		engine:    engine,
		documents: documents,
		chunks:    chunks,
		limits:    limits,
		metrics:   collector,
	}
}

func (s *retrievalService) IngestDocument(ctx context.Context, path string) (indexer.Result, error) {
	if strings.TrimSpace(path) == "" {
		return indexer.Result{}, &ValidationError{Field: "path", Message: "cannot be empty"}
	}

	res, err := s.ingester.Ingest(ctx, path)
	if err != nil {
		return indexer.Result{}, Classify(WrapError(err, "failed to ingest document"))
	}
	return res, nil
}

func (s *retrievalService) IngestDirectory(ctx context.Context, root string) (indexer.DirResult, error) {
	if strings.TrimSpace(root) == "" {
		return indexer.DirResult{}, &ValidationError{Field: "root", Message: "cannot be empty"}
	}

	res, err := s.ingester.IngestDir(ctx, root)
	if err != nil {
		return res, Classify(WrapError(err, "failed to ingest directory"))
	}
	return res, nil
}

func (s *retrievalService) ListDocuments(ctx context.Context) ([]*storage.Document, error) {
	docs, err := s.documents.List(ctx)
	if err != nil {
		return nil, Classify(WrapError(err, "failed to list documents"))
	}
	return docs, nil
}

func (s *retrievalService) GetDocument(ctx context.Context, id string) (*DocumentDetail, error) {
	if strings.TrimSpace(id) == "" {
		return nil, &ValidationError{Field: "id", Message: "cannot be empty"}
	}

	doc, err := s.documents.GetByID(ctx, id)
	if err != nil {
		return nil, Classify(WrapError(err, "failed to get document"))
	}
	chunks, err := s.chunks.ListByDocument(ctx, id)
	if err != nil {
		return nil, Classify(WrapError(err, "failed to list chunks"))
	}
	return &DocumentDetail{Document: doc, Chunks: chunks}, nil
}

func (s *retrievalService) DeleteDocument(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return &ValidationError{Field: "id", Message: "cannot be empty"}
	}

	if err := s.ingester.Delete(ctx, id); err != nil {
		return Classify(WrapError(err, "failed to delete document"))
	}
	return nil
}

func (s *retrievalService) Query(ctx context.Context, req QueryRequest) (rag.QueryResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)
	started := time.Now()

	q := rag.QueryRequest{
		Query:        req.Query,
		TopK:         s.limits.DefaultTopK,
		UseGraph:     req.UseGraph,
		UseHierarchy: req.UseHierarchy,
		Filter:       req.Filter,
	}
	if req.TopK != nil {
		q.TopK = *req.TopK
	}
	mode := queryMode(q)

	if strings.TrimSpace(q.Query) == "" {
		s.metrics.RecordQuery(mode, "invalid", 0, time.Since(started))
		return rag.QueryResponse{}, &ValidationError{Field: "query", Message: "cannot be empty"}
	}
	if q.TopK < 0 {
		s.metrics.RecordQuery(mode, "invalid", 0, time.Since(started))
		return rag.QueryResponse{}, &ValidationError{Field: "top_k", Message: "must not be negative"}
	}
	if q.TopK > s.limits.MaxTopK {
		s.metrics.RecordQuery(mode, "invalid", 0, time.Since(started))
		return rag.QueryResponse{}, &ValidationError{
			Field:   "top_k",
			Message: fmt.Sprintf("must be at most %d", s.limits.MaxTopK),
		}
	}

	resp, err := s.engine.Query(ctx, q)
	if err != nil {
		s.metrics.RecordQuery(mode, "error", 0, time.Since(started))
		logger.ErrorContext(ctx, "query failed", "mode", mode, "error", err)
		return rag.QueryResponse{}, Classify(WrapError(err, "failed to run query"))
	}

	s.metrics.RecordQuery(mode, "ok", len(resp.Chunks), time.Since(started))
	return resp, nil
}

func (s *retrievalService) Stats(ctx context.Context) (*indexer.CoverageStats, error) {
	stats, err := s.ingester.Stats(ctx)
	if err != nil {
		return nil, Classify(WrapError(err, "failed to compute stats"))
	}
	return stats, nil
}

// queryMode labels the retrieval paths a request enables, e.g. "vector+graph".
func queryMode(req rag.QueryRequest) string {
	mode := string(rag.SourceVector)
	if req.UseGraph {
		mode += "+" + string(rag.SourceGraph)
	}
	if req.UseHierarchy {
		mode += "+" + string(rag.SourceHierarchy)
	}
	return mode
}
