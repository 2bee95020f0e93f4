package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hybridrag/internal/chunking"
	"hybridrag/internal/config"
	"hybridrag/internal/handlers"
	"hybridrag/internal/http"
	"hybridrag/internal/indexer"
	"hybridrag/internal/llm"
	"hybridrag/internal/metrics"
	"hybridrag/internal/rag"
	"hybridrag/internal/service"
	"hybridrag/internal/storage"
	"hybridrag/internal/vectorstore"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API ingests documents and retrieves the chunks most relevant to a query
// using vector search, entity graph expansion and multi-level summaries.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: Hybrid RAG Retrieval API
//   version: 1.0.0
// schemes:
//   - http
// consumes:
//   - application/json
// produces:
//   - application/json

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collector := metrics.NewCollector(cfg.MetricsNamespace)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	documentRepo := storage.NewDocumentRepo(db)
	chunkRepo := storage.NewChunkRepo(db)

	vectorStore, closeStore, err := newVectorStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize vector store: %v", err)
	}
	defer closeStore()

	// Validate embedding client vector size (fail-fast)
	embedder := newEmbedder(cfg)
	testEmbeddings, err := embedder.Embed(ctx, []string{"test"})
	if err != nil {
		log.Fatalf("Failed to validate embedding client: %v", err)
	}
	if len(testEmbeddings) == 0 || len(testEmbeddings[0]) != cfg.QdrantVectorSize {
		log.Fatalf("Embedding vector size mismatch: expected %d", cfg.QdrantVectorSize)
	}
	slog.Info("Embedding client validated", "provider", cfg.EmbeddingProvider, "vector_size", cfg.QdrantVectorSize)

	tokens := chunking.NewTiktokenCounter(cfg.TokenEncoding)
	if err := tokens.Err(); err != nil {
		slog.Warn("Token encoding unavailable, using estimate", "encoding", cfg.TokenEncoding, "error", err)
	}

	pipeline := indexer.NewPipeline(documentRepo, chunkRepo, embedder, vectorStore, indexer.Options{
		EmbeddingModel: cfg.EmbeddingModelName,
		TokenCounter:   tokens,
		Metrics:        collector,
	})

	engine := rag.NewEngine(embedder, vectorStore, chunkRepo, rag.Options{
		FetchMultiplier: cfg.Retrieval.FetchMultiplier,
		MinFetch:        cfg.Retrieval.MinFetch,
		MaxLevels:       cfg.Retrieval.MaxLevels,
	})
	slog.Info("Retrieval engine initialized",
		"fetch_multiplier", cfg.Retrieval.FetchMultiplier,
		"min_fetch", cfg.Retrieval.MinFetch,
		"max_levels", cfg.Retrieval.MaxLevels,
	)

	svc := service.NewRetrievalService(pipeline, engine, documentRepo, chunkRepo, service.Limits{
		DefaultTopK: cfg.Retrieval.DefaultTopK,
		MaxTopK:     cfg.Retrieval.MaxTopK,
	}, collector)

	router := http.NewRouter(&http.Deps{
		Service: svc,
		HealthChecks: map[string]handlers.Pinger{
			"database":     documentRepo,
			"vector_store": vectorStore,
		},
		Metrics: collector,
	})

	// Index the configured root in the background once the router is ready
	if cfg.IngestRoot != "" {
		go func() {
			slog.Info("Starting background indexing", "root", cfg.IngestRoot)
			res, err := pipeline.IngestDir(ctx, cfg.IngestRoot)
			if err != nil {
				slog.Error("Background indexing stopped", "error", err)
				return
			}
			slog.Info("Background indexing completed", "indexed", res.Indexed, "unchanged", res.Unchanged, "errors", res.Failed)
		}()
	}

	addr := ":" + cfg.APIPort
	server := &nethttp.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Graceful shutdown failed", "error", err)
		}
	}()

	slog.Info("Starting API server", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		log.Fatalf("API server failed to start: %v", err)
	}
	slog.Info("API server stopped")
}

// newEmbedder returns the embedder selected by EMBEDDING_PROVIDER.
func newEmbedder(cfg *config.Config) llm.Embedder {
	switch cfg.EmbeddingProvider {
	case config.ProviderOpenAI:
		return llm.NewOpenAIEmbedder(cfg.EmbeddingAPIKey, cfg.EmbeddingBaseURL, cfg.EmbeddingModelName, cfg.QdrantVectorSize)
	case config.ProviderHash:
		return llm.NewHashEmbedder(cfg.QdrantVectorSize)
	default:
		return llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize)
	}
}

// newVectorStore returns the store selected by VECTOR_STORE and a close func.
func newVectorStore(ctx context.Context, cfg *config.Config) (vectorstore.VectorStore, func(), error) {
	if cfg.VectorStore == config.StoreMemory {
		slog.Warn("Using in-memory vector store; vectors are lost on restart")
		return vectorstore.NewMemoryStore(), func() {}, nil
	}

	store, err := vectorstore.NewQdrantStore(cfg.QdrantURL, cfg.QdrantCollection)
	if err != nil {
		return nil, nil, err
	}
	// Ensure collection exists with correct vector size
	if err := store.EnsureCollection(ctx, cfg.QdrantVectorSize); err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.QdrantVectorSize)
	return store, func() { _ = store.Close() }, nil
}
