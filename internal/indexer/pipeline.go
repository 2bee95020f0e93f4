package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"hybridrag/internal/chunking"
	"hybridrag/internal/contextutil"
	"hybridrag/internal/extract"
	"hybridrag/internal/llm"
	"hybridrag/internal/metrics"
	"hybridrag/internal/storage"
	"hybridrag/internal/vectorstore"
)

// Payload and metadata keys written next to each chunk.
const (
	metaStart    = "start"
	metaEnd      = "end"
	metaStrategy = "strategy"
	metaFormat   = "format"
	metaTitle    = "title"
)

// Options configures a Pipeline. Zero values select defaults.
type Options struct {
	// EmbeddingModel is recorded in the index version.
	EmbeddingModel string
	// Extractor reads documents; defaults to extract.FileExtractor.
	Extractor extract.Extractor
	// TokenCounter fills chunk token counts; defaults to chunking.EstimateCounter.
	TokenCounter chunking.TokenCounter
	// Metrics may be nil.
	Metrics *metrics.Collector
}

// Pipeline ingests documents into the vector store and the metadata store.
type Pipeline struct {
	documents   storage.DocumentStore
	chunks      storage.ChunkStore
	embedder    llm.Embedder
	vectorStore vectorstore.VectorStore
	extractor   extract.Extractor
	tokens      chunking.TokenCounter
	metrics     *metrics.Collector
	model       string
}

// NewPipeline creates a new ingest pipeline.
func NewPipeline(
	documents storage.DocumentStore,
	chunks storage.ChunkStore,
	embedder llm.Embedder,
	vectorStore vectorstore.VectorStore,
	opts Options,
) *Pipeline {
	p := &Pipeline{
		documents:   documents,
		chunks:      chunks,
		embedder:    embedder,
		vectorStore: vectorStore,
		extractor:   opts.Extractor,
		tokens:      opts.TokenCounter,
		metrics:     opts.Metrics,
		model:       opts.EmbeddingModel,
	}
	if p.extractor == nil {
		p.extractor = extract.FileExtractor{}
	}
	if p.tokens == nil {
		p.tokens = chunking.EstimateCounter{}
	}
	return p
}

type stage struct {
	name string
	run  func(ctx context.Context, s State) (State, error)
}

func (p *Pipeline) stages() []stage {
	return []stage{
		{StageExtract, p.extract},
		{StageIdentify, p.identify},
		{StageAnalyze, p.analyze},
		{StageChunk, p.chunk},
		{StageEmbed, p.embed},
		{StageStoreVectors, p.storeVectors},
		{StageStoreMetadata, p.storeMetadata},
	}
}

// DocumentID derives the stable document identifier from a path.
func DocumentID(path string) string {
	sum := sha256.Sum256([]byte(path))
	return hex.EncodeToString(sum[:])[:16]
}

// PointID derives the vector point ID of a chunk.
func PointID(documentID string, chunkIndex int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(documentID+":"+strconv.Itoa(chunkIndex))).String()
}

// Ingest runs every stage for one file. Nothing is written before embedding
// succeeds. An unchanged file stops after identify.
func (p *Pipeline) Ingest(ctx context.Context, path string) (Result, error) {
	logger := contextutil.LoggerFromContext(ctx)
	started := time.Now()

	state := State{Path: normalizePath(path)}
	for _, st := range p.stages() {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		next, err := st.run(ctx, state)
		if err != nil {
			logger.ErrorContext(ctx, "ingest stage failed", "stage", st.name, "path", state.Path, "error", err)
			p.metrics.RecordIngest(formatLabel(state.Path), "error", "", 0, time.Since(started))
			return Result{}, fmt.Errorf("%s: %w", st.name, err)
		}
		state = next.withStage(st.name)

		if state.Unchanged {
			logger.DebugContext(ctx, "skipping unchanged file", "path", state.Path, "hash", state.ContentHash)
			break
		}
	}

	result := p.result(state)
	status := "indexed"
	if result.Unchanged {
		status = "unchanged"
	}
	p.metrics.RecordIngest(formatLabel(state.Path), status, string(result.Strategy), len(state.Chunks), time.Since(started))

	logger.InfoContext(ctx, "ingested document",
		"path", state.Path,
		"document_id", result.DocumentID,
		"strategy", result.Strategy,
		"chunks", result.Chunks,
		"unchanged", result.Unchanged,
	)
	return result, nil
}

func (p *Pipeline) extract(_ context.Context, s State) (State, error) {
	doc, err := p.extractor.Extract(s.Path)
	if err != nil {
		return s, err
	}
	s.Document = doc
	return s, nil
}

func (p *Pipeline) identify(ctx context.Context, s State) (State, error) {
	s.DocumentID = DocumentID(s.Path)
	sum := sha256.Sum256([]byte(s.Document.RawText))
	s.ContentHash = hex.EncodeToString(sum[:])

	existing, err := p.documents.GetByID(ctx, s.DocumentID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return s, fmt.Errorf("failed to check existing document: %w", err)
	}
	if existing != nil {
		s.Previous = existing
		if existing.ContentHash == s.ContentHash {
			intact, err := p.storedIntact(ctx, existing)
			if err != nil {
				return s, err
			}
			if !intact {
				contextutil.LoggerFromContext(ctx).WarnContext(ctx, "stored index incomplete, re-ingesting", "path", s.Path, "document_id", s.DocumentID)
			}
			s.Unchanged = intact
		}
	}
	return s, nil
}

// storedIntact reports whether both stores hold every chunk recorded for doc.
func (p *Pipeline) storedIntact(ctx context.Context, doc *storage.Document) (bool, error) {
	rows, err := p.chunks.ListByDocument(ctx, doc.ID)
	if err != nil {
		return false, fmt.Errorf("failed to check stored chunks: %w", err)
	}
	if len(rows) != doc.ChunkCount {
		return false, nil
	}
	points, err := p.vectorStore.CountByDocument(ctx, doc.ID)
	if err != nil {
		return false, fmt.Errorf("failed to check stored vectors: %w", err)
	}
	return points == doc.ChunkCount, nil
}

func (p *Pipeline) analyze(_ context.Context, s State) (State, error) {
	s.Plan = chunking.Analyze(s.Document.RawText, s.Document.SectionTexts())
	return s, nil
}

func (p *Pipeline) chunk(ctx context.Context, s State) (State, error) {
	s.Chunks = s.Plan.Apply(s.Document.RawText, s.Document.SectionTexts())
	if len(s.Chunks) == 0 {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "no chunks generated", "path", s.Path)
	}
	return s, nil
}

func (p *Pipeline) embed(ctx context.Context, s State) (State, error) {
	if len(s.Chunks) == 0 {
		s.Vectors = [][]float32{}
		return s, nil
	}

	texts := make([]string, len(s.Chunks))
	for i, c := range s.Chunks {
		texts[i] = c.Text
	}

	vecs, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		return s, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(vecs) != len(s.Chunks) {
		return s, fmt.Errorf("%w: expected %d, got %d", llm.ErrEmbeddingCount, len(s.Chunks), len(vecs))
	}
	s.Vectors = vecs
	return s, nil
}

func (p *Pipeline) storeVectors(ctx context.Context, s State) (State, error) {
	if err := p.vectorStore.DeleteByDocument(ctx, s.DocumentID); err != nil {
		return s, fmt.Errorf("failed to delete old vectors: %w", err)
	}
	if len(s.Chunks) == 0 {
		return s, nil
	}

	points := make([]vectorstore.Point, len(s.Chunks))
	for i, c := range s.Chunks {
		points[i] = vectorstore.Point{
			ID:         PointID(s.DocumentID, c.Index),
			Vec:        s.Vectors[i],
			Text:       c.Text,
			DocumentID: s.DocumentID,
			ChunkIndex: c.Index,
			Meta: map[string]any{
				metaStart:    c.Start,
				metaEnd:      c.End,
				metaStrategy: string(s.Plan.Strategy),
				metaFormat:   s.Document.Format,
			},
		}
	}

	if err := p.vectorStore.Add(ctx, points); err != nil {
		return s, fmt.Errorf("failed to upsert vectors: %w", err)
	}
	return s, nil
}

// storeMetadata writes the document row without its content hash, replaces the
// chunk rows, and only then records the hash. A failure in between leaves a row
// that can never match, so the next ingest redoes the file.
func (p *Pipeline) storeMetadata(ctx context.Context, s State) (State, error) {
	doc := &storage.Document{
		ID:         s.DocumentID,
		Path:       s.Path,
		Format:     s.Document.Format,
		Strategy:   string(s.Plan.Strategy),
		ChunkCount: len(s.Chunks),
	}
	if s.Previous != nil {
		doc.CreatedAt = s.Previous.CreatedAt
	}
	if err := p.documents.Upsert(ctx, doc); err != nil {
		return s, fmt.Errorf("failed to upsert document: %w", err)
	}

	rows := make([]storage.Chunk, len(s.Chunks))
	for i, c := range s.Chunks {
		rows[i] = storage.Chunk{
			DocumentID: s.DocumentID,
			ChunkIndex: c.Index,
			CharStart:  c.Start,
			CharEnd:    c.End,
			TokenCount: p.tokens.CountTokens(c.Text),
			Text:       c.Text,
			Metadata: map[string]any{
				metaStrategy: string(s.Plan.Strategy),
				metaTitle:    s.Document.Title,
			},
		}
	}
	if err := p.chunks.ReplaceForDocument(ctx, s.DocumentID, rows); err != nil {
		return s, fmt.Errorf("failed to store chunks: %w", err)
	}

	doc.ContentHash = s.ContentHash
	if err := p.documents.Upsert(ctx, doc); err != nil {
		return s, fmt.Errorf("failed to record content hash: %w", err)
	}
	return s, nil
}

func (p *Pipeline) result(s State) Result {
	r := Result{
		DocumentID: s.DocumentID,
		Path:       s.Path,
		Format:     s.Document.Format,
		Sections:   len(s.Document.Sections),
		Unchanged:  s.Unchanged,
		Stages:     s.Completed,
	}
	if s.Unchanged && s.Previous != nil {
		r.Strategy = chunking.Strategy(s.Previous.Strategy)
		r.Chunks = s.Previous.ChunkCount
		return r
	}

	r.Strategy = s.Plan.Strategy
	r.Chunks = len(s.Chunks)
	counts := make([]int, len(s.Chunks))
	for i, c := range s.Chunks {
		counts[i] = p.tokens.CountTokens(c.Text)
	}
	r.TokenStats = computeTokenStats(counts)
	return r
}

// IngestDir ingests every supported file under root. Per-file errors are
// logged and counted; cancellation stops the run.
func (p *Pipeline) IngestDir(ctx context.Context, root string) (DirResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	files, err := extract.Scan(ctx, root)
	if err != nil {
		return DirResult{}, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	logger.InfoContext(ctx, "starting directory ingest", "root", root, "total_files", len(files))

	res := DirResult{Files: len(files)}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		r, err := p.Ingest(ctx, f.AbsPath)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return res, ctxErr
			}
			res.Failed++
			res.Errors = append(res.Errors, FileError{Path: f.RelPath, Error: err.Error()})
			logger.ErrorContext(ctx, "failed to ingest file", "rel_path", f.RelPath, "error", err)
			continue
		}
		if r.Unchanged {
			res.Unchanged++
		} else {
			res.Indexed++
		}
	}

	logger.InfoContext(ctx, "directory ingest completed",
		"total_files", res.Files,
		"indexed", res.Indexed,
		"unchanged", res.Unchanged,
		"errors", res.Failed,
	)
	return res, nil
}

// Delete removes a document from the vector store and the metadata store.
// Returns storage.ErrNotFound for an unknown id.
func (p *Pipeline) Delete(ctx context.Context, documentID string) error {
	if _, err := p.documents.GetByID(ctx, documentID); err != nil {
		return err
	}
	if err := p.vectorStore.DeleteByDocument(ctx, documentID); err != nil {
		return fmt.Errorf("failed to delete vectors: %w", err)
	}
	if err := p.documents.Delete(ctx, documentID); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "deleted document", "document_id", documentID)
	return nil
}

// normalizePath makes the path absolute so the same file always gets the same ID.
func normalizePath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

func formatLabel(path string) string {
	if format, err := extract.FormatOf(path); err == nil {
		return format
	}
	return "unknown"
}
