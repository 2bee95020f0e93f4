package indexer

import (
	"hybridrag/internal/chunking"
	"hybridrag/internal/extract"
	"hybridrag/internal/storage"
)

// Ingest stage names, in execution order.
const (
	StageExtract       = "extract"
	StageIdentify      = "identify"
	StageAnalyze       = "analyze"
	StageChunk         = "chunk"
	StageEmbed         = "embed"
	StageStoreVectors  = "store_vectors"
	StageStoreMetadata = "store_metadata"
)

// State is the record passed from one ingest stage to the next. A stage
// receives a copy and returns a new State; it never mutates slices it was given.
type State struct {
	Path        string
	Document    extract.Document
	DocumentID  string
	ContentHash string
	// Previous is the stored document row, nil on first ingest.
	Previous *storage.Document
	// Unchanged stops the run after identify when the content hash matches Previous.
	Unchanged bool
	Plan      chunking.Plan
	Chunks    []chunking.Chunk
	Vectors   [][]float32
	// Completed lists the stages that have run.
	Completed []string
}

func (s State) withStage(name string) State {
	completed := make([]string, len(s.Completed), len(s.Completed)+1)
	copy(completed, s.Completed)
	s.Completed = append(completed, name)
	return s
}

// Result summarizes one ingest run.
type Result struct {
	DocumentID string            `json:"document_id"`
	Path       string            `json:"path"`
	Format     string            `json:"format"`
	Strategy   chunking.Strategy `json:"strategy"`
	Sections   int               `json:"sections"`
	Chunks     int               `json:"chunks"`
	Unchanged  bool              `json:"unchanged"`
	TokenStats ChunkTokenStats   `json:"token_stats"`
	Stages     []string          `json:"stages"`
}

// FileError records a failed file during directory ingest.
type FileError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// DirResult summarizes a directory ingest.
type DirResult struct {
	Files     int         `json:"files"`
	Indexed   int         `json:"indexed"`
	Unchanged int         `json:"unchanged"`
	Failed    int         `json:"failed"`
	Errors    []FileError `json:"errors,omitempty"`
}
