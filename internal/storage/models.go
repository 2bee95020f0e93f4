package storage

import "time"

// Document is an ingested source file.
type Document struct {
	ID          string    `json:"id"`           // hex prefix of sha256(path)
	Path        string    `json:"path"`         // Path the document was ingested from
	Format      string    `json:"format"`       // File extension without the dot
	Strategy    string    `json:"strategy"`     // Chunking strategy used
	ContentHash string    `json:"content_hash"` // SHA256 hex string of the extracted text
	ChunkCount  int       `json:"chunk_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Chunk is the stored metadata and text of one chunk.
type Chunk struct {
	DocumentID string         `json:"document_id"`
	ChunkIndex int            `json:"chunk_index"` // Index within document (starts at 0)
	CharStart  int            `json:"char_start"`  // Rune offset into the extracted text
	CharEnd    int            `json:"char_end"`
	TokenCount int            `json:"token_count"`
	Text       string         `json:"text"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}
