package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chunk_store.go -package=mocks hybridrag/internal/storage ChunkStore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// ChunkStore defines the interface for chunk storage operations.
type ChunkStore interface {
	// ReplaceForDocument swaps the full chunk set of a document in one transaction.
	ReplaceForDocument(ctx context.Context, documentID string, chunks []Chunk) error
	// ListByDocument returns a document's chunks ordered by chunk_index.
	// Returns an empty slice if there are none (not an error).
	ListByDocument(ctx context.Context, documentID string) ([]Chunk, error)
	// DeleteByDocument removes all chunks of a document.
	DeleteByDocument(ctx context.Context, documentID string) error
}

// ChunkRepo provides methods for chunk operations.
// It implements the ChunkStore interface.
type ChunkRepo struct {
	db *sql.DB
}

// NewChunkRepo creates a new ChunkRepo.
func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

// ReplaceForDocument deletes the existing chunks of documentID and inserts chunks.
// The document row must exist.
func (r *ChunkRepo) ReplaceForDocument(ctx context.Context, documentID string, chunks []Chunk) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (document_id, chunk_index, char_start, char_end, token_count, text, metadata_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, c := range chunks {
		meta := c.Metadata
		if meta == nil {
			meta = map[string]any{}
		}
		metaJSON, mErr := json.Marshal(meta)
		if mErr != nil {
			err = fmt.Errorf("failed to marshal chunk %d metadata: %w", c.ChunkIndex, mErr)
			return err
		}
		if _, err = stmt.ExecContext(ctx, documentID, c.ChunkIndex, c.CharStart, c.CharEnd, c.TokenCount, c.Text, string(metaJSON)); err != nil {
			return fmt.Errorf("failed to insert chunk %d: %w", c.ChunkIndex, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit chunks: %w", err)
	}
	return nil
}

// ListByDocument returns all chunks of a document ordered by chunk_index.
func (r *ChunkRepo) ListByDocument(ctx context.Context, documentID string) ([]Chunk, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT document_id, chunk_index, char_start, char_end, token_count, text, metadata_json
		 FROM chunks WHERE document_id = ? ORDER BY chunk_index`,
		documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	chunks := []Chunk{}
	for rows.Next() {
		var c Chunk
		var metaJSON string
		if err := rows.Scan(&c.DocumentID, &c.ChunkIndex, &c.CharStart, &c.CharEnd, &c.TokenCount, &c.Text, &metaJSON); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		if metaJSON != "" {
			if err := json.Unmarshal([]byte(metaJSON), &c.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode chunk %d metadata: %w", c.ChunkIndex, err)
			}
		}
		chunks = append(chunks, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return chunks, nil
}

// DeleteByDocument deletes all chunks for a given document ID.
func (r *ChunkRepo) DeleteByDocument(ctx context.Context, documentID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID)
	if err != nil {
		return fmt.Errorf("failed to delete chunks by document: %w", err)
	}
	return nil
}
