package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks hybridrag/internal/storage DocumentStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// DocumentStore defines the interface for document storage operations.
type DocumentStore interface {
	// Upsert inserts a document or updates the row with the same ID.
	// CreatedAt is kept from the first insert.
	Upsert(ctx context.Context, doc *Document) error
	// GetByID returns ErrNotFound if the document does not exist.
	GetByID(ctx context.Context, id string) (*Document, error)
	// List returns all documents ordered by path.
	List(ctx context.Context) ([]*Document, error)
	// Delete removes a document and its chunks. Returns ErrNotFound if absent.
	Delete(ctx context.Context, id string) error
	// Ping checks the database connection.
	Ping(ctx context.Context) error
}

// DocumentRepo implements DocumentStore on SQLite.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// Upsert inserts or updates a document row.
func (r *DocumentRepo) Upsert(ctx context.Context, doc *Document) error {
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO documents (id, path, format, strategy, content_hash, chunk_count, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			path = excluded.path,
			format = excluded.format,
			strategy = excluded.strategy,
			content_hash = excluded.content_hash,
			chunk_count = excluded.chunk_count,
			updated_at = excluded.updated_at`,
		doc.ID, doc.Path, doc.Format, doc.Strategy, doc.ContentHash, doc.ChunkCount, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}
	return nil
}

// GetByID gets a document by its ID. Returns ErrNotFound if not found.
func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*Document, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, path, format, strategy, content_hash, chunk_count, created_at, updated_at
		 FROM documents WHERE id = ?`,
		id,
	)

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}
	return doc, nil
}

// List returns all documents ordered by path.
// Returns an empty slice if there are none.
func (r *DocumentRepo) List(ctx context.Context) ([]*Document, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, path, format, strategy, content_hash, chunk_count, created_at, updated_at
		 FROM documents ORDER BY path`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	docs := []*Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return docs, nil
}

// Delete removes a document. Its chunks go with it through the foreign key cascade.
func (r *DocumentRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping checks the database connection.
func (r *DocumentRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(s rowScanner) (*Document, error) {
	var doc Document
	err := s.Scan(&doc.ID, &doc.Path, &doc.Format, &doc.Strategy, &doc.ContentHash, &doc.ChunkCount, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}
