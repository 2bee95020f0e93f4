package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

// newTestDB opens a migrated database under t.TempDir.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return db
}

func insertTestDocument(t *testing.T, repo *DocumentRepo, id string) *Document {
	t.Helper()

	doc := &Document{
		ID:          id,
		Path:        "/docs/" + id + ".txt",
		Format:      "txt",
		Strategy:    "fixed",
		ContentHash: "hash-" + id,
	}
	if err := repo.Upsert(context.Background(), doc); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	return doc
}
