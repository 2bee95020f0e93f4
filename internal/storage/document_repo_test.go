package storage

import (
	"context"
	"errors"
	"testing"
)

func TestDocumentRepo_UpsertAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentRepo(newTestDB(t))

	doc := insertTestDocument(t, repo, "doc1")

	got, err := repo.GetByID(ctx, "doc1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Path != doc.Path || got.Strategy != "fixed" || got.ContentHash != "hash-doc1" {
		t.Errorf("GetByID() = %+v", got)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("timestamps should be set")
	}

	// Update keeps created_at and changes the rest.
	update := &Document{
		ID:          "doc1",
		Path:        doc.Path,
		Format:      "txt",
		Strategy:    "dynamic",
		ContentHash: "hash-2",
		ChunkCount:  4,
	}
	if err := repo.Upsert(ctx, update); err != nil {
		t.Fatalf("Upsert() update error = %v", err)
	}
	got, err = repo.GetByID(ctx, "doc1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Strategy != "dynamic" || got.ContentHash != "hash-2" || got.ChunkCount != 4 {
		t.Errorf("GetByID() after update = %+v", got)
	}
	if !got.CreatedAt.Equal(doc.CreatedAt) {
		t.Errorf("CreatedAt changed from %v to %v", doc.CreatedAt, got.CreatedAt)
	}
}

func TestDocumentRepo_GetByID_NotFound(t *testing.T) {
	repo := NewDocumentRepo(newTestDB(t))

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestDocumentRepo_List(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentRepo(newTestDB(t))

	docs, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if docs == nil || len(docs) != 0 {
		t.Fatalf("List() on empty db = %v, want empty slice", docs)
	}

	insertTestDocument(t, repo, "b")
	insertTestDocument(t, repo, "a")

	docs, err = repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(docs) != 2 || docs[0].ID != "a" || docs[1].ID != "b" {
		t.Errorf("List() = %v, want [a b] ordered by path", docs)
	}
}

func TestDocumentRepo_DeleteCascadesChunks(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	docs := NewDocumentRepo(db)
	chunks := NewChunkRepo(db)

	insertTestDocument(t, docs, "doc1")
	if err := chunks.ReplaceForDocument(ctx, "doc1", []Chunk{{ChunkIndex: 0, Text: "a"}}); err != nil {
		t.Fatalf("ReplaceForDocument() error = %v", err)
	}

	if err := docs.Delete(ctx, "doc1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	left, err := chunks.ListByDocument(ctx, "doc1")
	if err != nil {
		t.Fatalf("ListByDocument() error = %v", err)
	}
	if len(left) != 0 {
		t.Errorf("chunks left after document delete: %d", len(left))
	}

	if err := docs.Delete(ctx, "doc1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestDocumentRepo_Ping(t *testing.T) {
	if err := NewDocumentRepo(newTestDB(t)).Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}
