package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"hybridrag/internal/extract"
	"hybridrag/internal/llm"
	"hybridrag/internal/rag"
	"hybridrag/internal/storage"
	"hybridrag/internal/vectorstore"
)

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{
			name: "field and message",
			err: &ValidationError{
				Field:   "query",
				Message: "cannot be empty",
			},
			want: "validation error on field query: cannot be empty",
		},
		{
			name: "empty field",
			err: &ValidationError{
				Field:   "",
				Message: "invalid",
			},
			want: "validation error on field : invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("ValidationError.Error() = %v, want %v", got, tt.want)
			}
			if !errors.Is(tt.err, ErrInvalidInput) {
				t.Error("ValidationError should match ErrInvalidInput")
			}
		})
	}
}

func TestWrapError(t *testing.T) {
	if WrapError(nil, "ctx") != nil {
		t.Error("WrapError(nil) should return nil")
	}

	base := errors.New("base")
	got := WrapError(base, "failed to do thing")
	if got.Error() != "failed to do thing: base" {
		t.Errorf("WrapError() = %q", got)
	}
	if !errors.Is(got, base) {
		t.Error("WrapError() should keep the original error in the chain")
	}
}

func TestClassify(t *testing.T) {
	plain := errors.New("disk on fire")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"missing file", fmt.Errorf("extract: %w", extract.ErrFileNotFound), ErrNotFound},
		{"missing record", storage.ErrNotFound, ErrNotFound},
		{"unsupported extension", extract.ErrUnsupportedFormat, ErrUnsupportedFormat},
		{"negative top_k", rag.ErrInvalidTopK, ErrInvalidInput},
		{"bad filter", vectorstore.ErrInvalidFilter, ErrInvalidInput},
		{"embedding backend", fmt.Errorf("embed: %w", llm.ErrEmbeddingService), ErrExternalService},
		{"embedding count", llm.ErrEmbeddingCount, ErrExternalService},
		{"vector store", vectorstore.ErrUnavailable, ErrExternalService},
		{"validation passes through", &ValidationError{Field: "f", Message: "m"}, ErrInvalidInput},
		{"cancellation passes through", context.Canceled, context.Canceled},
		{"unknown passes through", plain, plain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			if !errors.Is(got, tt.want) {
				t.Errorf("Classify() = %v, want it to match %v", got, tt.want)
			}
			if !errors.Is(got, tt.err) {
				t.Errorf("Classify() lost the original error %v", tt.err)
			}
		})
	}

	if Classify(nil) != nil {
		t.Error("Classify(nil) should return nil")
	}
}
