package service

import (
	"context"
	"errors"
	"fmt"

	"hybridrag/internal/extract"
	"hybridrag/internal/llm"
	"hybridrag/internal/rag"
	"hybridrag/internal/storage"
	"hybridrag/internal/vectorstore"
)

var (
	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrUnsupportedFormat is returned for documents no extractor can read.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrExternalService is returned when an external service call fails.
	ErrExternalService = errors.New("external service error")
)

// ValidationError represents a validation error with a field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Classify maps errors from lower layers onto the service taxonomy. The
// original error stays in the chain. Unknown errors are returned unchanged.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrNotFound),
		errors.Is(err, ErrUnsupportedFormat), errors.Is(err, ErrExternalService):
		return err
	case errors.Is(err, extract.ErrFileNotFound), errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, extract.ErrUnsupportedFormat):
		return fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	case errors.Is(err, rag.ErrInvalidTopK), errors.Is(err, vectorstore.ErrInvalidFilter):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, llm.ErrEmbeddingService), errors.Is(err, llm.ErrEmbeddingCount),
		errors.Is(err, vectorstore.ErrUnavailable):
		return fmt.Errorf("%w: %w", ErrExternalService, err)
	default:
		return err
	}
}
