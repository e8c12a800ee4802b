package domain

import (
	"errors"
	"fmt"
)

// Domain errors - used across all layers
var (
	// ErrInvalidInput indicates the input is invalid (e.g. non-positive k)
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotConfigured indicates a required model, credential or setting is missing
	ErrNotConfigured = errors.New("not configured")

	// ErrIndexUnavailable indicates the vector index is missing, corrupt or unreachable
	ErrIndexUnavailable = errors.New("index unavailable")

	// ErrEmbeddingMismatch indicates the embedder does not match the index's embedding space
	ErrEmbeddingMismatch = errors.New("embedding space mismatch")

	// ErrIngestInProgress indicates another process holds the ingestion lock
	ErrIngestInProgress = errors.New("ingestion already in progress")

	// ErrServiceUnavailable indicates the AI service could not be reached
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrUnauthorized indicates a missing or invalid API token
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTokenExpired indicates the API token has expired
	ErrTokenExpired = errors.New("token expired")
)

// SourceError describes a source file or row that was skipped during loading.
// These are logged and counted, never fatal to an ingestion run.
type SourceError struct {
	File   string
	Row    int // 0 when the whole file was skipped
	Reason string
}

func (e *SourceError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("%s row %d: %s", e.File, e.Row, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Reason)
}
