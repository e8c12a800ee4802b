package driven

import (
	"github.com/custodia-labs/checkprioritizer/internal/core/domain"
)

// Normaliser cleans raw record text before chunking and embedding.
type Normaliser interface {
	// Normalise transforms raw content into normalized text.
	// The mimeType helps determine the appropriate processing.
	Normalise(content string, mimeType string) string

	// SupportedTypes returns MIME types this normaliser handles.
	// Can include wildcards like "text/*" or specific types like "text/tab-separated-values".
	SupportedTypes() []string

	// Priority returns the normaliser priority (higher = more specific).
	// Priority ranges:
	//   50-100: Format-specific (claim/social-media text)
	//   10-49:  Generic (basic text processing)
	//   1-9:    Fallback (raw text passthrough)
	Priority() int
}

// NormaliserRegistry manages content normalisers.
// When multiple normalisers match a MIME type, the highest priority one is used.
type NormaliserRegistry interface {
	// Get retrieves the best-matching normaliser for a MIME type.
	// Returns nil if no normaliser is registered for the type.
	Get(mimeType string) Normaliser

	// GetAll retrieves all normalisers that match a MIME type, sorted by priority (highest first).
	GetAll(mimeType string) []Normaliser

	// Register registers a normaliser.
	Register(normaliser Normaliser)

	// List returns all registered MIME types.
	List() []string
}

// Document is one unit of text handed to the chunking pipeline.
// Chunks produced from it inherit the record's provenance.
type Document struct {
	Text   string
	Record *domain.Record
}

// PostProcessor applies one stage of the chunking pipeline.
type PostProcessor interface {
	// Process transforms the chunks of a single document.
	// The first processor (Chunker) receives one chunk holding the full text.
	Process(chunks []domain.Chunk) []domain.Chunk

	// Name returns the processor name for logging/debugging.
	Name() string

	// Order returns the processor order in the pipeline (lower = earlier).
	// Chunker should be 0, subsequent processors increment from there.
	Order() int
}

// Splitter turns documents into chunks. Chunks never cross a document boundary.
type Splitter interface {
	// Split applies all processors in order to every document.
	// Empty documents yield no chunks.
	Split(documents []Document) []domain.Chunk

	// Add adds a processor to the pipeline.
	// Processors are sorted by Order() before processing.
	Add(processor PostProcessor)

	// List returns processor names in order.
	List() []string
}
