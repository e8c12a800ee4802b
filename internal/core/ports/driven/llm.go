package driven

import (
	"context"
)

// AnswerGenerator drafts prose from a query and a formatted evidence block.
// It is treated as an opaque text-generation function.
type AnswerGenerator interface {
	// Generate returns the answer text for query given the context block
	Generate(ctx context.Context, query, contextText string) (string, error)

	// Model returns the model name being used
	Model() string

	// Close releases resources held by the generator
	Close() error
}
