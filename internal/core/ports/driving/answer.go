package driving

import (
	"context"

	"github.com/custodia-labs/checkprioritizer/internal/core/domain"
)

// AnswerService drafts a cited answer from retrieved evidence
type AnswerService interface {
	// Ask retrieves k sources for the query and synthesizes an answer from them
	Ask(ctx context.Context, query string, k int) (*domain.Answer, error)
}
