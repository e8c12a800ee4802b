package driven

import (
	"context"

	"github.com/custodia-labs/checkprioritizer/internal/core/domain"
)

// RecordLoader reads one tabular source file into records.
// File-level failures (missing, unreadable) are returned as errors; malformed
// rows are skipped and reported through the returned SourceErrors.
type RecordLoader interface {
	Load(ctx context.Context, path string) (*domain.Table, []*domain.SourceError, error)
}
