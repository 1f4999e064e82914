package driving

import (
	"context"

	"github.com/custodia-labs/mbsearch/internal/core/domain"
)

// ExportService exports every result of an intent to a file.
type ExportService interface {
	// Export runs an export to completion and returns the finished job.
	// Returns domain.ErrExportInProgress if another export is running.
	Export(ctx context.Context, intent domain.SearchIntent, format domain.ExportFormat) (*domain.ExportJob, error)

	// Start begins an export in the background and returns its initial state.
	// The export outlives ctx cancellation.
	Start(ctx context.Context, intent domain.SearchIntent, format domain.ExportFormat) (*domain.ExportJob, error)

	// Current returns the state of the running or most recent export.
	Current() domain.ExportJob

	// Subscribe registers fn for progress events and returns a function
	// that removes it.
	Subscribe(fn func(domain.ExportProgress)) (cancel func())

	// History returns finished exports, most recent first.
	History(ctx context.Context, limit int) ([]domain.ExportRecord, error)
}
