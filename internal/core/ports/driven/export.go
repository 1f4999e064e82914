package driven

import (
	"context"
	"io"

	"github.com/custodia-labs/mbsearch/internal/core/domain"
)

// ExportEncoder serializes exported items into one file format.
type ExportEncoder interface {
	// Format returns the format this encoder produces.
	Format() domain.ExportFormat

	// ContentType returns the MIME type of the encoded output.
	ContentType() string

	// Encode writes items to w.
	Encode(w io.Writer, items []domain.ScheduleItem) error
}

// ExportSink delivers an encoded export to its destination.
type ExportSink interface {
	// Deliver stores the artifact and returns where it went
	// (a file path, a download URL, ...).
	Deliver(ctx context.Context, artifact domain.ExportArtifact) (string, error)
}

// ExportLedger persists the history of finished exports.
type ExportLedger interface {
	// Record stores a finished export.
	Record(ctx context.Context, record domain.ExportRecord) error

	// List returns the most recent records first, at most limit (0 = all).
	List(ctx context.Context, limit int) ([]domain.ExportRecord, error)
}

// ProgressNotifier receives export progress events.
// Implementations must not block.
type ProgressNotifier interface {
	Notify(progress domain.ExportProgress)
}

// ProgressFunc adapts a function to ProgressNotifier.
type ProgressFunc func(domain.ExportProgress)

// Notify calls f.
func (f ProgressFunc) Notify(progress domain.ExportProgress) {
	f(progress)
}
