package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/mbsearch/internal/core/domain"
	"github.com/custodia-labs/mbsearch/internal/core/ports/driven"
)

// Ensure ExportLedger implements the interface.
var _ driven.ExportLedger = (*ExportLedger)(nil)

// ExportLedger is an in-memory implementation of driven.ExportLedger.
type ExportLedger struct {
	mu      sync.RWMutex
	records map[string]domain.ExportRecord
}

// NewExportLedger creates a new in-memory export ledger.
func NewExportLedger() *ExportLedger {
	return &ExportLedger{
		records: make(map[string]domain.ExportRecord),
	}
}

// Record stores or replaces a finished export.
func (l *ExportLedger) Record(_ context.Context, r domain.ExportRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	r.Intent.Facets = r.Intent.Facets.Clone()
	l.records[r.ID] = r
	return nil
}

// List returns up to limit exports, most recent first.
// A non-positive limit returns all.
func (l *ExportLedger) List(_ context.Context, limit int) ([]domain.ExportRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]domain.ExportRecord, 0, len(l.records))
	for _, r := range l.records {
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].FinishedAt.Equal(result[j].FinishedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].FinishedAt.After(result[j].FinishedAt)
	})

	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}
