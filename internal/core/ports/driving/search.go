package driving

import (
	"context"

	"github.com/custodia-labs/mbsearch/internal/core/domain"
)

// SearchService provides search capabilities to external actors.
type SearchService interface {
	// Search runs the intent and returns one normalized page.
	Search(ctx context.Context, intent domain.SearchIntent) (*domain.SearchPage, error)

	// Ping checks the connection by counting all documents.
	Ping(ctx context.Context) (*domain.PingResult, error)
}

// ItemService looks up single schedule items.
type ItemService interface {
	// Get returns the item with the given item number, or domain.ErrNotFound.
	Get(ctx context.Context, itemNum string) (*domain.ScheduleItem, error)
}

// SearchSession tracks the latest interactive search so that stale
// responses can be discarded.
type SearchSession interface {
	// Begin cancels the previous request and returns a context and
	// generation for the new one.
	Begin(parent context.Context) (context.Context, uint64)

	// IsCurrent reports whether gen is the latest generation.
	IsCurrent(gen uint64) bool

	// Cancel cancels the in-flight request, if any.
	Cancel()
}
