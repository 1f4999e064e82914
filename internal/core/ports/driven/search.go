package driven

import (
	"context"

	"github.com/custodia-labs/mbsearch/internal/core/domain"
)

// SearchBackend executes requests against the search service.
// Backed by the Azure AI Search REST API.
type SearchBackend interface {
	// Search sends one request and returns the decoded response.
	// Non-success statuses return *domain.BackendError; network and
	// decoding failures return *domain.TransportError. No retries.
	Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResponse, error)
}
