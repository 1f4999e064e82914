package services

import (
	"strings"

	"github.com/custodia-labs/mbsearch/internal/core/domain"
)

// scoreOrder ranks by relevance score.
const scoreOrder = "search.score() desc"

// SortResolver turns a sort option into an orderby clause.
type SortResolver struct {
	// ListingOrder is used for relevance sort without query text,
	// where every score is equal.
	ListingOrder string
}

// Resolve returns the orderby clause for option given the query text.
func (r SortResolver) Resolve(option domain.SortOption, query string) string {
	if option != domain.SortRelevance && option != "" {
		return string(option)
	}
	if strings.TrimSpace(query) != "" {
		return scoreOrder
	}
	if r.ListingOrder == "" {
		return domain.DefaultListingSort
	}
	return r.ListingOrder
}
