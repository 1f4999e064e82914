// Package tui provides an interactive terminal user interface for mbsearch.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/mbsearch/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search runs queries against the search service.
	Search driving.SearchService

	// Session discards responses superseded by a newer search.
	Session driving.SearchSession

	// Items looks up full schedule items. Optional: without it the
	// detail view shows the fields returned with the result.
	Items driving.ItemService

	// Export exports result sets in the background. Optional.
	Export driving.ExportService

	// Settings manages application settings. Optional.
	Settings driving.SettingsService
}

// NewPorts creates a new Ports aggregate with the required services.
func NewPorts(search driving.SearchService, session driving.SearchSession) *Ports {
	return &Ports{
		Search:  search,
		Session: session,
	}
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Session == nil {
		return ErrMissingSearchSession
	}
	return nil
}
