package mcp

import (
	"github.com/custodia-labs/mbsearch/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search provides search capabilities.
	Search driving.SearchService

	// Items looks up single schedule items.
	Items driving.ItemService

	// Export writes result sets to files.
	Export driving.ExportService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	// Items and Export are optional; their tools are only registered when set.
	return nil
}
