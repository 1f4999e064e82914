package httpapi

import (
	"github.com/custodia-labs/mbsearch/internal/core/domain"
	"github.com/custodia-labs/mbsearch/internal/core/ports/driving"
)

// ArtifactStore returns delivered export files by job ID.
type ArtifactStore interface {
	Get(jobID string) (domain.ExportArtifact, bool)
}

// Ports aggregates the driving ports served over HTTP.
type Ports struct {
	// Search runs searches and connection checks.
	Search driving.SearchService

	// Items looks up single items. Optional.
	Items driving.ItemService

	// Export runs background exports.
	Export driving.ExportService

	// Downloads serves the files exports deliver.
	Downloads ArtifactStore
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Export == nil {
		return ErrMissingExportService
	}
	if p.Downloads == nil {
		return ErrMissingDownloads
	}
	return nil
}
