// Package httpapi provides the HTTP API for mbsearch: search, item lookup,
// background exports with downloads, and a websocket stream of export
// progress.
package httpapi

import "errors"

var (
	// ErrMissingSearchService is returned when the search service is not provided.
	ErrMissingSearchService = errors.New("httpapi: search service is required")

	// ErrMissingExportService is returned when the export service is not provided.
	ErrMissingExportService = errors.New("httpapi: export service is required")

	// ErrMissingDownloads is returned when exports are enabled without an
	// artifact store to serve them from.
	ErrMissingDownloads = errors.New("httpapi: download store is required")
)
