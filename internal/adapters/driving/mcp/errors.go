// Package mcp provides an MCP (Model Context Protocol) server adapter for mbsearch.
// It lets AI assistants search the Medicare Benefits Schedule, look up items
// and export result sets.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
