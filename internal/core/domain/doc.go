// Package domain defines the core business entities for mbsearch.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SearchIntent: The user's declared search state
//   - SearchMode: The resolved plain, fuzzy or semantic mode
//   - SearchRequest / SearchResponse: The search service exchange
//   - SearchPage: A normalized page of results, facets and answers
//   - ExportJob: The observable state of a bulk export
//   - Settings: Connection, query and export configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
