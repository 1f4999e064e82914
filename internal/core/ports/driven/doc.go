// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - SearchBackend: Executes requests against the search service
//   - ConfigStore: Application configuration
//   - ExportEncoder: Serializes exported items into one file format
//   - ExportSink: Delivers an encoded export (directory or download)
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - ExportLedger: Export history. Without it, History returns nothing.
//   - ProgressNotifier: Export progress. Subscribers are optional.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
