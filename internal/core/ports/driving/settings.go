package driving

import "github.com/custodia-labs/mbsearch/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get returns the effective settings: stored values over defaults,
	// with environment overrides applied.
	Get() (*domain.Settings, error)

	// Set validates and persists a single setting by key.
	Set(key, value string) error

	// Keys returns the recognised setting keys.
	Keys() []string

	// Value returns the effective value of one key formatted for display.
	Value(key string) (string, error)

	// Validate checks the effective settings.
	Validate() error
}
