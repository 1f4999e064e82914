// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/mbsearch/internal/core/domain"
)

// SearchScheduled is sent when the debounce timer for a search fires.
// It is ignored unless Seq is still the latest scheduled search.
type SearchScheduled struct {
	Seq uint64
}

// SearchCompleted carries a page of results back to the model.
type SearchCompleted struct {
	// Generation identifies the request. Stale generations are dropped.
	Generation uint64
	Intent     domain.SearchIntent
	Page       *domain.SearchPage
	Err        error
}

// ItemRequested asks the app to open the detail view for an item.
// Item, when set, is shown until the full record has loaded.
type ItemRequested struct {
	ItemNum string
	Item    *domain.ScheduleItem
}

// ItemLoaded carries a looked-up item to the detail view.
type ItemLoaded struct {
	Item *domain.ScheduleItem
	Err  error
}

// ExportStarted is sent when a background export has been accepted.
type ExportStarted struct {
	Job *domain.ExportJob
	Err error
}

// ExportProgressed carries an export progress notification.
type ExportProgressed struct {
	Progress domain.ExportProgress
}

// HistoryLoaded carries the export history.
type HistoryLoaded struct {
	Records []domain.ExportRecord
	Err     error
}

// SettingsLoaded carries the effective settings.
type SettingsLoaded struct {
	Settings *domain.Settings
	Keys     []string
	Values   map[string]string
	// Invalid is the validation error of the loaded settings, if any.
	Invalid error
	Err     error
}

// SettingsSaved is sent after a setting was written.
type SettingsSaved struct {
	Key string
	Err error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewSearch is the search input and results view.
	ViewSearch
	// ViewHelp is the help/keybindings view.
	ViewHelp
	// ViewItem shows the details of one schedule item.
	ViewItem
	// ViewHistory lists finished exports.
	ViewHistory
	// ViewSettings is the settings configuration view.
	ViewSettings
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewSearch:
		return "search"
	case ViewHelp:
		return "help"
	case ViewItem:
		return "item"
	case ViewHistory:
		return "history"
	case ViewSettings:
		return "settings"
	default:
		return "unknown"
	}
}

// ErrorOccurred is sent when an error occurs.
type ErrorOccurred struct {
	Err error
}

// Quit is sent to exit the application.
type Quit struct{}
