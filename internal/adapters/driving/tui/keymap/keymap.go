// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Quit exits the application.
	Quit key.Binding

	// Help shows the help view.
	Help key.Binding

	// Back returns to the previous view.
	Back key.Binding

	// Search submits the query without waiting for the debounce.
	Search key.Binding

	// Up navigates up in a list.
	Up key.Binding

	// Down navigates down in a list.
	Down key.Binding

	// Select confirms a selection.
	Select key.Binding

	// EditQuery returns focus to the query input.
	EditQuery key.Binding

	// Facets switches focus between the results and the facet panel.
	Facets key.Binding

	// ToggleFacet selects or deselects the focused facet value.
	ToggleFacet key.Binding

	// ResetFacet clears the selection of the focused facet.
	ResetFacet key.Binding

	// ResetAll clears every facet selection.
	ResetAll key.Binding

	// Sort cycles the sort order.
	Sort key.Binding

	// Mode toggles between simple and semantic search.
	Mode key.Binding

	// Fuzzy cycles the fuzzy level.
	Fuzzy key.Binding

	// PrevPage and NextPage move between result pages.
	PrevPage key.Binding
	NextPage key.Binding

	// Export exports every result of the current search.
	Export key.Binding

	// ExportFormat cycles the export format.
	ExportFormat key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Search: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "search"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),
		EditQuery: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "edit query"),
		),
		Facets: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "facets"),
		),
		ToggleFacet: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "toggle"),
		),
		ResetFacet: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "reset facet"),
		),
		ResetAll: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "reset all"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort"),
		),
		Mode: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mode"),
		),
		Fuzzy: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "fuzzy"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("left", "h", "pgup"),
			key.WithHelp("←/h", "prev page"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("right", "l", "pgdown"),
			key.WithHelp("→/l", "next page"),
		),
		Export: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export"),
		),
		ExportFormat: key.NewBinding(
			key.WithKeys("E"),
			key.WithHelp("E", "format"),
		),
	}
}

// ShortHelp returns a short list of keybindings for the help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Back}
}

// ResultsHelp returns keybindings for the results view.
func (k *KeyMap) ResultsHelp() []key.Binding {
	return []key.Binding{k.EditQuery, k.Facets, k.Sort, k.Mode, k.Fuzzy, k.Export, k.Back}
}

// FacetsHelp returns keybindings for the facet panel.
func (k *KeyMap) FacetsHelp() []key.Binding {
	return []key.Binding{k.ToggleFacet, k.ResetFacet, k.ResetAll, k.Facets}
}

// FullHelp returns the full list of keybindings for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.PrevPage, k.NextPage},
		{k.Search, k.EditQuery, k.Back},
		{k.Facets, k.ToggleFacet, k.ResetFacet, k.ResetAll},
		{k.Sort, k.Mode, k.Fuzzy},
		{k.Export, k.ExportFormat},
		{k.Help, k.Quit},
	}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
