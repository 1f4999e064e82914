package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/mbsearch/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/mbsearch/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/mbsearch/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/mbsearch/internal/adapters/driving/tui/views/history"
	"github.com/custodia-labs/mbsearch/internal/adapters/driving/tui/views/item"
	"github.com/custodia-labs/mbsearch/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/mbsearch/internal/adapters/driving/tui/views/search"
	"github.com/custodia-labs/mbsearch/internal/adapters/driving/tui/views/settings"
	"github.com/custodia-labs/mbsearch/internal/core/domain"
)

// progressBuffer is the number of export progress events held for the
// program loop. Events beyond it are dropped; the next one supersedes them.
const progressBuffer = 64

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	// keymap holds the key bindings shown in the help view.
	keymap *keymap.KeyMap

	// help renders the key binding reference.
	help help.Model

	menuView     *menu.View
	searchView   *search.View
	itemView     *item.View
	historyView  *history.View
	settingsView *settings.View

	// progress carries export events from the export service to the
	// program loop.
	progress    chan domain.ExportProgress
	unsubscribe func()

	// currentView tracks which view is active.
	currentView messages.ViewType

	// previousView is restored when the help view is closed.
	previousView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if ports == nil {
		return nil, ErrInvalidPorts
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	a := &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		keymap:       km,
		help:         help.New(),
		menuView:     menu.NewView(s),
		searchView:   search.NewView(s, km, ports.Search, ports.Export, ports.Session),
		itemView:     item.NewView(s),
		historyView:  history.NewView(s, ports.Export),
		settingsView: settings.NewView(s, ports.Settings),
		currentView:  messages.ViewSearch,
		previousView: messages.ViewSearch,
	}

	if ports.Settings != nil {
		if st, err := ports.Settings.Get(); err == nil && st != nil {
			a.searchView.SetHighlightTags(st.Query.HighlightPreTag, st.Query.HighlightPostTag)
		}
	}

	if ports.Export != nil {
		ch := make(chan domain.ExportProgress, progressBuffer)
		a.progress = ch
		a.unsubscribe = ports.Export.Subscribe(func(p domain.ExportProgress) {
			select {
			case ch <- p:
			default:
			}
		})
	}

	return a, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.searchView.WithContext(ctx)
	a.historyView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("mbsearch - MBS Search"),
		a.searchView.Init(),
		a.waitForProgress(),
	)
}

// waitForProgress returns a command that delivers the next export event.
func (a *App) waitForProgress() tea.Cmd {
	if a.progress == nil {
		return nil
	}
	ch := a.progress
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return nil
		}
		return messages.ExportProgressed{Progress: p}
	}
}

// Update implements tea.Model.
// It handles messages and updates the model state.
//
//nolint:gocognit,gocyclo,funlen // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case messages.SearchScheduled, messages.SearchCompleted, messages.ExportStarted:
		a.searchView, cmd = a.searchView.Update(msg)
		a.err = a.searchView.Err()
		return a, cmd

	case messages.ExportProgressed:
		var searchCmd, historyCmd tea.Cmd
		a.searchView, searchCmd = a.searchView.Update(msg)
		a.historyView, historyCmd = a.historyView.Update(msg)
		return a, tea.Batch(searchCmd, historyCmd, a.waitForProgress())

	case messages.ItemRequested:
		return a, a.openItem(msg)

	case messages.ItemLoaded:
		a.itemView, cmd = a.itemView.Update(msg)
		return a, cmd

	case messages.HistoryLoaded:
		a.historyView, cmd = a.historyView.Update(msg)
		return a, cmd

	case messages.SettingsLoaded:
		if msg.Err == nil && msg.Settings != nil {
			a.searchView.SetHighlightTags(msg.Settings.Query.HighlightPreTag, msg.Settings.Query.HighlightPostTag)
		}
		a.settingsView, cmd = a.settingsView.Update(msg)
		return a, cmd

	case messages.SettingsSaved:
		a.settingsView, cmd = a.settingsView.Update(msg)
		return a, cmd

	case messages.ViewChanged:
		return a, a.switchView(msg.View)

	case messages.ErrorOccurred:
		a.err = msg.Err
		switch a.currentView {
		case messages.ViewSearch:
			a.searchView, cmd = a.searchView.Update(msg)
		case messages.ViewItem:
			a.itemView, cmd = a.itemView.Update(msg)
		case messages.ViewMenu, messages.ViewHelp, messages.ViewHistory, messages.ViewSettings:
			// Other views show their own load errors
		}
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward other messages (cursor blinks, spinner ticks) to the active view
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
	case messages.ViewItem:
		a.itemView, cmd = a.itemView.Update(msg)
	case messages.ViewHistory:
		a.historyView, cmd = a.historyView.Update(msg)
	case messages.ViewSettings:
		a.settingsView, cmd = a.settingsView.Update(msg)
	case messages.ViewHelp:
		// Help view doesn't need to handle other messages
	}

	return a, cmd
}

// handleKeyMsg routes keys to the active view.
func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	// Global quit with ctrl+c
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	if msg.String() == "?" && a.helpAvailable() {
		a.previousView = a.currentView
		a.currentView = messages.ViewHelp
		return a, nil
	}

	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
	case messages.ViewItem:
		a.itemView, cmd = a.itemView.Update(msg)
	case messages.ViewHistory:
		a.historyView, cmd = a.historyView.Update(msg)
	case messages.ViewSettings:
		a.settingsView, cmd = a.settingsView.Update(msg)
	case messages.ViewHelp:
		switch msg.String() {
		case "esc", "q", "?":
			a.currentView = a.previousView
		}
	}
	return a, cmd
}

// helpAvailable reports whether "?" opens help rather than being typed.
func (a *App) helpAvailable() bool {
	switch a.currentView {
	case messages.ViewMenu, messages.ViewItem, messages.ViewHistory:
		return true
	case messages.ViewSearch:
		return !a.searchView.InputFocused()
	case messages.ViewSettings:
		return a.settingsView.Section() == settings.SectionOverview
	default:
		return false
	}
}

// openItem shows an item straight away and loads its full record.
func (a *App) openItem(msg messages.ItemRequested) tea.Cmd {
	a.currentView = messages.ViewItem
	if a.ports.Items == nil {
		a.itemView.SetItem(msg.Item, false)
		return nil
	}

	a.itemView.SetItem(msg.Item, true)
	items := a.ports.Items
	ctx := a.ctx
	itemNum := msg.ItemNum
	return func() tea.Msg {
		it, err := items.Get(ctx, itemNum)
		return messages.ItemLoaded{Item: it, Err: err}
	}
}

// switchView activates view and returns its start-up command.
func (a *App) switchView(view messages.ViewType) tea.Cmd {
	if view == messages.ViewHelp {
		a.previousView = a.currentView
	}
	a.currentView = view

	switch view {
	case messages.ViewHistory:
		return a.historyView.Init()
	case messages.ViewSettings:
		a.settingsView.Reset()
		return a.settingsView.Init()
	case messages.ViewSearch:
		if a.searchView.Page() == nil {
			return a.searchView.Init()
		}
	case messages.ViewMenu, messages.ViewHelp, messages.ViewItem:
		// Other views don't need special initialisation
	}
	return nil
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewMenu:
		return a.menuView.View()
	case messages.ViewSearch:
		return a.searchView.View()
	case messages.ViewItem:
		return a.itemView.View()
	case messages.ViewHistory:
		return a.historyView.View()
	case messages.ViewSettings:
		return a.settingsView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.searchView.View()
	}
}

// viewHelp renders the key binding reference.
func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n\n")
	b.WriteString(a.help.FullHelpView(a.keymap.FullHelp()))
	b.WriteString("\n\n")
	b.WriteString(a.styles.Muted.Render("Typing in the search box searches after a short pause. " +
		"Filters, sort, mode and fuzzy level apply immediately."))
	b.WriteString("\n\n")
	b.WriteString(a.styles.Help.Render("[esc] back"))
	return b.String()
}

// Run starts the TUI application and blocks until it exits.
func (a *App) Run() error {
	defer a.Close()
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// Close stops receiving export progress events.
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
}

// Query returns the current search query.
func (a *App) Query() string {
	return a.searchView.Query()
}

// Results returns the current search results.
func (a *App) Results() []domain.ResultItem {
	return a.searchView.Results()
}

// SelectedIndex returns the currently selected result index.
func (a *App) SelectedIndex() int {
	return a.searchView.SelectedIndex()
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions and resizes every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.searchView.SetDimensions(width, height)
	a.itemView.SetDimensions(width, height)
	a.historyView.SetDimensions(width, height)
	a.settingsView.SetDimensions(width, height)
}
