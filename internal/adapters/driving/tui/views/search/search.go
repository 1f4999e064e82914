// Package search provides the main search view for the TUI.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/mbsearch/internal/adapters/driving/tui/components/export"
	"github.com/custodia-labs/mbsearch/internal/adapters/driving/tui/components/facets"
	"github.com/custodia-labs/mbsearch/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/mbsearch/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/mbsearch/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/mbsearch/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/mbsearch/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/mbsearch/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/mbsearch/internal/core/domain"
	"github.com/custodia-labs/mbsearch/internal/core/ports/driving"
)

// DebounceDelay is the typing pause after which a search is sent.
const DebounceDelay = 300 * time.Millisecond

// facetPanelWidth is the width of the facet column on wide terminals.
const facetPanelWidth = 36

// answer highlight markers used by the search service.
const (
	answerPreTag  = "<em>"
	answerPostTag = "</em>"
)

var exportFormats = []domain.ExportFormat{
	domain.ExportCSV, domain.ExportJSON, domain.ExportXLSX, domain.ExportYAML,
}

// focusArea is the part of the view receiving keys.
type focusArea int

const (
	focusInput focusArea = iota
	focusResults
	focusFacets
)

// View represents the search view with input, results, facets and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.SearchInput
	list      *list.ResultList
	facets    *facets.Panel
	exportBar *export.Bar
	statusbar *status.Bar

	searchService driving.SearchService
	exportService driving.ExportService
	session       driving.SearchSession
	ctx           context.Context

	intent  domain.SearchIntent
	page    *domain.SearchPage
	seq     uint64
	format  domain.ExportFormat
	focus   focusArea
	loading bool

	width  int
	height int
	ready  bool
	err    error
}

// NewView creates a new search view.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	searchService driving.SearchService,
	exportService driving.ExportService,
	session driving.SearchSession,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:        s,
		keymap:        km,
		input:         input.NewSearchInput(s),
		list:          list.NewResultList(s),
		facets:        facets.NewPanel(s),
		exportBar:     export.NewBar(s),
		statusbar:     status.NewBar(s, km),
		searchService: searchService,
		exportService: exportService,
		session:       session,
		ctx:           context.Background(),
		intent:        domain.NewSearchIntent(),
		format:        domain.ExportCSV,
		focus:         focusInput,
		width:         80,
		height:        24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetHighlightTags sets the markers the search service wraps matches in.
func (v *View) SetHighlightTags(pre, post string) {
	v.list.SetHighlightTags(pre, post)
}

// Init initialises the view and loads the unfiltered listing.
func (v *View) Init() tea.Cmd {
	return tea.Batch(v.input.Init(), v.search())
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchScheduled:
		if msg.Seq != v.seq {
			return v, nil
		}
		return v, v.search()

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil

	case messages.ExportStarted:
		if msg.Err != nil {
			v.showError(exportError(msg.Err))
		}
		return v, nil

	case messages.ExportProgressed:
		return v, v.exportBar.Set(msg.Progress)

	case messages.ErrorOccurred:
		v.showError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.exportBar, cmd = v.exportBar.Update(msg)
	if v.focus == focusInput {
		var inputCmd tea.Cmd
		v.input, inputCmd, _ = v.input.Update(msg)
		cmd = tea.Batch(cmd, inputCmd)
	}
	return v, cmd
}

// handleKeyMsg dispatches keys to the focused area.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch v.focus {
	case focusInput:
		return v.handleInputKey(msg)
	case focusFacets:
		return v.handleFacetKey(msg)
	default:
		return v.handleResultsKey(msg)
	}
}

// handleInputKey edits the query. Every change schedules a debounced search.
func (v *View) handleInputKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyEsc:
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case tea.KeyEnter:
		v.setFocus(focusResults)
		return v, v.submit()
	case tea.KeyDown, tea.KeyTab:
		v.setFocus(focusResults)
		return v, nil
	}

	var cmd tea.Cmd
	var changed bool
	v.input, cmd, changed = v.input.Update(msg)
	if !changed {
		return v, cmd
	}

	v.intent.Query = v.input.Value()
	v.intent.Page = 1
	return v, tea.Batch(cmd, v.schedule())
}

// handleResultsKey handles navigation and search controls.
func (v *View) handleResultsKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()
	switch {
	case keyStr == "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case keymap.Matches(keyStr, v.keymap.Up):
		if v.list.Selected() == 0 {
			v.setFocus(focusInput)
			return v, nil
		}
		v.list.MoveUp()
	case keymap.Matches(keyStr, v.keymap.Down):
		v.list.MoveDown()
	case keymap.Matches(keyStr, v.keymap.Select):
		if item := v.list.SelectedResult(); item != nil {
			selected := item.ScheduleItem
			return v, func() tea.Msg {
				return messages.ItemRequested{ItemNum: selected.ItemNum.String(), Item: &selected}
			}
		}
	case keymap.Matches(keyStr, v.keymap.EditQuery):
		v.setFocus(focusInput)
	case keymap.Matches(keyStr, v.keymap.Facets):
		if !v.facets.IsEmpty() {
			v.setFocus(focusFacets)
		}
	case keymap.Matches(keyStr, v.keymap.Sort):
		v.intent.Sort = nextSort(v.intent.Sort)
		v.intent.Page = 1
		return v, v.submit()
	case keymap.Matches(keyStr, v.keymap.Mode):
		if v.intent.Mode == domain.QueryModeSemantic {
			v.intent.Mode = domain.QueryModeSimple
		} else {
			v.intent.Mode = domain.QueryModeSemantic
		}
		v.intent.Page = 1
		return v, v.submit()
	case keymap.Matches(keyStr, v.keymap.Fuzzy):
		v.intent.Fuzzy = (v.intent.Fuzzy + 1) % (domain.MaxFuzzyLevel + 1)
		v.intent.Page = 1
		return v, v.submit()
	case keymap.Matches(keyStr, v.keymap.PrevPage):
		if v.intent.Page > 1 {
			v.intent.Page--
			return v, v.submit()
		}
	case keymap.Matches(keyStr, v.keymap.NextPage):
		if v.page != nil && v.intent.Page < v.page.TotalPages() {
			v.intent.Page++
			return v, v.submit()
		}
	case keymap.Matches(keyStr, v.keymap.Export):
		return v, v.startExport()
	case keymap.Matches(keyStr, v.keymap.ExportFormat):
		v.format = nextFormat(v.format)
	}
	return v, nil
}

// handleFacetKey handles the facet panel.
func (v *View) handleFacetKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()
	switch {
	case keyStr == "esc", keymap.Matches(keyStr, v.keymap.Facets):
		v.setFocus(focusResults)
	case keymap.Matches(keyStr, v.keymap.Up):
		v.facets.MoveUp()
	case keymap.Matches(keyStr, v.keymap.Down):
		v.facets.MoveDown()
	case keymap.Matches(keyStr, v.keymap.ToggleFacet):
		facet, value, ok := v.facets.Current()
		if !ok {
			return v, nil
		}
		return v, v.setFacets(v.intent.Facets.Toggle(facet, value))
	case keymap.Matches(keyStr, v.keymap.ResetFacet):
		facet, _, ok := v.facets.Current()
		if !ok || len(v.intent.Facets[facet]) == 0 {
			return v, nil
		}
		return v, v.setFacets(v.intent.Facets.Clear(facet))
	case keymap.Matches(keyStr, v.keymap.ResetAll):
		if v.intent.Facets.IsEmpty() {
			return v, nil
		}
		return v, v.setFacets(v.intent.Facets.Clear(""))
	}
	return v, nil
}

// setFacets replaces the facet selection and searches from the first page.
func (v *View) setFacets(selection domain.FacetSelection) tea.Cmd {
	v.intent.Facets = selection
	v.intent.Page = 1
	return v.submit()
}

// schedule starts the debounce timer for the current query.
func (v *View) schedule() tea.Cmd {
	v.seq++
	seq := v.seq
	return tea.Tick(DebounceDelay, func(time.Time) tea.Msg {
		return messages.SearchScheduled{Seq: seq}
	})
}

// submit searches now and drops any pending debounced search.
func (v *View) submit() tea.Cmd {
	v.seq++
	return v.search()
}

// search sends the current intent. Only the latest generation is shown.
func (v *View) search() tea.Cmd {
	if v.searchService == nil {
		return func() tea.Msg {
			return messages.ErrorOccurred{Err: ErrNoSearchService}
		}
	}
	if v.session == nil {
		return func() tea.Msg {
			return messages.ErrorOccurred{Err: ErrNoSearchSession}
		}
	}

	ctx, gen := v.session.Begin(v.ctx)
	intent := v.intent
	intent.Facets = v.intent.Facets.Clone()
	v.loading = true
	v.statusbar.SetState(status.StateSearching)

	svc := v.searchService
	return func() tea.Msg {
		page, err := svc.Search(ctx, intent)
		return messages.SearchCompleted{Generation: gen, Intent: intent, Page: page, Err: err}
	}
}

// handleSearchCompleted shows a page unless a newer search superseded it.
// A failed search keeps the previous results on screen.
func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	if v.session != nil && !v.session.IsCurrent(msg.Generation) {
		return
	}
	v.loading = false

	if msg.Err != nil {
		if errors.Is(msg.Err, context.Canceled) {
			return
		}
		v.showError(msg.Err)
		return
	}
	if msg.Page == nil {
		return
	}

	v.err = nil
	v.page = msg.Page
	v.list.SetResults(msg.Page.Results)
	v.facets.SetBuckets(msg.Page.Facets)

	first, last := msg.Page.Range()
	v.statusbar.SetMessage("")
	v.statusbar.SetRange(first, last, msg.Page.Count)
	v.restoreState()
}

// showError displays err in the status bar.
func (v *View) showError(err error) {
	v.loading = false
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// startExport exports every result of the current intent in the background.
func (v *View) startExport() tea.Cmd {
	if v.exportService == nil {
		v.statusbar.SetMessage("Export not available")
		return nil
	}
	if v.exportBar.Running() {
		v.statusbar.SetMessage("An export is already running")
		return nil
	}

	svc := v.exportService
	intent := v.intent
	intent.Facets = v.intent.Facets.Clone()
	format := v.format
	ctx := v.ctx
	return func() tea.Msg {
		job, err := svc.Start(ctx, intent, format)
		return messages.ExportStarted{Job: job, Err: err}
	}
}

// exportError rewords export start failures for display.
func exportError(err error) error {
	if errors.Is(err, domain.ErrExportInProgress) {
		return errors.New("an export is already running")
	}
	return fmt.Errorf("export failed: %w", err)
}

// setFocus moves keyboard focus and updates the status hints.
func (v *View) setFocus(f focusArea) {
	v.focus = f
	if f == focusInput {
		v.input.Focus()
	} else {
		v.input.Blur()
	}
	if f == focusFacets {
		v.facets.Focus()
	} else {
		v.facets.Blur()
	}
	v.restoreState()
}

// restoreState sets the status bar state for the current focus.
func (v *View) restoreState() {
	if v.loading || v.statusbar.State() == status.StateError && v.err != nil {
		return
	}
	switch v.focus {
	case focusFacets:
		v.statusbar.SetState(status.StateFacets)
	case focusResults:
		v.statusbar.SetState(status.StateResults)
	default:
		v.statusbar.SetState(status.StateReady)
	}
}

// nextSort returns the sort option after current.
func nextSort(current domain.SortOption) domain.SortOption {
	choices := domain.SortChoices()
	for i, c := range choices {
		if c.Option == current {
			return choices[(i+1)%len(choices)].Option
		}
	}
	return choices[0].Option
}

// sortLabel returns the display name of a sort option.
func sortLabel(option domain.SortOption) string {
	for _, c := range domain.SortChoices() {
		if c.Option == option {
			return c.Label
		}
	}
	return string(option)
}

// nextFormat returns the export format after current.
func nextFormat(current domain.ExportFormat) domain.ExportFormat {
	for i, f := range exportFormats {
		if f == current {
			return exportFormats[(i+1)%len(exportFormats)]
		}
	}
	return exportFormats[0]
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 12)
	sections = append(sections,
		v.styles.Title.Render("MBS Search")+"  "+v.styles.Muted.Render(v.controlsLine()),
		"",
		v.input.View(),
	)

	if selected := v.selectionLine(); selected != "" {
		sections = append(sections, v.styles.Muted.Render(selected))
	}
	sections = append(sections, "")

	if answers := v.renderAnswers(); answers != "" {
		sections = append(sections, answers, "")
	}

	sections = append(sections, v.renderBody())

	if bar := v.exportBar.View(); bar != "" {
		sections = append(sections, "", bar)
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// controlsLine summarises sort, mode, fuzzy level, page and export format.
func (v *View) controlsLine() string {
	mode := v.intent.Mode.String()
	if v.intent.Fuzzy > 0 {
		mode = "fuzzy"
	}
	parts := []string{
		"Sort: " + sortLabel(v.intent.Sort),
		"Mode: " + mode,
		"Fuzzy: " + domain.FuzzyLabel(v.intent.Fuzzy),
	}
	if v.page != nil && v.page.TotalPages() > 1 {
		parts = append(parts, fmt.Sprintf("Page %d/%d", v.intent.Page, v.page.TotalPages()))
	}
	parts = append(parts, "Export: "+strings.ToUpper(v.format.String()))
	return strings.Join(parts, " · ")
}

// selectionLine lists the active facet filters.
func (v *View) selectionLine() string {
	names := v.intent.Facets.Names()
	if len(names) == 0 {
		return ""
	}
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(v.intent.Facets[name], ", ")))
	}
	return "Filters  " + strings.Join(parts, " | ")
}

// renderAnswers renders semantic answers with their confidence.
func (v *View) renderAnswers() string {
	if v.page == nil || len(v.page.Answers) == 0 {
		return ""
	}

	maxLen := v.width - 12
	if maxLen < 20 {
		maxLen = 20
	}
	lines := []string{v.styles.Subtitle.Render("Answers")}
	for _, a := range v.page.Answers {
		text := a.Text
		if a.Highlights != "" {
			text = a.Highlights
		}
		rendered := list.RenderHighlights(text, answerPreTag, answerPostTag, maxLen, v.styles.Normal, v.styles.Match)
		confidence := v.styles.Muted.Render(fmt.Sprintf(" (%.0f%%)", a.Score*100))
		lines = append(lines, "  "+rendered+confidence)
	}
	return strings.Join(lines, "\n")
}

// renderBody lays out results and facets side by side on wide terminals.
// On narrow terminals the facet panel replaces the results while focused.
func (v *View) renderBody() string {
	if v.err != nil && v.page == nil {
		return v.styles.Error.Render("Error: " + v.err.Error())
	}

	if v.width >= facetPanelWidth*2+20 {
		panel := v.styles.Border.Width(facetPanelWidth).Render(v.facets.View())
		return lipgloss.JoinHorizontal(lipgloss.Top, v.list.View(), "  ", panel)
	}
	if v.focus == focusFacets {
		return v.facets.View()
	}
	return v.list.View()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	listWidth := width
	if width >= facetPanelWidth*2+20 {
		listWidth = width - facetPanelWidth - 4
		v.facets.SetDimensions(facetPanelWidth, height-12)
	} else {
		v.facets.SetDimensions(width, height-12)
	}

	v.input.SetWidth(width)
	v.list.SetDimensions(listWidth, height-12) // header, input, export bar, status
	v.exportBar.SetWidth(width)
	v.statusbar.SetWidth(width)
}

// Width returns the current width.
func (v *View) Width() int {
	return v.width
}

// Height returns the current height.
func (v *View) Height() int {
	return v.height
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Intent returns the current search intent.
func (v *View) Intent() domain.SearchIntent {
	return v.intent
}

// Page returns the page on screen, or nil before the first search.
func (v *View) Page() *domain.SearchPage {
	return v.page
}

// Query returns the current search query.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery sets the search query.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
	v.intent.Query = query
}

// Format returns the export format.
func (v *View) Format() domain.ExportFormat {
	return v.format
}

// Results returns the current search results.
func (v *View) Results() []domain.ResultItem {
	return v.list.Results()
}

// SelectedIndex returns the index of the selected result.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// ClearError clears the current error.
func (v *View) ClearError() {
	v.err = nil
	v.statusbar.SetMessage("")
	v.restoreState()
}

// Reset returns the view to input mode with a fresh intent.
func (v *View) Reset() {
	if v.session != nil {
		v.session.Cancel()
	}
	v.seq++
	v.intent = domain.NewSearchIntent()
	v.page = nil
	v.loading = false
	v.err = nil
	v.input.SetValue("")
	v.list.SetResults(nil)
	v.facets.SetBuckets(nil)
	v.statusbar.Clear()
	v.setFocus(focusInput)
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focus == focusInput
}

// FacetsFocused returns whether the facet panel has focus.
func (v *View) FacetsFocused() bool {
	return v.focus == focusFacets
}
