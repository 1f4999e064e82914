// Package history provides the export history view for the TUI.
package history

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/mbsearch/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/mbsearch/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/mbsearch/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/mbsearch/internal/core/domain"
	"github.com/custodia-labs/mbsearch/internal/core/ports/driving"
)

// Limit is the number of records loaded.
const Limit = 50

// ErrNoExportService is returned when no export service is configured.
var ErrNoExportService = errors.New("export service not available")

// View lists finished exports, most recent first.
type View struct {
	styles        *styles.Styles
	exportService driving.ExportService
	ctx           context.Context

	records  []domain.ExportRecord
	selected int
	offset   int
	loading  bool
	err      error

	width  int
	height int
	ready  bool
}

// NewView creates a new export history view.
func NewView(s *styles.Styles, exportService driving.ExportService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:        s,
		exportService: exportService,
		ctx:           context.Background(),
		width:         80,
		height:        24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the history.
func (v *View) Init() tea.Cmd {
	return v.load()
}

// load returns a command that reads the export history.
func (v *View) load() tea.Cmd {
	v.loading = true
	svc := v.exportService
	ctx := v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.HistoryLoaded{Err: ErrNoExportService}
		}
		records, err := svc.History(ctx, Limit)
		return messages.HistoryLoaded{Records: records, Err: err}
	}
}

// Update handles messages for the history view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.HistoryLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.records = msg.Records
		if v.selected >= len(v.records) {
			v.selected = max(len(v.records)-1, 0)
		}
		v.ensureVisible()
		return v, nil

	case messages.ExportProgressed:
		// A finished export has been written to the ledger by the time
		// the idle event arrives.
		if msg.Progress.State == domain.ExportIdle && !msg.Progress.Running {
			return v, v.load()
		}
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
			v.ensureVisible()
		}
	case "down", "j":
		if v.selected < len(v.records)-1 {
			v.selected++
			v.ensureVisible()
		}
	case "r":
		return v, v.load()
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}
	return v, nil
}

// visibleRows returns the number of record rows that fit above the detail pane.
func (v *View) visibleRows() int {
	return max(v.height-14, 1)
}

// ensureVisible scrolls so the selected row is on screen.
func (v *View) ensureVisible() {
	rows := v.visibleRows()
	if v.selected < v.offset {
		v.offset = v.selected
	}
	if v.selected >= v.offset+rows {
		v.offset = v.selected - rows + 1
	}
}

// View renders the history view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Export History"))
	b.WriteString("\n\n")

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n\n")
	case v.loading && len(v.records) == 0:
		b.WriteString(v.styles.Muted.Render("Loading..."))
		b.WriteString("\n\n")
	case len(v.records) == 0:
		b.WriteString(v.styles.Muted.Render("No exports yet. Press e in the search view to export results."))
		b.WriteString("\n\n")
	default:
		b.WriteString(v.renderRows())
		b.WriteString("\n")
		b.WriteString(v.renderDetail(v.records[v.selected]))
		b.WriteString("\n\n")
	}

	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [r] Refresh  [esc] Back"))
	return b.String()
}

// renderRows renders the visible record rows.
func (v *View) renderRows() string {
	var b strings.Builder
	end := min(v.offset+v.visibleRows(), len(v.records))
	for i := v.offset; i < end; i++ {
		rec := v.records[i]
		row := fmt.Sprintf("%s  %-4s  %-9s  %s",
			rec.FinishedAt.Local().Format("2006-01-02 15:04"),
			strings.ToUpper(rec.Format.String()),
			rec.Outcome,
			list.Truncate(describeIntent(rec.Intent), max(v.width-40, 10)))

		if i == v.selected {
			b.WriteString("> " + v.styles.Selected.Render(row))
		} else {
			b.WriteString("  " + v.outcomeStyle(rec.Outcome).Render(row))
		}
		b.WriteString("\n")
	}
	if len(v.records) > v.visibleRows() {
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d of %d]", v.selected+1, len(v.records))))
		b.WriteString("\n")
	}
	return b.String()
}

// renderDetail renders the selected record.
func (v *View) renderDetail(rec domain.ExportRecord) string {
	lines := []string{v.styles.Subtitle.Render(rec.Message)}
	if rec.Location != "" {
		lines = append(lines, v.styles.Muted.Render("File:     ")+rec.Location)
	} else if rec.Filename != "" {
		lines = append(lines, v.styles.Muted.Render("File:     ")+rec.Filename)
	}
	lines = append(lines,
		v.styles.Muted.Render("Items:    ")+fmt.Sprintf("%d of %d", rec.FetchedCount, rec.TotalCount),
		v.styles.Muted.Render("Duration: ")+rec.FinishedAt.Sub(rec.StartedAt).Round(time.Millisecond).String(),
	)
	if rec.Err != "" {
		lines = append(lines, v.styles.Error.Render("Error:    "+rec.Err))
	}
	return strings.Join(lines, "\n")
}

// outcomeStyle colours a row by its outcome.
func (v *View) outcomeStyle(outcome domain.ExportOutcome) lipgloss.Style {
	switch outcome {
	case domain.ExportFailed:
		return v.styles.Error
	case domain.ExportEmpty:
		return v.styles.Warning
	default:
		return v.styles.Normal
	}
}

// describeIntent summarises the search that produced an export.
func describeIntent(intent domain.SearchIntent) string {
	parts := make([]string, 0, 3)
	if intent.Query != "" {
		parts = append(parts, fmt.Sprintf("%q", intent.Query))
	} else {
		parts = append(parts, "all items")
	}
	for _, name := range intent.Facets.Names() {
		parts = append(parts, name+"="+strings.Join(intent.Facets[name], "|"))
	}
	if intent.Sort != "" && intent.Sort != domain.SortRelevance {
		parts = append(parts, "sort "+string(intent.Sort))
	}
	return strings.Join(parts, " ")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.ensureVisible()
}

// Records returns the loaded records.
func (v *View) Records() []domain.ExportRecord {
	return v.records
}

// Selected returns the selected row index.
func (v *View) Selected() int {
	return v.selected
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
