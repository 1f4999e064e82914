// Package export provides the export progress component for the TUI.
package export

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/mbsearch/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/mbsearch/internal/core/domain"
)

// Bar renders the state of the current export: a spinner and bar
// while running, then the final message until it is cleared.
type Bar struct {
	styles  *styles.Styles
	bar     progress.Model
	spinner spinner.Model
	state   domain.ExportProgress
	visible bool
	width   int
}

// NewBar creates a hidden export bar.
func NewBar(s *styles.Styles) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Subtitle

	return &Bar{
		styles:  s,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		spinner: sp,
		width:   80,
	}
}

// Update advances the spinner while an export runs.
func (e *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	if _, ok := msg.(spinner.TickMsg); ok && e.Running() {
		var cmd tea.Cmd
		e.spinner, cmd = e.spinner.Update(msg)
		return e, cmd
	}
	return e, nil
}

// Set records a progress notification. An idle notification hides the
// bar. It returns the spinner tick command when an export starts running.
func (e *Bar) Set(p domain.ExportProgress) tea.Cmd {
	if p.State == domain.ExportIdle && !p.Running {
		e.visible = false
		e.state = domain.ExportProgress{}
		return nil
	}
	wasRunning := e.Running()
	e.state = p
	e.visible = true
	if p.Running && !wasRunning {
		return e.spinner.Tick
	}
	return nil
}

// Running reports whether the shown export is still running.
func (e *Bar) Running() bool {
	return e.visible && e.state.Running
}

// Visible reports whether there is anything to show.
func (e *Bar) Visible() bool {
	return e.visible
}

// Progress returns the last recorded notification.
func (e *Bar) Progress() domain.ExportProgress {
	return e.state
}

// SetWidth sets the width available to the bar.
func (e *Bar) SetWidth(width int) {
	e.width = width
	w := width / 2
	if w < 10 {
		w = 10
	}
	e.bar.Width = w
}

// View renders the bar, or an empty string when hidden.
func (e *Bar) View() string {
	if !e.visible {
		return ""
	}

	msg := e.state.Message
	if !e.state.Running {
		style := e.styles.Success
		if e.state.Progress == 0 && msg != "" {
			style = e.styles.Warning
		}
		return style.Render(msg)
	}

	label := fmt.Sprintf("%s %s", e.spinner.View(), e.styles.Normal.Render(msg))
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center,
		e.bar.ViewAs(float64(e.state.Progress)/100), "  ", label)
}
