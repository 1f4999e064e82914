// Package settings provides the settings configuration view for the TUI.
package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/mbsearch/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/mbsearch/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/mbsearch/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/mbsearch/internal/core/domain"
	"github.com/custodia-labs/mbsearch/internal/core/ports/driving"
)

// Section tracks which settings section is active.
type Section int

const (
	// SectionOverview lists every setting.
	SectionOverview Section = iota
	// SectionEdit edits the selected setting.
	SectionEdit
)

// ErrNoSettingsService is returned when no settings service is configured.
var ErrNoSettingsService = errors.New("settings service not available")

// View is the settings configuration view.
type View struct {
	styles          *styles.Styles
	settingsService driving.SettingsService

	keys    []string
	values  map[string]string
	invalid error
	err     error
	notice  string
	loaded  bool

	section  Section
	selected int
	offset   int
	input    textinput.Model

	width  int
	height int
	ready  bool
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	input := textinput.New()
	input.CharLimit = 1024
	input.Prompt = "> "

	return &View{
		styles:          s,
		settingsService: settingsService,
		section:         SectionOverview,
		input:           input,
		width:           80,
		height:          24,
	}
}

// Init initialises the view and loads settings.
func (v *View) Init() tea.Cmd {
	return v.loadSettings()
}

// loadSettings returns a command that loads current settings.
func (v *View) loadSettings() tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsLoaded{Err: ErrNoSettingsService}
		}
		settings, err := svc.Get()
		if err != nil {
			return messages.SettingsLoaded{Err: err}
		}
		keys := svc.Keys()
		values := make(map[string]string, len(keys))
		for _, key := range keys {
			value, err := svc.Value(key)
			if err != nil {
				return messages.SettingsLoaded{Err: err}
			}
			values[key] = value
		}
		return messages.SettingsLoaded{
			Settings: settings,
			Keys:     keys,
			Values:   values,
			Invalid:  settings.Validate(),
		}
	}
}

// saveSetting returns a command that writes one setting.
func (v *View) saveSetting(key, value string) tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsSaved{Key: key, Err: ErrNoSettingsService}
		}
		return messages.SettingsSaved{Key: key, Err: svc.Set(key, value)}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SettingsLoaded:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.loaded = true
		v.keys = msg.Keys
		v.values = msg.Values
		v.invalid = msg.Invalid
		if v.selected >= len(v.keys) {
			v.selected = max(len(v.keys)-1, 0)
		}
		v.ensureVisible()
		return v, nil

	case messages.SettingsSaved:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.notice = "Saved " + msg.Key
		v.closeEditor()
		return v, v.loadSettings()

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	if v.section == SectionEdit {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}
	return v, nil
}

// handleKeyMsg handles key presses based on current section.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.section == SectionEdit {
		return v.handleEditKeys(msg)
	}

	switch msg.String() {
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case "up", "k":
		if v.selected > 0 {
			v.selected--
			v.ensureVisible()
		}
	case "down", "j":
		if v.selected < len(v.keys)-1 {
			v.selected++
			v.ensureVisible()
		}
	case "r":
		v.notice = ""
		return v, v.loadSettings()
	case "enter":
		if key := v.SelectedKey(); key != "" {
			return v, v.openEditor(key)
		}
	}
	return v, nil
}

// handleEditKeys handles keys while a value is being edited.
func (v *View) handleEditKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		v.closeEditor()
		v.err = nil
		return v, nil
	case "enter":
		return v, v.saveSetting(v.SelectedKey(), v.input.Value())
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// openEditor starts editing key. Secrets start empty and are not echoed.
func (v *View) openEditor(key string) tea.Cmd {
	v.section = SectionEdit
	v.notice = ""
	v.err = nil
	if domain.IsSecretSetting(key) {
		v.input.EchoMode = textinput.EchoPassword
		v.input.Placeholder = "Enter new value"
		v.input.SetValue("")
	} else {
		v.input.EchoMode = textinput.EchoNormal
		v.input.Placeholder = ""
		v.input.SetValue(v.values[key])
		v.input.CursorEnd()
	}
	return v.input.Focus()
}

// closeEditor returns to the overview.
func (v *View) closeEditor() {
	v.section = SectionOverview
	v.input.SetValue("")
	v.input.Blur()
}

// visibleRows returns the number of setting rows on screen.
func (v *View) visibleRows() int {
	return max(v.height-10, 1)
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

// View renders the settings view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
	}

	if !v.loaded {
		if v.err == nil {
			b.WriteString(v.styles.Muted.Render("Loading settings..."))
		}
		return b.String()
	}

	b.WriteString(v.renderStatus())
	b.WriteString("\n\n")

	switch v.section {
	case SectionOverview:
		b.WriteString(v.renderOverview())
	case SectionEdit:
		b.WriteString(v.renderEditor())
	}

	b.WriteString("\n")
	b.WriteString(v.renderHelp())
	return b.String()
}

// renderStatus shows whether the connection settings are usable.
func (v *View) renderStatus() string {
	if v.notice != "" {
		return v.styles.Success.Render(v.notice)
	}
	if v.invalid != nil {
		return v.styles.Warning.Render(fmt.Sprintf("Warning: %s", v.invalid.Error()))
	}
	return v.styles.Success.Render("Configuration is valid")
}

// renderOverview lists the visible settings with their values.
func (v *View) renderOverview() string {
	var b strings.Builder

	valueWidth := max(v.width-36, 12)
	end := min(v.offset+v.visibleRows(), len(v.keys))
	for i := v.offset; i < end; i++ {
		key := v.keys[i]
		line := fmt.Sprintf("%-32s %s", key, list.Truncate(v.displayValue(key), valueWidth))
		if i == v.selected {
			b.WriteString("> " + v.styles.Selected.Render(line))
		} else {
			b.WriteString("  " + v.styles.Normal.Render(line))
		}
		b.WriteString("\n")
	}
	if len(v.keys) > v.visibleRows() {
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d of %d]", v.selected+1, len(v.keys))))
		b.WriteString("\n")
	}
	return b.String()
}

// renderEditor shows the value input for the selected key.
func (v *View) renderEditor() string {
	key := v.SelectedKey()
	var b strings.Builder
	b.WriteString(v.styles.Subtitle.Render(key))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render("Current: " + v.displayValue(key)))
	b.WriteString("\n\n")
	b.WriteString(v.input.View())
	b.WriteString("\n")
	return b.String()
}

// displayValue returns the value of key, masking credentials.
func (v *View) displayValue(key string) string {
	value := v.values[key]
	if domain.IsSecretSetting(key) {
		return domain.MaskSecret(value)
	}
	if value == "" {
		return "(not set)"
	}
	return value
}

func (v *View) renderHelp() string {
	switch v.section {
	case SectionEdit:
		return v.styles.Help.Render("[enter] save  [esc] cancel")
	default:
		return v.styles.Help.Render("[j/k] navigate  [enter] edit  [r] reload  [esc] back")
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.input.Width = max(width-4, 10)
	v.ensureVisible()
}

// SelectedKey returns the key under the cursor.
func (v *View) SelectedKey() string {
	if v.selected < 0 || v.selected >= len(v.keys) {
		return ""
	}
	return v.keys[v.selected]
}

// Section returns the active section.
func (v *View) Section() Section {
	return v.section
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// Reset resets the view to initial state.
func (v *View) Reset() {
	v.closeEditor()
	v.selected = 0
	v.offset = 0
	v.err = nil
	v.notice = ""
}
