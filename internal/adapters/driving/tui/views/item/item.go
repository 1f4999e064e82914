// Package item provides the schedule item details view for the TUI.
package item

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/mbsearch/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/mbsearch/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/mbsearch/internal/core/domain"
)

// line kinds used for styling.
const (
	kindField = iota
	kindSection
	kindText
	kindBlank
)

type line struct {
	kind  int
	label string
	text  string
}

// View is the schedule item details view.
type View struct {
	styles *styles.Styles

	item         *domain.ScheduleItem
	loading      bool
	scrollOffset int
	width        int
	height       int
	ready        bool
	err          error
}

// NewView creates a new item details view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		width:  80,
		height: 24,
	}
}

// SetItem sets the item to display. A partial item may be shown while
// the full record loads.
func (v *View) SetItem(item *domain.ScheduleItem, loading bool) {
	v.item = item
	v.loading = loading
	v.scrollOffset = 0
	v.err = nil
}

// SetError sets an error to display.
func (v *View) SetError(err error) {
	v.loading = false
	v.err = err
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the item details view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.ItemLoaded:
		if msg.Err != nil {
			v.SetError(msg.Err)
			return v, nil
		}
		offset := v.scrollOffset
		v.SetItem(msg.Item, false)
		v.scrollOffset = min(offset, v.maxScrollOffset())
		return v, nil

	case messages.ErrorOccurred:
		v.SetError(msg.Err)
		return v, nil
	}

	return v, nil
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.scrollOffset > 0 {
			v.scrollOffset--
		}
	case "down", "j":
		if v.scrollOffset < v.maxScrollOffset() {
			v.scrollOffset++
		}
	case "g", "home":
		v.scrollOffset = 0
	case "G", "end":
		v.scrollOffset = v.maxScrollOffset()
	case "esc", "backspace":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewSearch}
		}
	}

	return v, nil
}

// visibleLines returns the number of lines that can be displayed.
func (v *View) visibleLines() int {
	// title, separator, scroll indicator and help
	return max(v.height-7, 1)
}

// maxScrollOffset returns the maximum scroll offset.
func (v *View) maxScrollOffset() int {
	return max(len(v.buildContent())-v.visibleLines(), 0)
}

// buildContent builds the content lines for display.
func (v *View) buildContent() []line {
	if v.item == nil {
		return nil
	}
	it := v.item

	var lines []line
	field := func(label, value string) {
		if value != "" {
			lines = append(lines, line{kind: kindField, label: label, text: value})
		}
	}
	section := func(title string) {
		lines = append(lines, line{kind: kindBlank}, line{kind: kindSection, text: title})
	}

	field("Item", it.ItemNum.String())
	field("Alias", it.ItemNumAlias.String())
	field("Sub-item", it.SubItemNum.String())
	field("Type", it.ItemType)

	section("Fees")
	lines = append(lines,
		line{kind: kindField, label: "Schedule fee", text: it.ScheduleFee.String()},
		line{kind: kindField, label: "Benefit 75%", text: it.Benefit75.String()},
		line{kind: kindField, label: "Benefit 85%", text: it.Benefit85.String()},
		line{kind: kindField, label: "Benefit 100%", text: it.Benefit100.String()},
	)
	field("Fee type", it.FeeType)
	field("Benefit type", it.BenefitType)
	field("Provider", it.ProviderType)

	section("Classification")
	field("Category", joinCode(it.Category.String(), it.CategoryDescription))
	field("Group", joinCode(it.Group.String(), it.GroupDescription))
	field("Sub-group", it.SubGroup.String())
	field("Sub-heading", it.SubHeading.String())

	section("Dates")
	field("Item start", it.ItemStartDate)
	field("Item end", it.ItemEndDate)
	field("Fee start", it.FeeStartDate)
	field("Item change", it.ItemChange)
	field("Fee change", it.FeeChange)

	section("Description")
	for _, l := range wrap(it.Description, v.textWidth()) {
		lines = append(lines, line{kind: kindText, text: l})
	}
	if it.HumanReadableDescription != "" && it.HumanReadableDescription != it.Description {
		section("Summary")
		for _, l := range wrap(it.HumanReadableDescription, v.textWidth()) {
			lines = append(lines, line{kind: kindText, text: l})
		}
	}

	return lines
}

// textWidth is the width used for wrapped paragraphs.
func (v *View) textWidth() int {
	return max(min(v.width-4, 100), 20)
}

// joinCode formats "3 - Therapeutic Procedures", dropping empty parts.
func joinCode(code, description string) string {
	switch {
	case code == "":
		return description
	case description == "":
		return code
	default:
		return code + " - " + description
	}
}

// wrap breaks text into lines of at most width runes on word boundaries.
func wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	var cur strings.Builder
	curLen := 0
	for _, w := range words {
		wl := len([]rune(w))
		if curLen > 0 && curLen+1+wl > width {
			lines = append(lines, cur.String())
			cur.Reset()
			curLen = 0
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(w)
		curLen += wl
	}
	return append(lines, cur.String())
}

// View renders the item details view.
func (v *View) View() string {
	var b strings.Builder

	title := "Item Details"
	if v.item != nil {
		title = "Item " + v.item.ItemNum.String()
	}
	b.WriteString(v.styles.Title.Render(title))
	if v.item != nil && v.item.IsNew() {
		b.WriteString(" ")
		b.WriteString(v.styles.Badge.Render("NEW"))
	}
	if v.loading {
		b.WriteString(" ")
		b.WriteString(v.styles.Muted.Render("loading..."))
	}
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", max(min(v.width-4, 60), 1)))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
	}

	if v.item == nil {
		if v.err == nil {
			b.WriteString(v.styles.Muted.Render("No item selected"))
			b.WriteString("\n\n")
		}
		b.WriteString(v.renderHelp())
		return b.String()
	}

	lines := v.buildContent()
	visible := v.visibleLines()
	end := min(v.scrollOffset+visible, len(lines))
	for _, l := range lines[v.scrollOffset:end] {
		switch l.kind {
		case kindField:
			b.WriteString(v.styles.Subtitle.Render(fmt.Sprintf("%-14s", l.label+":")))
			if l.label == "Schedule fee" {
				b.WriteString(v.styles.Fee.Render(l.text))
			} else {
				b.WriteString(v.styles.Normal.Render(l.text))
			}
		case kindSection:
			b.WriteString(v.styles.Subtitle.Render(l.text))
		case kindText:
			b.WriteString(v.styles.Normal.Render("  " + l.text))
		}
		b.WriteString("\n")
	}

	if len(lines) > visible {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [Line %d-%d of %d]",
			v.scrollOffset+1, end, len(lines))))
	}

	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())
	return b.String()
}

// renderHelp renders the help footer.
func (v *View) renderHelp() string {
	return v.styles.Help.Render("[↑/↓] scroll  [g/G] top/bottom  [esc] back")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.scrollOffset = min(v.scrollOffset, v.maxScrollOffset())
}

// Item returns the displayed item.
func (v *View) Item() *domain.ScheduleItem {
	return v.item
}

// Loading reports whether the full record is still being fetched.
func (v *View) Loading() bool {
	return v.loading
}

// ScrollOffset returns the first visible line.
func (v *View) ScrollOffset() int {
	return v.scrollOffset
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
