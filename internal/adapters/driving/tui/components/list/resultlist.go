// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/mbsearch/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/mbsearch/internal/core/domain"
)

// linesPerResult is the rendered height of one result including the gap.
const linesPerResult = 5

// ResultList displays search results in a navigable list.
type ResultList struct {
	results  []domain.ResultItem
	selected int
	styles   *styles.Styles
	preTag   string
	postTag  string
	width    int
	height   int
}

// NewResultList creates a new result list component.
func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ResultList{
		results:  nil,
		selected: 0,
		styles:   s,
		preTag:   "<mark>",
		postTag:  "</mark>",
		width:    80,
		height:   10,
	}
}

// SetHighlightTags sets the markers that delimit highlighted terms.
func (r *ResultList) SetHighlightTags(pre, post string) {
	if pre != "" && post != "" {
		r.preTag, r.postTag = pre, post
	}
}

// Init initialises the result list.
func (r *ResultList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *ResultList) Update(msg tea.Msg) (*ResultList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the result list.
func (r *ResultList) View() string {
	if len(r.results) == 0 {
		return r.styles.Muted.Render("No results")
	}

	visibleCount := r.height / linesPerResult
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if r.selected >= visibleCount {
		start = r.selected - visibleCount + 1
	}
	end := start + visibleCount
	if end > len(r.results) {
		end = len(r.results)
	}

	blocks := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		blocks = append(blocks, r.renderResult(i, &r.results[i]))
	}
	return strings.Join(blocks, "\n\n")
}

// renderResult formats a single result: title, description, optional
// caption and a meta line.
func (r *ResultList) renderResult(index int, item *domain.ResultItem) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	title := "Item " + item.ItemNum.String()
	if index == r.selected {
		title = r.styles.Selected.Render(indicator + title)
	} else {
		title = r.styles.Subtitle.Render(indicator + title)
	}
	title += "  " + r.styles.Fee.Render(item.ScheduleFee.String())
	if item.IsNew() {
		title += " " + r.styles.Badge.Render("NEW")
	}

	maxLen := r.width - 6
	if maxLen < 20 {
		maxLen = 20
	}

	var description string
	if item.HighlightedDescription != "" {
		description = RenderHighlights(item.HighlightedDescription, r.preTag, r.postTag, maxLen,
			r.styles.Normal, r.styles.Match)
	} else {
		description = r.styles.Normal.Render(Truncate(item.Description, maxLen))
	}

	lines := []string{title, "    " + description}
	if item.Caption != "" {
		lines = append(lines, "    "+r.styles.Muted.Italic(true).Render(Truncate(item.Caption, maxLen)))
	}
	lines = append(lines, "    "+r.styles.Muted.Render(Truncate(MetaLine(item.ScheduleItem), maxLen)))

	return strings.Join(lines, "\n")
}

// MetaLine joins the classification and start date of an item.
func MetaLine(item domain.ScheduleItem) string {
	parts := make([]string, 0, 4)
	if item.CategoryDescription != "" {
		parts = append(parts, item.CategoryDescription)
	} else if item.Category != "" {
		parts = append(parts, "Category "+item.Category.String())
	}
	if item.GroupDescription != "" {
		parts = append(parts, item.GroupDescription)
	} else if item.Group != "" {
		parts = append(parts, "Group "+item.Group.String())
	}
	if item.ItemType != "" {
		parts = append(parts, "Type "+item.ItemType)
	}
	if item.ItemStartDate != "" {
		parts = append(parts, fmt.Sprintf("Start %s", item.ItemStartDate))
	}
	return strings.Join(parts, " · ")
}

// SetResults updates the result list.
func (r *ResultList) SetResults(results []domain.ResultItem) {
	r.results = results
	r.selected = 0
}

// Results returns the current results.
func (r *ResultList) Results() []domain.ResultItem {
	return r.results
}

// Selected returns the index of the selected result.
func (r *ResultList) Selected() int {
	return r.selected
}

// SetSelected sets the selected index.
func (r *ResultList) SetSelected(index int) {
	if index >= 0 && index < len(r.results) {
		r.selected = index
	}
}

// SelectedResult returns the currently selected result, or nil if none.
func (r *ResultList) SelectedResult() *domain.ResultItem {
	if len(r.results) == 0 || r.selected < 0 || r.selected >= len(r.results) {
		return nil
	}
	return &r.results[r.selected]
}

// MoveUp moves selection up.
func (r *ResultList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *ResultList) MoveDown() {
	if r.selected < len(r.results)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *ResultList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Width returns the current width.
func (r *ResultList) Width() int {
	return r.width
}

// Height returns the current height.
func (r *ResultList) Height() int {
	return r.height
}

// Count returns the number of results.
func (r *ResultList) Count() int {
	return len(r.results)
}

// IsEmpty returns whether the list is empty.
func (r *ResultList) IsEmpty() bool {
	return len(r.results) == 0
}
