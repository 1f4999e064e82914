// Package facets provides the facet selection panel for the TUI.
package facets

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/custodia-labs/mbsearch/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/mbsearch/internal/core/domain"
)

// row is one rendered line: a facet header or one of its values.
type row struct {
	facet  string
	label  string
	value  domain.FacetValue
	header bool
}

// Panel shows facet buckets with their values in alphabetical order and
// tracks a cursor over the values.
type Panel struct {
	styles   *styles.Styles
	collator *collate.Collator
	rows     []row
	cursor   int
	focused  bool
	width    int
	height   int
}

// NewPanel creates an empty facet panel.
func NewPanel(s *styles.Styles) *Panel {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &Panel{
		styles:   s,
		collator: collate.New(language.English, collate.IgnoreCase),
		cursor:   -1,
		width:    30,
		height:   20,
	}
}

// SetBuckets replaces the facet data. The cursor stays on the same
// facet value when it is still present.
func (p *Panel) SetBuckets(buckets []domain.FacetBucket) {
	prevFacet, prevValue, hadCursor := p.Current()

	rows := make([]row, 0, len(buckets)*8)
	for _, b := range buckets {
		rows = append(rows, row{facet: b.Name, label: b.Label, header: true})

		values := append([]domain.FacetValue(nil), b.Values...)
		sort.SliceStable(values, func(i, j int) bool {
			return p.collator.CompareString(values[i].Value, values[j].Value) < 0
		})
		for _, v := range values {
			rows = append(rows, row{facet: b.Name, label: b.Label, value: v})
		}
	}
	p.rows = rows

	p.cursor = p.firstValue()
	if hadCursor {
		for i, r := range p.rows {
			if !r.header && r.facet == prevFacet && r.value.Value == prevValue {
				p.cursor = i
				break
			}
		}
	}
}

// firstValue returns the index of the first value row, or -1.
func (p *Panel) firstValue() int {
	for i, r := range p.rows {
		if !r.header {
			return i
		}
	}
	return -1
}

// Current returns the facet and value under the cursor.
func (p *Panel) Current() (facet, value string, ok bool) {
	if p.cursor < 0 || p.cursor >= len(p.rows) || p.rows[p.cursor].header {
		return "", "", false
	}
	r := p.rows[p.cursor]
	return r.facet, r.value.Value, true
}

// MoveUp moves the cursor to the previous value, skipping headers.
func (p *Panel) MoveUp() {
	for i := p.cursor - 1; i >= 0; i-- {
		if !p.rows[i].header {
			p.cursor = i
			return
		}
	}
}

// MoveDown moves the cursor to the next value, skipping headers.
func (p *Panel) MoveDown() {
	for i := p.cursor + 1; i < len(p.rows); i++ {
		if !p.rows[i].header {
			p.cursor = i
			return
		}
	}
}

// Focus gives the panel keyboard focus.
func (p *Panel) Focus() {
	p.focused = true
}

// Blur removes keyboard focus.
func (p *Panel) Blur() {
	p.focused = false
}

// Focused reports whether the panel has keyboard focus.
func (p *Panel) Focused() bool {
	return p.focused
}

// IsEmpty reports whether there are no facet values to show.
func (p *Panel) IsEmpty() bool {
	return p.firstValue() < 0
}

// SetDimensions sets the component dimensions.
func (p *Panel) SetDimensions(width, height int) {
	p.width = width
	p.height = height
}

// View renders the panel.
func (p *Panel) View() string {
	if len(p.rows) == 0 {
		return p.styles.Muted.Render("No facets")
	}

	start := 0
	if p.height > 0 && p.cursor >= p.height {
		start = p.cursor - p.height + 1
	}
	end := len(p.rows)
	if p.height > 0 && end > start+p.height {
		end = start + p.height
	}

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, p.renderRow(i))
	}
	return strings.Join(lines, "\n")
}

func (p *Panel) renderRow(i int) string {
	r := p.rows[i]
	if r.header {
		return p.styles.Subtitle.Render(r.label)
	}

	mark := "[ ]"
	if r.value.Selected {
		mark = "[x]"
	}
	count := fmt.Sprintf(" (%d)", r.value.Count)

	maxLen := p.width - len(mark) - len(count) - 3
	if maxLen < 8 {
		maxLen = 8
	}
	value := r.value.Value
	if runes := []rune(value); len(runes) > maxLen {
		value = string(runes[:maxLen-3]) + "..."
	}

	line := fmt.Sprintf(" %s %s", mark, value)
	switch {
	case p.focused && i == p.cursor:
		return p.styles.Selected.Render(line) + p.styles.Muted.Render(count)
	case r.value.Selected:
		return p.styles.Success.Render(line) + p.styles.Muted.Render(count)
	default:
		return p.styles.Normal.Render(line) + p.styles.Muted.Render(count)
	}
}
