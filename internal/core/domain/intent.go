package domain

import (
	"fmt"
	"sort"
	"strings"
)

// MaxFuzzyLevel is the highest accepted edit-distance level.
const MaxFuzzyLevel = 3

// QueryMode selects between plain keyword search and semantic ranking.
type QueryMode string

// Available query modes.
const (
	// QueryModeSimple is keyword search with the simple query syntax.
	QueryModeSimple QueryMode = "simple"

	// QueryModeSemantic enables semantic ranking, captions and answers.
	QueryModeSemantic QueryMode = "semantic"
)

// IsValid returns true if the query mode is recognised.
func (m QueryMode) IsValid() bool {
	return m == QueryModeSimple || m == QueryModeSemantic
}

// String returns the string representation.
func (m QueryMode) String() string {
	return string(m)
}

// SortOption is either SortRelevance or an explicit "Field asc|desc" clause.
type SortOption string

// SortRelevance ranks by score when there is query text.
const SortRelevance SortOption = "relevance"

// SortChoice describes a sort option offered to users.
type SortChoice struct {
	Option SortOption
	Label  string
}

// SortChoices lists the sort options offered by the user interfaces.
func SortChoices() []SortChoice {
	return []SortChoice{
		{Option: SortRelevance, Label: "Relevance"},
		{Option: "ItemNum asc", Label: "Item Number (Low to High)"},
		{Option: "ItemNum desc", Label: "Item Number (High to Low)"},
		{Option: "ScheduleFee asc", Label: "Fee (Low to High)"},
		{Option: "ScheduleFee desc", Label: "Fee (High to Low)"},
		{Option: "ItemStartDate desc", Label: "Start Date (Newest)"},
		{Option: "ItemStartDate asc", Label: "Start Date (Oldest)"},
	}
}

// IsValid returns true for relevance or a "Field asc|desc" clause.
func (s SortOption) IsValid() bool {
	if s == SortRelevance {
		return true
	}
	parts := strings.Fields(string(s))
	if len(parts) != 2 || !IsFieldName(parts[0]) {
		return false
	}
	return parts[1] == "asc" || parts[1] == "desc"
}

// FuzzyLabel returns the display name of a fuzzy level.
func FuzzyLabel(level int) string {
	switch level {
	case 0:
		return "Off"
	case 1:
		return "Low"
	case 2:
		return "Medium"
	case 3:
		return "High"
	default:
		return fmt.Sprintf("Level %d", level)
	}
}

// FacetSelection maps a facet field name to its selected values in
// selection order. It is treated as immutable: Toggle and Clear return
// a new selection.
type FacetSelection map[string][]string

// Toggle adds value to facet if absent, or removes it if present.
// Removing the last value removes the facet entry.
func (f FacetSelection) Toggle(facet, value string) FacetSelection {
	next := f.Clone()
	values := next[facet]
	for i, v := range values {
		if v == value {
			rest := make([]string, 0, len(values)-1)
			rest = append(rest, values[:i]...)
			rest = append(rest, values[i+1:]...)
			if len(rest) == 0 {
				delete(next, facet)
			} else {
				next[facet] = rest
			}
			return next
		}
	}
	next[facet] = append(append([]string(nil), values...), value)
	return next
}

// Clear removes facet from the selection. An empty facet name clears all.
func (f FacetSelection) Clear(facet string) FacetSelection {
	if facet == "" {
		return FacetSelection{}
	}
	next := f.Clone()
	delete(next, facet)
	return next
}

// Has reports whether value is selected for facet.
func (f FacetSelection) Has(facet, value string) bool {
	for _, v := range f[facet] {
		if v == value {
			return true
		}
	}
	return false
}

// Names returns the facet names with at least one value, sorted.
func (f FacetSelection) Names() []string {
	names := make([]string, 0, len(f))
	for name, values := range f {
		if len(values) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// IsEmpty reports whether no facet has a selected value.
func (f FacetSelection) IsEmpty() bool {
	return len(f.Names()) == 0
}

// Clone returns a deep copy.
func (f FacetSelection) Clone() FacetSelection {
	next := make(FacetSelection, len(f))
	for name, values := range f {
		next[name] = append([]string(nil), values...)
	}
	return next
}

// SearchIntent is the user's declared search state. Request builders
// derive everything else from it.
type SearchIntent struct {
	// Query is the free text, possibly empty.
	Query string `json:"query"`

	// Facets holds the selected facet values.
	Facets FacetSelection `json:"facets,omitempty"`

	// Page is the 1-based page number.
	Page int `json:"page"`

	// Sort is relevance or an explicit sort clause.
	Sort SortOption `json:"sort"`

	// Mode is simple or semantic. Ignored when Fuzzy is above zero.
	Mode QueryMode `json:"mode"`

	// Fuzzy is the edit-distance level, 0 (off) to MaxFuzzyLevel.
	Fuzzy int `json:"fuzzy"`
}

// NewSearchIntent returns the initial intent: empty query, first page,
// relevance sort, simple mode.
func NewSearchIntent() SearchIntent {
	return SearchIntent{
		Facets: FacetSelection{},
		Page:   1,
		Sort:   SortRelevance,
		Mode:   QueryModeSimple,
	}
}

// Normalized fills zero values with their defaults and drops facets
// without values. The receiver's selection is not modified.
func (i SearchIntent) Normalized() SearchIntent {
	if i.Page == 0 {
		i.Page = 1
	}
	if i.Sort == "" {
		i.Sort = SortRelevance
	}
	if i.Mode == "" {
		i.Mode = QueryModeSimple
	}
	facets := make(FacetSelection, len(i.Facets))
	for name, values := range i.Facets {
		if len(values) > 0 {
			facets[name] = values
		}
	}
	i.Facets = facets
	return i
}

// Validate checks page, fuzzy level, mode and sort.
func (i SearchIntent) Validate() error {
	if i.Page < 1 {
		return fmt.Errorf("%w: page must be at least 1, got %d", ErrInvalidInput, i.Page)
	}
	if i.Fuzzy < 0 || i.Fuzzy > MaxFuzzyLevel {
		return fmt.Errorf("%w: fuzzy level must be between 0 and %d, got %d", ErrInvalidInput, MaxFuzzyLevel, i.Fuzzy)
	}
	if !i.Mode.IsValid() {
		return fmt.Errorf("%w: unknown query mode %q", ErrInvalidInput, i.Mode)
	}
	if !i.Sort.IsValid() {
		return fmt.Errorf("%w: unknown sort %q", ErrInvalidInput, i.Sort)
	}
	return nil
}

// HasQuery reports whether the query has non-whitespace text.
func (i SearchIntent) HasQuery() bool {
	return strings.TrimSpace(i.Query) != ""
}

// IsFieldName reports whether s is a plain identifier usable as an index field.
func IsFieldName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
