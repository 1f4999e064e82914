package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/custodia-labs/mbsearch/internal/core/domain"
)

// intentFlags holds the flags shared by commands that run a search intent.
type intentFlags struct {
	facets []string
	page   int
	sort   string
	mode   string
	fuzzy  int
}

// register adds the intent flags to fs. Paging is only offered where it
// applies.
func (f *intentFlags) register(fs *pflag.FlagSet, paging bool) {
	fs.StringArrayVarP(&f.facets, "facet", "f", nil, "facet filter as Field=Value (repeatable)")
	fs.StringVarP(&f.sort, "sort", "s", string(domain.SortRelevance), `sort order: relevance or "Field asc|desc"`)
	fs.StringVarP(&f.mode, "mode", "m", string(domain.QueryModeSimple), "query mode: simple or semantic")
	fs.IntVar(&f.fuzzy, "fuzzy", 0, fmt.Sprintf("fuzzy matching level 0-%d (overrides --mode)", domain.MaxFuzzyLevel))
	if paging {
		fs.IntVarP(&f.page, "page", "p", 1, "page number")
	}
}

// intent builds a validated intent from the flags and the query words.
func (f *intentFlags) intent(args []string) (domain.SearchIntent, error) {
	intent := domain.NewSearchIntent()
	intent.Query = strings.Join(args, " ")
	if f.page != 0 {
		intent.Page = f.page
	}
	if f.sort != "" {
		intent.Sort = domain.SortOption(f.sort)
	}
	if f.mode != "" {
		intent.Mode = domain.QueryMode(strings.ToLower(f.mode))
	}
	intent.Fuzzy = f.fuzzy

	facets, err := parseFacets(f.facets)
	if err != nil {
		return domain.SearchIntent{}, err
	}
	intent.Facets = facets

	if err := intent.Validate(); err != nil {
		return domain.SearchIntent{}, err
	}
	return intent, nil
}

// parseFacets turns "Field=Value" pairs into a selection. Values keep
// their order; repeating a pair does not select it twice.
func parseFacets(pairs []string) (domain.FacetSelection, error) {
	selection := domain.FacetSelection{}
	for _, pair := range pairs {
		field, value, ok := strings.Cut(pair, "=")
		field = strings.TrimSpace(field)
		if !ok || value == "" || !domain.IsFieldName(field) {
			return nil, fmt.Errorf("%w: facet %q must be Field=Value", domain.ErrInvalidInput, pair)
		}
		if !selection.Has(field, value) {
			selection = selection.Toggle(field, value)
		}
	}
	return selection, nil
}
