package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/mbsearch/internal/core/domain"
)

// numericLiteral matches the values accepted for unquoted fields.
var numericLiteral = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)

// FilterBuilder turns a facet selection into an OData filter expression.
//
// A facet with one value becomes a bare comparison (Field eq 'v'). A facet
// with several values becomes a parenthesized or-chain. Facets are joined
// with "and" in ascending name order; values keep selection order.
type FilterBuilder struct {
	unquoted map[string]bool
}

// NewFilterBuilder creates a builder. Values of unquotedFields are emitted
// as numeric literals; every other field is quoted as a string.
func NewFilterBuilder(unquotedFields []string) *FilterBuilder {
	unquoted := make(map[string]bool, len(unquotedFields))
	for _, f := range unquotedFields {
		unquoted[f] = true
	}
	return &FilterBuilder{unquoted: unquoted}
}

// Build returns the filter for sel, or "" when nothing is selected.
func (b *FilterBuilder) Build(sel domain.FacetSelection) (string, error) {
	names := sel.Names()
	clauses := make([]string, 0, len(names))

	for _, name := range names {
		if !domain.IsFieldName(name) {
			return "", fmt.Errorf("%w: invalid facet field %q", domain.ErrInvalidInput, name)
		}

		values := sel[name]
		comparisons := make([]string, 0, len(values))
		for _, v := range values {
			lit, err := b.literal(name, v)
			if err != nil {
				return "", err
			}
			comparisons = append(comparisons, name+" eq "+lit)
		}

		if len(comparisons) == 1 {
			clauses = append(clauses, comparisons[0])
		} else {
			clauses = append(clauses, "("+strings.Join(comparisons, " or ")+")")
		}
	}

	return strings.Join(clauses, " and "), nil
}

// literal formats value for field.
func (b *FilterBuilder) literal(field, value string) (string, error) {
	if b.unquoted[field] {
		value = strings.TrimSpace(value)
		if !numericLiteral.MatchString(value) {
			return "", fmt.Errorf("%w: %s requires a numeric value, got %q", domain.ErrInvalidInput, field, value)
		}
		return value, nil
	}
	return quote(value), nil
}

// quote wraps s in single quotes, doubling embedded quotes.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
