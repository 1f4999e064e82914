package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFacetSelection_Toggle(t *testing.T) {
	t.Run("adds value to empty selection", func(t *testing.T) {
		sel := FacetSelection{}
		next := sel.Toggle("CategoryDescription", "Surgery")

		assert.Equal(t, []string{"Surgery"}, next["CategoryDescription"])
		assert.Empty(t, sel, "original selection must not change")
	})

	t.Run("appends in selection order", func(t *testing.T) {
		sel := FacetSelection{}.
			Toggle("GroupDescription", "b").
			Toggle("GroupDescription", "a")

		assert.Equal(t, []string{"b", "a"}, sel["GroupDescription"])
	})

	t.Run("removes existing value", func(t *testing.T) {
		sel := FacetSelection{"GroupDescription": {"a", "b", "c"}}
		next := sel.Toggle("GroupDescription", "b")

		assert.Equal(t, []string{"a", "c"}, next["GroupDescription"])
		assert.Equal(t, []string{"a", "b", "c"}, sel["GroupDescription"])
	})

	t.Run("removing last value removes facet", func(t *testing.T) {
		sel := FacetSelection{"GroupDescription": {"a"}}
		next := sel.Toggle("GroupDescription", "a")

		_, ok := next["GroupDescription"]
		assert.False(t, ok)
		assert.True(t, next.IsEmpty())
	})

	t.Run("toggle twice restores selection", func(t *testing.T) {
		sel := FacetSelection{"CategoryDescription": {"x"}}
		next := sel.Toggle("GroupDescription", "y").Toggle("GroupDescription", "y")

		assert.Equal(t, sel, next)
	})
}

func TestFacetSelection_Clear(t *testing.T) {
	sel := FacetSelection{"a": {"1"}, "b": {"2"}}

	one := sel.Clear("a")
	assert.Equal(t, FacetSelection{"b": {"2"}}, one)
	assert.Len(t, sel, 2)

	all := sel.Clear("")
	assert.True(t, all.IsEmpty())
}

func TestFacetSelection_NamesSkipsEmpty(t *testing.T) {
	sel := FacetSelection{"z": {"1"}, "a": {"2"}, "m": {}}

	assert.Equal(t, []string{"a", "z"}, sel.Names())
	assert.True(t, sel.Has("z", "1"))
	assert.False(t, sel.Has("m", "1"))
}

func TestSearchIntent_Defaults(t *testing.T) {
	intent := NewSearchIntent()

	assert.Equal(t, 1, intent.Page)
	assert.Equal(t, SortRelevance, intent.Sort)
	assert.Equal(t, QueryModeSimple, intent.Mode)
	assert.Equal(t, 0, intent.Fuzzy)
	assert.NoError(t, intent.Validate())

	normalized := SearchIntent{Query: "knee"}.Normalized()
	assert.Equal(t, 1, normalized.Page)
	assert.Equal(t, SortRelevance, normalized.Sort)
	assert.NotNil(t, normalized.Facets)
}

func TestSearchIntent_Normalized_DropsEmptyFacets(t *testing.T) {
	var intent SearchIntent
	require.NoError(t, json.Unmarshal([]byte(`{"query":"knee","facets":{"GroupDescription":[],"CategoryDescription":["Operations"]}}`), &intent))

	normalized := intent.Normalized()

	assert.Equal(t, FacetSelection{"CategoryDescription": {"Operations"}}, normalized.Facets)
	assert.Contains(t, intent.Facets, "GroupDescription", "the original selection is left alone")
}

func TestSearchIntent_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*SearchIntent)
		valid  bool
	}{
		{"defaults", func(*SearchIntent) {}, true},
		{"page zero", func(i *SearchIntent) { i.Page = 0 }, false},
		{"fuzzy high", func(i *SearchIntent) { i.Fuzzy = 3 }, true},
		{"fuzzy too high", func(i *SearchIntent) { i.Fuzzy = 4 }, false},
		{"fuzzy negative", func(i *SearchIntent) { i.Fuzzy = -1 }, false},
		{"semantic", func(i *SearchIntent) { i.Mode = QueryModeSemantic }, true},
		{"unknown mode", func(i *SearchIntent) { i.Mode = "vector" }, false},
		{"explicit sort", func(i *SearchIntent) { i.Sort = "ScheduleFee desc" }, true},
		{"bad sort direction", func(i *SearchIntent) { i.Sort = "ScheduleFee down" }, false},
		{"sort injection", func(i *SearchIntent) { i.Sort = "ItemNum asc, x desc" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent := NewSearchIntent()
			tt.modify(&intent)
			err := intent.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidInput)
			}
		})
	}
}

func TestSearchIntent_HasQuery(t *testing.T) {
	assert.False(t, SearchIntent{Query: ""}.HasQuery())
	assert.False(t, SearchIntent{Query: "  \t "}.HasQuery())
	assert.True(t, SearchIntent{Query: " knee "}.HasQuery())
}

func TestSortChoices_AreValid(t *testing.T) {
	choices := SortChoices()
	require.NotEmpty(t, choices)
	assert.Equal(t, SortRelevance, choices[0].Option)
	for _, c := range choices {
		assert.True(t, c.Option.IsValid(), c.Option)
	}
}

func TestIsFieldName(t *testing.T) {
	assert.True(t, IsFieldName("CategoryDescription"))
	assert.True(t, IsFieldName("Benefit75"))
	assert.True(t, IsFieldName("_x"))
	assert.False(t, IsFieldName(""))
	assert.False(t, IsFieldName("9abc"))
	assert.False(t, IsFieldName("a b"))
	assert.False(t, IsFieldName("a'b"))
	assert.False(t, IsFieldName("search.score()"))
}

func TestFuzzyLabel(t *testing.T) {
	assert.Equal(t, "Off", FuzzyLabel(0))
	assert.Equal(t, "Low", FuzzyLabel(1))
	assert.Equal(t, "Medium", FuzzyLabel(2))
	assert.Equal(t, "High", FuzzyLabel(3))
}

func TestSearchMode_Names(t *testing.T) {
	modes := []SearchMode{PlainMode{}, FuzzyMode{Level: 2}, SemanticMode{}}
	names := make([]string, 0, len(modes))
	for _, m := range modes {
		names = append(names, m.Name())
	}
	assert.Equal(t, []string{"plain", "fuzzy~2", "semantic"}, names)
}
