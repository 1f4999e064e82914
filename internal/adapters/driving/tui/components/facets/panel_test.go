package facets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mbsearch/internal/core/domain"
)

func sampleBuckets() []domain.FacetBucket {
	return []domain.FacetBucket{
		{
			Name:  "CategoryDescription",
			Label: "Category",
			Values: []domain.FacetValue{
				{Value: "Professional Attendances", Count: 400},
				{Value: "diagnostic procedures", Count: 120},
				{Value: "Miscellaneous Services", Count: 80, Selected: true},
			},
		},
		{
			Name:  "GroupDescription",
			Label: "Group",
			Values: []domain.FacetValue{
				{Value: "General Practitioner", Count: 50},
			},
		},
	}
}

func TestNewPanel(t *testing.T) {
	p := NewPanel(nil)

	require.NotNil(t, p)
	assert.True(t, p.IsEmpty())
	assert.False(t, p.Focused())
	_, _, ok := p.Current()
	assert.False(t, ok)
}

func TestPanel_SetBuckets_SortsValuesAlphabetically(t *testing.T) {
	p := NewPanel(nil)

	p.SetBuckets(sampleBuckets())

	facet, value, ok := p.Current()
	require.True(t, ok)
	assert.Equal(t, "CategoryDescription", facet)
	assert.Equal(t, "diagnostic procedures", value)

	p.MoveDown()
	_, value, _ = p.Current()
	assert.Equal(t, "Miscellaneous Services", value)

	p.MoveDown()
	_, value, _ = p.Current()
	assert.Equal(t, "Professional Attendances", value)
}

func TestPanel_MoveSkipsHeaders(t *testing.T) {
	p := NewPanel(nil)
	p.SetBuckets(sampleBuckets())

	p.MoveDown()
	p.MoveDown()
	p.MoveDown()

	facet, value, ok := p.Current()
	require.True(t, ok)
	assert.Equal(t, "GroupDescription", facet)
	assert.Equal(t, "General Practitioner", value)

	p.MoveDown()
	_, value, _ = p.Current()
	assert.Equal(t, "General Practitioner", value)

	p.MoveUp()
	facet, _, _ = p.Current()
	assert.Equal(t, "CategoryDescription", facet)
}

func TestPanel_MoveUp_AtTop(t *testing.T) {
	p := NewPanel(nil)
	p.SetBuckets(sampleBuckets())

	p.MoveUp()

	_, value, ok := p.Current()
	require.True(t, ok)
	assert.Equal(t, "diagnostic procedures", value)
}

func TestPanel_SetBuckets_KeepsCursor(t *testing.T) {
	p := NewPanel(nil)
	p.SetBuckets(sampleBuckets())
	p.MoveDown()

	updated := sampleBuckets()
	updated[0].Values[2].Selected = false
	p.SetBuckets(updated)

	_, value, ok := p.Current()
	require.True(t, ok)
	assert.Equal(t, "Miscellaneous Services", value)
}

func TestPanel_SetBuckets_ResetsCursorWhenValueGone(t *testing.T) {
	p := NewPanel(nil)
	p.SetBuckets(sampleBuckets())
	p.MoveDown()

	p.SetBuckets(sampleBuckets()[1:])

	facet, value, ok := p.Current()
	require.True(t, ok)
	assert.Equal(t, "GroupDescription", facet)
	assert.Equal(t, "General Practitioner", value)
}

func TestPanel_SetBuckets_DoesNotReorderInput(t *testing.T) {
	p := NewPanel(nil)
	buckets := sampleBuckets()

	p.SetBuckets(buckets)

	assert.Equal(t, "Professional Attendances", buckets[0].Values[0].Value)
}

func TestPanel_FocusBlur(t *testing.T) {
	p := NewPanel(nil)

	p.Focus()
	assert.True(t, p.Focused())

	p.Blur()
	assert.False(t, p.Focused())
}

func TestPanel_View(t *testing.T) {
	p := NewPanel(nil)
	p.SetDimensions(60, 20)
	p.SetBuckets(sampleBuckets())

	view := p.View()

	assert.Contains(t, view, "Category")
	assert.Contains(t, view, "Group")
	assert.Contains(t, view, "[x] Miscellaneous Services")
	assert.Contains(t, view, "[ ] diagnostic procedures")
	assert.Contains(t, view, "(400)")
}

func TestPanel_View_Empty(t *testing.T) {
	p := NewPanel(nil)

	assert.Contains(t, p.View(), "No facets")
}

func TestPanel_View_TruncatesLongValues(t *testing.T) {
	p := NewPanel(nil)
	p.SetDimensions(24, 20)
	p.SetBuckets([]domain.FacetBucket{{
		Name:   "GroupDescription",
		Label:  "Group",
		Values: []domain.FacetValue{{Value: "A very long facet value that cannot fit", Count: 1}},
	}})

	view := p.View()

	assert.Contains(t, view, "...")
	assert.NotContains(t, view, "cannot fit")
}
