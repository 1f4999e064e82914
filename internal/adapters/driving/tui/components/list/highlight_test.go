package list

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestSplitHighlights(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Segment
	}{
		{
			name: "no markers",
			text: "plain text",
			want: []Segment{{Text: "plain text"}},
		},
		{
			name: "one match",
			text: "a <mark>general</mark> practitioner",
			want: []Segment{
				{Text: "a "},
				{Text: "general", Match: true},
				{Text: " practitioner"},
			},
		},
		{
			name: "leading and adjacent matches",
			text: "<mark>level</mark><mark>c</mark> visit",
			want: []Segment{
				{Text: "level", Match: true},
				{Text: "c", Match: true},
				{Text: " visit"},
			},
		},
		{
			name: "unterminated",
			text: "open <mark>ended",
			want: []Segment{
				{Text: "open "},
				{Text: "ended", Match: true},
			},
		},
		{
			name: "empty",
			text: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitHighlights(tt.text, "<mark>", "</mark>"))
		})
	}
}

func TestRenderHighlights_StripsMarkers(t *testing.T) {
	plain := lipgloss.NewStyle()

	got := RenderHighlights("a <mark>general</mark> practitioner", "<mark>", "</mark>", 80, plain, plain)

	assert.Equal(t, "a general practitioner", got)
}

func TestRenderHighlights_Truncates(t *testing.T) {
	plain := lipgloss.NewStyle()

	got := RenderHighlights("abc <mark>defgh</mark> ijk", "<mark>", "</mark>", 10, plain, plain)

	assert.Equal(t, "abc def...", got)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		maxLen int
		want   string
	}{
		{"fits", "short", 10, "short"},
		{"exact", "exactly10!", 10, "exactly10!"},
		{"cut", "this is too long", 10, "this is..."},
		{"multibyte", "ééééééééééé", 6, "ééé..."},
		{"tiny", "abcdef", 2, "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.maxLen))
		})
	}
}
