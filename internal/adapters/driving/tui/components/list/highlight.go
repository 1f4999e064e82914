package list

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const ellipsis = "..."

// Segment is a run of text that is either a highlight match or plain.
type Segment struct {
	Text  string
	Match bool
}

// SplitHighlights splits text on the pre/post highlight markers. An
// unterminated marker highlights the rest of the text.
func SplitHighlights(text, pre, post string) []Segment {
	var segments []Segment
	for text != "" {
		i := strings.Index(text, pre)
		if i < 0 {
			segments = append(segments, Segment{Text: text})
			break
		}
		if i > 0 {
			segments = append(segments, Segment{Text: text[:i]})
		}
		text = text[i+len(pre):]

		j := strings.Index(text, post)
		if j < 0 {
			segments = append(segments, Segment{Text: text, Match: true})
			break
		}
		if j > 0 {
			segments = append(segments, Segment{Text: text[:j], Match: true})
		}
		text = text[j+len(post):]
	}
	return segments
}

// RenderHighlights renders text with matched segments in the match style,
// truncated to maxLen visible runes.
func RenderHighlights(text, pre, post string, maxLen int, normal, match lipgloss.Style) string {
	segments := truncateSegments(SplitHighlights(text, pre, post), maxLen)

	var b strings.Builder
	for _, seg := range segments {
		if seg.Match {
			b.WriteString(match.Render(seg.Text))
		} else {
			b.WriteString(normal.Render(seg.Text))
		}
	}
	return b.String()
}

// truncateSegments cuts segments so their combined text fits in maxLen
// runes, ending with an ellipsis when anything was dropped.
func truncateSegments(segments []Segment, maxLen int) []Segment {
	total := 0
	for _, seg := range segments {
		total += len([]rune(seg.Text))
	}
	if total <= maxLen {
		return segments
	}

	budget := maxLen - len(ellipsis)
	if budget < 0 {
		budget = 0
	}
	out := make([]Segment, 0, len(segments))
	for _, seg := range segments {
		runes := []rune(seg.Text)
		if len(runes) <= budget {
			out = append(out, seg)
			budget -= len(runes)
			continue
		}
		if budget > 0 {
			out = append(out, Segment{Text: string(runes[:budget]), Match: seg.Match})
		}
		break
	}
	return append(out, Segment{Text: ellipsis})
}

// Truncate shortens s to maxLen runes, ending with an ellipsis.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= len(ellipsis) {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-len(ellipsis)]) + ellipsis
}
