package domain

import "fmt"

// SearchMode is the resolved, mutually exclusive way a query is sent to
// the search service. It is one of PlainMode, FuzzyMode or SemanticMode.
type SearchMode interface {
	// Name returns a short identifier for logs and display.
	Name() string

	searchMode()
}

// PlainMode sends the query text unmodified with the simple syntax.
type PlainMode struct{}

// FuzzyMode suffixes every query token with ~Level using the full syntax.
type FuzzyMode struct {
	Level int
}

// SemanticMode requests semantic ranking with captions and answers.
type SemanticMode struct{}

func (PlainMode) searchMode()    {}
func (FuzzyMode) searchMode()    {}
func (SemanticMode) searchMode() {}

// Name implements SearchMode.
func (PlainMode) Name() string { return "plain" }

// Name implements SearchMode.
func (m FuzzyMode) Name() string { return fmt.Sprintf("fuzzy~%d", m.Level) }

// Name implements SearchMode.
func (SemanticMode) Name() string { return "semantic" }
