package services

import (
	"strconv"
	"strings"

	"github.com/custodia-labs/mbsearch/internal/core/domain"
)

// matchAll is the search text that matches every document.
const matchAll = "*"

// ResolveMode decides the search mode for an intent.
// Fuzzy matching wins over semantic ranking.
func ResolveMode(intent domain.SearchIntent) domain.SearchMode {
	if intent.Fuzzy > 0 {
		level := intent.Fuzzy
		if level > domain.MaxFuzzyLevel {
			level = domain.MaxFuzzyLevel
		}
		return domain.FuzzyMode{Level: level}
	}
	if intent.Mode == domain.QueryModeSemantic {
		return domain.SemanticMode{}
	}
	return domain.PlainMode{}
}

// applyMode sets the search text and the mode-specific parameters.
func applyMode(req *domain.SearchRequest, query string, mode domain.SearchMode, q domain.QuerySettings) {
	switch m := mode.(type) {
	case domain.FuzzyMode:
		req.Search = fuzzyText(query, m.Level)
		req.QueryType = "full"
		req.SearchMode = "all"
	case domain.SemanticMode:
		req.Search = searchText(query)
		req.QueryType = "semantic"
		req.QueryLanguage = q.QueryLanguage
		req.SemanticConfiguration = q.SemanticConfiguration
		req.Answers = q.Answers
		req.Captions = q.Captions
	default:
		req.Search = searchText(query)
		req.QueryType = "simple"
	}
}

// searchText returns query unmodified, or matchAll when it is blank.
func searchText(query string) string {
	if strings.TrimSpace(query) == "" {
		return matchAll
	}
	return query
}

// fuzzyText suffixes each whitespace-separated token with ~level.
func fuzzyText(query string, level int) string {
	tokens := strings.Fields(query)
	if len(tokens) == 0 {
		return matchAll
	}
	suffix := "~" + strconv.Itoa(level)
	for i, tok := range tokens {
		tokens[i] = tok + suffix
	}
	return strings.Join(tokens, " ")
}
