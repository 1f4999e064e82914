package domain

import "time"

// SearchRequest is the request body sent to the search service.
// Only request builders construct it.
type SearchRequest struct {
	Search                string   `json:"search"`
	QueryType             string   `json:"queryType"`
	SearchMode            string   `json:"searchMode,omitempty"`
	SearchFields          string   `json:"searchFields,omitempty"`
	Select                string   `json:"select,omitempty"`
	Count                 bool     `json:"count"`
	Facets                []string `json:"facets,omitempty"`
	Filter                string   `json:"filter,omitempty"`
	OrderBy               string   `json:"orderby,omitempty"`
	Skip                  int      `json:"skip"`
	Top                   int      `json:"top"`
	Highlight             string   `json:"highlight,omitempty"`
	HighlightPreTag       string   `json:"highlightPreTag,omitempty"`
	HighlightPostTag      string   `json:"highlightPostTag,omitempty"`
	QueryLanguage         string   `json:"queryLanguage,omitempty"`
	SemanticConfiguration string   `json:"semanticConfiguration,omitempty"`
	Answers               string   `json:"answers,omitempty"`
	Captions              string   `json:"captions,omitempty"`
}

// SearchResponse is the decoded response of the search service, before
// normalization.
type SearchResponse struct {
	// Count is the total number of matches, nil when not requested.
	Count *int64

	// Documents holds the hits in rank order.
	Documents []RawDocument

	// Facets maps facet field name to value buckets in service order.
	Facets map[string][]RawFacetValue

	// Answers holds semantic answers, nil when the service sent none.
	Answers []SemanticAnswer
}

// RawDocument is one hit with its per-document search metadata.
type RawDocument struct {
	Item          ScheduleItem
	Score         float64
	RerankerScore float64
	Highlights    map[string][]string
	Captions      []Caption
}

// Caption is a semantic caption extracted for one document.
type Caption struct {
	Text       string `json:"text"`
	Highlights string `json:"highlights,omitempty"`
}

// RawFacetValue is one facet bucket value as returned by the service.
type RawFacetValue struct {
	Value string
	Count int64
}

// SemanticAnswer is an extractive answer returned in semantic mode.
type SemanticAnswer struct {
	Key        string  `json:"key,omitempty"`
	Text       string  `json:"text"`
	Highlights string  `json:"highlights,omitempty"`
	Score      float64 `json:"score"`
}

// FacetValue is a facet bucket value with its selection state.
type FacetValue struct {
	Value    string `json:"value"`
	Count    int64  `json:"count"`
	Selected bool   `json:"selected"`
}

// FacetBucket groups the values of one facet field.
type FacetBucket struct {
	Name   string       `json:"name"`
	Label  string       `json:"label"`
	Values []FacetValue `json:"values"`
}

// ResultItem is a normalized hit.
type ResultItem struct {
	ScheduleItem

	// HighlightedDescription is the first description highlight fragment,
	// with the configured highlight tags. Empty when there was none.
	HighlightedDescription string `json:"highlightedDescription,omitempty"`

	// Caption is the first semantic caption text. Empty when there was none.
	Caption string `json:"caption,omitempty"`

	Score         float64 `json:"score,omitempty"`
	RerankerScore float64 `json:"rerankerScore,omitempty"`
}

// SearchPage is one normalized page of results.
type SearchPage struct {
	Results []ResultItem     `json:"results"`
	Facets  []FacetBucket    `json:"facets"`
	Count   int64            `json:"count"`
	Answers []SemanticAnswer `json:"answers,omitempty"`

	// Page and PageSize describe the window of Results within Count.
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// Range returns the 1-based positions of the first and last result on
// the page, or 0, 0 for an empty page.
func (p *SearchPage) Range() (first, last int64) {
	if len(p.Results) == 0 {
		return 0, 0
	}
	first = int64((p.Page-1)*p.PageSize) + 1
	last = first + int64(len(p.Results)) - 1
	return first, last
}

// TotalPages returns the number of pages for Count.
func (p *SearchPage) TotalPages() int {
	if p.PageSize <= 0 || p.Count <= 0 {
		return 0
	}
	return int((p.Count + int64(p.PageSize) - 1) / int64(p.PageSize))
}

// PingResult reports a successful connection check.
type PingResult struct {
	// Count is the number of documents in the index.
	Count int64 `json:"count"`

	// Latency is the round-trip time of the check.
	Latency time.Duration `json:"latency"`
}
