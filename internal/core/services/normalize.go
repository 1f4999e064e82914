package services

import (
	"github.com/custodia-labs/mbsearch/internal/core/domain"
)

// descriptionField is the field whose highlight becomes HighlightedDescription.
const descriptionField = "Description"

// Normalizer converts raw search service responses into result pages.
type Normalizer struct {
	query domain.QuerySettings
}

// NewNormalizer creates a normalizer for q.
func NewNormalizer(q domain.QuerySettings) *Normalizer {
	return &Normalizer{query: q}
}

// Normalize builds the page for resp. Selection state comes from intent.
func (n *Normalizer) Normalize(resp *domain.SearchResponse, intent domain.SearchIntent) *domain.SearchPage {
	intent = intent.Normalized()
	page := &domain.SearchPage{
		Results:  n.results(resp),
		Facets:   n.facets(resp, intent.Facets),
		Page:     intent.Page,
		PageSize: n.query.PageSize,
	}
	if resp == nil {
		return page
	}
	if resp.Count != nil {
		page.Count = *resp.Count
	}
	if len(resp.Answers) > 0 {
		page.Answers = append([]domain.SemanticAnswer(nil), resp.Answers...)
	}
	return page
}

// results maps document i to result i.
func (n *Normalizer) results(resp *domain.SearchResponse) []domain.ResultItem {
	if resp == nil {
		return []domain.ResultItem{}
	}

	results := make([]domain.ResultItem, len(resp.Documents))
	for i := range resp.Documents {
		doc := &resp.Documents[i]
		item := domain.ResultItem{
			ScheduleItem:  doc.Item,
			Score:         doc.Score,
			RerankerScore: doc.RerankerScore,
		}
		if fragments := doc.Highlights[descriptionField]; len(fragments) > 0 {
			item.HighlightedDescription = fragments[0]
		}
		if len(doc.Captions) > 0 {
			item.Caption = doc.Captions[0].Text
		}
		results[i] = item
	}
	return results
}

// facets keeps configured facet fields only, in configured order.
func (n *Normalizer) facets(resp *domain.SearchResponse, selected domain.FacetSelection) []domain.FacetBucket {
	buckets := make([]domain.FacetBucket, 0, len(n.query.FacetFields))
	if resp == nil {
		return buckets
	}

	for _, field := range n.query.FacetFields {
		raw, ok := resp.Facets[field]
		if !ok {
			continue
		}
		values := make([]domain.FacetValue, 0, len(raw))
		for _, v := range raw {
			count := v.Count
			if count < 0 {
				count = 0
			}
			values = append(values, domain.FacetValue{
				Value:    v.Value,
				Count:    count,
				Selected: selected.Has(field, v.Value),
			})
		}
		buckets = append(buckets, domain.FacetBucket{
			Name:   field,
			Label:  n.query.FacetLabel(field),
			Values: values,
		})
	}
	return buckets
}
