package azure

import (
	"encoding/json"

	"github.com/custodia-labs/mbsearch/internal/core/domain"
)

// searchResponse is the docs/search response body.
type searchResponse struct {
	Count   *int64                  `json:"@odata.count"`
	Value   []document              `json:"value"`
	Facets  map[string][]facetValue `json:"@search.facets"`
	Answers []domain.SemanticAnswer `json:"@search.answers"`
}

// document is one hit: the item fields plus @search.* metadata.
type document struct {
	domain.RawDocument
}

// documentMeta holds the per-document search metadata.
type documentMeta struct {
	Score         float64             `json:"@search.score"`
	RerankerScore float64             `json:"@search.rerankerScore"`
	Highlights    map[string][]string `json:"@search.highlights"`
	Captions      []domain.Caption    `json:"@search.captions"`
}

// UnmarshalJSON decodes the item and its metadata from the same object.
func (d *document) UnmarshalJSON(data []byte) error {
	var item domain.ScheduleItem
	if err := json.Unmarshal(data, &item); err != nil {
		return err
	}
	var meta documentMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return err
	}
	d.RawDocument = domain.RawDocument{
		Item:          item,
		Score:         meta.Score,
		RerankerScore: meta.RerankerScore,
		Highlights:    meta.Highlights,
		Captions:      meta.Captions,
	}
	return nil
}

// facetValue is one facet bucket. Values of numeric fields arrive as numbers.
type facetValue struct {
	Value domain.Text `json:"value"`
	Count int64       `json:"count"`
}

// errorResponse is the error body returned with non-2xx statuses.
type errorResponse struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// toDomain converts the wire response.
func (r *searchResponse) toDomain() *domain.SearchResponse {
	resp := &domain.SearchResponse{
		Count:     r.Count,
		Documents: make([]domain.RawDocument, len(r.Value)),
		Answers:   r.Answers,
	}
	for i := range r.Value {
		resp.Documents[i] = r.Value[i].RawDocument
	}
	if len(r.Facets) > 0 {
		resp.Facets = make(map[string][]domain.RawFacetValue, len(r.Facets))
		for name, values := range r.Facets {
			out := make([]domain.RawFacetValue, len(values))
			for i, v := range values {
				out[i] = domain.RawFacetValue{Value: string(v.Value), Count: v.Count}
			}
			resp.Facets[name] = out
		}
	}
	return resp
}
