package services

import (
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/mbsearch/internal/core/domain"
)

// countSelect is the only field selected by count requests.
const countSelect = "MBSItemId"

// RequestBuilder derives search service requests from an intent.
// It is pure: the same intent always yields the same request.
type RequestBuilder struct {
	query  domain.QuerySettings
	filter *FilterBuilder
	sort   SortResolver
}

// NewRequestBuilder creates a builder for the given query settings.
func NewRequestBuilder(q domain.QuerySettings) *RequestBuilder {
	return &RequestBuilder{
		query:  q,
		filter: NewFilterBuilder(q.UnquotedFields),
		sort:   SortResolver{ListingOrder: q.ListingSort},
	}
}

// BuildSearch returns the request for one page of results.
func (b *RequestBuilder) BuildSearch(intent domain.SearchIntent) (domain.SearchRequest, error) {
	intent, filter, err := b.prepare(intent)
	if err != nil {
		return domain.SearchRequest{}, err
	}

	req := domain.SearchRequest{
		SearchFields:     strings.Join(b.query.SearchFields, ","),
		Select:           strings.Join(b.query.SelectFields, ","),
		Count:            true,
		Facets:           append([]string(nil), b.query.FacetFields...),
		Filter:           filter,
		OrderBy:          b.sort.Resolve(intent.Sort, intent.Query),
		Skip:             (intent.Page - 1) * b.query.PageSize,
		Top:              b.query.PageSize,
		Highlight:        strings.Join(b.query.HighlightFields, ","),
		HighlightPreTag:  b.query.HighlightPreTag,
		HighlightPostTag: b.query.HighlightPostTag,
	}
	applyMode(&req, intent.Query, ResolveMode(intent), b.query)
	return req, nil
}

// BuildCount returns a minimal request that only reports the total count.
func (b *RequestBuilder) BuildCount(intent domain.SearchIntent) (domain.SearchRequest, error) {
	intent, filter, err := b.prepare(intent)
	if err != nil {
		return domain.SearchRequest{}, err
	}

	req := domain.SearchRequest{
		SearchFields: strings.Join(b.query.SearchFields, ","),
		Select:       countSelect,
		Count:        true,
		Filter:       filter,
		Skip:         0,
		Top:          1,
	}
	applyMode(&req, intent.Query, ResolveMode(intent), b.query)
	return req, nil
}

// BuildBatch returns the request for export batch index (0-based).
func (b *RequestBuilder) BuildBatch(intent domain.SearchIntent, index int) (domain.SearchRequest, error) {
	if index < 0 {
		return domain.SearchRequest{}, fmt.Errorf("%w: negative batch index %d", domain.ErrInvalidInput, index)
	}
	intent, filter, err := b.prepare(intent)
	if err != nil {
		return domain.SearchRequest{}, err
	}

	req := domain.SearchRequest{
		SearchFields: strings.Join(b.query.SearchFields, ","),
		Select:       strings.Join(b.query.SelectFields, ","),
		Count:        false,
		Filter:       filter,
		OrderBy:      b.sort.Resolve(intent.Sort, intent.Query),
		Skip:         index * b.query.MaxBatchSize,
		Top:          b.query.MaxBatchSize,
	}
	applyMode(&req, intent.Query, ResolveMode(intent), b.query)
	return req, nil
}

// itemField is the field item lookups filter on.
const itemField = "ItemNum"

// BuildItem returns the request that fetches one item with all fields.
func (b *RequestBuilder) BuildItem(itemNum string) (domain.SearchRequest, error) {
	intent := domain.NewSearchIntent()
	intent.Facets = domain.FacetSelection{itemField: {strings.TrimSpace(itemNum)}}
	intent, filter, err := b.prepare(intent)
	if err != nil {
		return domain.SearchRequest{}, err
	}

	req := domain.SearchRequest{
		Filter: filter,
		Top:    1,
	}
	applyMode(&req, intent.Query, ResolveMode(intent), b.query)
	return req, nil
}

// BatchCount returns how many batches cover total results.
func (b *RequestBuilder) BatchCount(total int64) int {
	size := int64(b.query.MaxBatchSize)
	if total <= 0 || size <= 0 {
		return 0
	}
	return int((total + size - 1) / size)
}

// prepare normalizes and validates the intent and builds its filter.
func (b *RequestBuilder) prepare(intent domain.SearchIntent) (domain.SearchIntent, string, error) {
	intent = intent.Normalized()
	if err := intent.Validate(); err != nil {
		return intent, "", err
	}
	filter, err := b.filter.Build(intent.Facets)
	if err != nil {
		return intent, "", err
	}
	return intent, filter, nil
}

// Planner holds the request builder and normalizer for the current query
// settings. Services share one Planner so a settings reload reaches all
// of them at once.
type Planner struct {
	mu         sync.RWMutex
	settings   domain.QuerySettings
	builder    *RequestBuilder
	normalizer *Normalizer
}

// NewPlanner creates a planner for q.
func NewPlanner(q domain.QuerySettings) *Planner {
	p := &Planner{}
	p.Configure(q)
	return p
}

// Configure replaces the query settings.
func (p *Planner) Configure(q domain.QuerySettings) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.settings = q
	p.builder = NewRequestBuilder(q)
	p.normalizer = NewNormalizer(q)
}

// Builder returns the current request builder.
func (p *Planner) Builder() *RequestBuilder {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.builder
}

// Normalizer returns the current response normalizer.
func (p *Planner) Normalizer() *Normalizer {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.normalizer
}

// Settings returns the current query settings.
func (p *Planner) Settings() domain.QuerySettings {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.settings
}
