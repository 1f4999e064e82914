package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/mbsearch/internal/core/domain"
	"github.com/custodia-labs/mbsearch/internal/core/ports/driven"
	"github.com/custodia-labs/mbsearch/internal/core/ports/driving"
	"github.com/custodia-labs/mbsearch/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// Ensure ItemService implements the interface.
var _ driving.ItemService = (*ItemService)(nil)

// SearchService runs interactive searches against the search backend.
type SearchService struct {
	backend driven.SearchBackend
	planner *Planner
	now     func() time.Time
}

// NewSearchService creates a new search service.
func NewSearchService(backend driven.SearchBackend, planner *Planner) *SearchService {
	return &SearchService{
		backend: backend,
		planner: planner,
		now:     time.Now,
	}
}

// Search runs the intent and returns one normalized page.
func (s *SearchService) Search(ctx context.Context, intent domain.SearchIntent) (*domain.SearchPage, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q, page: %d, sort: %s", intent.Query, intent.Page, intent.Sort)

	if s.backend == nil {
		return nil, domain.ErrNotConfigured
	}

	req, err := s.planner.Builder().BuildSearch(intent)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	logger.Debug("Mode: %s, filter: %q, orderby: %q", ResolveMode(intent.Normalized()).Name(), req.Filter, req.OrderBy)

	resp, err := s.backend.Search(ctx, req)
	if err != nil {
		logger.Warn("Search failed: %v", err)
		return nil, fmt.Errorf("search: %w", err)
	}

	page := s.planner.Normalizer().Normalize(resp, intent)
	logger.Info("Results: %d of %d, facets: %d, answers: %d",
		len(page.Results), page.Count, len(page.Facets), len(page.Answers))
	return page, nil
}

// Ping checks the connection by counting all documents.
func (s *SearchService) Ping(ctx context.Context) (*domain.PingResult, error) {
	if s.backend == nil {
		return nil, domain.ErrNotConfigured
	}

	req, err := s.planner.Builder().BuildCount(domain.NewSearchIntent())
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	start := s.now()
	resp, err := s.backend.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}

	result := &domain.PingResult{Latency: s.now().Sub(start)}
	if resp.Count != nil {
		result.Count = *resp.Count
	}
	logger.Debug("Ping: %d documents in %s", result.Count, result.Latency)
	return result, nil
}

// ItemService looks up single schedule items by item number.
type ItemService struct {
	backend driven.SearchBackend
	planner *Planner
}

// NewItemService creates a new item service.
func NewItemService(backend driven.SearchBackend, planner *Planner) *ItemService {
	return &ItemService{
		backend: backend,
		planner: planner,
	}
}

// Get returns the item with the given number.
func (s *ItemService) Get(ctx context.Context, itemNum string) (*domain.ScheduleItem, error) {
	itemNum = strings.TrimSpace(itemNum)
	if itemNum == "" {
		return nil, fmt.Errorf("%w: item number is required", domain.ErrInvalidInput)
	}
	if s.backend == nil {
		return nil, domain.ErrNotConfigured
	}

	req, err := s.planner.Builder().BuildItem(itemNum)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.backend.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("get item %s: %w", itemNum, err)
	}
	if len(resp.Documents) == 0 {
		return nil, fmt.Errorf("item %s: %w", itemNum, domain.ErrNotFound)
	}

	item := resp.Documents[0].Item
	return &item, nil
}
