package search

import (
	"context"
	"sync"

	"github.com/custodia-labs/mbsearch/internal/core/domain"
)

// MockSearchService implements driving.SearchService for testing.
type MockSearchService struct {
	mu         sync.Mutex
	intents    []domain.SearchIntent
	SearchFunc func(ctx context.Context, intent domain.SearchIntent) (*domain.SearchPage, error)
}

func (m *MockSearchService) Search(ctx context.Context, intent domain.SearchIntent) (*domain.SearchPage, error) {
	m.mu.Lock()
	m.intents = append(m.intents, intent)
	m.mu.Unlock()
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, intent)
	}
	return &domain.SearchPage{Page: intent.Page, PageSize: 10}, nil
}

func (m *MockSearchService) Ping(_ context.Context) (*domain.PingResult, error) {
	return &domain.PingResult{}, nil
}

func (m *MockSearchService) lastIntent() domain.SearchIntent {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.intents) == 0 {
		return domain.SearchIntent{}
	}
	return m.intents[len(m.intents)-1]
}

// MockExportService implements driving.ExportService for testing.
type MockExportService struct {
	StartFunc func(ctx context.Context, intent domain.SearchIntent, format domain.ExportFormat) (*domain.ExportJob, error)
}

func (m *MockExportService) Export(
	ctx context.Context,
	intent domain.SearchIntent,
	format domain.ExportFormat,
) (*domain.ExportJob, error) {
	return m.Start(ctx, intent, format)
}

func (m *MockExportService) Start(
	ctx context.Context,
	intent domain.SearchIntent,
	format domain.ExportFormat,
) (*domain.ExportJob, error) {
	if m.StartFunc != nil {
		return m.StartFunc(ctx, intent, format)
	}
	return &domain.ExportJob{ID: "job-1", Format: format, Intent: intent, Running: true}, nil
}

func (m *MockExportService) Current() domain.ExportJob {
	return domain.ExportJob{}
}

func (m *MockExportService) Subscribe(func(domain.ExportProgress)) func() {
	return func() {}
}

func (m *MockExportService) History(context.Context, int) ([]domain.ExportRecord, error) {
	return nil, nil
}
