package mcp

import (
	"context"

	"github.com/custodia-labs/mbsearch/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	page   *domain.SearchPage
	err    error
	intent domain.SearchIntent
}

func (m *mockSearchService) Search(_ context.Context, intent domain.SearchIntent) (*domain.SearchPage, error) {
	m.intent = intent
	if m.err != nil {
		return nil, m.err
	}
	if m.page == nil {
		return &domain.SearchPage{Page: intent.Page, PageSize: 10}, nil
	}
	return m.page, nil
}

func (m *mockSearchService) Ping(_ context.Context) (*domain.PingResult, error) {
	return &domain.PingResult{}, m.err
}

// mockItemService is a mock implementation of driving.ItemService.
type mockItemService struct {
	item *domain.ScheduleItem
	err  error
}

func (m *mockItemService) Get(_ context.Context, _ string) (*domain.ScheduleItem, error) {
	return m.item, m.err
}

// mockExportService is a mock implementation of driving.ExportService.
type mockExportService struct {
	job     *domain.ExportJob
	records []domain.ExportRecord
	err     error
	format  domain.ExportFormat
	intent  domain.SearchIntent
}

func (m *mockExportService) Export(
	_ context.Context, intent domain.SearchIntent, format domain.ExportFormat,
) (*domain.ExportJob, error) {
	m.intent, m.format = intent, format
	return m.job, m.err
}

func (m *mockExportService) Start(
	ctx context.Context, intent domain.SearchIntent, format domain.ExportFormat,
) (*domain.ExportJob, error) {
	return m.Export(ctx, intent, format)
}

func (m *mockExportService) Current() domain.ExportJob {
	return domain.ExportJob{}
}

func (m *mockExportService) Subscribe(func(domain.ExportProgress)) func() {
	return func() {}
}

func (m *mockExportService) History(_ context.Context, _ int) ([]domain.ExportRecord, error) {
	return m.records, m.err
}
