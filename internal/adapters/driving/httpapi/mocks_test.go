package httpapi

import (
	"context"
	"sync"

	"github.com/custodia-labs/mbsearch/internal/core/domain"
)

type mockSearchService struct {
	SearchFunc func(ctx context.Context, intent domain.SearchIntent) (*domain.SearchPage, error)
	PingFunc   func(ctx context.Context) (*domain.PingResult, error)
}

func (m *mockSearchService) Search(ctx context.Context, intent domain.SearchIntent) (*domain.SearchPage, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, intent)
	}
	return &domain.SearchPage{Page: intent.Page, PageSize: 10}, nil
}

func (m *mockSearchService) Ping(ctx context.Context) (*domain.PingResult, error) {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return &domain.PingResult{}, nil
}

type mockItemService struct {
	GetFunc func(ctx context.Context, itemNum string) (*domain.ScheduleItem, error)
}

func (m *mockItemService) Get(ctx context.Context, itemNum string) (*domain.ScheduleItem, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, itemNum)
	}
	return nil, domain.ErrNotFound
}

type mockExportService struct {
	StartFunc   func(ctx context.Context, intent domain.SearchIntent, format domain.ExportFormat) (*domain.ExportJob, error)
	HistoryFunc func(ctx context.Context, limit int) ([]domain.ExportRecord, error)
	current     domain.ExportJob

	mu          sync.Mutex
	subscribers map[int]func(domain.ExportProgress)
	nextID      int
}

func (m *mockExportService) Export(
	ctx context.Context, intent domain.SearchIntent, format domain.ExportFormat,
) (*domain.ExportJob, error) {
	return m.Start(ctx, intent, format)
}

func (m *mockExportService) Start(
	ctx context.Context, intent domain.SearchIntent, format domain.ExportFormat,
) (*domain.ExportJob, error) {
	if m.StartFunc != nil {
		return m.StartFunc(ctx, intent, format)
	}
	return &domain.ExportJob{ID: "job-1", Format: format, Intent: intent, Running: true}, nil
}

func (m *mockExportService) Current() domain.ExportJob {
	return m.current
}

func (m *mockExportService) Subscribe(fn func(domain.ExportProgress)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.subscribers == nil {
		m.subscribers = make(map[int]func(domain.ExportProgress))
	}
	id := m.nextID
	m.nextID++
	m.subscribers[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subscribers, id)
	}
}

func (m *mockExportService) History(ctx context.Context, limit int) ([]domain.ExportRecord, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, limit)
	}
	return []domain.ExportRecord{}, nil
}

// subscriberCount returns the number of live subscriptions.
func (m *mockExportService) subscriberCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subscribers)
}

// emit sends p to every subscriber.
func (m *mockExportService) emit(p domain.ExportProgress) {
	m.mu.Lock()
	fns := make([]func(domain.ExportProgress), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		fns = append(fns, fn)
	}
	m.mu.Unlock()
	for _, fn := range fns {
		fn(p)
	}
}

type mockDownloads map[string]domain.ExportArtifact

func (m mockDownloads) Get(jobID string) (domain.ExportArtifact, bool) {
	a, ok := m[jobID]
	return a, ok
}
