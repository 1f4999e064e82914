package services

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/custodia-labs/mbsearch/internal/core/domain"
)

// --- Mock implementations ---

// mockBackend implements driven.SearchBackend for testing.
type mockBackend struct {
	mu       sync.Mutex
	requests []domain.SearchRequest
	SearchFn func(ctx context.Context, req domain.SearchRequest) (*domain.SearchResponse, error)
}

func (m *mockBackend) Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.SearchFn != nil {
		return m.SearchFn(ctx, req)
	}
	return &domain.SearchResponse{}, nil
}

func (m *mockBackend) Requests() []domain.SearchRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.SearchRequest(nil), m.requests...)
}

// mockEncoder implements driven.ExportEncoder by writing item numbers.
type mockEncoder struct {
	format domain.ExportFormat
	err    error
}

func (m *mockEncoder) Format() domain.ExportFormat { return m.format }

func (m *mockEncoder) ContentType() string { return "text/plain" }

func (m *mockEncoder) Encode(w io.Writer, items []domain.ScheduleItem) error {
	if m.err != nil {
		return m.err
	}
	nums := make([]string, len(items))
	for i, item := range items {
		nums[i] = string(item.ItemNum)
	}
	_, err := io.WriteString(w, strings.Join(nums, ","))
	return err
}

// mockSink implements driven.ExportSink in memory.
type mockSink struct {
	mu        sync.Mutex
	artifacts []domain.ExportArtifact
	err       error
}

func (m *mockSink) Deliver(_ context.Context, a domain.ExportArtifact) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.artifacts = append(m.artifacts, a)
	return "mem://" + a.Filename, nil
}

func (m *mockSink) Artifacts() []domain.ExportArtifact {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.ExportArtifact(nil), m.artifacts...)
}

// mockLedger implements driven.ExportLedger in memory.
type mockLedger struct {
	mu      sync.Mutex
	records []domain.ExportRecord
	err     error
}

func (m *mockLedger) Record(_ context.Context, r domain.ExportRecord) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append([]domain.ExportRecord{r}, m.records...)
	return nil
}

func (m *mockLedger) List(_ context.Context, limit int) ([]domain.ExportRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit > 0 && limit < len(m.records) {
		return append([]domain.ExportRecord(nil), m.records[:limit]...), nil
	}
	return append([]domain.ExportRecord(nil), m.records...), nil
}

var errBackend = errors.New("backend unavailable")

// countPtr returns a pointer to n.
func countPtr(n int64) *int64 {
	return &n
}

// itemDocs returns documents numbered from start.
func itemDocs(start, n int) []domain.RawDocument {
	docs := make([]domain.RawDocument, n)
	for i := range docs {
		docs[i] = domain.RawDocument{Item: domain.ScheduleItem{
			ItemNum:     domain.Text(strconv.Itoa(start + i)),
			Description: "Item " + strconv.Itoa(start+i),
		}}
	}
	return docs
}
