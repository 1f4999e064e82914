package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/mbsearch/internal/core/domain"
	"github.com/custodia-labs/mbsearch/internal/core/ports/driving"
)

// mockSearchService records intents and returns a canned page.
type mockSearchService struct {
	page    *domain.SearchPage
	err     error
	intents []domain.SearchIntent
}

func (m *mockSearchService) Search(_ context.Context, intent domain.SearchIntent) (*domain.SearchPage, error) {
	m.intents = append(m.intents, intent)
	if m.err != nil {
		return nil, m.err
	}
	if m.page == nil {
		return &domain.SearchPage{Page: intent.Page, PageSize: 10}, nil
	}
	return m.page, nil
}

func (m *mockSearchService) Ping(context.Context) (*domain.PingResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.PingResult{Count: 5989, Latency: 123456789 * time.Nanosecond}, nil
}

func (m *mockSearchService) lastIntent() domain.SearchIntent {
	if len(m.intents) == 0 {
		return domain.SearchIntent{}
	}
	return m.intents[len(m.intents)-1]
}

// mockItemService returns items from a map.
type mockItemService struct {
	items map[string]domain.ScheduleItem
	err   error
}

func (m *mockItemService) Get(_ context.Context, num string) (*domain.ScheduleItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	item, ok := m.items[num]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &item, nil
}

// mockExportService runs exports synchronously, publishing events.
type mockExportService struct {
	job     *domain.ExportJob
	err     error
	events  []domain.ExportProgress
	records []domain.ExportRecord
	subs    []func(domain.ExportProgress)

	intent domain.SearchIntent
	format domain.ExportFormat
	limit  int
}

func (m *mockExportService) Export(_ context.Context, intent domain.SearchIntent, format domain.ExportFormat) (*domain.ExportJob, error) {
	m.intent = intent
	m.format = format
	for _, ev := range m.events {
		for _, fn := range m.subs {
			fn(ev)
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.job, nil
}

func (m *mockExportService) Start(ctx context.Context, intent domain.SearchIntent, format domain.ExportFormat) (*domain.ExportJob, error) {
	return m.Export(ctx, intent, format)
}

func (m *mockExportService) Current() domain.ExportJob {
	if m.job == nil {
		return domain.ExportJob{State: domain.ExportIdle}
	}
	return *m.job
}

func (m *mockExportService) Subscribe(fn func(domain.ExportProgress)) func() {
	m.subs = append(m.subs, fn)
	return func() { m.subs = nil }
}

func (m *mockExportService) History(_ context.Context, limit int) ([]domain.ExportRecord, error) {
	m.limit = limit
	return m.records, m.err
}

// mockSettingsService keeps settings as display strings.
type mockSettingsService struct {
	values  map[string]string
	keys    []string
	invalid error
	setErr  error
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{
		keys: []string{"search.api_key", "search.endpoint", "search.page_size", "export.dir", "server.addr"},
		values: map[string]string{
			"search.api_key":   "0123456789abcdef",
			"search.endpoint":  "https://mbs.search.windows.net",
			"search.page_size": "10",
			"export.dir":       "",
			"server.addr":      "127.0.0.1:9090",
		},
	}
}

func (m *mockSettingsService) Get() (*domain.Settings, error) {
	s := domain.DefaultSettings()
	s.Service.Endpoint = m.values["search.endpoint"]
	s.Service.APIKey = m.values["search.api_key"]
	s.Server.Addr = m.values["server.addr"]
	return &s, nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	if _, ok := m.values[key]; !ok {
		return domain.ErrInvalidInput
	}
	m.values[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string {
	return m.keys
}

func (m *mockSettingsService) Value(key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", domain.ErrInvalidInput
	}
	return v, nil
}

func (m *mockSettingsService) Validate() error {
	return m.invalid
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	search   *mockSearchService
	items    *mockItemService
	export   *mockExportService
	settings *mockSettingsService
}

// setupTestServices installs mocks and returns a cleanup function.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		search:   &mockSearchService{page: samplePage()},
		items:    &mockItemService{items: map[string]domain.ScheduleItem{"23": sampleItem()}},
		export:   &mockExportService{},
		settings: newMockSettingsService(),
	}

	oldSearch, oldItems, oldExport, oldSettings := searchService, itemService, exportService, settingsService
	searchService = ts.search
	itemService = ts.items
	exportService = ts.export
	settingsService = ts.settings

	return ts, func() {
		searchService, itemService, exportService, settingsService = oldSearch, oldItems, oldExport, oldSettings
	}
}

// execute runs the root command with args and returns its combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeWithInput(t, "", args...)
}

func executeWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		resetFlags(rootCmd)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores every flag of cmd and its children to its default.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}

func sampleItem() domain.ScheduleItem {
	return domain.ScheduleItem{
		ItemNum:             "23",
		Description:         "Professional attendance by a general practitioner lasting less than 20 minutes",
		Category:            "1",
		CategoryDescription: "Professional Attendances",
		Group:               "A1",
		GroupDescription:    "General Practitioner Attendances",
		ItemType:            "S",
		ScheduleFee:         domain.NewFee(41.40),
		Benefit100:          domain.NewFee(41.40),
		FeeType:             "N",
		ItemStartDate:       "2019-11-01",
		NewItem:             "N",
	}
}

func samplePage() *domain.SearchPage {
	second := domain.ScheduleItem{
		ItemNum:             "36",
		Description:         "Professional attendance lasting at least 20 minutes",
		CategoryDescription: "Professional Attendances",
		ScheduleFee:         domain.NewFee(80.10),
		NewItem:             "Y",
	}
	return &domain.SearchPage{
		Results: []domain.ResultItem{
			{ScheduleItem: sampleItem(), Caption: "less than 20 minutes"},
			{ScheduleItem: second},
		},
		Facets: []domain.FacetBucket{
			{
				Name:  "CategoryDescription",
				Label: "Category",
				Values: []domain.FacetValue{
					{Value: "Professional Attendances", Count: 1200, Selected: true},
					{Value: "Diagnostic Procedures", Count: 5},
				},
			},
		},
		Answers:  []domain.SemanticAnswer{{Text: "Item 23 covers short GP visits", Score: 0.87}},
		Count:    25,
		Page:     1,
		PageSize: 10,
	}
}

var errBackend = errors.New("backend unavailable")

// Ensure mocks implement the interfaces.
var (
	_ driving.SearchService   = (*mockSearchService)(nil)
	_ driving.ItemService     = (*mockItemService)(nil)
	_ driving.ExportService   = (*mockExportService)(nil)
	_ driving.SettingsService = (*mockSettingsService)(nil)
)
