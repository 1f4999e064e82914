package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mbsearch/internal/core/domain"
)

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns search results", func(t *testing.T) {
		mockSearch := &mockSearchService{
			page: &domain.SearchPage{
				Results: []domain.ResultItem{
					{
						ScheduleItem: domain.ScheduleItem{
							ItemNum:             "23",
							Description:         "Professional attendance by a general practitioner",
							CategoryDescription: "Professional Attendances",
							GroupDescription:    "General Practitioner Attendances",
							ItemType:            "S",
							ItemStartDate:       "2019-11-01",
							ScheduleFee:         domain.NewFee(42.85),
							NewItem:             "Y",
						},
						Caption: "attendance by a general practitioner",
						Score:   3.2,
					},
				},
				Count:    31,
				Page:     1,
				PageSize: 10,
				Facets: []domain.FacetBucket{
					{Name: "CategoryDescription", Label: "Category", Values: []domain.FacetValue{{Value: "Professional Attendances", Count: 31}}},
				},
			},
		}

		ports := &Ports{Search: mockSearch}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := SearchInput{Query: "gp consult"}
		_, output, err := server.handleSearch(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, int64(31), output.Count)
		assert.Equal(t, 4, output.TotalPages)
		require.Len(t, output.Results, 1)
		got := output.Results[0]
		assert.Equal(t, "23", got.ItemNumber)
		assert.Equal(t, "$42.85", got.Fee)
		assert.Equal(t, "Professional Attendances", got.Category)
		assert.Equal(t, "General Practitioner Attendances", got.Group)
		assert.True(t, got.New)
		assert.Equal(t, "attendance by a general practitioner", got.Caption)
		require.Len(t, output.Facets, 1)
		assert.Equal(t, "Category", output.Facets[0].Label)
	})

	t.Run("builds intent from input", func(t *testing.T) {
		mockSearch := &mockSearchService{}
		ports := &Ports{Search: mockSearch}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := SearchInput{
			Query:  "knee",
			Facets: map[string][]string{"CategoryDescription": {"Therapeutic Procedures", "Therapeutic Procedures"}},
			Page:   3,
			Sort:   "ScheduleFee desc",
			Mode:   "semantic",
			Fuzzy:  2,
		}
		_, _, err = server.handleSearch(ctx, nil, input)

		require.NoError(t, err)
		got := mockSearch.intent
		assert.Equal(t, "knee", got.Query)
		assert.Equal(t, 3, got.Page)
		assert.Equal(t, domain.SortOption("ScheduleFee desc"), got.Sort)
		assert.Equal(t, domain.QueryModeSemantic, got.Mode)
		assert.Equal(t, 2, got.Fuzzy)
		assert.Equal(t, []string{"Therapeutic Procedures"}, got.Facets["CategoryDescription"])
	})

	t.Run("defaults page and sort", func(t *testing.T) {
		mockSearch := &mockSearchService{}
		ports := &Ports{Search: mockSearch}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{})

		require.NoError(t, err)
		assert.Equal(t, 1, mockSearch.intent.Page)
		assert.Equal(t, domain.SortRelevance, mockSearch.intent.Sort)
		assert.Equal(t, domain.QueryModeSimple, mockSearch.intent.Mode)
		assert.Empty(t, output.Results)
	})

	t.Run("returns error on search failure", func(t *testing.T) {
		mockSearch := &mockSearchService{
			err: errors.New("search failed"),
		}

		ports := &Ports{Search: mockSearch}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := SearchInput{Query: "test"}
		_, _, err = server.handleSearch(ctx, nil, input)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "search failed")
	})
}

func TestServer_handleGetItem(t *testing.T) {
	ctx := context.Background()

	t.Run("returns item details", func(t *testing.T) {
		mockItems := &mockItemService{item: &domain.ScheduleItem{
			ItemNum:             "23",
			Description:         "Level B consultation",
			CategoryDescription: "Professional Attendances",
			Category:            "1",
			ScheduleFee:         domain.NewFee(42.85),
			Benefit100:          domain.NewFee(42.85),
			ItemStartDate:       "2019-11-01",
		}}
		server, err := NewServer(&Ports{Search: &mockSearchService{}, Items: mockItems})
		require.NoError(t, err)

		_, output, err := server.handleGetItem(ctx, nil, GetItemInput{ItemNumber: "23"})

		require.NoError(t, err)
		assert.Equal(t, "23", output.ItemNumber)
		assert.Equal(t, "$42.85", output.Fee)
		assert.Equal(t, "$42.85", output.Benefit100)
		assert.Equal(t, "N/A", output.Benefit75)
		assert.Equal(t, "1", output.CategoryCode)
		assert.Equal(t, "2019-11-01", output.StartDate)
	})

	t.Run("returns not found", func(t *testing.T) {
		mockItems := &mockItemService{err: domain.ErrNotFound}
		server, err := NewServer(&Ports{Search: &mockSearchService{}, Items: mockItems})
		require.NoError(t, err)

		_, _, err = server.handleGetItem(ctx, nil, GetItemInput{ItemNumber: "99999"})

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestServer_handleExport(t *testing.T) {
	ctx := context.Background()

	t.Run("exports with requested format", func(t *testing.T) {
		mockExport := &mockExportService{job: &domain.ExportJob{
			ID:         "job-1",
			Outcome:    domain.ExportSucceeded,
			TotalCount: 2500,
			Filename:   "mbs-search-results-2024-04-01.json",
			Location:   "/tmp/mbs-search-results-2024-04-01.json",
			Message:    "Successfully exported 2500 items to JSON",
		}}
		server, err := NewServer(&Ports{Search: &mockSearchService{}, Export: mockExport})
		require.NoError(t, err)

		_, output, err := server.handleExport(ctx, nil, ExportInput{Query: "knee", Format: "json"})

		require.NoError(t, err)
		assert.Equal(t, domain.ExportJSON, mockExport.format)
		assert.Equal(t, "knee", mockExport.intent.Query)
		assert.Equal(t, "job-1", output.ID)
		assert.Equal(t, "succeeded", output.Outcome)
		assert.Equal(t, int64(2500), output.Total)
		assert.Equal(t, "/tmp/mbs-search-results-2024-04-01.json", output.Location)
	})

	t.Run("defaults to csv", func(t *testing.T) {
		mockExport := &mockExportService{job: &domain.ExportJob{ID: "job-2", Outcome: domain.ExportEmpty}}
		server, err := NewServer(&Ports{Search: &mockSearchService{}, Export: mockExport})
		require.NoError(t, err)

		_, output, err := server.handleExport(ctx, nil, ExportInput{})

		require.NoError(t, err)
		assert.Equal(t, domain.ExportCSV, mockExport.format)
		assert.Equal(t, "empty", output.Outcome)
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		server, err := NewServer(&Ports{Search: &mockSearchService{}, Export: &mockExportService{}})
		require.NoError(t, err)

		_, _, err = server.handleExport(ctx, nil, ExportInput{Format: "pdf"})

		assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
	})

	t.Run("returns export in progress", func(t *testing.T) {
		mockExport := &mockExportService{err: domain.ErrExportInProgress}
		server, err := NewServer(&Ports{Search: &mockSearchService{}, Export: mockExport})
		require.NoError(t, err)

		_, _, err = server.handleExport(ctx, nil, ExportInput{Format: "csv"})

		assert.ErrorIs(t, err, domain.ErrExportInProgress)
	})
}
