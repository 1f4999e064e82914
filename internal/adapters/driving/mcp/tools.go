package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/mbsearch/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query  string              `json:"query,omitempty" jsonschema:"free text to search item descriptions; empty lists all items"`
	Facets map[string][]string `json:"facets,omitempty" jsonschema:"facet filters: field name to selected values, e.g. CategoryDescription"`
	Page   int                 `json:"page,omitempty" jsonschema:"1-based page number (default 1)"`
	Sort   string              `json:"sort,omitempty" jsonschema:"relevance or a clause such as 'ScheduleFee desc'"`
	Mode   string              `json:"mode,omitempty" jsonschema:"simple or semantic (default simple)"`
	Fuzzy  int                 `json:"fuzzy,omitempty" jsonschema:"fuzzy matching level 0-3; overrides semantic mode"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results    []ItemOutput            `json:"results"`
	Count      int64                   `json:"count"`
	Page       int                     `json:"page"`
	TotalPages int                     `json:"total_pages"`
	Facets     []domain.FacetBucket    `json:"facets,omitempty"`
	Answers    []domain.SemanticAnswer `json:"answers,omitempty"`
}

// ItemOutput represents a single schedule item.
type ItemOutput struct {
	ItemNumber  string  `json:"item_number"`
	Description string  `json:"description"`
	Fee         string  `json:"fee"`
	Category    string  `json:"category,omitempty"`
	Group       string  `json:"group,omitempty"`
	ItemType    string  `json:"item_type,omitempty"`
	StartDate   string  `json:"start_date,omitempty"`
	New         bool    `json:"new,omitempty"`
	Caption     string  `json:"caption,omitempty"`
	Score       float64 `json:"score,omitempty"`
}

// GetItemInput is the input schema for the get_item tool.
type GetItemInput struct {
	ItemNumber string `json:"item_number" jsonschema:"the MBS item number, e.g. 23"`
}

// GetItemOutput is the output schema for the get_item tool.
type GetItemOutput struct {
	ItemNumber   string `json:"item_number"`
	Alias        string `json:"alias,omitempty"`
	Description  string `json:"description"`
	Summary      string `json:"summary,omitempty"`
	Fee          string `json:"fee"`
	Benefit75    string `json:"benefit_75"`
	Benefit85    string `json:"benefit_85"`
	Benefit100   string `json:"benefit_100"`
	Category     string `json:"category,omitempty"`
	CategoryCode string `json:"category_code,omitempty"`
	Group        string `json:"group,omitempty"`
	GroupCode    string `json:"group_code,omitempty"`
	SubGroup     string `json:"sub_group,omitempty"`
	ItemType     string `json:"item_type,omitempty"`
	FeeType      string `json:"fee_type,omitempty"`
	ProviderType string `json:"provider_type,omitempty"`
	StartDate    string `json:"start_date,omitempty"`
	EndDate      string `json:"end_date,omitempty"`
	FeeStartDate string `json:"fee_start_date,omitempty"`
	New          bool   `json:"new,omitempty"`
}

// ExportInput is the input schema for the export tool.
type ExportInput struct {
	Query  string              `json:"query,omitempty" jsonschema:"free text to search; empty exports all items"`
	Facets map[string][]string `json:"facets,omitempty" jsonschema:"facet filters"`
	Sort   string              `json:"sort,omitempty" jsonschema:"relevance or a clause such as 'ItemNum asc'"`
	Mode   string              `json:"mode,omitempty" jsonschema:"simple or semantic"`
	Fuzzy  int                 `json:"fuzzy,omitempty" jsonschema:"fuzzy matching level 0-3"`
	Format string              `json:"format,omitempty" jsonschema:"csv, json, xlsx or yaml (default csv)"`
}

// ExportOutput is the output schema for the export tool.
type ExportOutput struct {
	ID       string `json:"id"`
	Outcome  string `json:"outcome"`
	Total    int64  `json:"total"`
	Filename string `json:"filename,omitempty"`
	Location string `json:"location,omitempty"`
	Message  string `json:"message"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search Medicare Benefits Schedule items with optional facet filters, sorting and semantic or fuzzy matching",
	}, s.handleSearch)

	if s.ports.Items != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "get_item",
			Description: "Get the full details of one MBS item by item number",
		}, s.handleGetItem)
	}

	if s.ports.Export != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "export",
			Description: "Export every item matching a search to a file",
		}, s.handleExport)
	}
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	intent := buildIntent(input.Query, input.Facets, input.Sort, input.Mode, input.Fuzzy)
	if input.Page > 0 {
		intent.Page = input.Page
	}

	page, err := s.ports.Search.Search(ctx, intent)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results:    make([]ItemOutput, len(page.Results)),
		Count:      page.Count,
		Page:       page.Page,
		TotalPages: page.TotalPages(),
		Facets:     page.Facets,
		Answers:    page.Answers,
	}
	for i := range page.Results {
		r := &page.Results[i]
		out := itemOutput(r.ScheduleItem)
		out.Caption = r.Caption
		out.Score = r.Score
		output.Results[i] = out
	}

	return nil, output, nil
}

// handleGetItem handles the get_item tool invocation.
func (s *Server) handleGetItem(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetItemInput,
) (*mcp.CallToolResult, GetItemOutput, error) {
	item, err := s.ports.Items.Get(ctx, input.ItemNumber)
	if err != nil {
		return nil, GetItemOutput{}, err
	}
	return nil, GetItemOutput{
		ItemNumber:   item.ItemNum.String(),
		Alias:        item.ItemNumAlias.String(),
		Description:  item.Description,
		Summary:      item.HumanReadableDescription,
		Fee:          item.ScheduleFee.String(),
		Benefit75:    item.Benefit75.String(),
		Benefit85:    item.Benefit85.String(),
		Benefit100:   item.Benefit100.String(),
		Category:     item.CategoryDescription,
		CategoryCode: item.Category.String(),
		Group:        item.GroupDescription,
		GroupCode:    item.Group.String(),
		SubGroup:     item.SubGroup.String(),
		ItemType:     item.ItemType,
		FeeType:      item.FeeType,
		ProviderType: item.ProviderType,
		StartDate:    item.ItemStartDate,
		EndDate:      item.ItemEndDate,
		FeeStartDate: item.FeeStartDate,
		New:          item.IsNew(),
	}, nil
}

// handleExport handles the export tool invocation. It blocks until the
// export finishes.
func (s *Server) handleExport(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExportInput,
) (*mcp.CallToolResult, ExportOutput, error) {
	name := input.Format
	if name == "" {
		name = string(domain.ExportCSV)
	}
	format, err := domain.ParseExportFormat(name)
	if err != nil {
		return nil, ExportOutput{}, fmt.Errorf("%w: %q", err, name)
	}

	intent := buildIntent(input.Query, input.Facets, input.Sort, input.Mode, input.Fuzzy)
	job, err := s.ports.Export.Export(ctx, intent, format)
	if err != nil {
		return nil, ExportOutput{}, err
	}

	return nil, ExportOutput{
		ID:       job.ID,
		Outcome:  string(job.Outcome),
		Total:    job.TotalCount,
		Filename: job.Filename,
		Location: job.Location,
		Message:  job.Message,
	}, nil
}

// buildIntent assembles a normalized intent from tool arguments.
func buildIntent(query string, facets map[string][]string, sort, mode string, fuzzy int) domain.SearchIntent {
	intent := domain.NewSearchIntent()
	intent.Query = query
	intent.Fuzzy = fuzzy
	if sort != "" {
		intent.Sort = domain.SortOption(sort)
	}
	if mode != "" {
		intent.Mode = domain.QueryMode(mode)
	}
	for name, values := range facets {
		for _, v := range values {
			if !intent.Facets.Has(name, v) {
				intent.Facets = intent.Facets.Toggle(name, v)
			}
		}
	}
	return intent
}

// itemOutput flattens a schedule item for tool output.
func itemOutput(item domain.ScheduleItem) ItemOutput {
	return ItemOutput{
		ItemNumber:  item.ItemNum.String(),
		Description: item.Description,
		Fee:         item.ScheduleFee.String(),
		Category:    item.CategoryDescription,
		Group:       item.GroupDescription,
		ItemType:    item.ItemType,
		StartDate:   item.ItemStartDate,
		New:         item.IsNew(),
	}
}
