package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/mbsearch/internal/core/domain"
)

const (
	// URIScheme is the custom URI scheme for mbsearch resources.
	uriScheme = "mbsearch://"

	// exportHistoryLimit bounds the exports resource.
	exportHistoryLimit = 50
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Facet values across the whole schedule.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "facets",
		Name:        "facets",
		Description: "Facet fields with their values and item counts across the whole schedule",
		MIMEType:    "application/json",
	}, s.handleFacetsResource)

	if s.ports.Export != nil {
		s.server.AddResource(&mcp.Resource{
			URI:         uriScheme + "exports",
			Name:        "exports",
			Description: "Recent exports, most recent first",
			MIMEType:    "application/json",
		}, s.handleExportsResource)
	}

	if s.ports.Items != nil {
		s.server.AddResourceTemplate(&mcp.ResourceTemplate{
			URITemplate: uriScheme + "items/{itemNum}",
			Name:        "item",
			Description: "A single MBS item by item number",
			MIMEType:    "application/json",
		}, s.handleItemResource)
	}
}

// handleFacetsResource returns the facets of an unfiltered search.
func (s *Server) handleFacetsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	page, err := s.ports.Search.Search(ctx, domain.NewSearchIntent())
	if err != nil {
		return nil, fmt.Errorf("loading facets: %w", err)
	}
	return jsonResource(req.Params.URI, page.Facets)
}

// handleExportsResource returns the export history.
func (s *Server) handleExportsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	records, err := s.ports.Export.History(ctx, exportHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("listing exports: %w", err)
	}
	return jsonResource(req.Params.URI, records)
}

// handleItemResource returns one item.
func (s *Server) handleItemResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract itemNum from URI: mbsearch://items/{itemNum}
	itemNum := extractItemNum(req.Params.URI)
	if itemNum == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	item, err := s.ports.Items.Get(ctx, itemNum)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	return jsonResource(req.Params.URI, item)
}

// jsonResource renders v as an indented JSON resource.
func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractItemNum extracts the item number from a URI like mbsearch://items/{itemNum}.
func extractItemNum(uri string) string {
	const prefix = uriScheme + "items/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	num := strings.TrimPrefix(uri, prefix)
	if num == "" || strings.Contains(num, "/") {
		return ""
	}
	return num
}
