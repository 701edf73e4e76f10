package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/sheets"
)

const (
	schemaURIPrefix = "schema://columns/"
	configURI       = "workspace://config"
	mimeJSON        = "application/json"
)

// RegisterResources registers the column schema resources and the workspace
// settings resource.
func RegisterResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	for _, set := range []sheets.ColumnSet{sheets.TaskColumns, sheets.AccomplishmentColumns, sheets.PriorityColumns} {
		resource := mcp.NewResource(
			schemaURIPrefix+set.Name,
			fmt.Sprintf("%s columns", set.Name),
			mcp.WithResourceDescription(fmt.Sprintf("Required, standard and optional columns of a %s sheet", set.Name)),
			mcp.WithMIMEType(mimeJSON),
		)
		s.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			return handleColumnSet(ctx, request, set)
		})
	}

	configResource := mcp.NewResource(
		configURI,
		"Workspace settings",
		mcp.WithResourceDescription("Default spreadsheet, accomplishments worksheet, time zone and write mode of this server"),
		mcp.WithMIMEType(mimeJSON),
	)
	s.AddResource(configResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleConfig(ctx, request, sc)
	})
	return nil
}

func handleColumnSet(_ context.Context, request mcp.ReadResourceRequest, set sheets.ColumnSet) ([]mcp.ResourceContents, error) {
	return jsonContents(request.Params.URI, set)
}

func handleConfig(_ context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	cfg := sc.Config()
	return jsonContents(request.Params.URI, map[string]any{
		"spreadsheet_id":            cfg.SpreadsheetID,
		"accomplishments_worksheet": cfg.AccomplishmentsWorksheet,
		"time_zone":                 cfg.TimeZone,
		"read_only":                 cfg.ReadOnly,
		"credentials_configured":    sc.Authenticator() != nil,
	})
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: mimeJSON,
			Text:     string(data),
		},
	}, nil
}
