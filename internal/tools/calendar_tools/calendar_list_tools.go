package calendar_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/tools/common"
)

// RegisterCalendarListTools registers the calendar list tool.
func RegisterCalendarListTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	addTool(s, sc, mcp.NewTool("calendar_list_calendars",
		mcp.WithDescription("List the calendars the user has access to"),
		mcp.WithString("account", mcp.Description(common.AccountDescription)),
	), instrumentation.OperationList, handleListCalendars)
	return nil
}

func handleListCalendars(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	c, err := client(request.GetArguments(), sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	calendars, err := c.ListCalendars(ctx)
	if err != nil {
		return common.ErrorResult("Failed to list calendars: %v", err), nil
	}
	return common.JSONResult(calendars)
}
