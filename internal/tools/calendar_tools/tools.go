package calendar_tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/workspace-mcp/internal/calendar"
	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/tools/common"
)

const defaultCalendarID = "primary"

type handlerFunc func(context.Context, mcp.CallToolRequest, *server.ServerContext) (*mcp.CallToolResult, error)

// RegisterCalendarTools registers all Calendar tools with the MCP server.
func RegisterCalendarTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := RegisterEventTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register event tools: %w", err)
	}
	if err := RegisterCalendarListTools(s, sc); err != nil {
		return fmt.Errorf("failed to register calendar list tools: %w", err)
	}
	return nil
}

func addTool(s *mcpserver.MCPServer, sc *server.ServerContext, tool mcp.Tool, operation string, h handlerFunc) {
	s.AddTool(tool, common.InstrumentedToolHandlerWithService(tool.Name, instrumentation.ServiceCalendar, operation, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return h(ctx, request, sc)
		}))
}

func calendarIDOption() mcp.ToolOption {
	return mcp.WithString("calendar_id",
		mcp.Description("Calendar ID (default: 'primary')"),
	)
}

func calendarID(args map[string]any) string {
	if id := common.StringArg(args, "calendar_id"); id != "" {
		return id
	}
	return defaultCalendarID
}

func client(args map[string]any, sc *server.ServerContext) (*calendar.Client, error) {
	return sc.CalendarClient(common.GetAccountFromArgs(args))
}

// location returns the configured zone, falling back to the calendar default.
func location(sc *server.ServerContext) *time.Location {
	name := sc.Config().TimeZone
	if name == "" {
		name = calendar.DefaultTimeZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// parseTime accepts RFC 3339 or a plain YYYY-MM-DD, read as midnight in loc.
func parseTime(field, value string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", value, loc); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid %s %q: use RFC 3339 (2024-03-10T09:00:00Z) or YYYY-MM-DD", field, value)
}
