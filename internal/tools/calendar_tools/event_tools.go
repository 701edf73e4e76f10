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

// RegisterEventTools registers event-related tools with the MCP server
func RegisterEventTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	addTool(s, sc, mcp.NewTool("calendar_list_events",
		mcp.WithDescription("List calendar events in a time range, ordered by start time. Defaults to today through the next 7 days."),
		mcp.WithString("account", mcp.Description(common.AccountDescription)),
		calendarIDOption(),
		mcp.WithString("time_min",
			mcp.Description("Start of the range (RFC 3339 or YYYY-MM-DD, default: midnight today)"),
		),
		mcp.WithString("time_max",
			mcp.Description("End of the range (RFC 3339 or YYYY-MM-DD, default: 7 days from now)"),
		),
		mcp.WithNumber("max_results",
			mcp.Description(fmt.Sprintf("Maximum number of events (default: %d)", calendar.DefaultMaxResults)),
		),
	), instrumentation.OperationList, handleListEvents)

	addTool(s, sc, mcp.NewTool("calendar_get_event",
		mcp.WithDescription("Get details of a specific calendar event"),
		mcp.WithString("account", mcp.Description(common.AccountDescription)),
		calendarIDOption(),
		mcp.WithString("event_id",
			mcp.Required(),
			mcp.Description("The ID of the event to retrieve"),
		),
	), instrumentation.OperationGet, handleGetEvent)

	if readOnly {
		return nil
	}

	addTool(s, sc, mcp.NewTool("calendar_create_event",
		mcp.WithDescription("Create a calendar event. Use YYYY-MM-DD for all-day events."),
		mcp.WithString("account", mcp.Description(common.AccountDescription)),
		calendarIDOption(),
		mcp.WithString("summary", mcp.Required(), mcp.Description("Event title")),
		mcp.WithString("start", mcp.Required(), mcp.Description("Start (RFC 3339 date-time or YYYY-MM-DD)")),
		mcp.WithString("end", mcp.Required(), mcp.Description("End (RFC 3339 date-time or YYYY-MM-DD)")),
		mcp.WithString("description", mcp.Description("Event description")),
		mcp.WithString("location", mcp.Description("Event location")),
		mcp.WithString("time_zone", mcp.Description("IANA time zone for date-times without an offset")),
		mcp.WithString("attendees", mcp.Description("Comma-separated attendee email addresses")),
	), instrumentation.OperationCreate, handleCreateEvent)

	addTool(s, sc, mcp.NewTool("calendar_update_event",
		mcp.WithDescription("Update a calendar event. Only the given fields change."),
		mcp.WithString("account", mcp.Description(common.AccountDescription)),
		calendarIDOption(),
		mcp.WithString("event_id", mcp.Required(), mcp.Description("The ID of the event to update")),
		mcp.WithString("summary", mcp.Description("New title")),
		mcp.WithString("start", mcp.Description("New start")),
		mcp.WithString("end", mcp.Description("New end")),
		mcp.WithString("description", mcp.Description("New description")),
		mcp.WithString("location", mcp.Description("New location")),
		mcp.WithString("time_zone", mcp.Description("IANA time zone for date-times without an offset")),
		mcp.WithString("attendees", mcp.Description("Comma-separated attendee emails; replaces the current list")),
	), instrumentation.OperationUpdate, handleUpdateEvent)

	addTool(s, sc, mcp.NewTool("calendar_delete_event",
		mcp.WithDescription("Delete a calendar event"),
		mcp.WithString("account", mcp.Description(common.AccountDescription)),
		calendarIDOption(),
		mcp.WithString("event_id", mcp.Required(), mcp.Description("The ID of the event to delete")),
	), instrumentation.OperationDelete, handleDeleteEvent)

	return nil
}

func handleListEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	loc := location(sc)
	timeMin, timeMax := calendar.DefaultRange(time.Now().In(loc))
	if v := common.StringArg(args, "time_min"); v != "" {
		t, err := parseTime("time_min", v, loc)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		timeMin = t
	}
	if v := common.StringArg(args, "time_max"); v != "" {
		t, err := parseTime("time_max", v, loc)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		timeMax = t
	}
	if !timeMax.After(timeMin) {
		return mcp.NewToolResultError("time_max must be after time_min"), nil
	}
	maxResults, err := common.IntArg(args, "max_results", calendar.DefaultMaxResults)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	c, err := client(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	events, err := c.ListEvents(ctx, calendarID(args), timeMin, timeMax, int64(maxResults))
	if err != nil {
		return common.ErrorResult("Failed to list events: %v", err), nil
	}
	return common.JSONResult(map[string]any{
		"time_min": timeMin.Format(time.RFC3339),
		"time_max": timeMax.Format(time.RFC3339),
		"count":    len(events),
		"events":   events,
	})
}

func handleGetEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	eventID, err := common.RequiredString(args, "event_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c, err := client(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	event, err := c.GetEvent(ctx, calendarID(args), eventID)
	if err != nil {
		return common.ErrorResult("Failed to get event: %v", err), nil
	}
	return common.JSONResult(event)
}

func eventInput(args map[string]any) calendar.EventInput {
	return calendar.EventInput{
		Summary:     common.StringArg(args, "summary"),
		Description: common.StringArg(args, "description"),
		Location:    common.StringArg(args, "location"),
		Start:       common.StringArg(args, "start"),
		End:         common.StringArg(args, "end"),
		TimeZone:    common.StringArg(args, "time_zone"),
		Attendees:   common.StringList(args, "attendees"),
	}
}

func handleCreateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	for _, key := range []string{"summary", "start", "end"} {
		if _, err := common.RequiredString(args, key); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	c, err := client(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	event, err := c.CreateEvent(ctx, calendarID(args), eventInput(args))
	if err != nil {
		return common.ErrorResult("Failed to create event: %v", err), nil
	}
	return common.JSONResult(event)
}

func handleUpdateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	eventID, err := common.RequiredString(args, "event_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	input := eventInput(args)
	if input.Summary == "" && input.Description == "" && input.Location == "" &&
		input.Start == "" && input.End == "" && len(input.Attendees) == 0 {
		return mcp.NewToolResultError("nothing to update"), nil
	}
	c, err := client(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	event, err := c.UpdateEvent(ctx, calendarID(args), eventID, input)
	if err != nil {
		return common.ErrorResult("Failed to update event: %v", err), nil
	}
	return common.JSONResult(event)
}

func handleDeleteEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	eventID, err := common.RequiredString(args, "event_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c, err := client(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := c.DeleteEvent(ctx, calendarID(args), eventID); err != nil {
		return common.ErrorResult("Failed to delete event: %v", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Event %s deleted", eventID)), nil
}
