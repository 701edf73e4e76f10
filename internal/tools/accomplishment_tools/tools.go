package accomplishment_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/workspace-mcp/internal/accomplishments"
	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/sheets"
	"github.com/teemow/workspace-mcp/internal/tools/common"
)

// RegisterAccomplishmentTools registers the journal tools. The write tools
// are skipped in read-only mode.
func RegisterAccomplishmentTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	add := func(tool mcp.Tool, operation string, h func(context.Context, mcp.CallToolRequest, *server.ServerContext) (*mcp.CallToolResult, error)) {
		s.AddTool(tool, common.InstrumentedToolHandlerWithService(tool.Name, instrumentation.ServiceSheets, operation, sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return h(ctx, request, sc)
			}))
	}
	account := mcp.WithString("account", mcp.Description(common.AccountDescription))

	add(mcp.NewTool("accomplishment_view",
		mcp.WithDescription("List logged accomplishments, optionally within a date range or category"),
		account,
		mcp.WithString("start_date", mcp.Description("Earliest date, inclusive (e.g. 2024-03-01)")),
		mcp.WithString("end_date", mcp.Description("Latest date, inclusive")),
		mcp.WithString("category", mcp.Description("Only this category")),
		mcp.WithNumber("limit", mcp.Description(fmt.Sprintf("Maximum entries (default: %d, max: %d)",
			accomplishments.DefaultViewLimit, accomplishments.MaxViewLimit))),
	), instrumentation.OperationQuery, handleView)

	add(mcp.NewTool("accomplishment_stats",
		mcp.WithDescription("Summarize accomplishments of the last days: total, per category, average and median per day"),
		account,
		mcp.WithNumber("days", mcp.Description(fmt.Sprintf("Days to cover, today included (default: %d, max: %d)",
			accomplishments.DefaultStatsDays, accomplishments.MaxStatsDays))),
	), instrumentation.OperationQuery, handleStats)

	if readOnly {
		return nil
	}

	add(mcp.NewTool("accomplishment_add",
		mcp.WithDescription("Log an accomplishment"),
		account,
		mcp.WithString("description", mcp.Required(), mcp.Description("What was accomplished (1-500 characters)")),
		mcp.WithString("category", mcp.Description("Category, e.g. Work or Health")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags")),
		mcp.WithString("notes", mcp.Description("Additional notes")),
		mcp.WithString("date", mcp.Description("Date of the accomplishment (default: today)")),
	), instrumentation.OperationAppend, handleAdd)

	add(mcp.NewTool("accomplishment_edit",
		mcp.WithDescription("Change the description, category or notes of an accomplishment. Only the given fields are written."),
		account,
		mcp.WithString("id", mcp.Required(), mcp.Description("Accomplishment ID")),
		mcp.WithString("description", mcp.Description("New description")),
		mcp.WithString("category", mcp.Description("New category")),
		mcp.WithString("notes", mcp.Description("New notes")),
	), instrumentation.OperationUpdate, handleEdit)

	add(mcp.NewTool("accomplishment_delete",
		mcp.WithDescription("Delete an accomplishment"),
		account,
		mcp.WithString("id", mcp.Required(), mcp.Description("Accomplishment ID")),
	), instrumentation.OperationDelete, handleDelete)

	return nil
}

func service(args map[string]any, sc *server.ServerContext) (*accomplishments.Service, error) {
	return sc.Accomplishments(common.GetAccountFromArgs(args))
}

func failure(action string, err error) *mcp.CallToolResult {
	if sheets.IsNotFound(err) {
		return common.ErrorResult("%v", err)
	}
	return common.ErrorResult("Failed to %s: %v", action, err)
}

func handleAdd(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	svc, err := service(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	a, err := svc.Add(ctx, accomplishments.AddInput{
		Description: common.StringArg(args, "description"),
		Category:    common.StringArg(args, "category"),
		Tags:        common.StringArg(args, "tags"),
		Notes:       common.StringArg(args, "notes"),
		Date:        common.StringArg(args, "date"),
	})
	if err != nil {
		return failure("add accomplishment", err), nil
	}
	return common.JSONResult(a)
}

func handleView(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	limit, err := common.IntArg(args, "limit", 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	svc, err := service(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	list, err := svc.View(ctx, accomplishments.ViewFilter{
		StartDate: common.StringArg(args, "start_date"),
		EndDate:   common.StringArg(args, "end_date"),
		Category:  common.StringArg(args, "category"),
		Limit:     limit,
	})
	if err != nil {
		return failure("view accomplishments", err), nil
	}
	return common.JSONResult(map[string]any{
		"count":           len(list),
		"accomplishments": list,
	})
}

func handleStats(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	days, err := common.IntArg(args, "days", accomplishments.DefaultStatsDays)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	svc, err := service(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	stats, err := svc.Stats(ctx, days)
	if err != nil {
		return failure("compute statistics", err), nil
	}
	return common.JSONResult(stats)
}

func handleEdit(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	id, err := common.RequiredString(args, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	svc, err := service(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := svc.Edit(ctx, id, accomplishments.EditInput{
		Description: common.StringArg(args, "description"),
		Category:    common.StringArg(args, "category"),
		Notes:       common.StringArg(args, "notes"),
	})
	if err != nil {
		return failure("edit accomplishment", err), nil
	}
	return common.JSONResult(res)
}

func handleDelete(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	id, err := common.RequiredString(args, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	svc, err := service(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := svc.Delete(ctx, id)
	if err != nil {
		return failure("delete accomplishment", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Accomplishment %s deleted (sheet row %d)", id, res.SheetRow)), nil
}
