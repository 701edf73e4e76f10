package sheets_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/sheets"
	"github.com/teemow/workspace-mcp/internal/tools/common"
)

const (
	defaultWorksheetRows    = 1000
	defaultWorksheetColumns = 26
	defaultSpreadsheetPage  = 50
)

func registerAdminTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	add := func(tool mcp.Tool, operation string, h func(context.Context, mcp.CallToolRequest, *server.ServerContext) (*mcp.CallToolResult, error)) {
		s.AddTool(tool, common.InstrumentedToolHandlerWithService(tool.Name, instrumentation.ServiceSheets, operation, sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return h(ctx, request, sc)
			}))
	}
	account := mcp.WithString("account", mcp.Description(common.AccountDescription))

	add(mcp.NewTool("sheets_list_spreadsheets",
		mcp.WithDescription("List spreadsheets in Google Drive, most recently modified first"),
		account,
		mcp.WithNumber("page_size", mcp.Description("Maximum number of spreadsheets (default: 50)")),
	), instrumentation.OperationList, handleListSpreadsheets)

	add(mcp.NewTool("sheets_list_worksheets",
		mcp.WithDescription("List the worksheets (tabs) of a spreadsheet"),
		account,
		spreadsheetIDOption(),
	), instrumentation.OperationList, handleListWorksheets)

	add(mcp.NewTool("sheets_read",
		mcp.WithDescription("Read the cell values of a worksheet, or of a range inside it"),
		account,
		spreadsheetIDOption(),
		worksheetOption(true),
		mcp.WithString("range", mcp.Description("Optional A1 range, e.g. 'A1:D20'")),
	), instrumentation.OperationGet, handleRead)

	add(mcp.NewTool("sheets_search",
		mcp.WithDescription("Find cells whose value equals the query, or contains it when partial is set"),
		account,
		spreadsheetIDOption(),
		mcp.WithString("query", mcp.Required(), mcp.Description("Text to look for")),
		mcp.WithString("worksheets", mcp.Description("Comma-separated worksheets to search (default: all)")),
		mcp.WithBoolean("partial", mcp.Description("Case-insensitive substring match (default: false)")),
	), instrumentation.OperationSearch, handleSearch)

	if readOnly {
		return nil
	}

	add(mcp.NewTool("sheets_write_range",
		mcp.WithDescription("Write a block of values starting at a range. Values are parsed as if typed by a user."),
		account,
		spreadsheetIDOption(),
		worksheetOption(true),
		mcp.WithString("range", mcp.Required(), mcp.Description("A1 range, e.g. 'A2' or 'A2:C4'")),
		mcp.WithString("values", mcp.Required(), mcp.Description(`JSON array of rows, e.g. [["a",1],["b",2]]`)),
	), instrumentation.OperationUpdate, handleWriteRange)

	add(mcp.NewTool("sheets_append_rows",
		mcp.WithDescription("Append raw rows after the data of a worksheet"),
		account,
		spreadsheetIDOption(),
		worksheetOption(true),
		mcp.WithString("rows", mcp.Required(), mcp.Description(`JSON array of rows, e.g. [["a",1],["b",2]]`)),
	), instrumentation.OperationAppend, handleAppendRows)

	add(mcp.NewTool("sheets_create_spreadsheet",
		mcp.WithDescription("Create a spreadsheet"),
		account,
		mcp.WithString("title", mcp.Required(), mcp.Description("Spreadsheet title")),
		mcp.WithString("worksheets", mcp.Description("Comma-separated worksheet names (default: one sheet)")),
	), instrumentation.OperationCreate, handleCreateSpreadsheet)

	add(mcp.NewTool("sheets_create_worksheet",
		mcp.WithDescription("Add a worksheet to a spreadsheet"),
		account,
		spreadsheetIDOption(),
		mcp.WithString("title", mcp.Required(), mcp.Description("Worksheet title")),
		mcp.WithNumber("rows", mcp.Description("Row count (default: 1000)")),
		mcp.WithNumber("cols", mcp.Description("Column count (default: 26)")),
	), instrumentation.OperationCreate, handleCreateWorksheet)

	add(mcp.NewTool("sheets_delete_worksheet",
		mcp.WithDescription("Delete a worksheet"),
		account,
		spreadsheetIDOption(),
		worksheetOption(true),
	), instrumentation.OperationDelete, handleDeleteWorksheet)

	add(mcp.NewTool("sheets_copy_worksheet",
		mcp.WithDescription("Duplicate a worksheet under a new title"),
		account,
		spreadsheetIDOption(),
		worksheetOption(true),
		mcp.WithString("new_title", mcp.Required(), mcp.Description("Title of the copy")),
	), instrumentation.OperationCreate, handleCopyWorksheet)

	add(mcp.NewTool("sheets_clear_range",
		mcp.WithDescription("Clear the values of a range. Formatting is kept."),
		account,
		spreadsheetIDOption(),
		worksheetOption(true),
		mcp.WithString("range", mcp.Description("A1 range (default: whole worksheet)")),
	), instrumentation.OperationDelete, handleClearRange)

	add(mcp.NewTool("sheets_format_cells",
		mcp.WithDescription("Apply bold, italic or colors to a range"),
		account,
		spreadsheetIDOption(),
		worksheetOption(true),
		mcp.WithString("range", mcp.Required(), mcp.Description("A1 range, e.g. 'A1:F1'")),
		mcp.WithBoolean("bold", mcp.Description("Bold text")),
		mcp.WithBoolean("italic", mcp.Description("Italic text")),
		mcp.WithString("background_color", mcp.Description(`JSON {"red","green","blue"} with components 0..1`)),
		mcp.WithString("text_color", mcp.Description(`JSON {"red","green","blue"} with components 0..1`)),
	), instrumentation.OperationUpdate, handleFormatCells)

	return nil
}

// spreadsheetID returns the spreadsheet argument or the configured default.
func spreadsheetID(args map[string]any, sc *server.ServerContext) (string, error) {
	if id := common.StringArg(args, "spreadsheet_id"); id != "" {
		return id, nil
	}
	if id := sc.Config().SpreadsheetID; id != "" {
		return id, nil
	}
	return "", fmt.Errorf("spreadsheet_id is required (no SPREADSHEET_ID configured)")
}

// rowsArg decodes a JSON array of rows.
func rowsArg(args map[string]any, key string) ([][]any, error) {
	var rows [][]any
	ok, err := common.ObjectArg(args, key, &rows)
	if err != nil {
		return nil, err
	}
	if !ok || len(rows) == 0 {
		return nil, fmt.Errorf("%s is required", key)
	}
	return rows, nil
}

func handleListSpreadsheets(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	pageSize, err := common.IntArg(args, "page_size", defaultSpreadsheetPage)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	client, err := sc.SheetsClient(common.GetAccountFromArgs(args))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	list, err := client.ListSpreadsheets(ctx, int64(pageSize))
	if err != nil {
		return common.ErrorResult("Failed to list spreadsheets: %v", err), nil
	}
	return common.JSONResult(list)
}

func handleListWorksheets(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	id, err := spreadsheetID(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	client, err := sc.SheetsClient(common.GetAccountFromArgs(args))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	list, err := client.ListWorksheets(ctx, id)
	if err != nil {
		return common.ErrorResult("Failed to list worksheets: %v", err), nil
	}
	return common.JSONResult(list)
}

func handleRead(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	ref, err := sheetRef(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	client, err := sc.SheetsClient(common.GetAccountFromArgs(args))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	values, err := client.ReadValues(ctx, ref.SpreadsheetID, ref.Worksheet, ref.Range)
	if err != nil {
		return common.ErrorResult("Failed to read sheet: %v", err), nil
	}
	return common.JSONResult(map[string]any{
		"range":  sheets.WorksheetRange(ref.Worksheet, ref.Range),
		"rows":   len(values),
		"values": values,
	})
}

func handleSearch(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	id, err := spreadsheetID(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	query, err := common.RequiredString(args, "query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	client, err := sc.SheetsClient(common.GetAccountFromArgs(args))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	matches, err := client.Search(ctx, id, query, common.StringList(args, "worksheets"), common.BoolArg(args, "partial", false))
	if err != nil {
		return common.ErrorResult("Failed to search spreadsheet: %v", err), nil
	}
	return common.JSONResult(map[string]any{
		"query":   query,
		"count":   len(matches),
		"matches": matches,
	})
}

func handleWriteRange(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	ref, err := sheetRef(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if ref.Range == "" {
		return mcp.NewToolResultError("range is required"), nil
	}
	values, err := rowsArg(args, "values")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	client, err := sc.SheetsClient(common.GetAccountFromArgs(args))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	target := sheets.WorksheetRange(ref.Worksheet, ref.Range)
	cells, err := client.WriteRange(ctx, ref.SpreadsheetID, target, values)
	if err != nil {
		return common.ErrorResult("Failed to write range: %v", err), nil
	}
	sc.Metrics().ObserveWrite(ctx, "write_range", int(cells))
	return common.JSONResult(map[string]any{"range": target, "updated_cells": cells})
}

func handleAppendRows(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	ref, err := sheetRef(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rows, err := rowsArg(args, "rows")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	client, err := sc.SheetsClient(common.GetAccountFromArgs(args))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	updated, err := client.AppendRows(ctx, ref.SpreadsheetID, ref.Worksheet, rows)
	if err != nil {
		return common.ErrorResult("Failed to append rows: %v", err), nil
	}
	return common.JSONResult(map[string]any{"updated_range": updated, "rows": len(rows)})
}

func handleCreateSpreadsheet(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	title, err := common.RequiredString(args, "title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	client, err := sc.SheetsClient(common.GetAccountFromArgs(args))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	info, err := client.CreateSpreadsheet(ctx, title, common.StringList(args, "worksheets"))
	if err != nil {
		return common.ErrorResult("Failed to create spreadsheet: %v", err), nil
	}
	return common.JSONResult(info)
}

func handleCreateWorksheet(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	id, err := spreadsheetID(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title, err := common.RequiredString(args, "title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rows, err := common.IntArg(args, "rows", defaultWorksheetRows)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cols, err := common.IntArg(args, "cols", defaultWorksheetColumns)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if rows < 1 || cols < 1 {
		return mcp.NewToolResultError("rows and cols must be positive"), nil
	}
	client, err := sc.SheetsClient(common.GetAccountFromArgs(args))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	info, err := client.CreateWorksheet(ctx, id, title, int64(rows), int64(cols))
	if err != nil {
		return common.ErrorResult("Failed to create worksheet: %v", err), nil
	}
	return common.JSONResult(info)
}

func handleDeleteWorksheet(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	ref, err := sheetRef(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	client, err := sc.SheetsClient(common.GetAccountFromArgs(args))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := client.DeleteWorksheet(ctx, ref.SpreadsheetID, ref.Worksheet); err != nil {
		return common.ErrorResult("Failed to delete worksheet: %v", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Worksheet %q deleted", ref.Worksheet)), nil
}

func handleCopyWorksheet(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	ref, err := sheetRef(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	newTitle, err := common.RequiredString(args, "new_title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	client, err := sc.SheetsClient(common.GetAccountFromArgs(args))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	info, err := client.CopyWorksheet(ctx, ref.SpreadsheetID, ref.Worksheet, newTitle)
	if err != nil {
		return common.ErrorResult("Failed to copy worksheet: %v", err), nil
	}
	return common.JSONResult(info)
}

func handleClearRange(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	ref, err := sheetRef(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	client, err := sc.SheetsClient(common.GetAccountFromArgs(args))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	target := sheets.WorksheetRange(ref.Worksheet, ref.Range)
	if err := client.ClearRange(ctx, ref.SpreadsheetID, target); err != nil {
		return common.ErrorResult("Failed to clear range: %v", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Cleared %s", target)), nil
}

// parseCellFormat collects the format arguments. At least one must be set.
func parseCellFormat(args map[string]any) (sheets.CellFormat, error) {
	var f sheets.CellFormat
	if b, ok := args["bold"].(bool); ok {
		f.Bold = &b
	}
	if i, ok := args["italic"].(bool); ok {
		f.Italic = &i
	}
	for key, dst := range map[string]**sheets.Color{"background_color": &f.Background, "text_color": &f.Foreground} {
		var c sheets.Color
		ok, err := common.ObjectArg(args, key, &c)
		if err != nil {
			return f, err
		}
		if !ok {
			continue
		}
		for _, v := range []float64{c.Red, c.Green, c.Blue} {
			if v < 0 || v > 1 {
				return f, fmt.Errorf("%s components must be between 0 and 1", key)
			}
		}
		*dst = &c
	}
	if f.Bold == nil && f.Italic == nil && f.Background == nil && f.Foreground == nil {
		return f, fmt.Errorf("no format given: set bold, italic, background_color or text_color")
	}
	return f, nil
}

func handleFormatCells(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	ref, err := sheetRef(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if ref.Range == "" {
		return mcp.NewToolResultError("range is required"), nil
	}
	format, err := parseCellFormat(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	client, err := sc.SheetsClient(common.GetAccountFromArgs(args))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := client.FormatCells(ctx, ref.SpreadsheetID, ref.Worksheet, ref.Range, format); err != nil {
		return common.ErrorResult("Failed to format cells: %v", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Formatted %s", sheets.WorksheetRange(ref.Worksheet, ref.Range))), nil
}
