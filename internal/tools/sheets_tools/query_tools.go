package sheets_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/logging"
	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/sheets"
	"github.com/teemow/workspace-mcp/internal/tools/common"
)

func registerQueryTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	queryTool := mcp.NewTool("sheets_query",
		mcp.WithDescription("Query a worksheet like a table. The first row is the header. Filters are combined with AND; cell values are compared as dates, then numbers, then text."),
		mcp.WithString("account", mcp.Description(common.AccountDescription)),
		spreadsheetIDOption(),
		worksheetOption(true),
		mcp.WithString("range", mcp.Description("Optional A1 range inside the worksheet, e.g. 'A1:F200'")),
		mcp.WithString("filters",
			mcp.Description(`JSON array of {column, operator, value}. Operators: ==, !=, >, <, >=, <=, in, not in, contains, not contains, is_null, not_null. Example: [{"column":"Status","operator":"!=","value":"Done"}]`),
		),
		mcp.WithString("columns", mcp.Description("Comma-separated columns to return (default: all)")),
		mcp.WithString("sort_by", mcp.Description("Column to sort by")),
		mcp.WithString("sort_order", mcp.Description("asc (default) or desc")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of records to return")),
	)
	s.AddTool(queryTool, common.InstrumentedToolHandlerWithService("sheets_query",
		instrumentation.ServiceSheets, instrumentation.OperationQuery, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleQuery(ctx, request, sc)
		}))

	validateTool := mcp.NewTool("sheets_validate_structure",
		mcp.WithDescription("Check a worksheet header against a standard column set or a list of required columns"),
		mcp.WithString("account", mcp.Description(common.AccountDescription)),
		spreadsheetIDOption(),
		worksheetOption(true),
		mcp.WithString("column_set", mcp.Description("One of: tasks, accomplishments, priorities")),
		mcp.WithString("required_columns", mcp.Description("Comma-separated required columns, used when column_set is not given")),
	)
	s.AddTool(validateTool, common.InstrumentedToolHandlerWithService("sheets_validate_structure",
		instrumentation.ServiceSheets, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleValidateStructure(ctx, request, sc)
		}))

	if !readOnly {
		updateTool := mcp.NewTool("sheets_update_row",
			mcp.WithDescription("Update the cells of the row whose ID column equals id. Only the given columns are written; other cells, including formulas, are untouched."),
			mcp.WithString("account", mcp.Description(common.AccountDescription)),
			spreadsheetIDOption(),
			worksheetOption(true),
			mcp.WithString("id_column", mcp.Description("Column holding the row ID (default: ID)")),
			mcp.WithString("id", mcp.Required(), mcp.Description("ID of the row to update")),
			mcp.WithString("updates", mcp.Required(), mcp.Description(`JSON object of column to value, e.g. {"Status":"Done"}`)),
		)
		s.AddTool(updateTool, common.InstrumentedToolHandlerWithService("sheets_update_row",
			instrumentation.ServiceSheets, instrumentation.OperationUpdate, sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleUpdateRow(ctx, request, sc)
			}))

		appendTool := mcp.NewTool("sheets_append_row",
			mcp.WithDescription("Append a row after the last non-empty row. Only the given columns are written."),
			mcp.WithString("account", mcp.Description(common.AccountDescription)),
			spreadsheetIDOption(),
			worksheetOption(true),
			mcp.WithString("data", mcp.Required(), mcp.Description(`JSON object of column to value, e.g. {"Task":"Ship it","Status":"Open"}`)),
		)
		s.AddTool(appendTool, common.InstrumentedToolHandlerWithService("sheets_append_row",
			instrumentation.ServiceSheets, instrumentation.OperationAppend, sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleAppendRow(ctx, request, sc)
			}))

		deleteTool := mcp.NewTool("sheets_delete_row",
			mcp.WithDescription("Delete the row whose ID column equals id"),
			mcp.WithString("account", mcp.Description(common.AccountDescription)),
			spreadsheetIDOption(),
			worksheetOption(true),
			mcp.WithString("id_column", mcp.Description("Column holding the row ID (default: ID)")),
			mcp.WithString("id", mcp.Required(), mcp.Description("ID of the row to delete")),
		)
		s.AddTool(deleteTool, common.InstrumentedToolHandlerWithService("sheets_delete_row",
			instrumentation.ServiceSheets, instrumentation.OperationDelete, sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleDeleteRow(ctx, request, sc)
			}))
	}

	return nil
}

func handleQuery(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	ref, err := sheetRef(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	q, err := parseQuery(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	engine, err := sc.Engine(account)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result, err := engine.Query(ctx, ref, q)
	if err != nil {
		return describeError("query sheet", err), nil
	}

	sc.Logger().Debug("sheet query",
		logging.Spreadsheet(ref.SpreadsheetID), logging.Worksheet(ref.Worksheet),
		logging.Rows(result.Matched))
	return common.JSONResult(result)
}

func handleValidateStructure(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	ref, err := sheetRef(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var set sheets.ColumnSet
	if name := common.StringArg(args, "column_set"); name != "" {
		var ok bool
		if set, ok = sheets.ColumnSets[name]; !ok {
			return common.ErrorResult("unknown column_set %q (want tasks, accomplishments or priorities)", name), nil
		}
	} else {
		required := common.StringList(args, "required_columns")
		if len(required) == 0 {
			return mcp.NewToolResultError("column_set or required_columns is required"), nil
		}
		set = sheets.ColumnSet{Name: "custom", Required: required}
	}

	engine, err := sc.Engine(account)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	table, err := engine.Load(ctx, ref)
	if err != nil {
		return describeError("read sheet", err), nil
	}

	return common.JSONResult(struct {
		Worksheet string   `json:"worksheet"`
		ColumnSet string   `json:"column_set"`
		Columns   []string `json:"columns"`
		sheets.StructureReport
	}{ref.Worksheet, set.Name, table.Schema.Columns(), sheets.ValidateStructure(table.Schema, set)})
}

func idArgs(args map[string]any) (idColumn, id string, err error) {
	idColumn = common.StringArg(args, "id_column")
	if idColumn == "" {
		idColumn = "ID"
	}
	id, err = common.RequiredString(args, "id")
	return idColumn, id, err
}

func handleUpdateRow(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	ref, err := sheetRef(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	idColumn, id, err := idArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var updates sheets.UpdateSet
	if ok, err := common.ObjectArg(args, "updates", &updates); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	} else if !ok || len(updates) == 0 {
		return mcp.NewToolResultError("updates is required"), nil
	}

	engine, err := sc.Engine(account)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result, err := engine.UpdateByID(ctx, ref, idColumn, id, updates)
	if err != nil {
		return describeError("update row", err), nil
	}
	return common.JSONResult(result)
}

func handleAppendRow(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	ref, err := sheetRef(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var data sheets.UpdateSet
	if ok, err := common.ObjectArg(args, "data", &data); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	} else if !ok || len(data) == 0 {
		return mcp.NewToolResultError("data is required"), nil
	}

	engine, err := sc.Engine(account)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result, err := engine.Append(ctx, ref, data)
	if err != nil {
		return describeError("append row", err), nil
	}
	return common.JSONResult(result)
}

func handleDeleteRow(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	ref, err := sheetRef(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	idColumn, id, err := idArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	engine, err := sc.Engine(account)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result, err := engine.DeleteByID(ctx, ref, idColumn, id)
	if err != nil {
		return describeError("delete row", err), nil
	}
	return common.JSONResult(result)
}
