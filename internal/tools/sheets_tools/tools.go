package sheets_tools

import (
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/sheets"
	"github.com/teemow/workspace-mcp/internal/tools/common"
)

// RegisterSheetsTools registers the query engine and administration tools.
func RegisterSheetsTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := registerQueryTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register query tools: %w", err)
	}
	if err := registerAdminTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register admin tools: %w", err)
	}
	return nil
}

func spreadsheetIDOption() mcp.ToolOption {
	return mcp.WithString("spreadsheet_id",
		mcp.Description("Spreadsheet ID. Defaults to the configured SPREADSHEET_ID."),
	)
}

func worksheetOption(required bool) mcp.ToolOption {
	opts := []mcp.PropertyOption{mcp.Description("Worksheet (tab) name")}
	if required {
		opts = append(opts, mcp.Required())
	}
	return mcp.WithString("worksheet", opts...)
}

// sheetRef builds the target of an engine call. The spreadsheet falls back
// to the configured one.
func sheetRef(args map[string]any, sc *server.ServerContext) (sheets.SheetRef, error) {
	id := common.StringArg(args, "spreadsheet_id")
	if id == "" {
		id = sc.Config().SpreadsheetID
	}
	if id == "" {
		return sheets.SheetRef{}, fmt.Errorf("spreadsheet_id is required (no SPREADSHEET_ID configured)")
	}
	worksheet, err := common.RequiredString(args, "worksheet")
	if err != nil {
		return sheets.SheetRef{}, err
	}
	return sheets.SheetRef{SpreadsheetID: id, Worksheet: worksheet, Range: common.StringArg(args, "range")}, nil
}

// rawFilter is one element of the filters argument.
type rawFilter struct {
	Column   string `json:"column"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

// parseFilters decodes the filters argument: a JSON array of
// {column, operator, value}. Value may be a string, a number or a boolean.
// The list operators also take an array; other operators reject one.
func parseFilters(args map[string]any) ([]sheets.Clause, error) {
	var raw []rawFilter
	if _, err := common.ObjectArg(args, "filters", &raw); err != nil {
		return nil, err
	}

	clauses := make([]sheets.Clause, 0, len(raw))
	for i, f := range raw {
		if f.Column == "" {
			return nil, fmt.Errorf("filter %d: column is required", i)
		}
		op, err := sheets.ParseOperator(f.Operator)
		if err != nil {
			return nil, fmt.Errorf("filter %d: %w", i, err)
		}
		clause := sheets.Clause{Column: f.Column, Operator: op}
		switch v := f.Value.(type) {
		case nil:
		case []any:
			if !op.IsList() {
				return nil, fmt.Errorf("filter %d: %w", i, &sheets.ConfigurationError{Kind: "operand", Name: string(op)})
			}
			for _, item := range v {
				clause.Values = append(clause.Values, operandText(item))
			}
		default:
			// A single value for in / not in is a one-element list.
			if op.IsList() {
				clause.Values = []string{operandText(v)}
			} else {
				clause.Value = operandText(v)
			}
		}
		clauses = append(clauses, clause)
	}
	return clauses, nil
}

func operandText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

// parseQuery assembles a sheets.Query from the tool arguments.
func parseQuery(args map[string]any) (sheets.Query, error) {
	filters, err := parseFilters(args)
	if err != nil {
		return sheets.Query{}, err
	}
	limit, err := common.IntArg(args, "limit", 0)
	if err != nil {
		return sheets.Query{}, err
	}
	if limit < 0 {
		return sheets.Query{}, fmt.Errorf("limit must not be negative")
	}

	q := sheets.Query{
		Filters: filters,
		Columns: common.StringList(args, "columns"),
		Limit:   limit,
	}
	if by := common.StringArg(args, "sort_by"); by != "" {
		desc, err := sheets.ParseSortOrder(common.StringArg(args, "sort_order"))
		if err != nil {
			return sheets.Query{}, err
		}
		q.Sort = &sheets.SortSpec{Column: by, Descending: desc}
	}
	return q, nil
}

// describeError turns engine errors into tool messages.
func describeError(action string, err error) *mcp.CallToolResult {
	switch {
	case sheets.IsConfigurationError(err):
		return common.ErrorResult("Invalid request: %v", err)
	case sheets.IsNotFound(err):
		return common.ErrorResult("%v", err)
	}
	return common.ErrorResult("Failed to %s: %v", action, err)
}
