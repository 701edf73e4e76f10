// Package sheets_tools exposes the spreadsheet query engine and the
// spreadsheet administration calls as MCP tools.
//
// The engine tools (sheets_query, sheets_update_row, sheets_append_row,
// sheets_delete_row, sheets_validate_structure) treat the first row of a
// worksheet as its header and address rows by an ID column. Writes only
// touch the named cells, so formulas in other columns survive.
package sheets_tools
