// Package accomplishment_tools exposes the accomplishments journal kept in
// the configured spreadsheet as MCP tools.
package accomplishment_tools
