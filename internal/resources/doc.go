// Package resources provides MCP resources. Resources are read-only data
// sources that MCP clients can fetch: the standard column sets of the managed
// sheets, and the server's workspace settings.
package resources
