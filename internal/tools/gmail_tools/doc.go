// Package gmail_tools provides MCP tools for Gmail: thread search, message
// reading, label changes and sending plain-text mail.
package gmail_tools
