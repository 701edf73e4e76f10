// Package calendar_tools provides MCP tools for Google Calendar.
//
// Listing defaults to the window from midnight today until seven days from
// now. Timed events given without an offset are created in the configured
// time zone.
package calendar_tools
