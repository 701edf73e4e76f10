// Package logging provides structured logging helpers for workspace-mcp.
//
// All components log through log/slog. This package keeps attribute names
// consistent and makes sure account identifiers and OAuth tokens never reach
// the log output in clear text.
//
//	logger := logging.WithTool(slog.Default(), "sheets_query")
//	logger.Info("query finished",
//	    logging.Spreadsheet(id),
//	    logging.Worksheet("Tasks"),
//	    logging.Rows(len(records)))
package logging
