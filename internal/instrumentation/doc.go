// Package instrumentation wires OpenTelemetry metrics and traces for the
// workspace MCP server.
//
// A Provider owns the meter and tracer providers. Metrics are exported to a
// Prometheus registry served on the metrics port, to an OTLP collector over
// HTTP, or to stdout for debugging. Traces go to OTLP or stdout and are
// sampled by ratio.
//
// # Metrics
//
//   - mcp_tool_invocations_total, mcp_tool_duration_seconds: by tool and status
//   - google_api_operations_total, google_api_operation_duration_seconds: by
//     service, operation and status
//   - sheets_queries_total, sheets_rows_scanned_total, sheets_rows_matched_total
//   - sheets_writes_total, sheets_cells_written_total: by operation
//   - oauth_code_exchanges_total, oauth_token_refresh_total: by result
//   - http_requests_total, http_request_duration_seconds: by method, path and status
//
// Metrics also implements the sheets engine's Observer interface, so query
// and write volumes are recorded without the engine depending on this package.
//
// # Configuration
//
// ConfigFromEnv reads:
//
//	INSTRUMENTATION_ENABLED       true
//	METRICS_EXPORTER              prometheus | otlp | stdout
//	TRACING_EXPORTER              none | otlp | stdout
//	OTEL_SERVICE_NAME             workspace-mcp
//	OTEL_EXPORTER_OTLP_ENDPOINT   host:port of the collector
//	OTEL_EXPORTER_OTLP_INSECURE   false
//	OTEL_TRACES_SAMPLER_ARG       0.1
//	METRICS_DETAILED_LABELS       false
//	AUDIT_LOGGING_ENABLED         true
//	AUDIT_LOGGING_INCLUDE_PII     false
//
// # Audit
//
// AuditLogger writes one structured record per tool call. Account names that
// are email addresses are hashed unless PII logging is switched on.
package instrumentation
