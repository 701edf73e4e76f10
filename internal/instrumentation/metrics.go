package instrumentation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	attrMethod    = "method"
	attrPath      = "path"
	attrStatus    = "status"
	attrService   = "service"
	attrOperation = "operation"
	attrResult    = "result"
	attrTool      = "tool"
	attrAccount   = "account"
)

var latencyBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// Metrics records server activity. The zero value and a nil *Metrics are
// valid and record nothing.
type Metrics struct {
	toolCalls    metric.Int64Counter
	toolDuration metric.Float64Histogram

	apiCalls    metric.Int64Counter
	apiDuration metric.Float64Histogram

	queries      metric.Int64Counter
	rowsScanned  metric.Int64Counter
	rowsMatched  metric.Int64Counter
	writes       metric.Int64Counter
	cellsWritten metric.Int64Counter

	codeExchanges metric.Int64Counter
	tokenRefresh  metric.Int64Counter

	httpRequests metric.Int64Counter
	httpDuration metric.Float64Histogram

	detailedLabels bool
}

// instruments creates counters and histograms, collecting every failure.
type instruments struct {
	meter metric.Meter
	errs  []error
}

func (in *instruments) counter(name, desc, unit string) metric.Int64Counter {
	c, err := in.meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	if err != nil {
		in.errs = append(in.errs, fmt.Errorf("%s: %w", name, err))
	}
	return c
}

func (in *instruments) seconds(name, desc string, buckets []float64) metric.Float64Histogram {
	h, err := in.meter.Float64Histogram(name,
		metric.WithDescription(desc),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(buckets...))
	if err != nil {
		in.errs = append(in.errs, fmt.Errorf("%s: %w", name, err))
	}
	return h
}

// NewMetrics creates every instrument on meter. With detailedLabels the
// account is added to tool metrics.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	in := &instruments{meter: meter}
	m := &Metrics{
		toolCalls:    in.counter("mcp_tool_invocations_total", "MCP tool invocations", "{invocation}"),
		toolDuration: in.seconds("mcp_tool_duration_seconds", "MCP tool execution time", latencyBuckets),

		apiCalls:    in.counter("google_api_operations_total", "Google API operations", "{operation}"),
		apiDuration: in.seconds("google_api_operation_duration_seconds", "Google API operation time", latencyBuckets),

		queries:      in.counter("sheets_queries_total", "Sheet queries evaluated", "{query}"),
		rowsScanned:  in.counter("sheets_rows_scanned_total", "Sheet rows read by queries", "{row}"),
		rowsMatched:  in.counter("sheets_rows_matched_total", "Sheet rows accepted by query filters", "{row}"),
		writes:       in.counter("sheets_writes_total", "Sheet mutations", "{write}"),
		cellsWritten: in.counter("sheets_cells_written_total", "Sheet cells written", "{cell}"),

		codeExchanges: in.counter("oauth_code_exchanges_total", "OAuth authorization code exchanges", "{exchange}"),
		tokenRefresh:  in.counter("oauth_token_refresh_total", "OAuth access token refreshes", "{refresh}"),

		httpRequests: in.counter("http_requests_total", "HTTP requests", "{request}"),
		httpDuration: in.seconds("http_request_duration_seconds", "HTTP request time",
			[]float64{0.001, 0.01, 0.1, 0.5, 1, 2.5, 5, 10}),

		detailedLabels: detailedLabels,
	}
	if len(in.errs) > 0 {
		return nil, fmt.Errorf("failed to create metrics: %w", errors.Join(in.errs...))
	}
	return m, nil
}

func statusOf(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusSuccess
}

// RecordToolInvocation records one tool call.
func (m *Metrics) RecordToolInvocation(ctx context.Context, tool, account string, err error, d time.Duration) {
	if m == nil || m.toolCalls == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String(attrTool, tool),
		attribute.String(attrStatus, statusOf(err)),
	}
	if m.detailedLabels && account != "" {
		attrs = append(attrs, attribute.String(attrAccount, account))
	}
	opt := metric.WithAttributes(attrs...)
	m.toolCalls.Add(ctx, 1, opt)
	m.toolDuration.Record(ctx, d.Seconds(), opt)
}

// RecordGoogleAPIOperation records one call to a Google API.
func (m *Metrics) RecordGoogleAPIOperation(ctx context.Context, service, operation string, err error, d time.Duration) {
	if m == nil || m.apiCalls == nil {
		return
	}
	opt := metric.WithAttributes(
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, statusOf(err)),
	)
	m.apiCalls.Add(ctx, 1, opt)
	m.apiDuration.Record(ctx, d.Seconds(), opt)
}

// ObserveQuery records a finished sheet query.
func (m *Metrics) ObserveQuery(ctx context.Context, scanned, matched int) {
	if m == nil || m.queries == nil {
		return
	}
	m.queries.Add(ctx, 1)
	m.rowsScanned.Add(ctx, int64(scanned))
	m.rowsMatched.Add(ctx, int64(matched))
}

// ObserveWrite records a finished sheet mutation.
func (m *Metrics) ObserveWrite(ctx context.Context, operation string, cells int) {
	if m == nil || m.writes == nil {
		return
	}
	opt := metric.WithAttributes(attribute.String(attrOperation, operation))
	m.writes.Add(ctx, 1, opt)
	m.cellsWritten.Add(ctx, int64(cells), opt)
}

// RecordCodeExchange records an authorization code exchange.
func (m *Metrics) RecordCodeExchange(ctx context.Context, err error) {
	if m == nil || m.codeExchanges == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	m.codeExchanges.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}

// RecordTokenRefresh records a refreshed access token.
func (m *Metrics) RecordTokenRefresh(ctx context.Context) {
	if m == nil || m.tokenRefresh == nil {
		return
	}
	m.tokenRefresh.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, ResultSuccess)))
}

// RecordHTTPRequest records one HTTP request.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, d time.Duration) {
	if m == nil || m.httpRequests == nil {
		return
	}
	opt := metric.WithAttributes(
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	)
	m.httpRequests.Add(ctx, 1, opt)
	m.httpDuration.Record(ctx, d.Seconds(), opt)
}
