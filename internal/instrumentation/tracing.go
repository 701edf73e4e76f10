package instrumentation

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName names the tracer used for server spans.
const TracerName = "github.com/teemow/workspace-mcp"

// Span attribute keys.
const (
	SpanAttrTool        = "mcp.tool"
	SpanAttrAccount     = "mcp.account"
	SpanAttrReadOnly    = "mcp.read_only"
	SpanAttrService     = "google.service"
	SpanAttrOperation   = "google.operation"
	SpanAttrSpreadsheet = "sheets.spreadsheet_id"
	SpanAttrWorksheet   = "sheets.worksheet"
)

func tracer() trace.Tracer {
	return otel.GetTracerProvider().Tracer(TracerName)
}

// StartToolSpan starts a server span for a tool call. The caller ends it.
func StartToolSpan(ctx context.Context, tool string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer().Start(ctx, "tool."+tool,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(append([]attribute.KeyValue{attribute.String(SpanAttrTool, tool)}, attrs...)...))
}

// StartGoogleAPISpan starts a client span for a Google API call.
func StartGoogleAPISpan(ctx context.Context, service, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	base := []attribute.KeyValue{
		attribute.String(SpanAttrService, service),
		attribute.String(SpanAttrOperation, operation),
	}
	return tracer().Start(ctx, "google."+service+"."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(append(base, attrs...)...))
}

// SheetAttrs returns the span attributes naming a worksheet. Empty values are
// skipped.
func SheetAttrs(spreadsheetID, worksheet string) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	if spreadsheetID != "" {
		attrs = append(attrs, attribute.String(SpanAttrSpreadsheet, spreadsheetID))
	}
	if worksheet != "" {
		attrs = append(attrs, attribute.String(SpanAttrWorksheet, worksheet))
	}
	return attrs
}

// EndSpan sets the span status from err and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// TraceID returns the trace ID of the span in ctx, or "".
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}
