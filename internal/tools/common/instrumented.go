package common

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/server"
)

// ToolHandler is the signature of an MCP tool handler.
type ToolHandler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// InstrumentedToolHandler wraps handler with a span, metrics and an audit
// record.
//
//	s.AddTool(tool, common.InstrumentedToolHandler("my_tool", sc, handler))
func InstrumentedToolHandler(toolName string, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return InstrumentedToolHandlerWithService(toolName, "", "", sc, handler)
}

// InstrumentedToolHandlerWithService also records the Google service and
// operation the tool performs.
func InstrumentedToolHandlerWithService(toolName, service, operation string, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		account := GetAccountFromArgs(request.GetArguments())

		attrs := []attribute.KeyValue{attribute.Bool(instrumentation.SpanAttrReadOnly, sc.Config().ReadOnly)}
		if service != "" {
			attrs = append(attrs,
				attribute.String(instrumentation.SpanAttrService, service),
				attribute.String(instrumentation.SpanAttrOperation, operation))
		}
		ctx, span := instrumentation.StartToolSpan(ctx, toolName, attrs...)

		invocation := instrumentation.StartToolInvocation(toolName, account)
		invocation.Service = service
		invocation.Operation = operation
		invocation.ReadOnly = sc.Config().ReadOnly

		result, err := handler(ctx, request)

		failure := err
		if failure == nil && result != nil && result.IsError {
			failure = errors.New(resultText(result))
		}
		instrumentation.EndSpan(span, failure)
		invocation.Finish(ctx, failure)

		metrics := sc.Metrics()
		metrics.RecordToolInvocation(ctx, toolName, account, failure, invocation.Duration)
		if service != "" {
			metrics.RecordGoogleAPIOperation(ctx, service, operation, failure, invocation.Duration)
		}
		sc.AuditLogger().Log(ctx, invocation)

		return result, err
	}
}

// resultText returns the first text block of result.
func resultText(result *mcp.CallToolResult) string {
	for _, c := range result.Content {
		switch tc := c.(type) {
		case mcp.TextContent:
			return tc.Text
		case *mcp.TextContent:
			return tc.Text
		}
	}
	return "tool returned an error"
}
