// Package tooltest holds helpers for testing tool handlers against fake
// Google APIs.
package tooltest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/teemow/workspace-mcp/internal/server"
)

// Handler is the signature shared by the tool handlers.
type Handler func(context.Context, mcp.CallToolRequest, *server.ServerContext) (*mcp.CallToolResult, error)

// NewContext returns a ServerContext whose Google clients talk to handler.
func NewContext(t testing.TB, config server.Config, handler http.Handler) *server.ServerContext {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	sc := server.NewServerContext(context.Background(), config, nil,
		server.WithClientOptions(func(context.Context, string) ([]option.ClientOption, error) {
			return []option.ClientOption{
				option.WithEndpoint(srv.URL + "/"),
				option.WithHTTPClient(srv.Client()),
			}, nil
		}))
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

// Call invokes h with args and fails the test on a protocol error.
func Call(t testing.TB, h Handler, sc *server.ServerContext, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	result, err := h(context.Background(), req, sc)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

// Text returns the first text content of result.
func Text(t testing.TB, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	tc, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "content is %T", result.Content[0])
	return tc.Text
}

// Decode unmarshals the text of a successful result into out.
func Decode(t testing.TB, result *mcp.CallToolResult, out any) {
	t.Helper()
	require.False(t, result.IsError, Text(t, result))
	require.NoError(t, json.Unmarshal([]byte(Text(t, result)), out))
}

// WriteJSON writes v as a JSON response.
func WriteJSON(t testing.TB, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}
