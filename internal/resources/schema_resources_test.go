package resources

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/sheets"
)

func readRequest(uri string) mcp.ReadResourceRequest {
	var req mcp.ReadResourceRequest
	req.Params.URI = uri
	return req
}

func decodeContents(t *testing.T, contents []mcp.ResourceContents, out any) {
	t.Helper()
	require.Len(t, contents, 1)
	text, ok := contents[0].(*mcp.TextResourceContents)
	require.True(t, ok, "contents is %T", contents[0])
	assert.Equal(t, mimeJSON, text.MIMEType)
	require.NoError(t, json.Unmarshal([]byte(text.Text), out))
}

func TestHandleColumnSet(t *testing.T) {
	tests := []struct {
		set          sheets.ColumnSet
		wantRequired []string
	}{
		{sheets.TaskColumns, []string{"Task", "Status"}},
		{sheets.AccomplishmentColumns, []string{"Date", "Accomplishment"}},
		{sheets.PriorityColumns, []string{"Date", "Priorities"}},
	}
	for _, tt := range tests {
		t.Run(tt.set.Name, func(t *testing.T) {
			uri := schemaURIPrefix + tt.set.Name
			contents, err := handleColumnSet(context.Background(), readRequest(uri), tt.set)
			require.NoError(t, err)

			var got sheets.ColumnSet
			decodeContents(t, contents, &got)
			assert.Equal(t, tt.set.Name, got.Name)
			assert.Equal(t, tt.wantRequired, got.Required)
			assert.Equal(t, uri, contents[0].(*mcp.TextResourceContents).URI)
		})
	}
}

func TestHandleConfig(t *testing.T) {
	sc := server.NewServerContext(context.Background(), server.Config{
		SpreadsheetID: "sheet-id",
		TimeZone:      "Europe/Berlin",
		ReadOnly:      true,
	}, nil)
	t.Cleanup(func() { _ = sc.Shutdown() })

	contents, err := handleConfig(context.Background(), readRequest(configURI), sc)
	require.NoError(t, err)

	var got map[string]any
	decodeContents(t, contents, &got)
	assert.Equal(t, "sheet-id", got["spreadsheet_id"])
	assert.Equal(t, "Accomplishments", got["accomplishments_worksheet"])
	assert.Equal(t, true, got["read_only"])
	assert.Equal(t, false, got["credentials_configured"])
}

func TestRegisterResources(t *testing.T) {
	sc := server.NewServerContext(context.Background(), server.Config{}, nil)
	t.Cleanup(func() { _ = sc.Shutdown() })

	s := mcpserver.NewMCPServer("test", "1.0.0", mcpserver.WithResourceCapabilities(false, false))
	require.NoError(t, RegisterResources(s, sc))
}
