package drive_tools

import (
	"io"
	"net/http"
	"strings"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	driveapi "google.golang.org/api/drive/v3"

	"github.com/teemow/workspace-mcp/internal/drive"
	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/tools/tooltest"
)

func TestHandleListFiles(t *testing.T) {
	var q, pageSize string
	sc := tooltest.NewContext(t, server.Config{}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q = r.URL.Query().Get("q")
		pageSize = r.URL.Query().Get("pageSize")
		tooltest.WriteJSON(t, w, driveapi.FileList{
			Files:         []*driveapi.File{{Id: "f1", Name: "Budget", MimeType: drive.SpreadsheetMimeType}},
			NextPageToken: "next",
		})
	}))

	var out struct {
		Count         int              `json:"count"`
		Files         []drive.FileInfo `json:"files"`
		NextPageToken string           `json:"next_page_token"`
	}
	tooltest.Decode(t, tooltest.Call(t, handleListFiles, sc, map[string]any{
		"query":       "name contains 'Budget'",
		"max_results": 5,
	}), &out)
	assert.Equal(t, 1, out.Count)
	assert.Equal(t, "next", out.NextPageToken)
	assert.Equal(t, "(name contains 'Budget') and trashed = false", q)
	assert.Equal(t, "5", pageSize)
}

func TestHandleListFiles_InvalidPageSize(t *testing.T) {
	sc := tooltest.NewContext(t, server.Config{}, http.NotFoundHandler())

	for _, n := range []any{0, 1001, "many"} {
		result := tooltest.Call(t, handleListFiles, sc, map[string]any{"max_results": n})
		assert.True(t, result.IsError, "max_results=%v", n)
	}
}

func TestHandleGetFile(t *testing.T) {
	sc := tooltest.NewContext(t, server.Config{}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/files/f1"), r.URL.Path)
		tooltest.WriteJSON(t, w, driveapi.File{Id: "f1", Name: "notes.txt", MimeType: "text/plain", Size: 12})
	}))

	var info drive.FileInfo
	tooltest.Decode(t, tooltest.Call(t, handleGetFile, sc, map[string]any{"file_id": "f1"}), &info)
	assert.Equal(t, "notes.txt", info.Name)
	assert.Equal(t, int64(12), info.Size)

	result := tooltest.Call(t, handleGetFile, sc, map[string]any{})
	require.True(t, result.IsError)
	assert.Contains(t, tooltest.Text(t, result), "file_id is required")
}

func TestHandleReadFileText(t *testing.T) {
	sc := tooltest.NewContext(t, server.Config{}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/export"):
			assert.Equal(t, "text/plain", r.URL.Query().Get("mimeType"))
			_, _ = w.Write([]byte("Quarterly plan"))
		default:
			tooltest.WriteJSON(t, w, driveapi.File{Id: "d1", Name: "Plan", MimeType: drive.DocumentMimeType})
		}
	}))

	var text drive.FileText
	tooltest.Decode(t, tooltest.Call(t, handleReadFileText, sc, map[string]any{"file_id": "d1"}), &text)
	assert.Equal(t, "Quarterly plan", text.Text)
	assert.False(t, text.Truncated)
}

func TestHandleReadFileText_Unsupported(t *testing.T) {
	sc := tooltest.NewContext(t, server.Config{}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tooltest.WriteJSON(t, w, driveapi.File{Id: "p1", Name: "photo.png", MimeType: "image/png"})
	}))

	result := tooltest.Call(t, handleReadFileText, sc, map[string]any{"file_id": "p1"})
	require.True(t, result.IsError)
	assert.Contains(t, tooltest.Text(t, result), "unsupported file type image/png")
}

func TestHandleUploadTextFile(t *testing.T) {
	var body string
	sc := tooltest.NewContext(t, server.Config{}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		body = string(data)
		tooltest.WriteJSON(t, w, driveapi.File{Id: "up-1", Name: "todo.txt", MimeType: "text/plain"})
	}))

	var info drive.FileInfo
	tooltest.Decode(t, tooltest.Call(t, handleUploadTextFile, sc, map[string]any{
		"name":           "todo.txt",
		"content":        "buy milk",
		"parent_folders": "folder-1",
	}), &info)
	assert.Equal(t, "up-1", info.ID)
	assert.Contains(t, body, "buy milk")
	assert.Contains(t, body, "folder-1")

	result := tooltest.Call(t, handleUploadTextFile, sc, map[string]any{"name": "empty.txt"})
	require.True(t, result.IsError)
	assert.Contains(t, tooltest.Text(t, result), "content is required")
}

func TestHandleCreateFolder(t *testing.T) {
	var got string
	sc := tooltest.NewContext(t, server.Config{}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		got = string(data)
		tooltest.WriteJSON(t, w, driveapi.File{Id: "fold-1", Name: "Reports", MimeType: drive.FolderMimeType})
	}))

	var info drive.FileInfo
	tooltest.Decode(t, tooltest.Call(t, handleCreateFolder, sc, map[string]any{"name": "Reports"}), &info)
	assert.Equal(t, "fold-1", info.ID)
	assert.Contains(t, got, drive.FolderMimeType)
}

func TestRegisterDriveTools(t *testing.T) {
	sc := tooltest.NewContext(t, server.Config{}, http.NotFoundHandler())

	readOnly := mcpserver.NewMCPServer("test", "1.0.0", mcpserver.WithToolCapabilities(true))
	require.NoError(t, RegisterDriveTools(readOnly, sc, true))
	tools := readOnly.ListTools()
	assert.Len(t, tools, 3)
	assert.NotContains(t, tools, "drive_create_folder")

	writable := mcpserver.NewMCPServer("test", "1.0.0", mcpserver.WithToolCapabilities(true))
	require.NoError(t, RegisterDriveTools(writable, sc, false))
	assert.Len(t, writable.ListTools(), 5)
}
