package drive_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/workspace-mcp/internal/drive"
	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/tools/common"
)

type handlerFunc func(context.Context, mcp.CallToolRequest, *server.ServerContext) (*mcp.CallToolResult, error)

// RegisterDriveTools registers all Google Drive-related tools with the MCP server
func RegisterDriveTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := registerFileTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register file tools: %w", err)
	}
	if err := registerFolderTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register folder tools: %w", err)
	}
	return nil
}

func addTool(s *mcpserver.MCPServer, sc *server.ServerContext, tool mcp.Tool, operation string, h handlerFunc) {
	s.AddTool(tool, common.InstrumentedToolHandlerWithService(tool.Name, instrumentation.ServiceDrive, operation, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return h(ctx, request, sc)
		}))
}

func client(args map[string]any, sc *server.ServerContext) (*drive.Client, error) {
	return sc.DriveClient(common.GetAccountFromArgs(args))
}

func parentsOption() mcp.ToolOption {
	return mcp.WithString("parent_folders",
		mcp.Description("Comma-separated parent folder IDs (default: My Drive root)"),
	)
}
