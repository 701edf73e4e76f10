package drive_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/tools/common"
)

func registerFolderTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if readOnly {
		return nil
	}
	addTool(s, sc, mcp.NewTool("drive_create_folder",
		mcp.WithDescription("Create a new folder in Google Drive"),
		mcp.WithString("account", mcp.Description(common.AccountDescription)),
		mcp.WithString("name", mcp.Required(), mcp.Description("Folder name")),
		parentsOption(),
	), instrumentation.OperationCreate, handleCreateFolder)
	return nil
}

func handleCreateFolder(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	name, err := common.RequiredString(args, "name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c, err := client(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	folder, err := c.CreateFolder(ctx, name, common.StringList(args, "parent_folders"))
	if err != nil {
		return common.ErrorResult("Failed to create folder: %v", err), nil
	}
	return common.JSONResult(folder)
}
