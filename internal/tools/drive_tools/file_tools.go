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

const (
	defaultPageSize = 50
	maxPageSize     = 1000
)

func registerFileTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	addTool(s, sc, mcp.NewTool("drive_list_files",
		mcp.WithDescription("List files in Google Drive with optional filtering"),
		mcp.WithString("account", mcp.Description(common.AccountDescription)),
		mcp.WithString("query",
			mcp.Description("Drive search query, e.g. \"name contains 'budget'\" or \"mimeType = 'application/vnd.google-apps.spreadsheet'\""),
		),
		mcp.WithNumber("max_results",
			mcp.Description(fmt.Sprintf("Maximum number of files (default: %d, max: %d)", defaultPageSize, maxPageSize)),
		),
		mcp.WithString("order_by",
			mcp.Description("Sort order, e.g. 'modifiedTime desc' or 'folder,name'"),
		),
		mcp.WithBoolean("include_trashed",
			mcp.Description("Include files in the trash (default: false)"),
		),
		mcp.WithString("page_token",
			mcp.Description("Token from a previous call to fetch the next page"),
		),
	), instrumentation.OperationSearch, handleListFiles)

	addTool(s, sc, mcp.NewTool("drive_get_file",
		mcp.WithDescription("Get the metadata of a file"),
		mcp.WithString("account", mcp.Description(common.AccountDescription)),
		mcp.WithString("file_id", mcp.Required(), mcp.Description("The file ID")),
	), instrumentation.OperationGet, handleGetFile)

	addTool(s, sc, mcp.NewTool("drive_read_file_text",
		mcp.WithDescription("Read the text of a Google Doc, Sheet, Slides deck, text file or .xlsx workbook (up to 1 MiB)"),
		mcp.WithString("account", mcp.Description(common.AccountDescription)),
		mcp.WithString("file_id", mcp.Required(), mcp.Description("The file ID")),
	), instrumentation.OperationGet, handleReadFileText)

	if readOnly {
		return nil
	}

	addTool(s, sc, mcp.NewTool("drive_upload_text_file",
		mcp.WithDescription("Create a plain-text file in Google Drive"),
		mcp.WithString("account", mcp.Description(common.AccountDescription)),
		mcp.WithString("name", mcp.Required(), mcp.Description("File name")),
		mcp.WithString("content", mcp.Required(), mcp.Description("File content")),
		parentsOption(),
	), instrumentation.OperationCreate, handleUploadTextFile)

	return nil
}

func handleListFiles(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	pageSize, err := common.IntArg(args, "max_results", defaultPageSize)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if pageSize < 1 || pageSize > maxPageSize {
		return mcp.NewToolResultError(fmt.Sprintf("max_results must be between 1 and %d", maxPageSize)), nil
	}
	c, err := client(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	files, next, err := c.ListFiles(ctx, drive.ListOptions{
		Query:          common.StringArg(args, "query"),
		PageSize:       int64(pageSize),
		OrderBy:        common.StringArg(args, "order_by"),
		PageToken:      common.StringArg(args, "page_token"),
		IncludeTrashed: common.BoolArg(args, "include_trashed", false),
	})
	if err != nil {
		return common.ErrorResult("Failed to list files: %v", err), nil
	}
	out := map[string]any{
		"count": len(files),
		"files": files,
	}
	if next != "" {
		out["next_page_token"] = next
	}
	return common.JSONResult(out)
}

func handleGetFile(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	fileID, err := common.RequiredString(args, "file_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c, err := client(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	info, err := c.GetFile(ctx, fileID)
	if err != nil {
		return common.ErrorResult("Failed to get file: %v", err), nil
	}
	return common.JSONResult(info)
}

func handleReadFileText(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	fileID, err := common.RequiredString(args, "file_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c, err := client(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text, err := c.ReadText(ctx, fileID)
	if err != nil {
		return common.ErrorResult("Failed to read file: %v", err), nil
	}
	return common.JSONResult(text)
}

func handleUploadTextFile(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	name, err := common.RequiredString(args, "name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, ok := args["content"].(string)
	if !ok {
		return mcp.NewToolResultError("content is required"), nil
	}
	c, err := client(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	info, err := c.UploadText(ctx, name, content, common.StringList(args, "parent_folders"))
	if err != nil {
		return common.ErrorResult("Failed to upload file: %v", err), nil
	}
	return common.JSONResult(info)
}
