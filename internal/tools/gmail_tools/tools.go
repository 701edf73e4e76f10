package gmail_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/workspace-mcp/internal/gmail"
	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/tools/common"
)

const defaultQuery = "in:inbox"

type handlerFunc func(context.Context, mcp.CallToolRequest, *server.ServerContext) (*mcp.CallToolResult, error)

// threadAction changes the labels of a set of threads.
type threadAction func(c *gmail.Client, ctx context.Context, threadIDs []string) error

// RegisterGmailTools registers all Gmail-related tools with the MCP server.
// Label changes and sending are skipped in read-only mode.
func RegisterGmailTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	addTool(s, sc, mcp.NewTool("gmail_list_threads",
		mcp.WithDescription("List Gmail threads matching a search query"),
		mcp.WithString("account", mcp.Description(common.AccountDescription)),
		mcp.WithString("query",
			mcp.Description("Gmail search query (default: 'in:inbox'), e.g. 'from:user@example.com is:unread'"),
		),
		mcp.WithNumber("max_results",
			mcp.Description(fmt.Sprintf("Maximum number of threads (default: %d)", gmail.DefaultMaxResults)),
		),
	), instrumentation.OperationSearch, handleListThreads)

	addTool(s, sc, mcp.NewTool("gmail_get_message",
		mcp.WithDescription("Get a message with its headers and plain-text body"),
		mcp.WithString("account", mcp.Description(common.AccountDescription)),
		mcp.WithString("message_id", mcp.Required(), mcp.Description("The message ID")),
	), instrumentation.OperationGet, handleGetMessage)

	addTool(s, sc, mcp.NewTool("gmail_list_labels",
		mcp.WithDescription("List the system and user labels"),
		mcp.WithString("account", mcp.Description(common.AccountDescription)),
	), instrumentation.OperationList, handleListLabels)

	if readOnly {
		return nil
	}

	threadTools := []struct {
		name        string
		description string
		action      threadAction
		done        string
	}{
		{"gmail_archive_threads", "Archive threads by removing them from the inbox", (*gmail.Client).ArchiveThreads, "archived"},
		{"gmail_unarchive_threads", "Move threads back to the inbox", (*gmail.Client).UnarchiveThreads, "moved to the inbox"},
		{"gmail_mark_read", "Mark threads as read", (*gmail.Client).MarkRead, "marked as read"},
		{"gmail_mark_unread", "Mark threads as unread", (*gmail.Client).MarkUnread, "marked as unread"},
	}
	for _, tt := range threadTools {
		addTool(s, sc, mcp.NewTool(tt.name,
			mcp.WithDescription(tt.description),
			mcp.WithString("account", mcp.Description(common.AccountDescription)),
			threadIDsOption(),
		), instrumentation.OperationUpdate, threadHandler(tt.action, tt.done))
	}

	addTool(s, sc, mcp.NewTool("gmail_modify_labels",
		mcp.WithDescription("Add and remove labels on threads. Use gmail_list_labels for label IDs."),
		mcp.WithString("account", mcp.Description(common.AccountDescription)),
		threadIDsOption(),
		mcp.WithString("add_labels", mcp.Description("Comma-separated label IDs to add")),
		mcp.WithString("remove_labels", mcp.Description("Comma-separated label IDs to remove")),
	), instrumentation.OperationUpdate, handleModifyLabels)

	return RegisterEmailTools(s, sc)
}

func addTool(s *mcpserver.MCPServer, sc *server.ServerContext, tool mcp.Tool, operation string, h handlerFunc) {
	s.AddTool(tool, common.InstrumentedToolHandlerWithService(tool.Name, instrumentation.ServiceGmail, operation, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return h(ctx, request, sc)
		}))
}

func threadIDsOption() mcp.ToolOption {
	return mcp.WithString("thread_ids",
		mcp.Required(),
		mcp.Description("Thread ID, comma-separated IDs, or an array of thread IDs"),
	)
}

func client(args map[string]any, sc *server.ServerContext) (*gmail.Client, error) {
	return sc.GmailClient(common.GetAccountFromArgs(args))
}

func threadIDs(args map[string]any) ([]string, error) {
	ids := common.StringList(args, "thread_ids")
	if len(ids) == 0 {
		return nil, fmt.Errorf("thread_ids is required")
	}
	return ids, nil
}

func handleListThreads(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	query := common.StringArg(args, "query")
	if query == "" {
		query = defaultQuery
	}
	maxResults, err := common.IntArg(args, "max_results", gmail.DefaultMaxResults)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c, err := client(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	threads, err := c.ListThreads(ctx, query, int64(maxResults))
	if err != nil {
		return common.ErrorResult("Failed to list threads: %v", err), nil
	}
	return common.JSONResult(map[string]any{
		"query":   query,
		"count":   len(threads),
		"threads": threads,
	})
}

func handleGetMessage(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	messageID, err := common.RequiredString(args, "message_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c, err := client(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	msg, err := c.GetMessage(ctx, messageID)
	if err != nil {
		return common.ErrorResult("Failed to get message: %v", err), nil
	}
	return common.JSONResult(msg)
}

func handleListLabels(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	c, err := client(request.GetArguments(), sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	labels, err := c.ListLabels(ctx)
	if err != nil {
		return common.ErrorResult("Failed to list labels: %v", err), nil
	}
	return common.JSONResult(labels)
}

func threadHandler(action threadAction, done string) handlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		ids, err := threadIDs(args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		c, err := client(args, sc)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if err := action(c, ctx, ids); err != nil {
			return common.ErrorResult("Failed to update threads: %v", err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("%d thread(s) %s: %s", len(ids), done, strings.Join(ids, ", "))), nil
	}
}

func handleModifyLabels(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	ids, err := threadIDs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	add := common.StringList(args, "add_labels")
	remove := common.StringList(args, "remove_labels")
	if len(add) == 0 && len(remove) == 0 {
		return mcp.NewToolResultError("add_labels or remove_labels is required"), nil
	}
	c, err := client(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := c.ModifyThreads(ctx, ids, add, remove); err != nil {
		return common.ErrorResult("Failed to modify labels: %v", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Labels updated on %d thread(s)", len(ids))), nil
}
