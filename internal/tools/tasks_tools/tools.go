package tasks_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/workspace-mcp/internal/instrumentation"
	"github.com/teemow/workspace-mcp/internal/server"
	"github.com/teemow/workspace-mcp/internal/tasks"
	"github.com/teemow/workspace-mcp/internal/tools/common"
)

type handlerFunc func(context.Context, mcp.CallToolRequest, *server.ServerContext) (*mcp.CallToolResult, error)

// RegisterTasksTools registers all Google Tasks tools with the MCP server.
func RegisterTasksTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	addTool(s, sc, mcp.NewTool("tasks_list_task_lists",
		mcp.WithDescription("List all task lists"),
		mcp.WithString("account", mcp.Description(common.AccountDescription)),
	), instrumentation.OperationList, handleListTaskLists)

	addTool(s, sc, mcp.NewTool("tasks_list_tasks",
		mcp.WithDescription("List the tasks of a task list"),
		mcp.WithString("account", mcp.Description(common.AccountDescription)),
		taskListOption(),
		mcp.WithBoolean("show_completed", mcp.Description("Include completed tasks (default: false)")),
	), instrumentation.OperationList, handleListTasks)

	if readOnly {
		return nil
	}

	addTool(s, sc, mcp.NewTool("tasks_create_task",
		mcp.WithDescription("Create a task"),
		mcp.WithString("account", mcp.Description(common.AccountDescription)),
		taskListOption(),
		mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
		mcp.WithString("notes", mcp.Description("Task notes")),
		mcp.WithString("due", mcp.Description("Due date (YYYY-MM-DD or RFC 3339)")),
	), instrumentation.OperationCreate, handleCreateTask)

	addTool(s, sc, mcp.NewTool("tasks_update_task",
		mcp.WithDescription("Update a task. Only the given fields change."),
		mcp.WithString("account", mcp.Description(common.AccountDescription)),
		taskListOption(),
		taskIDOption(),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("notes", mcp.Description("New notes")),
		mcp.WithString("due", mcp.Description("New due date (YYYY-MM-DD or RFC 3339)")),
		mcp.WithString("status", mcp.Description("needsAction or completed")),
	), instrumentation.OperationUpdate, handleUpdateTask)

	addTool(s, sc, mcp.NewTool("tasks_complete_task",
		mcp.WithDescription("Mark a task completed"),
		mcp.WithString("account", mcp.Description(common.AccountDescription)),
		taskListOption(),
		taskIDOption(),
	), instrumentation.OperationUpdate, handleCompleteTask)

	addTool(s, sc, mcp.NewTool("tasks_delete_task",
		mcp.WithDescription("Delete a task"),
		mcp.WithString("account", mcp.Description(common.AccountDescription)),
		taskListOption(),
		taskIDOption(),
	), instrumentation.OperationDelete, handleDeleteTask)

	return nil
}

func addTool(s *mcpserver.MCPServer, sc *server.ServerContext, tool mcp.Tool, operation string, h handlerFunc) {
	s.AddTool(tool, common.InstrumentedToolHandlerWithService(tool.Name, instrumentation.ServiceTasks, operation, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return h(ctx, request, sc)
		}))
}

func taskListOption() mcp.ToolOption {
	return mcp.WithString("task_list_id",
		mcp.Description("Task list ID (default: the user's default list)"),
	)
}

func taskIDOption() mcp.ToolOption {
	return mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID"))
}

func taskListID(args map[string]any) string {
	if id := common.StringArg(args, "task_list_id"); id != "" {
		return id
	}
	return tasks.DefaultTaskList
}

func client(args map[string]any, sc *server.ServerContext) (*tasks.Client, error) {
	return sc.TasksClient(common.GetAccountFromArgs(args))
}

func handleListTaskLists(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	c, err := client(request.GetArguments(), sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	lists, err := c.ListTaskLists(ctx)
	if err != nil {
		return common.ErrorResult("Failed to list task lists: %v", err), nil
	}
	return common.JSONResult(lists)
}

func handleListTasks(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	c, err := client(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	items, err := c.ListTasks(ctx, taskListID(args), common.BoolArg(args, "show_completed", false))
	if err != nil {
		return common.ErrorResult("Failed to list tasks: %v", err), nil
	}
	return common.JSONResult(map[string]any{
		"count": len(items),
		"tasks": items,
	})
}

func handleCreateTask(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	title, err := common.RequiredString(args, "title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	due := common.StringArg(args, "due")
	if due != "" {
		if _, err := tasks.NormalizeDue(due); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	c, err := client(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	task, err := c.CreateTask(ctx, taskListID(args), tasks.TaskInput{
		Title: title,
		Notes: common.StringArg(args, "notes"),
		Due:   due,
	})
	if err != nil {
		return common.ErrorResult("Failed to create task: %v", err), nil
	}
	return common.JSONResult(task)
}

func handleUpdateTask(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	taskID, err := common.RequiredString(args, "task_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	input := tasks.TaskInput{
		Title:  common.StringArg(args, "title"),
		Notes:  common.StringArg(args, "notes"),
		Due:    common.StringArg(args, "due"),
		Status: common.StringArg(args, "status"),
	}
	switch input.Status {
	case "", tasks.StatusNeedsAction, tasks.StatusCompleted:
	default:
		return mcp.NewToolResultError(fmt.Sprintf("invalid status %q: use %s or %s",
			input.Status, tasks.StatusNeedsAction, tasks.StatusCompleted)), nil
	}
	if input == (tasks.TaskInput{}) {
		return mcp.NewToolResultError("nothing to update"), nil
	}
	c, err := client(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	task, err := c.UpdateTask(ctx, taskListID(args), taskID, input)
	if err != nil {
		return common.ErrorResult("Failed to update task: %v", err), nil
	}
	return common.JSONResult(task)
}

func handleCompleteTask(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	taskID, err := common.RequiredString(args, "task_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c, err := client(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	task, err := c.CompleteTask(ctx, taskListID(args), taskID)
	if err != nil {
		return common.ErrorResult("Failed to complete task: %v", err), nil
	}
	return common.JSONResult(task)
}

func handleDeleteTask(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	taskID, err := common.RequiredString(args, "task_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c, err := client(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := c.DeleteTask(ctx, taskListID(args), taskID); err != nil {
		return common.ErrorResult("Failed to delete task: %v", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Task %s deleted", taskID)), nil
}
