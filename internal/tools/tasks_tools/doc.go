// Package tasks_tools provides MCP tools for managing Google Tasks.
//
// # Available Tools
//
// Task lists:
//   - tasks_list_task_lists: List all task lists
//
// Tasks:
//   - tasks_list_tasks: List tasks in a task list
//   - tasks_create_task: Create a new task
//   - tasks_update_task: Update a task
//   - tasks_complete_task: Mark a task as completed
//   - tasks_delete_task: Delete a task
//
// The write tools are not registered in read-only mode.
//
// # Multi-Account Support
//
// All tools accept an optional 'account' parameter naming the Google account
// to use. If not provided, the 'default' account is used.
package tasks_tools
