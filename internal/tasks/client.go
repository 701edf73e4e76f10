package tasks

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"
)

// DefaultTaskList names the user's default list.
const DefaultTaskList = "@default"

// Client wraps the Google Tasks service.
type Client struct {
	svc     *tasks.Service
	account string
}

// NewClient creates a Tasks client for account.
func NewClient(ctx context.Context, account string, opts ...option.ClientOption) (*Client, error) {
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Tasks service: %w", err)
	}
	return &Client{svc: svc, account: account}, nil
}

// Account returns the account name this client is associated with.
func (c *Client) Account() string {
	return c.account
}

// ListTaskLists lists the user's task lists.
func (c *Client) ListTaskLists(ctx context.Context) ([]TaskList, error) {
	result, err := c.svc.Tasklists.List().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list task lists: %w", err)
	}
	lists := make([]TaskList, 0, len(result.Items))
	for _, tl := range result.Items {
		lists = append(lists, toTaskList(tl))
	}
	return lists, nil
}

// ListTasks lists the tasks of a list. Completed and hidden tasks are only
// included when showCompleted is set.
func (c *Client) ListTasks(ctx context.Context, taskListID string, showCompleted bool) ([]Task, error) {
	call := c.svc.Tasks.List(taskListID).ShowCompleted(showCompleted).Context(ctx)
	if showCompleted {
		call = call.ShowHidden(true)
	}
	result, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	items := make([]Task, 0, len(result.Items))
	for _, t := range result.Items {
		items = append(items, toTask(t))
	}
	return items, nil
}

// CreateTask inserts a task at the top of the list.
func (c *Client) CreateTask(ctx context.Context, taskListID string, input TaskInput) (*Task, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	t := &tasks.Task{Title: input.Title, Notes: input.Notes, Status: input.Status}
	if input.Due != "" {
		due, err := NormalizeDue(input.Due)
		if err != nil {
			return nil, err
		}
		t.Due = due
	}

	created, err := c.svc.Tasks.Insert(taskListID, t).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	result := toTask(created)
	return &result, nil
}

// UpdateTask fetches the task, applies the non-empty fields of input and
// writes it back.
func (c *Client) UpdateTask(ctx context.Context, taskListID, taskID string, input TaskInput) (*Task, error) {
	existing, err := c.svc.Tasks.Get(taskListID, taskID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get existing task: %w", err)
	}

	if input.Title != "" {
		existing.Title = input.Title
	}
	if input.Notes != "" {
		existing.Notes = input.Notes
	}
	if input.Status != "" {
		existing.Status = input.Status
	}
	if input.Due != "" {
		due, err := NormalizeDue(input.Due)
		if err != nil {
			return nil, err
		}
		existing.Due = due
	}

	updated, err := c.svc.Tasks.Update(taskListID, taskID, existing).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	result := toTask(updated)
	return &result, nil
}

// CompleteTask marks a task completed. The API stamps the completion time.
func (c *Client) CompleteTask(ctx context.Context, taskListID, taskID string) (*Task, error) {
	patched, err := c.svc.Tasks.Patch(taskListID, taskID, &tasks.Task{Status: StatusCompleted}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to complete task: %w", err)
	}
	result := toTask(patched)
	return &result, nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, taskListID, taskID string) error {
	if err := c.svc.Tasks.Delete(taskListID, taskID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// NormalizeDue converts a YYYY-MM-DD date or an RFC 3339 time to the RFC 3339
// form the API expects.
func NormalizeDue(due string) (string, error) {
	if d, err := time.Parse("2006-01-02", due); err == nil {
		return d.Format(time.RFC3339), nil
	}
	if d, err := time.Parse(time.RFC3339, due); err == nil {
		return d.UTC().Format(time.RFC3339), nil
	}
	return "", fmt.Errorf("invalid due date %q: use YYYY-MM-DD or RFC 3339", due)
}
