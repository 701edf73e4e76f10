package tasks

import (
	tasks "google.golang.org/api/tasks/v1"
)

// Task statuses.
const (
	StatusNeedsAction = "needsAction"
	StatusCompleted   = "completed"
)

// TaskList is a Google Tasks task list.
type TaskList struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Updated string `json:"updated,omitempty"`
}

// Task is a Google Tasks task.
type Task struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Notes     string `json:"notes,omitempty"`
	Status    string `json:"status"`
	Due       string `json:"due,omitempty"`
	Completed string `json:"completed,omitempty"`
	Parent    string `json:"parent,omitempty"`
	Links     []Link `json:"links,omitempty"`
}

// Link is a related link attached to a task, such as the email it came from.
type Link struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Link        string `json:"link"`
}

// TaskInput holds the fields of a task to create or update. Empty fields are
// left unchanged on update.
type TaskInput struct {
	Title  string
	Notes  string
	Due    string
	Status string
}

func toTaskList(tl *tasks.TaskList) TaskList {
	if tl == nil {
		return TaskList{}
	}
	return TaskList{ID: tl.Id, Title: tl.Title, Updated: tl.Updated}
}

func toTask(t *tasks.Task) Task {
	if t == nil {
		return Task{}
	}
	result := Task{
		ID:     t.Id,
		Title:  t.Title,
		Notes:  t.Notes,
		Status: t.Status,
		Due:    t.Due,
		Parent: t.Parent,
	}
	if t.Completed != nil {
		result.Completed = *t.Completed
	}
	for _, link := range t.Links {
		result.Links = append(result.Links, Link{
			Type:        link.Type,
			Description: link.Description,
			Link:        link.Link,
		})
	}
	return result
}
