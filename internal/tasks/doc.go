// Package tasks wraps the Google Tasks API for the task tools.
//
// Task lists and tasks are converted to the flat TaskList and Task types.
// Due dates accept either YYYY-MM-DD or RFC 3339; the API keeps only the
// date part.
package tasks
