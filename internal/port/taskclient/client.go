// Package taskclient defines the port interface for the external
// project-management API (Asana).
package taskclient

import (
	"context"
	"time"
)

// Task is a native Asana task, reduced to the fields the sync engine reads.
type Task struct {
	GID         string     `json:"gid"`
	Name        string     `json:"name"`
	Notes       string     `json:"notes"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	DueOn       string     `json:"due_on,omitempty"` // YYYY-MM-DD, date-only
	CreatedAt   time.Time  `json:"created_at"`
	ModifiedAt  time.Time  `json:"modified_at"`
}

// TaskFields is the partial task shape sent on create and update. Nil
// pointers are omitted from the request body.
type TaskFields struct {
	Name      *string `json:"name,omitempty"`
	Notes     *string `json:"notes,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
	DueOn     *string `json:"due_on,omitempty"` // YYYY-MM-DD
}

// Client is the port interface for the Asana task API. Every call is keyed
// by the caller-supplied access token; the client holds no credentials.
type Client interface {
	// ProjectTasks returns the tasks of a project, paginating internally.
	// The server-side page limit is 100 items.
	ProjectTasks(ctx context.Context, token, projectID string) ([]Task, error)

	// CreateTask creates a task in the given project.
	CreateTask(ctx context.Context, token, projectID string, fields TaskFields) (*Task, error)

	// UpdateTask updates a task by its native id.
	UpdateTask(ctx context.Context, token, taskID string, fields TaskFields) (*Task, error)

	// DeleteTask deletes a task by its native id.
	DeleteTask(ctx context.Context, token, taskID string) error
}
