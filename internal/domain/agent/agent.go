// Package agent defines the data exchanged with the remote desktop agent
// over the polling protocol: task snapshots inbound, commands outbound.
package agent

import "time"

// Task is an OmniFocus task as reported by the agent. Dates arrive as
// native timestamps; no reparsing is needed.
type Task struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Note      string     `json:"note,omitempty"`
	Completed bool       `json:"completed"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Snapshot is the most recent task list the agent submitted for a mapping.
type Snapshot struct {
	MappingID  string    `json:"mapping_id"`
	Tasks      []Task    `json:"tasks"`
	ReceivedAt time.Time `json:"received_at"`
}

// Action is the kind of mutation a command asks the agent to apply.
type Action string

const (
	ActionCreateTask Action = "create_task"
	ActionUpdateTask Action = "update_task"
	ActionDeleteTask Action = "delete_task"
)

// TaskPayload is the task data carried by a command.
type TaskPayload struct {
	TaskID    string     `json:"task_id,omitempty"` // native OmniFocus id for update/delete
	Name      string     `json:"name"`
	Note      string     `json:"note,omitempty"`
	Completed bool       `json:"completed"`
	DueDate   *time.Time `json:"due_date,omitempty"`
}

// Command is one queued mutation for the agent to apply to OmniFocus. The
// engine enqueues fire-and-forget; the agent polls, applies, and acks.
type Command struct {
	ID        string      `json:"id"`
	MappingID string      `json:"mapping_id"`
	Action    Action      `json:"action"`
	Data      TaskPayload `json:"data"`
	CreatedAt time.Time   `json:"created_at"`
	AckedAt   *time.Time  `json:"acked_at,omitempty"`
}
