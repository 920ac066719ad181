package service

import (
	"time"

	"github.com/calehr/taskbridge/internal/domain/agent"
	"github.com/calehr/taskbridge/internal/domain/syncitem"
	"github.com/calehr/taskbridge/internal/port/taskclient"
)

// dueDateLayout is the date-only format Asana uses for due_on. Converting
// an item back to Asana truncates its due date to day granularity.
const dueDateLayout = "2006-01-02"

// AsanaTaskToItem converts a native Asana task into the canonical item.
func AsanaTaskToItem(t taskclient.Task) syncitem.Item {
	it := syncitem.New(syncitem.SourceAsana, t.GID)
	it.Name = t.Name
	it.Note = t.Notes
	it.Completed = t.Completed
	it.CreatedAt = t.CreatedAt
	it.ModifiedAt = t.ModifiedAt

	if t.DueOn != "" {
		if due, err := time.Parse(dueDateLayout, t.DueOn); err == nil {
			it.DueDate = &due
		}
	}
	return it
}

// OmniFocusTaskToItem converts an agent-reported OmniFocus task into the
// canonical item. Dates are already native values and pass through as-is.
func OmniFocusTaskToItem(t agent.Task) syncitem.Item {
	it := syncitem.New(syncitem.SourceOmniFocus, t.ID)
	it.Name = t.Name
	it.Note = t.Note
	it.Completed = t.Completed
	it.DueDate = t.DueDate
	it.CreatedAt = t.CreatedAt
	it.ModifiedAt = t.UpdatedAt
	return it
}

// ItemToAsanaFields converts a canonical item into the partial task shape
// sent to Asana. The due date is serialized date-only; time-of-day is lost.
func ItemToAsanaFields(it syncitem.Item) taskclient.TaskFields {
	name := it.Name
	notes := it.Note
	completed := it.Completed

	fields := taskclient.TaskFields{
		Name:      &name,
		Notes:     &notes,
		Completed: &completed,
	}
	if it.DueDate != nil {
		due := it.DueDate.Format(dueDateLayout)
		fields.DueOn = &due
	}
	return fields
}

// ItemToAgentTask converts a canonical item into the payload carried by an
// agent command. Direct field copy, no reformatting.
func ItemToAgentTask(it syncitem.Item) agent.TaskPayload {
	return agent.TaskPayload{
		Name:      it.Name,
		Note:      it.Note,
		Completed: it.Completed,
		DueDate:   it.DueDate,
	}
}
