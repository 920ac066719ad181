// Package syncrun defines the input and output of one sync pass.
package syncrun

import (
	"time"

	"github.com/calehr/taskbridge/internal/domain/conflict"
)

// Context describes one sync run. It is supplied by the caller (route
// handler or scheduler); the engine never constructs one itself.
type Context struct {
	UserID               string
	MappingID            string
	AsanaProjectID       string
	OmniFocusProjectName string
	Strategy             conflict.Strategy
	LastSyncAt           *time.Time
}

// Result is the outcome of one sync pass. Errors accumulates human-readable
// failure messages; only a phase-level failure flips Success to false —
// individual operation failures are best-effort per item.
type Result struct {
	Success        bool                `json:"success"`
	ItemsProcessed int                 `json:"items_processed"`
	ItemsCreated   int                 `json:"items_created"`
	ItemsUpdated   int                 `json:"items_updated"`
	ItemsDeleted   int                 `json:"items_deleted"`
	Conflicts      []conflict.Conflict `json:"conflicts"`
	Errors         []string            `json:"errors"`
}
