// Package conflict defines the per-field divergence record produced when two
// matched items disagree, and the resolution strategies applied to it.
package conflict

import "github.com/calehr/taskbridge/internal/domain/syncitem"

// ItemType distinguishes task-level from project-level conflicts.
type ItemType string

const (
	TypeTask    ItemType = "task"
	TypeProject ItemType = "project"
)

// Field names the divergent item field. Detection always checks fields in
// the fixed order name, note, completed, dueDate.
type Field string

const (
	FieldName      Field = "name"
	FieldNote      Field = "note"
	FieldCompleted Field = "completed"
	FieldDueDate   Field = "dueDate"
)

// Resolution is the outcome assigned to a conflict by a strategy.
type Resolution string

const (
	ResolutionAsanaWins     Resolution = "asana_wins"
	ResolutionOmniFocusWins Resolution = "omnifocus_wins"
	ResolutionMerge         Resolution = "merge"
	ResolutionManual        Resolution = "manual"
)

// Strategy selects how detected conflicts are resolved. Stored per mapping.
type Strategy string

const (
	StrategyAsanaWins     Strategy = "asana_wins"
	StrategyOmniFocusWins Strategy = "omnifocus_wins"
	StrategyNewestWins    Strategy = "newest_wins"
)

// Valid reports whether s is a recognized strategy.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyAsanaWins, StrategyOmniFocusWins, StrategyNewestWins:
		return true
	}
	return false
}

// Conflict records one field diverging between the two sides' view of a
// matched item. It carries the full matched item pair, not just the raw
// field values, so newest-wins resolution can compare whole-item
// modification timestamps.
type Conflict struct {
	Type           ItemType      `json:"type"`
	Field          Field         `json:"field"`
	AsanaValue     any           `json:"asana_value"`
	OmniFocusValue any           `json:"omnifocus_value"`
	LastSyncValue  any           `json:"last_sync_value,omitempty"`
	AsanaItem      syncitem.Item `json:"asana_item"`
	OmniFocusItem  syncitem.Item `json:"omnifocus_item"`
	Resolution     Resolution    `json:"resolution"`
}
