package service

import (
	"time"

	"github.com/calehr/taskbridge/internal/domain/conflict"
	"github.com/calehr/taskbridge/internal/domain/syncitem"
)

// DetectConflicts compares two matched items field by field and returns one
// conflict per divergent field. Fields are checked in a fixed order — name,
// note, completed, dueDate — so the emitted list order is stable. Equal
// items produce an empty list.
//
// lastSync, when available, is the last-known-synced snapshot of the item;
// its field value is attached to each conflict for three-way display.
func DetectConflicts(a, of syncitem.Item, lastSync *syncitem.Item) []conflict.Conflict {
	newConflict := func(field conflict.Field, av, ov, lv any) conflict.Conflict {
		return conflict.Conflict{
			Type:           conflict.TypeTask,
			Field:          field,
			AsanaValue:     av,
			OmniFocusValue: ov,
			LastSyncValue:  lv,
			AsanaItem:      a,
			OmniFocusItem:  of,
			Resolution:     conflict.ResolutionManual,
		}
	}

	var conflicts []conflict.Conflict

	if a.Name != of.Name {
		var last any
		if lastSync != nil {
			last = lastSync.Name
		}
		conflicts = append(conflicts, newConflict(conflict.FieldName, a.Name, of.Name, last))
	}
	if a.Note != of.Note {
		var last any
		if lastSync != nil {
			last = lastSync.Note
		}
		conflicts = append(conflicts, newConflict(conflict.FieldNote, a.Note, of.Note, last))
	}
	if a.Completed != of.Completed {
		var last any
		if lastSync != nil {
			last = lastSync.Completed
		}
		conflicts = append(conflicts, newConflict(conflict.FieldCompleted, a.Completed, of.Completed, last))
	}
	if !syncitem.DueEqual(a.DueDate, of.DueDate) {
		var last any
		if lastSync != nil {
			last = lastSync.DueDate
		}
		conflicts = append(conflicts, newConflict(conflict.FieldDueDate, a.DueDate, of.DueDate, last))
	}

	return conflicts
}

// ResolveConflicts applies a resolution strategy and returns a new slice;
// the input conflicts are not mutated. An unrecognized strategy leaves
// every conflict at manual, which downstream planning ignores.
func ResolveConflicts(conflicts []conflict.Conflict, strategy conflict.Strategy) []conflict.Conflict {
	resolved := make([]conflict.Conflict, len(conflicts))
	for i, c := range conflicts {
		switch strategy {
		case conflict.StrategyAsanaWins:
			c.Resolution = conflict.ResolutionAsanaWins
		case conflict.StrategyOmniFocusWins:
			c.Resolution = conflict.ResolutionOmniFocusWins
		case conflict.StrategyNewestWins:
			c.Resolution = newestWins(c)
		default:
			c.Resolution = conflict.ResolutionManual
		}
		resolved[i] = c
	}
	return resolved
}

// newestWins compares whole-item modification timestamps. The side with
// the strictly later timestamp wins; ties favor Asana. A missing timestamp
// defaults to the Unix epoch.
func newestWins(c conflict.Conflict) conflict.Resolution {
	if modifiedAt(c.OmniFocusItem).After(modifiedAt(c.AsanaItem)) {
		return conflict.ResolutionOmniFocusWins
	}
	return conflict.ResolutionAsanaWins
}

func modifiedAt(it syncitem.Item) time.Time {
	if it.ModifiedAt.IsZero() {
		return time.Unix(0, 0)
	}
	return it.ModifiedAt
}
