package service

import (
	"github.com/calehr/taskbridge/internal/domain/conflict"
	"github.com/calehr/taskbridge/internal/domain/operation"
	"github.com/calehr/taskbridge/internal/domain/syncitem"
)

// PlanOperations compares the two item sets and folds in the resolved
// conflicts, producing the minimal operation list that converges both
// sides. It is deterministic and total: the same inputs always yield the
// same operations in the same order.
//
// Plan order: creates for Asana-only items, creates for OmniFocus-only
// items, then conflict-driven updates. Conflicts resolved manual or merge
// produce no operation. Deletes are never planned: the planner diffs
// current snapshots only and has no way to tell "removed from one side"
// from "never existed".
func PlanOperations(asanaItems, ofItems []syncitem.Item, resolved []conflict.Conflict) []operation.Operation {
	asanaByKey := make(map[string]syncitem.Item, len(asanaItems))
	for _, it := range asanaItems {
		asanaByKey[it.Key()] = it
	}
	ofByKey := make(map[string]syncitem.Item, len(ofItems))
	for _, it := range ofItems {
		ofByKey[it.Key()] = it
	}

	var ops []operation.Operation

	// Items present only in Asana become OmniFocus creates.
	for _, it := range asanaItems {
		if _, matched := ofByKey[it.Key()]; !matched {
			ops = append(ops, operation.Operation{
				Kind:   operation.KindCreate,
				Target: syncitem.SourceOmniFocus,
				Item:   it,
			})
		}
	}

	// Items present only in OmniFocus become Asana creates.
	for _, it := range ofItems {
		if _, matched := asanaByKey[it.Key()]; !matched {
			ops = append(ops, operation.Operation{
				Kind:   operation.KindCreate,
				Target: syncitem.SourceAsana,
				Item:   it,
			})
		}
	}

	// Conflict-driven updates push the winning side's data to the loser.
	// The counterpart's native id addresses the task in the target system.
	for _, c := range resolved {
		switch c.Resolution {
		case conflict.ResolutionAsanaWins:
			if _, ok := asanaByKey[c.AsanaItem.Key()]; ok {
				ops = append(ops, operation.Operation{
					Kind:           operation.KindUpdate,
					Target:         syncitem.SourceOmniFocus,
					Item:           c.AsanaItem,
					TargetSourceID: c.OmniFocusItem.SourceID,
				})
			}
		case conflict.ResolutionOmniFocusWins:
			if _, ok := ofByKey[c.OmniFocusItem.Key()]; ok {
				ops = append(ops, operation.Operation{
					Kind:           operation.KindUpdate,
					Target:         syncitem.SourceAsana,
					Item:           c.OmniFocusItem,
					TargetSourceID: c.AsanaItem.SourceID,
				})
			}
		case conflict.ResolutionManual, conflict.ResolutionMerge:
			// Left for a human or a future pass.
		}
	}

	return ops
}
