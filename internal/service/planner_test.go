package service

import (
	"reflect"
	"testing"
	"time"

	"github.com/calehr/taskbridge/internal/domain/conflict"
	"github.com/calehr/taskbridge/internal/domain/operation"
	"github.com/calehr/taskbridge/internal/domain/syncitem"
)

func asanaItem(gid, name string) syncitem.Item {
	it := syncitem.New(syncitem.SourceAsana, gid)
	it.Name = name
	return it
}

func ofItem(id, name string) syncitem.Item {
	it := syncitem.New(syncitem.SourceOmniFocus, id)
	it.Name = name
	return it
}

func TestPlanOperationsCreatesForUnmatched(t *testing.T) {
	asana := []syncitem.Item{asanaItem("1", "Only in Asana")}
	of := []syncitem.Item{ofItem("x", "Only in OmniFocus")}

	ops := PlanOperations(asana, of, nil)
	if len(ops) != 2 {
		t.Fatalf("ops = %d, want 2", len(ops))
	}
	if ops[0].Kind != operation.KindCreate || ops[0].Target != syncitem.SourceOmniFocus {
		t.Errorf("ops[0] = %+v, want create->omnifocus", ops[0])
	}
	if ops[0].Item.Name != "Only in Asana" {
		t.Errorf("ops[0].Item.Name = %q", ops[0].Item.Name)
	}
	if ops[1].Kind != operation.KindCreate || ops[1].Target != syncitem.SourceAsana {
		t.Errorf("ops[1] = %+v, want create->asana", ops[1])
	}
}

func TestPlanOperationsMatchingIsCaseInsensitive(t *testing.T) {
	asana := []syncitem.Item{asanaItem("1", "Buy Milk")}
	of := []syncitem.Item{ofItem("x", "buy milk")}

	if ops := PlanOperations(asana, of, nil); len(ops) != 0 {
		t.Errorf("ops = %+v, want none for case-variant match", ops)
	}
}

func TestPlanOperationsSingleCreatePerUnmatchedItem(t *testing.T) {
	asana := []syncitem.Item{
		asanaItem("1", "a"),
		asanaItem("2", "b"),
		asanaItem("3", "c"),
	}

	ops := PlanOperations(asana, nil, nil)
	if len(ops) != 3 {
		t.Fatalf("ops = %d, want 3", len(ops))
	}
	seen := map[string]bool{}
	for _, op := range ops {
		if op.Kind != operation.KindCreate {
			t.Errorf("kind = %s, want create", op.Kind)
		}
		if seen[op.Item.Key()] {
			t.Errorf("duplicate create for %q", op.Item.Name)
		}
		seen[op.Item.Key()] = true
	}
}

func TestPlanOperationsConflictUpdates(t *testing.T) {
	a := asanaItem("1", "Task")
	a.Note = "asana wins this"
	of := ofItem("x", "Task")
	of.Note = "loser"

	resolved := ResolveConflicts(DetectConflicts(a, of, nil), conflict.StrategyAsanaWins)
	ops := PlanOperations([]syncitem.Item{a}, []syncitem.Item{of}, resolved)

	if len(ops) != 1 {
		t.Fatalf("ops = %d, want 1", len(ops))
	}
	op := ops[0]
	if op.Kind != operation.KindUpdate || op.Target != syncitem.SourceOmniFocus {
		t.Errorf("op = %+v, want update->omnifocus", op)
	}
	if op.Item.Note != "asana wins this" {
		t.Errorf("op carries %q, want winning side's data", op.Item.Note)
	}
	if op.TargetSourceID != "x" {
		t.Errorf("TargetSourceID = %q, want counterpart id x", op.TargetSourceID)
	}
}

func TestPlanOperationsOmniFocusWinsUpdate(t *testing.T) {
	a := asanaItem("1", "Task")
	of := ofItem("x", "Task")
	of.Completed = true
	of.ModifiedAt = time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	resolved := ResolveConflicts(DetectConflicts(a, of, nil), conflict.StrategyNewestWins)
	ops := PlanOperations([]syncitem.Item{a}, []syncitem.Item{of}, resolved)

	if len(ops) != 1 {
		t.Fatalf("ops = %d, want 1", len(ops))
	}
	if ops[0].Target != syncitem.SourceAsana || ops[0].TargetSourceID != "1" {
		t.Errorf("op = %+v, want update->asana addressing gid 1", ops[0])
	}
	if !ops[0].Item.Completed {
		t.Error("op does not carry the omnifocus completion state")
	}
}

func TestPlanOperationsManualConflictsProduceNoOps(t *testing.T) {
	a := asanaItem("1", "Task")
	a.Note = "x"
	of := ofItem("x", "Task")
	of.Note = "y"

	conflicts := DetectConflicts(a, of, nil) // resolutions stay manual
	if ops := PlanOperations([]syncitem.Item{a}, []syncitem.Item{of}, conflicts); len(ops) != 0 {
		t.Errorf("ops = %+v, want none for manual conflicts", ops)
	}
}

func TestPlanOperationsDeterministic(t *testing.T) {
	asana := []syncitem.Item{asanaItem("1", "a"), asanaItem("2", "conflicted")}
	of := []syncitem.Item{ofItem("x", "b"), ofItem("y", "conflicted")}
	of[1].Note = "diverged"

	resolved := ResolveConflicts(DetectConflicts(asana[1], of[1], nil), conflict.StrategyAsanaWins)

	first := PlanOperations(asana, of, resolved)
	second := PlanOperations(asana, of, resolved)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("plans differ:\n%+v\n%+v", first, second)
	}
}

func TestPlanOperationsNeverPlansDeletes(t *testing.T) {
	asana := []syncitem.Item{asanaItem("1", "a")}
	var of []syncitem.Item // empty side looks like "everything deleted"

	for _, op := range PlanOperations(asana, of, nil) {
		if op.Kind == operation.KindDelete {
			t.Errorf("planned a delete: %+v", op)
		}
	}
}
