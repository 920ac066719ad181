// Package operation defines the planned single-system mutations emitted by
// the operation planner.
package operation

import "github.com/calehr/taskbridge/internal/domain/syncitem"

// Kind is the mutation type.
type Kind string

const (
	KindCreate Kind = "create"
	KindUpdate Kind = "update"
	KindDelete Kind = "delete"
)

// Operation is a planned side-effect converging one side toward the other.
// Target names the system the mutation is applied to; Item carries the
// data driving it and originates from the opposite system.
//
// For updates and deletes, TargetSourceID is the native identifier of the
// counterpart task in the target system. Item.SourceID belongs to the
// opposite system and cannot address the target.
type Operation struct {
	Kind           Kind            `json:"kind"`
	Target         syncitem.Source `json:"target"`
	Item           syncitem.Item   `json:"item"`
	TargetSourceID string          `json:"target_source_id,omitempty"`
}
