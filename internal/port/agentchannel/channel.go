// Package agentchannel defines the port for the agent polling protocol:
// reading the latest task snapshot and enqueuing commands for the agent.
package agentchannel

import (
	"context"

	"github.com/calehr/taskbridge/internal/domain/agent"
)

// Snapshots is the inbound side: the most recently received OmniFocus task
// list per mapping. A mapping with no snapshot yet yields an empty task
// list, not an error.
type Snapshots interface {
	Snapshot(ctx context.Context, mappingID string) ([]agent.Task, error)
}

// Commands is the outbound side: a fire-and-forget command queue per
// mapping, drained by the agent via polling. The engine does not await
// application of enqueued commands.
type Commands interface {
	Enqueue(ctx context.Context, cmd *agent.Command) error
}
