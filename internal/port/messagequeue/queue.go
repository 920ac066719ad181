// Package messagequeue defines the message queue port (interface).
package messagequeue

import "context"

// Handler processes a message received from the queue.
type Handler func(ctx context.Context, subject string, data []byte) error

// Queue is the port interface for publishing and subscribing to messages.
type Queue interface {
	// Publish sends a message to the given subject.
	Publish(ctx context.Context, subject string, data []byte) error

	// Subscribe registers a handler for messages on the given subject.
	// The returned function cancels the subscription.
	Subscribe(ctx context.Context, subject string, handler Handler) (cancel func(), err error)

	// Drain gracefully drains all subscriptions before closing.
	Drain() error

	// Close shuts down the queue connection immediately.
	Close() error

	// IsConnected reports whether the queue is currently connected.
	IsConnected() bool
}

// Subject constants for NATS subjects used by TaskBridge.
const (
	// SubjectAgentCommands is the prefix for per-mapping agent command
	// notifications: agent.commands.{mappingID}.
	SubjectAgentCommands = "agent.commands"

	// SubjectAgentAcks carries command acknowledgments from agents.
	SubjectAgentAcks = "agent.acks"

	// SubjectSyncCompleted announces a finished sync pass for dashboards.
	SubjectSyncCompleted = "sync.completed"
)

// CommandSubject returns the per-mapping command subject.
func CommandSubject(mappingID string) string {
	return SubjectAgentCommands + "." + mappingID
}
