// Package database defines the persistence port (interface).
package database

import (
	"context"
	"time"

	"github.com/calehr/taskbridge/internal/domain/agent"
	"github.com/calehr/taskbridge/internal/domain/mapping"
)

// Store is the port interface for durable state: sync mappings, OAuth
// credentials, audit logs, and the agent snapshot/command tables.
type Store interface {
	// Mappings
	ListMappings(ctx context.Context, userID string) ([]mapping.Mapping, error)
	GetMapping(ctx context.Context, id string) (*mapping.Mapping, error)
	CreateMapping(ctx context.Context, req mapping.CreateRequest) (*mapping.Mapping, error)
	UpdateMapping(ctx context.Context, id string, req mapping.UpdateRequest) (*mapping.Mapping, error)
	DeleteMapping(ctx context.Context, id string) error
	TouchLastSync(ctx context.Context, mappingID string, at time.Time) error

	// OAuth tokens
	GetOAuthToken(ctx context.Context, userID string) (*mapping.OAuthToken, error)
	UpsertOAuthToken(ctx context.Context, t *mapping.OAuthToken) error
	DeleteOAuthToken(ctx context.Context, userID string) error

	// Audit log
	AppendSyncLog(ctx context.Context, l *mapping.SyncLog) error
	ListSyncLogs(ctx context.Context, mappingID string, limit int) ([]mapping.SyncLog, error)

	// Agent snapshots
	PutSnapshot(ctx context.Context, snap *agent.Snapshot) error
	GetSnapshot(ctx context.Context, mappingID string) (*agent.Snapshot, error)

	// Agent command queue (durable side; NATS carries the notification)
	EnqueueCommand(ctx context.Context, cmd *agent.Command) error
	PendingCommands(ctx context.Context, mappingID string, limit int) ([]agent.Command, error)
	AckCommand(ctx context.Context, commandID string, at time.Time) error
}
