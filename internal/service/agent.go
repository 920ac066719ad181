package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/calehr/taskbridge/internal/config"
	"github.com/calehr/taskbridge/internal/domain"
	"github.com/calehr/taskbridge/internal/domain/agent"
	"github.com/calehr/taskbridge/internal/port/cache"
	"github.com/calehr/taskbridge/internal/port/database"
	"github.com/calehr/taskbridge/internal/port/messagequeue"
)

// AgentService is the backend side of the agent polling protocol. Snapshots
// flow in and are cached in front of the database; commands flow out through
// a durable queue with a NATS notification so connected agents can poll
// immediately instead of waiting for the next interval.
type AgentService struct {
	store database.Store
	cache cache.Cache
	queue messagequeue.Queue
	log   *slog.Logger
	cfg   config.Cache
}

// NewAgentService creates an agent service. Queue may be nil; commands are
// then durable-only and picked up on the agent's next poll.
func NewAgentService(store database.Store, c cache.Cache, queue messagequeue.Queue, log *slog.Logger, cfg config.Cache) *AgentService {
	return &AgentService{store: store, cache: c, queue: queue, log: log, cfg: cfg}
}

func snapshotCacheKey(mappingID string) string {
	return "snapshot:" + mappingID
}

// ReceiveSnapshot stores a task list submitted by the agent and refreshes
// the cache entry the gatherer reads.
func (s *AgentService) ReceiveSnapshot(ctx context.Context, mappingID string, tasks []agent.Task) error {
	if mappingID == "" {
		return fmt.Errorf("%w: mapping id is required", domain.ErrValidation)
	}
	snap := &agent.Snapshot{
		MappingID:  mappingID,
		Tasks:      tasks,
		ReceivedAt: time.Now().UTC(),
	}
	if err := s.store.PutSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}

	if data, err := json.Marshal(snap.Tasks); err == nil {
		if err := s.cache.Set(ctx, snapshotCacheKey(mappingID), data, s.cfg.SnapshotTTL); err != nil {
			s.log.Warn("cache snapshot", slog.String("mapping_id", mappingID), slog.Any("error", err))
		}
	}
	s.log.Info("snapshot received",
		slog.String("mapping_id", mappingID),
		slog.Int("tasks", len(tasks)))
	return nil
}

// Snapshot returns the latest task list for a mapping, cache first. A
// mapping the agent has never reported for yields an empty list.
func (s *AgentService) Snapshot(ctx context.Context, mappingID string) ([]agent.Task, error) {
	if data, found, err := s.cache.Get(ctx, snapshotCacheKey(mappingID)); err == nil && found {
		var tasks []agent.Task
		if err := json.Unmarshal(data, &tasks); err == nil {
			return tasks, nil
		}
		// Corrupt entry; drop it and fall through to the database.
		_ = s.cache.Delete(ctx, snapshotCacheKey(mappingID))
	}

	snap, err := s.store.GetSnapshot(ctx, mappingID)
	if errors.Is(err, domain.ErrNotFound) {
		return []agent.Task{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	if data, err := json.Marshal(snap.Tasks); err == nil {
		_ = s.cache.Set(ctx, snapshotCacheKey(mappingID), data, s.cfg.SnapshotTTL)
	}
	return snap.Tasks, nil
}

// Enqueue persists a command for the agent and notifies its subject. The
// database row is the source of truth; a failed publish only delays pickup
// until the next poll.
func (s *AgentService) Enqueue(ctx context.Context, cmd *agent.Command) error {
	if cmd.MappingID == "" {
		return fmt.Errorf("%w: mapping id is required", domain.ErrValidation)
	}
	if cmd.ID == "" {
		cmd.ID = uuid.NewString()
	}
	if cmd.CreatedAt.IsZero() {
		cmd.CreatedAt = time.Now().UTC()
	}
	if err := s.store.EnqueueCommand(ctx, cmd); err != nil {
		return fmt.Errorf("enqueue command: %w", err)
	}

	if s.queue != nil {
		payload, err := json.Marshal(messagequeue.CommandPayload{
			CommandID: cmd.ID,
			MappingID: cmd.MappingID,
			Action:    string(cmd.Action),
			Data:      cmd.Data,
		})
		if err == nil {
			if err := s.queue.Publish(ctx, messagequeue.CommandSubject(cmd.MappingID), payload); err != nil {
				s.log.Warn("publish command notification",
					slog.String("command_id", cmd.ID),
					slog.String("mapping_id", cmd.MappingID),
					slog.Any("error", err))
			}
		}
	}
	return nil
}

// StartAckSubscriber subscribes to agent ack messages on the queue so
// agents connected over NATS can acknowledge without an HTTP round trip.
// The returned function cancels the subscription.
func (s *AgentService) StartAckSubscriber(ctx context.Context) (func(), error) {
	if s.queue == nil {
		return func() {}, nil
	}
	return s.queue.Subscribe(ctx, messagequeue.SubjectAgentAcks, func(ctx context.Context, subject string, data []byte) error {
		var ack messagequeue.AckPayload
		if err := json.Unmarshal(data, &ack); err != nil {
			return fmt.Errorf("unmarshal ack: %w", err)
		}
		if !ack.Applied {
			s.log.Warn("agent reported command failure",
				slog.String("command_id", ack.CommandID),
				slog.String("mapping_id", ack.MappingID),
				slog.String("error", ack.Error))
			return nil
		}
		if err := s.store.AckCommand(ctx, ack.CommandID, time.Now().UTC()); err != nil {
			return fmt.Errorf("ack command %s: %w", ack.CommandID, err)
		}
		return nil
	})
}

// PendingCommands returns unacked commands for a mapping, oldest first.
func (s *AgentService) PendingCommands(ctx context.Context, mappingID string, limit int) ([]agent.Command, error) {
	return s.store.PendingCommands(ctx, mappingID, limit)
}

// AckCommand marks a command as applied by the agent.
func (s *AgentService) AckCommand(ctx context.Context, commandID string) error {
	if commandID == "" {
		return fmt.Errorf("%w: command id is required", domain.ErrValidation)
	}
	return s.store.AckCommand(ctx, commandID, time.Now().UTC())
}
