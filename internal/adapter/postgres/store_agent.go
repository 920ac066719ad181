package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/calehr/taskbridge/internal/domain/agent"
)

func (s *Store) PutSnapshot(ctx context.Context, snap *agent.Snapshot) error {
	tasksJSON, err := json.Marshal(snap.Tasks)
	if err != nil {
		return fmt.Errorf("marshal snapshot tasks: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO agent_snapshots (mapping_id, tasks, received_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (mapping_id) DO UPDATE SET
		  tasks = EXCLUDED.tasks, received_at = EXCLUDED.received_at`,
		snap.MappingID, tasksJSON, snap.ReceivedAt)
	if err != nil {
		return fmt.Errorf("put snapshot: %w", err)
	}
	return nil
}

func (s *Store) GetSnapshot(ctx context.Context, mappingID string) (*agent.Snapshot, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT mapping_id, tasks, received_at
		FROM agent_snapshots WHERE mapping_id = $1`, mappingID)

	var (
		snap      agent.Snapshot
		tasksJSON []byte
	)
	if err := row.Scan(&snap.MappingID, &tasksJSON, &snap.ReceivedAt); err != nil {
		return nil, notFoundWrap(err, "get snapshot for %s", mappingID)
	}
	if err := json.Unmarshal(tasksJSON, &snap.Tasks); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot tasks: %w", err)
	}
	return &snap, nil
}

func (s *Store) EnqueueCommand(ctx context.Context, cmd *agent.Command) error {
	payload, err := json.Marshal(cmd.Data)
	if err != nil {
		return fmt.Errorf("marshal command payload: %w", err)
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO agent_commands (id, mapping_id, action, payload)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		cmd.ID, cmd.MappingID, cmd.Action, payload)

	if err := row.Scan(&cmd.CreatedAt); err != nil {
		return fmt.Errorf("enqueue command: %w", err)
	}
	return nil
}

func (s *Store) PendingCommands(ctx context.Context, mappingID string, limit int) ([]agent.Command, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, mapping_id, action, payload, created_at
		FROM agent_commands
		WHERE mapping_id = $1 AND acked_at IS NULL
		ORDER BY created_at
		LIMIT $2`, mappingID, limit)
	if err != nil {
		return nil, fmt.Errorf("pending commands: %w", err)
	}
	defer rows.Close()

	var cmds []agent.Command
	for rows.Next() {
		var (
			cmd     agent.Command
			payload []byte
		)
		if err := rows.Scan(&cmd.ID, &cmd.MappingID, &cmd.Action, &payload, &cmd.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan command: %w", err)
		}
		if err := json.Unmarshal(payload, &cmd.Data); err != nil {
			return nil, fmt.Errorf("unmarshal command payload: %w", err)
		}
		cmds = append(cmds, cmd)
	}
	return cmds, rows.Err()
}

func (s *Store) AckCommand(ctx context.Context, commandID string, at time.Time) error {
	// Acks are idempotent from the agent side: re-acking an already acked
	// or unknown command is not an error.
	_, err := s.pool.Exec(ctx, `
		UPDATE agent_commands SET acked_at = $2
		WHERE id = $1 AND acked_at IS NULL`, commandID, at)
	if err != nil {
		return fmt.Errorf("ack command %s: %w", commandID, err)
	}
	return nil
}
