package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/calehr/taskbridge/internal/domain/mapping"
)

func (s *Store) AppendSyncLog(ctx context.Context, l *mapping.SyncLog) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO sync_logs (id, user_id, mapping_id, direction, status, items_synced, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		l.ID, l.UserID, l.MappingID, l.Direction, l.Status, l.ItemsSynced,
		nullString(l.ErrorMessage))

	if err := row.Scan(&l.CreatedAt); err != nil {
		return fmt.Errorf("append sync log: %w", err)
	}
	return nil
}

func (s *Store) ListSyncLogs(ctx context.Context, mappingID string, limit int) ([]mapping.SyncLog, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, mapping_id, direction, status, items_synced,
		       COALESCE(error_message, ''), created_at
		FROM sync_logs
		WHERE mapping_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, mappingID, limit)
	if err != nil {
		return nil, fmt.Errorf("list sync logs: %w", err)
	}
	defer rows.Close()

	var logs []mapping.SyncLog
	for rows.Next() {
		var l mapping.SyncLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.MappingID, &l.Direction,
			&l.Status, &l.ItemsSynced, &l.ErrorMessage, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan sync log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
