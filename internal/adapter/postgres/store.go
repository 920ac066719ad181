package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/calehr/taskbridge/internal/domain"
	"github.com/calehr/taskbridge/internal/domain/conflict"
	"github.com/calehr/taskbridge/internal/domain/mapping"
)

// Store implements database.Store using PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const mappingColumns = `id, user_id, asana_project_id, asana_project_name,
	omnifocus_project_name, conflict_strategy, sync_enabled, last_sync_at,
	created_at, updated_at`

func scanMapping(row scannable) (mapping.Mapping, error) {
	var m mapping.Mapping
	err := row.Scan(&m.ID, &m.UserID, &m.AsanaProjectID, &m.AsanaProjectName,
		&m.OmniFocusProjectName, &m.ConflictStrategy, &m.SyncEnabled,
		&m.LastSyncAt, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func (s *Store) ListMappings(ctx context.Context, userID string) ([]mapping.Mapping, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+mappingColumns+` FROM sync_mappings
		 WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list mappings: %w", err)
	}
	defer rows.Close()

	var mappings []mapping.Mapping
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, fmt.Errorf("scan mapping: %w", err)
		}
		mappings = append(mappings, m)
	}
	return mappings, rows.Err()
}

func (s *Store) GetMapping(ctx context.Context, id string) (*mapping.Mapping, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+mappingColumns+` FROM sync_mappings WHERE id = $1`, id)

	m, err := scanMapping(row)
	if err != nil {
		return nil, notFoundWrap(err, "get mapping %s", id)
	}
	return &m, nil
}

func (s *Store) CreateMapping(ctx context.Context, req mapping.CreateRequest) (*mapping.Mapping, error) {
	strategy := req.ConflictStrategy
	if strategy == "" {
		strategy = conflict.StrategyNewestWins
	}

	row := s.pool.QueryRow(ctx,
		`INSERT INTO sync_mappings
		   (user_id, asana_project_id, asana_project_name, omnifocus_project_name, conflict_strategy)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+mappingColumns,
		req.UserID, req.AsanaProjectID, req.AsanaProjectName,
		req.OmniFocusProjectName, strategy)

	m, err := scanMapping(row)
	if err != nil {
		return nil, fmt.Errorf("create mapping: %w", err)
	}
	return &m, nil
}

func (s *Store) UpdateMapping(ctx context.Context, id string, req mapping.UpdateRequest) (*mapping.Mapping, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE sync_mappings SET
		   omnifocus_project_name = COALESCE($2, omnifocus_project_name),
		   conflict_strategy      = COALESCE($3, conflict_strategy),
		   sync_enabled           = COALESCE($4, sync_enabled),
		   updated_at             = now()
		 WHERE id = $1
		 RETURNING `+mappingColumns,
		id, req.OmniFocusProjectName, req.ConflictStrategy, req.SyncEnabled)

	m, err := scanMapping(row)
	if err != nil {
		return nil, notFoundWrap(err, "update mapping %s", id)
	}
	return &m, nil
}

func (s *Store) DeleteMapping(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sync_mappings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete mapping %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete mapping %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) TouchLastSync(ctx context.Context, mappingID string, at time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE sync_mappings SET last_sync_at = $2, updated_at = now() WHERE id = $1`,
		mappingID, at)
	if err != nil {
		return fmt.Errorf("touch last sync %s: %w", mappingID, err)
	}
	return nil
}
