package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/calehr/taskbridge/internal/domain"
	"github.com/calehr/taskbridge/internal/domain/conflict"
	"github.com/calehr/taskbridge/internal/domain/mapping"
	"github.com/calehr/taskbridge/internal/port/database"
)

// MappingService manages sync mappings and their audit logs.
type MappingService struct {
	store database.Store
	log   *slog.Logger
}

// NewMappingService creates a mapping service.
func NewMappingService(store database.Store, log *slog.Logger) *MappingService {
	return &MappingService{store: store, log: log}
}

// List returns all mappings owned by a user.
func (s *MappingService) List(ctx context.Context, userID string) ([]mapping.Mapping, error) {
	return s.store.ListMappings(ctx, userID)
}

// Get returns one mapping, enforcing ownership.
func (s *MappingService) Get(ctx context.Context, userID, id string) (*mapping.Mapping, error) {
	m, err := s.store.GetMapping(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return m, nil
}

// Create validates and persists a new mapping. An omitted conflict strategy
// defaults to newest_wins.
func (s *MappingService) Create(ctx context.Context, req mapping.CreateRequest) (*mapping.Mapping, error) {
	if req.UserID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	if req.AsanaProjectID == "" {
		return nil, fmt.Errorf("%w: asana project id is required", domain.ErrValidation)
	}
	if req.OmniFocusProjectName == "" {
		return nil, fmt.Errorf("%w: omnifocus project name is required", domain.ErrValidation)
	}
	if req.ConflictStrategy == "" {
		req.ConflictStrategy = conflict.StrategyNewestWins
	}
	if !req.ConflictStrategy.Valid() {
		return nil, fmt.Errorf("%w: unknown conflict strategy %q", domain.ErrValidation, req.ConflictStrategy)
	}

	m, err := s.store.CreateMapping(ctx, req)
	if err != nil {
		return nil, err
	}
	s.log.Info("mapping created",
		slog.String("mapping_id", m.ID),
		slog.String("user_id", m.UserID),
		slog.String("asana_project_id", m.AsanaProjectID))
	return m, nil
}

// Update applies a partial update to a mapping the user owns.
func (s *MappingService) Update(ctx context.Context, userID, id string, req mapping.UpdateRequest) (*mapping.Mapping, error) {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return nil, err
	}
	if req.ConflictStrategy != nil && !req.ConflictStrategy.Valid() {
		return nil, fmt.Errorf("%w: unknown conflict strategy %q", domain.ErrValidation, *req.ConflictStrategy)
	}
	if req.OmniFocusProjectName != nil && *req.OmniFocusProjectName == "" {
		return nil, fmt.Errorf("%w: omnifocus project name cannot be empty", domain.ErrValidation)
	}
	return s.store.UpdateMapping(ctx, id, req)
}

// Delete removes a mapping the user owns.
func (s *MappingService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.store.DeleteMapping(ctx, id); err != nil {
		return err
	}
	s.log.Info("mapping deleted", slog.String("mapping_id", id), slog.String("user_id", userID))
	return nil
}

// SyncLogs returns the most recent audit rows for a mapping the user owns.
func (s *MappingService) SyncLogs(ctx context.Context, userID, id string, limit int) ([]mapping.SyncLog, error) {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return nil, err
	}
	return s.store.ListSyncLogs(ctx, id, limit)
}
