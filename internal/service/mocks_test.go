package service

import (
	"context"
	"time"

	"github.com/calehr/taskbridge/internal/adapter/asana"
	"github.com/calehr/taskbridge/internal/domain"
	"github.com/calehr/taskbridge/internal/domain/agent"
	"github.com/calehr/taskbridge/internal/domain/mapping"
	"github.com/calehr/taskbridge/internal/port/taskclient"
)

// mockStore implements database.Store with overridable function fields.
// Unset fields return zero values so each test only wires what it asserts.
type mockStore struct {
	listMappingsFn  func(ctx context.Context, userID string) ([]mapping.Mapping, error)
	getMappingFn    func(ctx context.Context, id string) (*mapping.Mapping, error)
	createMappingFn func(ctx context.Context, req mapping.CreateRequest) (*mapping.Mapping, error)
	updateMappingFn func(ctx context.Context, id string, req mapping.UpdateRequest) (*mapping.Mapping, error)
	deleteMappingFn func(ctx context.Context, id string) error
	touchLastSyncFn func(ctx context.Context, mappingID string, at time.Time) error

	getTokenFn    func(ctx context.Context, userID string) (*mapping.OAuthToken, error)
	upsertTokenFn func(ctx context.Context, t *mapping.OAuthToken) error
	deleteTokenFn func(ctx context.Context, userID string) error

	appendSyncLogFn func(ctx context.Context, l *mapping.SyncLog) error
	listSyncLogsFn  func(ctx context.Context, mappingID string, limit int) ([]mapping.SyncLog, error)

	putSnapshotFn func(ctx context.Context, snap *agent.Snapshot) error
	getSnapshotFn func(ctx context.Context, mappingID string) (*agent.Snapshot, error)

	enqueueCommandFn  func(ctx context.Context, cmd *agent.Command) error
	pendingCommandsFn func(ctx context.Context, mappingID string, limit int) ([]agent.Command, error)
	ackCommandFn      func(ctx context.Context, commandID string, at time.Time) error
}

func (m *mockStore) ListMappings(ctx context.Context, userID string) ([]mapping.Mapping, error) {
	if m.listMappingsFn != nil {
		return m.listMappingsFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockStore) GetMapping(ctx context.Context, id string) (*mapping.Mapping, error) {
	if m.getMappingFn != nil {
		return m.getMappingFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) CreateMapping(ctx context.Context, req mapping.CreateRequest) (*mapping.Mapping, error) {
	if m.createMappingFn != nil {
		return m.createMappingFn(ctx, req)
	}
	return &mapping.Mapping{ID: "m-1", UserID: req.UserID}, nil
}

func (m *mockStore) UpdateMapping(ctx context.Context, id string, req mapping.UpdateRequest) (*mapping.Mapping, error) {
	if m.updateMappingFn != nil {
		return m.updateMappingFn(ctx, id, req)
	}
	return &mapping.Mapping{ID: id}, nil
}

func (m *mockStore) DeleteMapping(ctx context.Context, id string) error {
	if m.deleteMappingFn != nil {
		return m.deleteMappingFn(ctx, id)
	}
	return nil
}

func (m *mockStore) TouchLastSync(ctx context.Context, mappingID string, at time.Time) error {
	if m.touchLastSyncFn != nil {
		return m.touchLastSyncFn(ctx, mappingID, at)
	}
	return nil
}

func (m *mockStore) GetOAuthToken(ctx context.Context, userID string) (*mapping.OAuthToken, error) {
	if m.getTokenFn != nil {
		return m.getTokenFn(ctx, userID)
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) UpsertOAuthToken(ctx context.Context, t *mapping.OAuthToken) error {
	if m.upsertTokenFn != nil {
		return m.upsertTokenFn(ctx, t)
	}
	return nil
}

func (m *mockStore) DeleteOAuthToken(ctx context.Context, userID string) error {
	if m.deleteTokenFn != nil {
		return m.deleteTokenFn(ctx, userID)
	}
	return nil
}

func (m *mockStore) AppendSyncLog(ctx context.Context, l *mapping.SyncLog) error {
	if m.appendSyncLogFn != nil {
		return m.appendSyncLogFn(ctx, l)
	}
	return nil
}

func (m *mockStore) ListSyncLogs(ctx context.Context, mappingID string, limit int) ([]mapping.SyncLog, error) {
	if m.listSyncLogsFn != nil {
		return m.listSyncLogsFn(ctx, mappingID, limit)
	}
	return nil, nil
}

func (m *mockStore) PutSnapshot(ctx context.Context, snap *agent.Snapshot) error {
	if m.putSnapshotFn != nil {
		return m.putSnapshotFn(ctx, snap)
	}
	return nil
}

func (m *mockStore) GetSnapshot(ctx context.Context, mappingID string) (*agent.Snapshot, error) {
	if m.getSnapshotFn != nil {
		return m.getSnapshotFn(ctx, mappingID)
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) EnqueueCommand(ctx context.Context, cmd *agent.Command) error {
	if m.enqueueCommandFn != nil {
		return m.enqueueCommandFn(ctx, cmd)
	}
	return nil
}

func (m *mockStore) PendingCommands(ctx context.Context, mappingID string, limit int) ([]agent.Command, error) {
	if m.pendingCommandsFn != nil {
		return m.pendingCommandsFn(ctx, mappingID, limit)
	}
	return nil, nil
}

func (m *mockStore) AckCommand(ctx context.Context, commandID string, at time.Time) error {
	if m.ackCommandFn != nil {
		return m.ackCommandFn(ctx, commandID, at)
	}
	return nil
}

// mockTaskClient implements taskclient.Client.
type mockTaskClient struct {
	projectTasksFn func(ctx context.Context, token, projectID string) ([]taskclient.Task, error)
	createTaskFn   func(ctx context.Context, token, projectID string, fields taskclient.TaskFields) (*taskclient.Task, error)
	updateTaskFn   func(ctx context.Context, token, taskID string, fields taskclient.TaskFields) (*taskclient.Task, error)
	deleteTaskFn   func(ctx context.Context, token, taskID string) error
}

func (m *mockTaskClient) ProjectTasks(ctx context.Context, token, projectID string) ([]taskclient.Task, error) {
	if m.projectTasksFn != nil {
		return m.projectTasksFn(ctx, token, projectID)
	}
	return nil, nil
}

func (m *mockTaskClient) CreateTask(ctx context.Context, token, projectID string, fields taskclient.TaskFields) (*taskclient.Task, error) {
	if m.createTaskFn != nil {
		return m.createTaskFn(ctx, token, projectID, fields)
	}
	return &taskclient.Task{GID: "new"}, nil
}

func (m *mockTaskClient) UpdateTask(ctx context.Context, token, taskID string, fields taskclient.TaskFields) (*taskclient.Task, error) {
	if m.updateTaskFn != nil {
		return m.updateTaskFn(ctx, token, taskID, fields)
	}
	return &taskclient.Task{GID: taskID}, nil
}

func (m *mockTaskClient) DeleteTask(ctx context.Context, token, taskID string) error {
	if m.deleteTaskFn != nil {
		return m.deleteTaskFn(ctx, token, taskID)
	}
	return nil
}

// mockSnapshots implements agentchannel.Snapshots.
type mockSnapshots struct {
	snapshotFn func(ctx context.Context, mappingID string) ([]agent.Task, error)
}

func (m *mockSnapshots) Snapshot(ctx context.Context, mappingID string) ([]agent.Task, error) {
	if m.snapshotFn != nil {
		return m.snapshotFn(ctx, mappingID)
	}
	return []agent.Task{}, nil
}

// mockCommands implements agentchannel.Commands and records enqueued
// commands.
type mockCommands struct {
	enqueueFn func(ctx context.Context, cmd *agent.Command) error
	enqueued  []*agent.Command
}

func (m *mockCommands) Enqueue(ctx context.Context, cmd *agent.Command) error {
	if m.enqueueFn != nil {
		return m.enqueueFn(ctx, cmd)
	}
	m.enqueued = append(m.enqueued, cmd)
	return nil
}

// mockTokens implements tokenprovider.Provider.
type mockTokens struct {
	token string
	err   error
}

func (m *mockTokens) ValidAccessToken(ctx context.Context, userID string) (string, error) {
	return m.token, m.err
}

// mockLocker implements locker.Locker. held simulates a lock owned by
// another pass.
type mockLocker struct {
	held     bool
	err      error
	acquired []string
	released int
}

func (m *mockLocker) TryAcquire(ctx context.Context, key string) (func(), bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	if m.held {
		return nil, false, nil
	}
	m.acquired = append(m.acquired, key)
	return func() { m.released++ }, true, nil
}

// mockRefresher implements OAuthRefresher.
type mockRefresher struct {
	refreshFn func(ctx context.Context, refreshToken string) (*asana.TokenResponse, error)
	calls     int
}

func (m *mockRefresher) Refresh(ctx context.Context, refreshToken string) (*asana.TokenResponse, error) {
	m.calls++
	if m.refreshFn != nil {
		return m.refreshFn(ctx, refreshToken)
	}
	return &asana.TokenResponse{AccessToken: "fresh", ExpiresIn: 3600}, nil
}

// mockCache implements cache.Cache over a plain map.
type mockCache struct {
	data map[string][]byte
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}
