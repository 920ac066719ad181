package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/calehr/taskbridge/internal/adapter/otel"
	"github.com/calehr/taskbridge/internal/config"
	"github.com/calehr/taskbridge/internal/domain"
	"github.com/calehr/taskbridge/internal/domain/conflict"
	"github.com/calehr/taskbridge/internal/domain/mapping"
	"github.com/calehr/taskbridge/internal/domain/syncitem"
	"github.com/calehr/taskbridge/internal/domain/syncrun"
	"github.com/calehr/taskbridge/internal/port/agentchannel"
	"github.com/calehr/taskbridge/internal/port/database"
	"github.com/calehr/taskbridge/internal/port/locker"
	"github.com/calehr/taskbridge/internal/port/messagequeue"
	"github.com/calehr/taskbridge/internal/port/taskclient"
	"github.com/calehr/taskbridge/internal/port/tokenprovider"
)

// Engine runs the bidirectional sync pass: gather both sides, detect and
// resolve conflicts, plan operations, execute them, and persist the outcome.
// The persisting step runs regardless of how far a pass got, so every
// trigger leaves an audit row.
type Engine struct {
	store     database.Store
	tokens    tokenprovider.Provider
	asana     taskclient.Client
	snapshots agentchannel.Snapshots
	commands  agentchannel.Commands
	locks     locker.Locker
	queue     messagequeue.Queue
	metrics   *otel.Metrics
	log       *slog.Logger
	cfg       config.Sync
}

// NewEngine creates a sync engine. The queue is optional; with a nil queue
// the sync.completed announcement is skipped.
func NewEngine(
	store database.Store,
	tokens tokenprovider.Provider,
	asana taskclient.Client,
	snapshots agentchannel.Snapshots,
	commands agentchannel.Commands,
	locks locker.Locker,
	queue messagequeue.Queue,
	metrics *otel.Metrics,
	log *slog.Logger,
	cfg config.Sync,
) *Engine {
	return &Engine{
		store:     store,
		tokens:    tokens,
		asana:     asana,
		snapshots: snapshots,
		commands:  commands,
		locks:     locks,
		queue:     queue,
		metrics:   metrics,
		log:       log,
		cfg:       cfg,
	}
}

// PerformSync runs one sync pass for the given mapping. It returns
// domain.ErrSyncInProgress when another pass already holds the mapping's
// lock. A pass that fails partway still returns a Result; Success and
// Errors describe what went wrong.
func (e *Engine) PerformSync(ctx context.Context, sc syncrun.Context) (*syncrun.Result, error) {
	release, ok, err := e.locks.TryAcquire(ctx, sc.MappingID)
	if err != nil {
		return nil, fmt.Errorf("acquire sync lock: %w", err)
	}
	if !ok {
		return nil, domain.ErrSyncInProgress
	}
	defer release()

	ctx, cancel := context.WithTimeout(ctx, e.cfg.PassTimeout)
	defer cancel()

	ctx, span := otel.StartSyncSpan(ctx, sc.MappingID, sc.UserID)
	defer span.End()

	start := time.Now()
	e.metrics.SyncsStarted.Add(ctx, 1)
	e.log.Info("sync started",
		slog.String("mapping_id", sc.MappingID),
		slog.String("user_id", sc.UserID))

	res := &syncrun.Result{
		Success:   true,
		Conflicts: []conflict.Conflict{},
		Errors:    []string{},
	}

	runErr := e.runPass(ctx, sc, res)
	if runErr != nil {
		res.Success = false
		res.Errors = append(res.Errors, runErr.Error())
		e.metrics.SyncsFailed.Add(ctx, 1)
		e.log.Error("sync failed",
			slog.String("mapping_id", sc.MappingID),
			slog.Any("error", runErr))
	} else {
		e.metrics.SyncsCompleted.Add(ctx, 1)
		e.log.Info("sync completed",
			slog.String("mapping_id", sc.MappingID),
			slog.Int("processed", res.ItemsProcessed),
			slog.Int("created", res.ItemsCreated),
			slog.Int("updated", res.ItemsUpdated),
			slog.Int("conflicts", len(res.Conflicts)))
	}
	e.metrics.SyncDuration.Record(ctx, time.Since(start).Seconds())

	e.persistOutcome(ctx, sc, res)
	e.announceCompletion(ctx, sc, res)

	return res, nil
}

// runPass executes the phases up to and including execution. Persisting is
// the caller's job so it happens on every exit path.
func (e *Engine) runPass(ctx context.Context, sc syncrun.Context, res *syncrun.Result) error {
	token, err := e.tokens.ValidAccessToken(ctx, sc.UserID)
	if err != nil {
		return fmt.Errorf("resolve access token: %w", err)
	}

	gctx, span := otel.StartPhaseSpan(ctx, "gathering")
	asanaItems, ofItems, err := e.gatherState(gctx, token, sc)
	span.End()
	if err != nil {
		return err
	}
	res.ItemsProcessed = len(asanaItems) + len(ofItems)

	_, span = otel.StartPhaseSpan(ctx, "detecting")
	conflicts := e.detectAll(asanaItems, ofItems)
	span.End()
	if n := len(conflicts); n > 0 {
		e.metrics.ConflictsFound.Add(ctx, int64(n))
	}

	strategy := sc.Strategy
	if !strategy.Valid() {
		e.log.Warn("unknown conflict strategy, falling back",
			slog.String("mapping_id", sc.MappingID),
			slog.String("strategy", string(strategy)))
		strategy = conflict.StrategyNewestWins
	}

	_, span = otel.StartPhaseSpan(ctx, "resolving")
	resolved := ResolveConflicts(conflicts, strategy)
	span.End()
	res.Conflicts = resolved

	_, span = otel.StartPhaseSpan(ctx, "planning")
	ops := PlanOperations(asanaItems, ofItems, resolved)
	span.End()

	ectx, span := otel.StartPhaseSpan(ctx, "executing")
	e.executeOperations(ectx, token, sc, ops, res)
	span.End()

	return nil
}

// detectAll pairs items by matching key and collects field conflicts across
// every matched pair.
func (e *Engine) detectAll(asanaItems, ofItems []syncitem.Item) []conflict.Conflict {
	ofByKey := make(map[string]syncitem.Item, len(ofItems))
	for _, it := range ofItems {
		ofByKey[it.Key()] = it
	}

	var out []conflict.Conflict
	for _, a := range asanaItems {
		of, found := ofByKey[a.Key()]
		if !found {
			continue
		}
		out = append(out, DetectConflicts(a, of, nil)...)
	}
	return out
}

// persistOutcome records the pass in durable state: the mapping timestamp
// and the audit row, regardless of outcome. A failed pass still counts as
// an attempt, so lastSyncAt moves either way. It runs on a fresh deadline
// because the pass context may already be expired.
func (e *Engine) persistOutcome(ctx context.Context, sc syncrun.Context, res *syncrun.Result) {
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	_, span := otel.StartPhaseSpan(pctx, "persisting")
	defer span.End()

	now := time.Now().UTC()
	if err := e.store.TouchLastSync(pctx, sc.MappingID, now); err != nil {
		e.log.Error("update last sync timestamp",
			slog.String("mapping_id", sc.MappingID),
			slog.Any("error", err))
	}

	status := mapping.StatusSuccess
	if !res.Success {
		status = mapping.StatusError
	}
	entry := &mapping.SyncLog{
		UserID:       sc.UserID,
		MappingID:    sc.MappingID,
		Direction:    mapping.DirectionBidirectional,
		Status:       status,
		ItemsSynced:  res.ItemsCreated + res.ItemsUpdated + res.ItemsDeleted,
		ErrorMessage: strings.Join(res.Errors, "; "),
	}
	if err := e.store.AppendSyncLog(pctx, entry); err != nil {
		e.log.Error("append sync log",
			slog.String("mapping_id", sc.MappingID),
			slog.Any("error", err))
	}
}

// announceCompletion publishes sync.completed for dashboards. Best effort;
// a publish failure never fails the pass.
func (e *Engine) announceCompletion(ctx context.Context, sc syncrun.Context, res *syncrun.Result) {
	if e.queue == nil {
		return
	}
	payload, err := json.Marshal(messagequeue.SyncCompletedPayload{
		MappingID:      sc.MappingID,
		UserID:         sc.UserID,
		Success:        res.Success,
		ItemsProcessed: res.ItemsProcessed,
		ItemsCreated:   res.ItemsCreated,
		ItemsUpdated:   res.ItemsUpdated,
		ConflictCount:  len(res.Conflicts),
	})
	if err != nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := e.queue.Publish(pctx, messagequeue.SubjectSyncCompleted, payload); err != nil {
		e.log.Warn("publish sync completion",
			slog.String("mapping_id", sc.MappingID),
			slog.Any("error", err))
	}
}
