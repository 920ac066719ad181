package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/calehr/taskbridge/internal/domain/agent"
	"github.com/calehr/taskbridge/internal/domain/operation"
	"github.com/calehr/taskbridge/internal/domain/syncitem"
	"github.com/calehr/taskbridge/internal/domain/syncrun"
)

// executeOperations applies the plan sequentially. One failed operation is
// recorded and skipped; the rest of the plan still runs. Counters only move
// on success, so the result reflects what actually happened.
func (e *Engine) executeOperations(ctx context.Context, token string, sc syncrun.Context, ops []operation.Operation, res *syncrun.Result) {
	for _, op := range ops {
		if err := e.executeOne(ctx, token, sc, op); err != nil {
			e.log.Warn("operation failed",
				slog.String("mapping_id", sc.MappingID),
				slog.String("kind", string(op.Kind)),
				slog.String("target", string(op.Target)),
				slog.String("item", op.Item.Name),
				slog.Any("error", err))
			e.metrics.OpsFailed.Add(ctx, 1)
			res.Errors = append(res.Errors, fmt.Sprintf("%s %s %q: %v", op.Kind, op.Target, op.Item.Name, err))
			continue
		}
		e.metrics.OpsExecuted.Add(ctx, 1)
		switch op.Kind {
		case operation.KindCreate:
			res.ItemsCreated++
		case operation.KindUpdate:
			res.ItemsUpdated++
		case operation.KindDelete:
			res.ItemsDeleted++
		}
	}
}

func (e *Engine) executeOne(ctx context.Context, token string, sc syncrun.Context, op operation.Operation) error {
	switch op.Target {
	case syncitem.SourceAsana:
		return e.executeAsana(ctx, token, sc, op)
	case syncitem.SourceOmniFocus:
		return e.executeOmniFocus(ctx, sc, op)
	default:
		return fmt.Errorf("unknown operation target %q", op.Target)
	}
}

func (e *Engine) executeAsana(ctx context.Context, token string, sc syncrun.Context, op operation.Operation) error {
	switch op.Kind {
	case operation.KindCreate:
		_, err := e.asana.CreateTask(ctx, token, sc.AsanaProjectID, ItemToAsanaFields(op.Item))
		return err
	case operation.KindUpdate:
		_, err := e.asana.UpdateTask(ctx, token, op.TargetSourceID, ItemToAsanaFields(op.Item))
		return err
	case operation.KindDelete:
		return e.asana.DeleteTask(ctx, token, op.TargetSourceID)
	default:
		return fmt.Errorf("unknown operation kind %q", op.Kind)
	}
}

// executeOmniFocus enqueues a command for the desktop agent. Enqueueing is
// the success condition here; the agent applies and acks asynchronously.
func (e *Engine) executeOmniFocus(ctx context.Context, sc syncrun.Context, op operation.Operation) error {
	var action agent.Action
	switch op.Kind {
	case operation.KindCreate:
		action = agent.ActionCreateTask
	case operation.KindUpdate:
		action = agent.ActionUpdateTask
	case operation.KindDelete:
		action = agent.ActionDeleteTask
	default:
		return fmt.Errorf("unknown operation kind %q", op.Kind)
	}

	data := ItemToAgentTask(op.Item)
	data.TaskID = op.TargetSourceID

	return e.commands.Enqueue(ctx, &agent.Command{
		MappingID: sc.MappingID,
		Action:    action,
		Data:      data,
	})
}
