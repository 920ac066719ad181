package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/calehr/taskbridge/internal/domain"
	"github.com/calehr/taskbridge/internal/domain/syncitem"
	"github.com/calehr/taskbridge/internal/domain/syncrun"
)

// gatherState fetches the current task list from both sources concurrently
// and maps them into canonical items. A mapping whose agent has not
// submitted a snapshot yet yields an empty OmniFocus list; that is a valid
// steady state, not an error. A failed fetch on either side aborts the
// whole pass.
func (e *Engine) gatherState(ctx context.Context, token string, sc syncrun.Context) (asanaItems, ofItems []syncitem.Item, err error) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		tasks, err := e.asana.ProjectTasks(gctx, token, sc.AsanaProjectID)
		if err != nil {
			return fmt.Errorf("fetch asana tasks: %w", err)
		}
		asanaItems = make([]syncitem.Item, 0, len(tasks))
		for _, t := range tasks {
			asanaItems = append(asanaItems, AsanaTaskToItem(t))
		}
		return nil
	})

	g.Go(func() error {
		tasks, err := e.snapshots.Snapshot(gctx, sc.MappingID)
		if errors.Is(err, domain.ErrNotFound) {
			ofItems = []syncitem.Item{}
			return nil
		}
		if err != nil {
			return fmt.Errorf("fetch omnifocus snapshot: %w", err)
		}
		ofItems = make([]syncitem.Item, 0, len(tasks))
		for _, t := range tasks {
			ofItems = append(ofItems, OmniFocusTaskToItem(t))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return asanaItems, ofItems, nil
}
