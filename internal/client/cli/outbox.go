package cli

import (
	"context"
	"io"

	"github.com/dmitrijs2005/taskflow/internal/client/models"
	"github.com/dmitrijs2005/taskflow/internal/client/query"
)

func (a *App) ListOutbox(ctx context.Context, f models.OutboxFilter, refresh bool) error {
	if _, err := a.guard.Require(ctx); err != nil {
		return err
	}
	if refresh {
		a.cache.Invalidate(query.OutboxKey(string(f.Status), f.TaskID))
	}
	entries, err := a.outbox.List(ctx, f)
	if err != nil {
		return err
	}
	a.write(func(w io.Writer) { writeOutbox(w, entries) })
	return nil
}

func (a *App) ShowOutbox(ctx context.Context, entryID int64) error {
	if _, err := a.guard.Require(ctx); err != nil {
		return err
	}
	e, err := a.outbox.Get(ctx, entryID)
	if err != nil {
		return err
	}
	a.write(func(w io.Writer) { writeOutboxEntry(w, e) })
	return nil
}

func (a *App) TriggerOutbox(ctx context.Context) error {
	if _, err := a.guard.Require(ctx); err != nil {
		return err
	}
	msg, err := a.outbox.Trigger(ctx)
	if err != nil {
		return err
	}
	a.println(msg)
	return nil
}
