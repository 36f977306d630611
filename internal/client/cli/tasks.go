package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/taskflow/internal/client/models"
	"github.com/dmitrijs2005/taskflow/internal/client/query"
	"github.com/dmitrijs2005/taskflow/internal/client/services"
)

func (a *App) ListTasks(ctx context.Context, projectID int64, f models.TaskFilter, refresh bool) error {
	if _, err := a.guard.Require(ctx); err != nil {
		return err
	}
	key := query.TasksKey(projectID, string(f.Status), f.AssigneeUserID)
	if refresh {
		a.cache.Invalidate(key)
	}
	tasks, err := a.tasks.List(ctx, projectID, f)
	if err != nil {
		return err
	}
	a.write(func(w io.Writer) { writeTasks(w, tasks) })
	a.cachedNote(key)
	return nil
}

func (a *App) ShowTask(ctx context.Context, taskID int64) error {
	if _, err := a.guard.Require(ctx); err != nil {
		return err
	}
	t, err := a.tasks.Get(ctx, taskID)
	if err != nil {
		return err
	}
	op, _ := a.inflight.Busy(services.TaskEntity(taskID))
	a.write(func(w io.Writer) { writeTask(w, t, string(op)) })
	return nil
}

// CreateTask asks for a title when req has none, and then for an optional
// description unless one was given.
func (a *App) CreateTask(ctx context.Context, projectID int64, req models.TaskCreateRequest) error {
	if _, err := a.guard.Require(ctx); err != nil {
		return err
	}
	if req.Title == "" {
		in, err := a.input(ctx)
		if err != nil {
			return err
		}
		title, err := GetSimpleText(in, "Task title", a.out)
		if err != nil {
			return err
		}
		req.Title = title

		if req.Description == "" {
			desc, err := GetMultiline(in, "Description (optional)", a.out)
			if err != nil {
				return err
			}
			req.Description = desc
		}
	}
	t, err := a.tasks.Create(ctx, projectID, req)
	if err != nil {
		return err
	}
	a.printf("Created task #%d %q in project #%d.\n", t.ID, t.Title, t.ProjectID)
	return nil
}

func (a *App) UpdateTask(ctx context.Context, taskID int64, req models.TaskUpdateRequest) error {
	if _, err := a.guard.Require(ctx); err != nil {
		return err
	}
	t, err := a.tasks.Update(ctx, taskID, req)
	if err != nil {
		return err
	}
	a.printf("Updated task #%d.\n", t.ID)
	return nil
}

// MoveTask changes the task status. Only the moves the transition table
// offers from the current status are sent; the backend may still refuse.
// An empty target lists the offered moves.
func (a *App) MoveTask(ctx context.Context, taskID int64, target string) error {
	if _, err := a.guard.Require(ctx); err != nil {
		return err
	}
	t, err := a.tasks.Get(ctx, taskID)
	if err != nil {
		return err
	}

	if target == "" {
		a.printf("Task #%d is %s.\n", t.ID, t.Status.Label())
		a.write(func(w io.Writer) { writeMoves(w, t.Status) })
		return nil
	}

	to, err := models.ParseTaskStatus(target)
	if err != nil {
		return err
	}
	if !models.CanTransition(t.Status, to) {
		a.printf("Task #%d cannot move from %s to %s.\n", t.ID, t.Status.Label(), to.Label())
		a.write(func(w io.Writer) { writeMoves(w, t.Status) })
		return &reportedError{err: fmt.Errorf("%w: %s -> %s", ErrMoveNotOffered, t.Status, to)}
	}

	moved, err := a.tasks.ChangeStatus(ctx, taskID, to)
	if err != nil {
		return err
	}
	a.printf("Task #%d is now %s.\n", moved.ID, moved.Status.Label())
	return nil
}

func (a *App) DeleteTask(ctx context.Context, taskID int64, confirmed bool) error {
	if _, err := a.guard.Require(ctx); err != nil {
		return err
	}
	if !confirmed {
		in, err := a.input(ctx)
		if err != nil {
			return err
		}
		ok, err := Confirm(in, fmt.Sprintf("Delete task #%d?", taskID), a.out)
		if err != nil {
			return err
		}
		if !ok {
			return ErrCancelled
		}
	}
	if err := a.tasks.Delete(ctx, taskID); err != nil {
		return err
	}
	a.printf("Deleted task #%d.\n", taskID)
	return nil
}

func (a *App) TaskHistory(ctx context.Context, taskID int64) error {
	if _, err := a.guard.Require(ctx); err != nil {
		return err
	}
	history, err := a.tasks.History(ctx, taskID)
	if err != nil {
		return err
	}
	a.write(func(w io.Writer) { writeHistory(w, history) })
	return nil
}

func (a *App) TaskSync(ctx context.Context, taskID int64) error {
	if _, err := a.guard.Require(ctx); err != nil {
		return err
	}
	s, err := a.tasks.CalendarSync(ctx, taskID)
	if err != nil {
		return err
	}
	a.write(func(w io.Writer) { writeSync(w, s) })
	return nil
}
