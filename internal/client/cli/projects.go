package cli

import (
	"context"
	"io"

	"github.com/dmitrijs2005/taskflow/internal/client/models"
	"github.com/dmitrijs2005/taskflow/internal/client/query"
)

func (a *App) ListProjects(ctx context.Context, refresh bool) error {
	if _, err := a.guard.Require(ctx); err != nil {
		return err
	}
	if refresh {
		a.cache.Invalidate(query.ProjectsKey())
	}
	projects, err := a.projects.List(ctx)
	if err != nil {
		return err
	}
	a.write(func(w io.Writer) { writeProjects(w, projects) })
	a.cachedNote(query.ProjectsKey())
	return nil
}

func (a *App) ShowProject(ctx context.Context, projectID int64) error {
	if _, err := a.guard.Require(ctx); err != nil {
		return err
	}
	p, err := a.projects.Get(ctx, projectID)
	if err != nil {
		return err
	}
	a.write(func(w io.Writer) { writeProject(w, p) })
	return nil
}

func (a *App) CreateProject(ctx context.Context, name string) error {
	if _, err := a.guard.Require(ctx); err != nil {
		return err
	}
	p, err := a.projects.Create(ctx, models.ProjectCreateRequest{Name: name})
	if err != nil {
		return err
	}
	a.printf("Created project #%d %q.\n", p.ID, p.Name)
	return nil
}
