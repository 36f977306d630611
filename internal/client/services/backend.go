// Package services contains the application services of the taskflow
// client. They sit between the commands and the backend client: reads go
// through the query cache, writes go through the in-flight tracker and
// invalidate the cache keys they affect.
package services

import (
	"context"

	"github.com/dmitrijs2005/taskflow/internal/client/models"
	"github.com/dmitrijs2005/taskflow/internal/client/session"
)

// The backend interfaces are satisfied by the api package's resource
// clients.

type ProjectsBackend interface {
	List(ctx context.Context) ([]models.Project, error)
	Get(ctx context.Context, projectID int64) (models.Project, error)
	Create(ctx context.Context, req models.ProjectCreateRequest) (models.Project, error)
}

type TasksBackend interface {
	List(ctx context.Context, projectID int64, f models.TaskFilter) ([]models.Task, error)
	Get(ctx context.Context, taskID int64) (models.Task, error)
	Create(ctx context.Context, projectID int64, req models.TaskCreateRequest) (models.Task, error)
	Update(ctx context.Context, taskID int64, req models.TaskUpdateRequest) (models.Task, error)
	Delete(ctx context.Context, taskID, requestedBy int64) (models.DeleteTaskResponse, error)
	ChangeStatus(ctx context.Context, taskID int64, to models.TaskStatus) (models.Task, error)
	History(ctx context.Context, taskID int64) ([]models.TaskHistory, error)
	CalendarSync(ctx context.Context, taskID int64) (models.CalendarSyncStatus, error)
}

type OutboxBackend interface {
	List(ctx context.Context, f models.OutboxFilter) ([]models.OutboxEntry, error)
	Get(ctx context.Context, entryID int64) (models.OutboxEntry, error)
	TriggerWorker(ctx context.Context) (string, error)
}

type OAuthBackend interface {
	AuthorizeURL(ctx context.Context) (string, error)
}

type HealthBackend interface {
	Health(ctx context.Context) (models.Health, error)
}

// Sessions is the part of the session store the services read.
type Sessions interface {
	Require(ctx context.Context) (session.Session, error)
}
