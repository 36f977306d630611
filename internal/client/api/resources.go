package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/taskflow/internal/client/models"
)

func id(v int64) string { return strconv.FormatInt(v, 10) }

type ProjectsAPI struct{ c *Client }

func (a *ProjectsAPI) List(ctx context.Context) ([]models.Project, error) {
	return call[[]models.Project](ctx, a.c, request{method: http.MethodGet, route: "/projects", path: "/projects"})
}

func (a *ProjectsAPI) Get(ctx context.Context, projectID int64) (models.Project, error) {
	return call[models.Project](ctx, a.c, request{
		method: http.MethodGet, route: "/projects/:id", path: "/projects/" + id(projectID),
	})
}

func (a *ProjectsAPI) Create(ctx context.Context, req models.ProjectCreateRequest) (models.Project, error) {
	return call[models.Project](ctx, a.c, request{
		method: http.MethodPost, route: "/projects", path: "/projects", body: req,
	})
}

type TasksAPI struct{ c *Client }

func (a *TasksAPI) List(ctx context.Context, projectID int64, f models.TaskFilter) ([]models.Task, error) {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.AssigneeUserID != 0 {
		q.Set("assigneeUserId", id(f.AssigneeUserID))
	}
	return call[[]models.Task](ctx, a.c, request{
		method: http.MethodGet, route: "/projects/:id/tasks", path: "/projects/" + id(projectID) + "/tasks", query: q,
	})
}

func (a *TasksAPI) Get(ctx context.Context, taskID int64) (models.Task, error) {
	return call[models.Task](ctx, a.c, request{method: http.MethodGet, route: "/tasks/:id", path: "/tasks/" + id(taskID)})
}

func (a *TasksAPI) Create(ctx context.Context, projectID int64, req models.TaskCreateRequest) (models.Task, error) {
	return call[models.Task](ctx, a.c, request{
		method: http.MethodPost, route: "/projects/:id/tasks", path: "/projects/" + id(projectID) + "/tasks", body: req,
	})
}

func (a *TasksAPI) Update(ctx context.Context, taskID int64, req models.TaskUpdateRequest) (models.Task, error) {
	return call[models.Task](ctx, a.c, request{
		method: http.MethodPatch, route: "/tasks/:id", path: "/tasks/" + id(taskID), body: req,
	})
}

// Delete removes a task on behalf of requestedBy.
func (a *TasksAPI) Delete(ctx context.Context, taskID, requestedBy int64) (models.DeleteTaskResponse, error) {
	return call[models.DeleteTaskResponse](ctx, a.c, request{
		method: http.MethodDelete, route: "/tasks/:id", path: "/tasks/" + id(taskID),
		query: url.Values{"requestedByUserId": {id(requestedBy)}},
	})
}

func (a *TasksAPI) ChangeStatus(ctx context.Context, taskID int64, to models.TaskStatus) (models.Task, error) {
	return call[models.Task](ctx, a.c, request{
		method: http.MethodPost, route: "/tasks/:id/status", path: "/tasks/" + id(taskID) + "/status",
		body: models.ChangeTaskStatusRequest{ToStatus: to},
	})
}

func (a *TasksAPI) History(ctx context.Context, taskID int64) ([]models.TaskHistory, error) {
	return call[[]models.TaskHistory](ctx, a.c, request{
		method: http.MethodGet, route: "/tasks/:id/history", path: "/tasks/" + id(taskID) + "/history",
	})
}

func (a *TasksAPI) CalendarSync(ctx context.Context, taskID int64) (models.CalendarSyncStatus, error) {
	return call[models.CalendarSyncStatus](ctx, a.c, request{
		method: http.MethodGet, route: "/tasks/:id/calendar-sync", path: "/tasks/" + id(taskID) + "/calendar-sync",
	})
}

type OutboxAPI struct{ c *Client }

func (a *OutboxAPI) List(ctx context.Context, f models.OutboxFilter) ([]models.OutboxEntry, error) {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.TaskID != 0 {
		q.Set("taskId", id(f.TaskID))
	}
	return call[[]models.OutboxEntry](ctx, a.c, request{
		method: http.MethodGet, route: "/admin/calendar-outbox", path: "/admin/calendar-outbox", query: q,
	})
}

func (a *OutboxAPI) Get(ctx context.Context, entryID int64) (models.OutboxEntry, error) {
	return call[models.OutboxEntry](ctx, a.c, request{
		method: http.MethodGet, route: "/admin/calendar-outbox/:id", path: "/admin/calendar-outbox/" + id(entryID),
	})
}

// TriggerWorker forces one outbox processing pass. The endpoint answers
// with plain text rather than an envelope.
func (a *OutboxAPI) TriggerWorker(ctx context.Context) (string, error) {
	return callText(ctx, a.c, request{
		method: http.MethodGet, route: "/admin/calendar-outbox/trigger-worker", path: "/admin/calendar-outbox/trigger-worker",
	})
}

type OAuthAPI struct{ c *Client }

type authorizeResponse struct {
	AuthorizeURL string `json:"authorizeUrl"`
}

// AuthorizeURL returns the identity provider URL that starts the login flow.
func (a *OAuthAPI) AuthorizeURL(ctx context.Context) (string, error) {
	r, err := call[authorizeResponse](ctx, a.c, request{
		method: http.MethodGet, route: "/oauth/google/authorize", path: "/oauth/google/authorize",
	})
	return r.AuthorizeURL, err
}

// Health pings the backend.
func (c *Client) Health(ctx context.Context) (models.Health, error) {
	return call[models.Health](ctx, c, request{method: http.MethodGet, route: "/health", path: "/health"})
}
