package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/taskflow/internal/client/models"
	"github.com/dmitrijs2005/taskflow/internal/client/query"
)

type TaskService interface {
	List(ctx context.Context, projectID int64, f models.TaskFilter) ([]models.Task, error)
	Get(ctx context.Context, taskID int64) (models.Task, error)
	History(ctx context.Context, taskID int64) ([]models.TaskHistory, error)
	CalendarSync(ctx context.Context, taskID int64) (models.CalendarSyncStatus, error)

	Create(ctx context.Context, projectID int64, req models.TaskCreateRequest) (models.Task, error)
	Update(ctx context.Context, taskID int64, req models.TaskUpdateRequest) (models.Task, error)
	ChangeStatus(ctx context.Context, taskID int64, to models.TaskStatus) (models.Task, error)
	Delete(ctx context.Context, taskID int64) error
}

// TaskEntity and ProjectEntity identify the rows whose actions are tracked
// in flight.
func TaskEntity(id int64) query.Entity    { return query.Entity{Kind: "task", ID: id} }
func ProjectEntity(id int64) query.Entity { return query.Entity{Kind: "project", ID: id} }

type taskService struct {
	backend  TasksBackend
	sessions Sessions
	cache    *query.Cache
	inflight *query.InFlight
}

func NewTaskService(backend TasksBackend, sessions Sessions, cache *query.Cache, inflight *query.InFlight) TaskService {
	return &taskService{backend: backend, sessions: sessions, cache: cache, inflight: inflight}
}

func (s *taskService) List(ctx context.Context, projectID int64, f models.TaskFilter) ([]models.Task, error) {
	key := query.TasksKey(projectID, string(f.Status), f.AssigneeUserID)
	return query.Get(ctx, s.cache, key, func(ctx context.Context) ([]models.Task, error) {
		return s.backend.List(ctx, projectID, f)
	})
}

func (s *taskService) Get(ctx context.Context, taskID int64) (models.Task, error) {
	return query.Get(ctx, s.cache, query.TaskKey(taskID), func(ctx context.Context) (models.Task, error) {
		return s.backend.Get(ctx, taskID)
	})
}

func (s *taskService) History(ctx context.Context, taskID int64) ([]models.TaskHistory, error) {
	return query.Get(ctx, s.cache, query.TaskHistoryKey(taskID), func(ctx context.Context) ([]models.TaskHistory, error) {
		return s.backend.History(ctx, taskID)
	})
}

func (s *taskService) CalendarSync(ctx context.Context, taskID int64) (models.CalendarSyncStatus, error) {
	return query.Get(ctx, s.cache, query.TaskSyncKey(taskID), func(ctx context.Context) (models.CalendarSyncStatus, error) {
		return s.backend.CalendarSync(ctx, taskID)
	})
}

// Create validates req locally, then creates the task. Every cached task
// list of the project is invalidated, whatever its filter.
func (s *taskService) Create(ctx context.Context, projectID int64, req models.TaskCreateRequest) (models.Task, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if err := models.Validate(req); err != nil {
		return models.Task{}, err
	}
	return query.Mutate(ctx, s.inflight, s.cache, ProjectEntity(projectID), query.OpCreate,
		func(ctx context.Context) (models.Task, error) { return s.backend.Create(ctx, projectID, req) },
		func(models.Task) []query.Key { return []query.Key{query.TasksPrefix(projectID)} },
	)
}

func (s *taskService) Update(ctx context.Context, taskID int64, req models.TaskUpdateRequest) (models.Task, error) {
	if req.Empty() {
		return models.Task{}, fmt.Errorf("%w: nothing to update", models.ErrValidation)
	}
	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		req.Title = &trimmed
	}
	check := req
	if req.NeedsCurrent() {
		cur, err := s.Get(ctx, taskID)
		if err != nil {
			return models.Task{}, err
		}
		check = req.Over(cur)
	}
	if err := models.Validate(check); err != nil {
		return models.Task{}, err
	}
	return query.Mutate(ctx, s.inflight, s.cache, TaskEntity(taskID), query.OpUpdate,
		func(ctx context.Context) (models.Task, error) { return s.backend.Update(ctx, taskID, req) },
		func(t models.Task) []query.Key {
			return []query.Key{
				query.TaskKey(taskID), query.TaskSyncKey(taskID), query.TaskHistoryKey(taskID), query.TasksPrefix(t.ProjectID),
			}
		},
	)
}

// ChangeStatus asks the backend to move the task. The backend may refuse a
// move the transition table allows.
func (s *taskService) ChangeStatus(ctx context.Context, taskID int64, to models.TaskStatus) (models.Task, error) {
	return query.Mutate(ctx, s.inflight, s.cache, TaskEntity(taskID), query.OpStatus,
		func(ctx context.Context) (models.Task, error) { return s.backend.ChangeStatus(ctx, taskID, to) },
		func(t models.Task) []query.Key {
			return []query.Key{query.TaskKey(taskID), query.TaskHistoryKey(taskID), query.TasksPrefix(t.ProjectID)}
		},
	)
}

// Delete removes the task on behalf of the signed-in user. The task is
// looked up first (usually from cache) to find the project lists to
// invalidate.
func (s *taskService) Delete(ctx context.Context, taskID int64) error {
	sess, err := s.sessions.Require(ctx)
	if err != nil {
		return err
	}

	_, err = query.Mutate(ctx, s.inflight, s.cache, TaskEntity(taskID), query.OpDelete,
		func(ctx context.Context) (int64, error) {
			task, err := s.Get(ctx, taskID)
			if err != nil {
				return 0, err
			}
			if _, err := s.backend.Delete(ctx, taskID, sess.UserID); err != nil {
				return 0, err
			}
			return task.ProjectID, nil
		},
		func(projectID int64) []query.Key {
			return []query.Key{
				query.TasksPrefix(projectID),
				query.TaskKey(taskID),
				query.TaskHistoryKey(taskID),
				query.TaskSyncKey(taskID),
			}
		},
	)
	return err
}
