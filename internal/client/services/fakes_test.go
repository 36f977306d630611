package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/taskflow/internal/client/models"
	"github.com/dmitrijs2005/taskflow/internal/client/session"
)

// fakeTasks is an in-memory TasksBackend that counts calls per method.
type fakeTasks struct {
	mu     sync.Mutex
	calls  map[string]int
	tasks  map[int64]models.Task
	nextID int64

	// deleteGate, when set, blocks Delete until closed.
	deleteGate chan struct{}
	deleteErr  error
	lastDelBy  int64
}

func newFakeTasks(tasks ...models.Task) *fakeTasks {
	f := &fakeTasks{calls: map[string]int{}, tasks: map[int64]models.Task{}, nextID: 100}
	for _, t := range tasks {
		f.tasks[t.ID] = t
	}
	return f
}

func (f *fakeTasks) hit(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeTasks) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeTasks) List(_ context.Context, projectID int64, filter models.TaskFilter) ([]models.Task, error) {
	f.hit("list")
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Task
	for _, t := range f.tasks {
		if t.ProjectID == projectID && (filter.Status == "" || t.Status == filter.Status) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTasks) Get(_ context.Context, taskID int64) (models.Task, error) {
	f.hit("get")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tasks[taskID], nil
}

func (f *fakeTasks) Create(_ context.Context, projectID int64, req models.TaskCreateRequest) (models.Task, error) {
	f.hit("create")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	t := models.Task{ID: f.nextID, ProjectID: projectID, Title: req.Title, Status: models.StatusRequested}
	f.tasks[t.ID] = t
	return t, nil
}

func (f *fakeTasks) Update(_ context.Context, taskID int64, req models.TaskUpdateRequest) (models.Task, error) {
	f.hit("update")
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.tasks[taskID]
	if req.Title != nil {
		t.Title = *req.Title
	}
	f.tasks[taskID] = t
	return t, nil
}

func (f *fakeTasks) Delete(_ context.Context, taskID, requestedBy int64) (models.DeleteTaskResponse, error) {
	f.hit("delete")
	if f.deleteGate != nil {
		<-f.deleteGate
	}
	if f.deleteErr != nil {
		return models.DeleteTaskResponse{}, f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastDelBy = requestedBy
	delete(f.tasks, taskID)
	return models.DeleteTaskResponse{DeletedTaskID: taskID}, nil
}

func (f *fakeTasks) ChangeStatus(_ context.Context, taskID int64, to models.TaskStatus) (models.Task, error) {
	f.hit("status")
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.tasks[taskID]
	t.Status = to
	f.tasks[taskID] = t
	return t, nil
}

func (f *fakeTasks) History(context.Context, int64) ([]models.TaskHistory, error) {
	f.hit("history")
	return []models.TaskHistory{{ChangeType: models.ChangeStatus}}, nil
}

func (f *fakeTasks) CalendarSync(_ context.Context, taskID int64) (models.CalendarSyncStatus, error) {
	f.hit("sync")
	return models.CalendarSyncStatus{TaskID: taskID}, nil
}

type fakeSessions struct {
	sess session.Session
	err  error
}

func (f fakeSessions) Require(context.Context) (session.Session, error) { return f.sess, f.err }

type fakeProjects struct {
	creates, lists int
}

func (f *fakeProjects) List(context.Context) ([]models.Project, error) {
	f.lists++
	return []models.Project{{ID: 1, Name: "Alpha"}}, nil
}

func (f *fakeProjects) Get(_ context.Context, id int64) (models.Project, error) {
	return models.Project{ID: id}, nil
}

func (f *fakeProjects) Create(_ context.Context, req models.ProjectCreateRequest) (models.Project, error) {
	f.creates++
	return models.Project{ID: 2, Name: req.Name}, nil
}

type fakeOutbox struct {
	lists, triggers int
}

func (f *fakeOutbox) List(context.Context, models.OutboxFilter) ([]models.OutboxEntry, error) {
	f.lists++
	return nil, nil
}

func (f *fakeOutbox) Get(_ context.Context, id int64) (models.OutboxEntry, error) {
	return models.OutboxEntry{ID: id}, nil
}

func (f *fakeOutbox) TriggerWorker(context.Context) (string, error) {
	f.triggers++
	return "Worker triggered", nil
}
