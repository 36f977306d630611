package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/taskflow/internal/client/metrics"
	"github.com/dmitrijs2005/taskflow/internal/client/models"
	"github.com/dmitrijs2005/taskflow/internal/client/services"
	"github.com/dmitrijs2005/taskflow/internal/client/session"
	"github.com/dmitrijs2005/taskflow/internal/client/token"
)

type memStorage struct{ p *session.Persisted }

func (m *memStorage) Load(context.Context) (session.Persisted, bool, error) {
	if m.p == nil {
		return session.Persisted{}, false, nil
	}
	return *m.p, true, nil
}
func (m *memStorage) Save(_ context.Context, p session.Persisted) error { m.p = &p; return nil }
func (m *memStorage) Erase(context.Context) error                      { m.p = nil; return nil }

func credential(t *testing.T, sub string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub, "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("k"))
	require.NoError(t, err)
	return s
}

type fakeAuth struct {
	store   *session.Store
	logouts int
	pingErr error
}

func (f *fakeAuth) AuthorizeURL(context.Context) (string, error) { return "https://idp/authorize", nil }

func (f *fakeAuth) LoginWithToken(ctx context.Context, cred string) (int64, error) {
	claims, err := token.Decode(cred)
	if err != nil {
		return 0, err
	}
	return claims.Subject, f.store.Login(ctx, cred, claims.Subject)
}

func (f *fakeAuth) Logout(ctx context.Context) error {
	f.logouts++
	return f.store.Logout(ctx)
}

func (f *fakeAuth) Status(context.Context) (services.SessionStatus, error) {
	snap := f.store.Snapshot()
	return services.SessionStatus{Authenticated: snap.Authenticated, UserID: snap.UserID}, nil
}

func (f *fakeAuth) Ping(context.Context) error { return f.pingErr }

type fakeProjects struct {
	created []models.ProjectCreateRequest
	err     error
}

func (f *fakeProjects) List(context.Context) ([]models.Project, error) {
	return []models.Project{{ID: 7, Name: "Launch"}, {ID: 9, Name: "Ops"}}, f.err
}

func (f *fakeProjects) Get(_ context.Context, id int64) (models.Project, error) {
	return models.Project{ID: id, Name: "Launch"}, f.err
}

func (f *fakeProjects) Create(_ context.Context, req models.ProjectCreateRequest) (models.Project, error) {
	if err := models.Validate(req); err != nil {
		return models.Project{}, err
	}
	f.created = append(f.created, req)
	return models.Project{ID: 10, Name: req.Name}, f.err
}

type fakeTasks struct {
	task     models.Task
	listErr  error
	lists    []models.TaskFilter
	creates  []models.TaskCreateRequest
	updates  []models.TaskUpdateRequest
	moves    []models.TaskStatus
	deletes  []int64
	mutErr   error
}

func (f *fakeTasks) List(_ context.Context, _ int64, filter models.TaskFilter) ([]models.Task, error) {
	f.lists = append(f.lists, filter)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return []models.Task{f.task}, nil
}

func (f *fakeTasks) Get(context.Context, int64) (models.Task, error) { return f.task, nil }

func (f *fakeTasks) History(context.Context, int64) ([]models.TaskHistory, error) {
	before, after := "REQUESTED", "IN_PROGRESS"
	return []models.TaskHistory{{ChangeType: models.ChangeStatus, BeforeValue: &before, AfterValue: &after, ChangedByUserName: "ann"}}, nil
}

func (f *fakeTasks) CalendarSync(_ context.Context, id int64) (models.CalendarSyncStatus, error) {
	return models.CalendarSyncStatus{TaskID: id, CalendarSyncEnabled: true}, nil
}

func (f *fakeTasks) Create(_ context.Context, projectID int64, req models.TaskCreateRequest) (models.Task, error) {
	if err := models.Validate(req); err != nil {
		return models.Task{}, err
	}
	f.creates = append(f.creates, req)
	return models.Task{ID: 100, ProjectID: projectID, Title: req.Title}, f.mutErr
}

func (f *fakeTasks) Update(_ context.Context, id int64, req models.TaskUpdateRequest) (models.Task, error) {
	f.updates = append(f.updates, req)
	return models.Task{ID: id}, f.mutErr
}

func (f *fakeTasks) ChangeStatus(_ context.Context, id int64, to models.TaskStatus) (models.Task, error) {
	f.moves = append(f.moves, to)
	return models.Task{ID: id, Status: to}, f.mutErr
}

func (f *fakeTasks) Delete(_ context.Context, id int64) error {
	if f.mutErr != nil {
		return f.mutErr
	}
	f.deletes = append(f.deletes, id)
	return nil
}

type fakeOutbox struct {
	entries  []models.OutboxEntry
	triggers int
}

func (f *fakeOutbox) List(context.Context, models.OutboxFilter) ([]models.OutboxEntry, error) {
	return f.entries, nil
}

func (f *fakeOutbox) Get(_ context.Context, id int64) (models.OutboxEntry, error) {
	for _, e := range f.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return models.OutboxEntry{}, nil
}

func (f *fakeOutbox) Trigger(context.Context) (string, error) {
	f.triggers++
	return "Worker triggered", nil
}

type harness struct {
	app      *App
	out      *bytes.Buffer
	auth     *fakeAuth
	projects *fakeProjects
	tasks    *fakeTasks
	outbox   *fakeOutbox
	store    *session.Store
}

func newHarness(t *testing.T, input string) *harness {
	t.Helper()
	store := session.NewStore(&memStorage{})
	h := &harness{
		out:      &bytes.Buffer{},
		auth:     &fakeAuth{store: store},
		projects: &fakeProjects{},
		tasks:    &fakeTasks{task: models.Task{ID: 42, ProjectID: 7, Title: "Ship it", Status: models.StatusRequested}},
		outbox:   &fakeOutbox{},
		store:    store,
	}
	h.app = NewApp(Deps{
		Auth:     h.auth,
		Projects: h.projects,
		Tasks:    h.tasks,
		Outbox:   h.outbox,
		Store:    store,
		Metrics:  metrics.New(),
		In:       strings.NewReader(input),
		Out:      h.out,
	})
	return h
}

func (h *harness) signIn(t *testing.T) {
	t.Helper()
	cred := credential(t, "11")
	require.NoError(t, h.store.Login(context.Background(), cred, 11))
}

func (h *harness) run(args ...string) error {
	root := NewRootCommand(h.app)
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}
