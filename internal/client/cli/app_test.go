package cli

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/taskflow/internal/client/api"
	"github.com/dmitrijs2005/taskflow/internal/client/models"
	"github.com/dmitrijs2005/taskflow/internal/client/oauth"
	"github.com/dmitrijs2005/taskflow/internal/client/query"
	"github.com/dmitrijs2005/taskflow/internal/client/session"
)

func TestGuard_RedirectsToLogin(t *testing.T) {
	h := newHarness(t, "")

	err := h.run("tasks", "list", "-p", "7")
	require.ErrorIs(t, err, session.ErrNotAuthenticated)
	assert.True(t, Reported(err))
	assert.Empty(t, h.tasks.lists)
	assert.Equal(t, session.RouteLogin, h.app.Route())
	assert.Contains(t, h.out.String(), "taskflow login")
}

func TestLogin_WithToken(t *testing.T) {
	h := newHarness(t, "")

	require.NoError(t, h.run("login", "--token", credential(t, "11")))

	snap := h.store.Snapshot()
	assert.True(t, snap.Authenticated)
	assert.Equal(t, int64(11), snap.UserID)
	assert.Equal(t, session.RouteTasks, h.app.Route())
	assert.Contains(t, h.out.String(), "Signed in as user 11.")
}

func TestLogin_BadToken(t *testing.T) {
	h := newHarness(t, "")

	err := h.run("login", "--token", "not-a-jwt")
	require.Error(t, err)
	assert.False(t, h.store.Snapshot().Authenticated)
	assert.Contains(t, h.out.String(), "could not be read")
}

type fakeCallback struct {
	handler *oauth.Handler
	rawURL  string
}

func (f *fakeCallback) Start() (string, error) { return "http://127.0.0.1:3000" + oauth.CallbackPath, nil }

func (f *fakeCallback) Wait(ctx context.Context) (oauth.Outcome, error) {
	u, err := http.NewRequest(http.MethodGet, f.rawURL, nil)
	if err != nil {
		return oauth.Outcome{}, err
	}
	return f.handler.Handle(ctx, u.URL)
}

func (f *fakeCallback) Shutdown(context.Context) error { return nil }

func withCallback(t *testing.T, rawURL string) {
	t.Helper()
	orig := newCallbackServer
	newCallbackServer = func(_ string, h *oauth.Handler) callbackServer {
		return &fakeCallback{handler: h, rawURL: rawURL}
	}
	t.Cleanup(func() { newCallbackServer = orig })
}

func TestLogin_BrowserFlow(t *testing.T) {
	t.Run("token", func(t *testing.T) {
		h := newHarness(t, "")
		withCallback(t, "http://127.0.0.1:3000/oauth/callback?token="+credential(t, "5"))

		require.NoError(t, h.run("login"))
		assert.Equal(t, int64(5), h.store.Snapshot().UserID)
		assert.Equal(t, session.RouteTasks, h.app.Route())
		assert.Contains(t, h.out.String(), "https://idp/authorize")
	})

	t.Run("error", func(t *testing.T) {
		h := newHarness(t, "")
		withCallback(t, "http://127.0.0.1:3000/oauth/callback?error=access_denied")

		err := h.run("login")
		require.Error(t, err)
		assert.True(t, Reported(err))
		assert.False(t, h.store.Snapshot().Authenticated)
		assert.Equal(t, session.RouteLogin, h.app.Route())
		assert.Contains(t, h.out.String(), "Login failed: access_denied")
	})

	t.Run("neither", func(t *testing.T) {
		h := newHarness(t, "")
		withCallback(t, "http://127.0.0.1:3000/oauth/callback")

		err := h.run("login")
		require.ErrorIs(t, err, errLoginAborted)
		assert.NotContains(t, h.out.String(), "Login failed")
	})
}

func TestLogout(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t)

	require.NoError(t, h.run("logout"))
	require.NoError(t, h.run("logout"))
	assert.False(t, h.store.Snapshot().Authenticated)
	assert.Equal(t, 2, h.auth.logouts)
}

func TestUnauthorizedResponse_SignsOut(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t)
	h.tasks.listErr = &api.NetworkFailure{Method: "GET", Path: "/projects/7/tasks", Status: http.StatusUnauthorized}

	err := h.run("tasks", "list", "-p", "7")
	require.Error(t, err)
	assert.False(t, h.store.Snapshot().Authenticated)
	assert.Equal(t, session.RouteLogin, h.app.Route())
	assert.Equal(t, 1, h.auth.logouts)
}

func TestUnavailable_SwitchesOffline(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t)
	h.tasks.listErr = &api.NetworkFailure{Method: "GET", Path: "/projects/7/tasks", Err: errors.New("connection refused")}

	err := h.run("tasks", "list", "-p", "7")
	require.Error(t, err)
	assert.Equal(t, ModeOffline, h.app.Mode())
	assert.Contains(t, h.out.String(), "could not be reached")
	assert.True(t, h.store.Snapshot().Authenticated)
}

func TestTasksList_Filters(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t)

	require.NoError(t, h.run("tasks", "list", "-p", "7", "--status", "done", "--assignee", "3"))
	require.Len(t, h.tasks.lists, 1)
	assert.Equal(t, models.TaskFilter{Status: models.StatusDone, AssigneeUserID: 3}, h.tasks.lists[0])
	assert.Contains(t, h.out.String(), "Ship it")

	require.Error(t, h.run("tasks", "list", "-p", "7", "--status", "someday"))
}

func TestTasksMove_Gating(t *testing.T) {
	t.Run("offered move is sent", func(t *testing.T) {
		h := newHarness(t, "")
		h.signIn(t)

		require.NoError(t, h.run("tasks", "move", "42", "in-progress"))
		assert.Equal(t, []models.TaskStatus{models.StatusInProgress}, h.tasks.moves)
		assert.Contains(t, h.out.String(), "now In progress")
	})

	t.Run("move not in table is refused locally", func(t *testing.T) {
		h := newHarness(t, "")
		h.signIn(t)

		err := h.run("tasks", "move", "42", "DONE")
		require.ErrorIs(t, err, ErrMoveNotOffered)
		assert.Empty(t, h.tasks.moves)
		assert.Contains(t, h.out.String(), "Can move to: IN_PROGRESS, BLOCKED")
	})

	t.Run("done offers nothing", func(t *testing.T) {
		h := newHarness(t, "")
		h.signIn(t)
		h.tasks.task.Status = models.StatusDone

		require.NoError(t, h.run("tasks", "move", "42"))
		assert.Contains(t, h.out.String(), "No moves available from Done.")
	})
}

func TestTasksCreate(t *testing.T) {
	h := newHarness(t, "Prompted title\n")
	h.signIn(t)

	require.NoError(t, h.run("tasks", "create", "-p", "7", "--due", "2026-03-01", "--sync"))
	require.Len(t, h.tasks.creates, 1)
	assert.Equal(t, "Prompted title", h.tasks.creates[0].Title)
	assert.True(t, h.tasks.creates[0].CalendarSyncEnabled)
	require.NotNil(t, h.tasks.creates[0].DueAt)
	assert.Equal(t, "2026-03-01T00:00:00", h.tasks.creates[0].DueAt.String())
}

func TestTasksCreate_PromptsForDescription(t *testing.T) {
	h := newHarness(t, "Prompted title\nLine one\nLine two\n\n")
	h.signIn(t)

	require.NoError(t, h.run("tasks", "create", "-p", "7"))
	require.Len(t, h.tasks.creates, 1)
	assert.Equal(t, "Prompted title", h.tasks.creates[0].Title)
	assert.Equal(t, "Line one\nLine two", h.tasks.creates[0].Description)
	assert.Contains(t, h.out.String(), "Description (optional)")
}

func TestTasksCreate_DescriptionFlagSkipsPrompt(t *testing.T) {
	h := newHarness(t, "Prompted title\n")
	h.signIn(t)

	require.NoError(t, h.run("tasks", "create", "-p", "7", "--description", "From flag"))
	require.Len(t, h.tasks.creates, 1)
	assert.Equal(t, "From flag", h.tasks.creates[0].Description)
	assert.NotContains(t, h.out.String(), "Description (optional)")
}

func TestTasksCreate_ValidationShownBeforeNetwork(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t)

	err := h.run("tasks", "create", "-p", "7", "--title", "x", "--sync")
	require.ErrorIs(t, err, models.ErrValidation)
	assert.Empty(t, h.tasks.creates)
	assert.Contains(t, h.out.String(), "Please fix the following:")
}

func TestTasksUpdate_OnlyChangedFlags(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t)

	require.NoError(t, h.run("tasks", "update", "42", "--title", "Renamed", "--sync=false"))
	require.Len(t, h.tasks.updates, 1)
	req := h.tasks.updates[0]
	require.NotNil(t, req.Title)
	assert.Equal(t, "Renamed", *req.Title)
	require.NotNil(t, req.CalendarSyncEnabled)
	assert.False(t, *req.CalendarSyncEnabled)
	assert.Nil(t, req.Description)
	assert.Nil(t, req.DueAt)
}

func TestTasksDelete_Confirmation(t *testing.T) {
	h := newHarness(t, "n\n")
	h.signIn(t)

	err := h.run("tasks", "delete", "42")
	require.ErrorIs(t, err, ErrCancelled)
	assert.Empty(t, h.tasks.deletes)

	require.NoError(t, h.run("tasks", "delete", "42", "-y"))
	assert.Equal(t, []int64{42}, h.tasks.deletes)
}

func TestTasksDelete_InFlightMessage(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t)
	h.tasks.mutErr = query.ErrActionInFlight

	err := h.run("tasks", "delete", "42", "-y")
	require.ErrorIs(t, err, query.ErrActionInFlight)
	assert.Contains(t, h.out.String(), "already running")
}

func TestTasksShow_HistoryAndSync(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t)

	require.NoError(t, h.run("tasks", "show", "42"))
	require.NoError(t, h.run("tasks", "history", "42"))
	require.NoError(t, h.run("tasks", "sync", "42"))

	out := h.out.String()
	assert.Contains(t, out, "Task #42: Ship it")
	assert.Contains(t, out, "Can move to: IN_PROGRESS, BLOCKED")
	assert.Contains(t, out, "ann")
	assert.Contains(t, out, "Calendar sync for task #42")

	require.Error(t, h.run("tasks", "show", "abc"))
}

func TestProjects(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t)

	require.NoError(t, h.run("projects", "list"))
	require.NoError(t, h.run("projects", "create", "Q3", "launch"))
	assert.Equal(t, []models.ProjectCreateRequest{{Name: "Q3 launch"}}, h.projects.created)
	assert.Contains(t, h.out.String(), "Launch")

	err := h.run("projects", "create", " ")
	require.ErrorIs(t, err, models.ErrValidation)
}

func TestOutbox(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t)
	h.outbox.entries = []models.OutboxEntry{
		{ID: 1, TaskID: 42, OpType: models.OutboxUpsert, Status: models.OutboxFailed, RetryCount: 6, Payload: `{"a":1}`},
		{ID: 2, TaskID: 43, OpType: models.OutboxDelete, Status: models.OutboxPending},
	}

	require.NoError(t, h.run("outbox", "list", "--status", "failed"))
	require.NoError(t, h.run("outbox", "show", "1"))
	require.NoError(t, h.run("outbox", "trigger"))

	out := h.out.String()
	assert.Contains(t, out, "PENDING 1 | PROCESSING 0 | SUCCESS 0 | FAILED 1")
	assert.Contains(t, out, "(gave up)")
	assert.Contains(t, out, "\"a\": 1")
	assert.Contains(t, out, "Worker triggered")
	assert.Equal(t, 1, h.outbox.triggers)
}

func TestStatusAndMetrics(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t)

	require.NoError(t, h.run("status"))
	assert.Contains(t, h.out.String(), "Signed in as user 11")
	assert.Contains(t, h.out.String(), "is up")
	assert.Equal(t, ModeOnline, h.app.Mode())

	h.app.metrics.ActionRejected("delete")
	require.NoError(t, h.run("metrics"))
	assert.Contains(t, h.out.String(), "taskflow_client_actions_rejected_total")
}

func TestShell_RunsCommandsAndExits(t *testing.T) {
	silence(t)
	h := newHarness(t, "projects list\nexit\n")
	h.signIn(t)

	require.NoError(t, h.run("shell"))
	assert.Contains(t, h.out.String(), "Welcome to taskflow")
	assert.Contains(t, h.out.String(), "Launch")
}

func TestTasksList_NotesCachedResult(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t)

	fetched := time.Now().Add(-2 * time.Minute)
	h.app.cache = query.NewCache(query.Config{TTL: time.Hour}, query.WithClock(func() time.Time { return fetched }))
	_, err := h.app.cache.Fetch(context.Background(), query.TasksKey(7, "", 0), func(context.Context) (any, error) {
		return []models.Task{}, nil
	})
	require.NoError(t, err)

	require.NoError(t, h.run("tasks", "list", "-p", "7"))
	assert.Contains(t, h.out.String(), "(cached 2m0s ago, use --refresh to reload)")

	h.out.Reset()
	require.NoError(t, h.run("tasks", "list", "-p", "7", "--status", "done"))
	assert.NotContains(t, h.out.String(), "cached")
}

func TestShell_LogoutClearsCache(t *testing.T) {
	silence(t)
	h := newHarness(t, "logout\nexit\n")
	h.signIn(t)

	_, err := h.app.cache.Fetch(context.Background(), query.ProjectsKey(), func(context.Context) (any, error) {
		return []models.Project{}, nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, h.app.cache.Len())

	require.NoError(t, h.run("shell"))
	assert.False(t, h.store.Snapshot().Authenticated)
	assert.Equal(t, 0, h.app.cache.Len())
}

func TestShell_BackgroundJobNeverReadsTerminal(t *testing.T) {
	lines := silence(t)
	h := newHarness(t, "tasks delete 42 &\ny\nexit\n")
	h.signIn(t)

	require.NoError(t, h.run("shell"))
	assert.Empty(t, h.tasks.deletes)
	assert.Contains(t, h.out.String(), "run it without '&'")
	// the answer meant for the prompt reached the shell as a line of its own
	assert.Contains(t, strings.Join(*lines, "\n"), "unknown command")
}

func TestShell_BackgroundJobWithAnswersInFlags(t *testing.T) {
	silence(t)
	h := newHarness(t, "tasks delete 42 -y &\ntasks create -p 7 -t Queued &\nexit\n")
	h.signIn(t)

	require.NoError(t, h.run("shell"))
	assert.Equal(t, []int64{42}, h.tasks.deletes)
	require.Len(t, h.tasks.creates, 1)
	assert.Equal(t, "Queued", h.tasks.creates[0].Title)
}

func TestInBackground(t *testing.T) {
	ctx := context.Background()
	assert.False(t, inBackground(ctx))
	assert.True(t, inBackground(context.WithValue(ctx, backgroundKey{}, true)))
}
