package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/taskflow/internal/client/client"
	"github.com/dmitrijs2005/taskflow/internal/client/metrics"
	"github.com/dmitrijs2005/taskflow/internal/client/models"
)

type staticToken string

func (s staticToken) Token() (string, bool) { return string(s), s != "" }

type captured struct {
	method, path, query, auth, requestID, contentType string
	body                                              map[string]any
}

// backend replies with status and body, and records the last request.
func backend(t *testing.T, status int, body string) (*Client, *captured) {
	t.Helper()
	got := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.path = r.URL.Path
		got.query = r.URL.RawQuery
		got.auth = r.Header.Get("Authorization")
		got.requestID = r.Header.Get("X-Request-ID")
		got.contentType = r.Header.Get("Content-Type")
		if b, _ := io.ReadAll(r.Body); len(b) > 0 {
			_ = json.Unmarshal(b, &got.body)
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/api", staticToken("tok"), WithMetrics(metrics.New()))
	require.NoError(t, err)
	return c, got
}

func TestNew_RejectsBadURL(t *testing.T) {
	_, err := New("localhost:8080", nil)
	require.Error(t, err)
}

func TestProjectsList_UnwrapsEnvelope(t *testing.T) {
	c, got := backend(t, 200, `{"success":true,"data":[{"id":1,"name":"Alpha","createdAt":"2025-01-01T00:00:00","updatedAt":"2025-01-01T00:00:00"}]}`)

	ps, err := c.Projects().List(context.Background())
	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.Equal(t, "Alpha", ps[0].Name)

	assert.Equal(t, "GET", got.method)
	assert.Equal(t, "/api/projects", got.path)
	assert.Equal(t, "Bearer tok", got.auth)
	assert.NotEmpty(t, got.requestID)
}

func TestTasksList_Filters(t *testing.T) {
	c, got := backend(t, 200, `{"success":true,"data":[]}`)

	_, err := c.Tasks().List(context.Background(), 7, models.TaskFilter{Status: models.StatusDone, AssigneeUserID: 3})
	require.NoError(t, err)
	assert.Equal(t, "/api/projects/7/tasks", got.path)
	assert.Equal(t, "assigneeUserId=3&status=DONE", got.query)
}

func TestTasksDelete_SendsRequester(t *testing.T) {
	c, got := backend(t, 200, `{"success":true,"data":{"deletedTaskId":42}}`)

	res, err := c.Tasks().Delete(context.Background(), 42, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(42), res.DeletedTaskID)
	assert.Equal(t, "DELETE", got.method)
	assert.Equal(t, "/api/tasks/42", got.path)
	assert.Equal(t, "requestedByUserId=5", got.query)
}

func TestTasksChangeStatus_Body(t *testing.T) {
	c, got := backend(t, 200, `{"success":true,"data":{"id":9,"status":"IN_PROGRESS"}}`)

	task, err := c.Tasks().ChangeStatus(context.Background(), 9, models.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, task.Status)
	assert.Equal(t, map[string]any{"toStatus": "IN_PROGRESS"}, got.body)
	assert.Equal(t, "application/json", got.contentType)
}

func TestEnvelopeError_PropagatesCode(t *testing.T) {
	c, _ := backend(t, 400, `{"success":false,"error":{"code":"TASK_STATUS_TRANSITION_NOT_ALLOWED","message":"nope"}}`)

	_, err := c.Tasks().ChangeStatus(context.Background(), 1, models.StatusDone)
	f, ok := AsFailure(err)
	require.True(t, ok)
	assert.Equal(t, 400, f.Status)
	assert.Equal(t, models.CodeTransitionNotAllowed, f.Code)
	assert.Equal(t, "nope", f.UserMessage())
	assert.NotErrorIs(t, err, client.ErrUnauthorized)
	assert.NotErrorIs(t, err, client.ErrUnavailable)
}

func TestUnsuccessfulEnvelopeWith200(t *testing.T) {
	c, _ := backend(t, 200, `{"success":false,"error":{"code":"PROJECT_NOT_FOUND","message":"missing"}}`)

	_, err := c.Projects().Get(context.Background(), 3)
	f, ok := AsFailure(err)
	require.True(t, ok)
	assert.Equal(t, models.CodeProjectNotFound, f.Code)
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, client.ErrUnauthorized},
		{http.StatusForbidden, client.ErrUnauthorized},
		{http.StatusServiceUnavailable, client.ErrUnavailable},
		{http.StatusBadGateway, client.ErrUnavailable},
	}
	for _, tt := range tests {
		c, _ := backend(t, tt.status, "<html>down</html>")
		_, err := c.Projects().List(context.Background())
		require.ErrorIs(t, err, tt.want, tt.status)

		f, _ := AsFailure(err)
		assert.Equal(t, "<html>down</html>", f.Message)
	}
}

func TestTransportError_IsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c, err := New(srv.URL, nil, WithTimeout(time.Second))
	require.NoError(t, err)

	_, err = c.Health(context.Background())
	require.ErrorIs(t, err, client.ErrUnavailable)
	f, ok := AsFailure(err)
	require.True(t, ok)
	assert.Equal(t, 0, f.Status)
}

func TestMalformedEnvelope(t *testing.T) {
	c, _ := backend(t, 200, `not json`)
	_, err := c.Projects().List(context.Background())
	f, ok := AsFailure(err)
	require.True(t, ok)
	assert.Equal(t, 200, f.Status)
	assert.ErrorContains(t, err, "decode envelope")
}

func TestTriggerWorker_PlainText(t *testing.T) {
	c, got := backend(t, 200, "Worker triggered")
	msg, err := c.Outbox().TriggerWorker(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Worker triggered", msg)
	assert.Equal(t, "/api/admin/calendar-outbox/trigger-worker", got.path)
}

func TestAuthorizeURL(t *testing.T) {
	c, _ := backend(t, 200, `{"success":true,"data":{"authorizeUrl":"https://accounts.example/auth?x=1"}}`)
	u, err := c.OAuth().AuthorizeURL(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://accounts.example/auth?x=1", u)
}

func TestNoCredential_NoAuthorizationHeader(t *testing.T) {
	c, got := backend(t, 200, `{"success":true,"data":{"status":"ok"}}`)
	c.tokens = staticToken("")

	h, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", h.Status)
	assert.Empty(t, got.auth)
}
