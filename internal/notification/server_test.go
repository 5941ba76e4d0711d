package notification_test

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskboard/internal/auth"
	"github.com/kazz187/taskboard/internal/eventbus"
	"github.com/kazz187/taskboard/internal/notification"
	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/pkg/cerr"
)

// actorFromHeader stands in for the token middleware.
func actorFromHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, role, _ := strings.Cut(r.Header.Get("X-Actor"), ":")
		ctx := auth.WithActor(r.Context(), auth.Actor{UserID: id, Role: auth.Role(role)})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func newRouter(repo notification.Repository, bus *eventbus.Bus) http.Handler {
	r := chi.NewRouter()
	r.Use(cerr.NewJSONEnvelopeChiMiddleware(), actorFromHeader)
	r.Route("/notifications", notification.NewServer(repo, bus).Routes)
	return r
}

func do(t *testing.T, h http.Handler, method, path, actor string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("X-Actor", actor)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServerOwnOrManager(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	require.NoError(t, repo.CreateMany(ctx, []*notification.Notification{
		{ID: "n1", ForUser: "alice", Title: "t", Message: "m", CreatedAt: time.Now()},
	}))
	h := newRouter(repo, eventbus.New())

	rec := do(t, h, http.MethodGet, "/notifications/users/alice", "alice:employee")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"n1"`)

	rec = do(t, h, http.MethodGet, "/notifications/users/alice", "bob:employee")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), `"context":"Get Notifications Error"`)

	rec = do(t, h, http.MethodGet, "/notifications/users/alice", "boss:manager")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodDelete, "/notifications/users/alice", "alice:employee")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"updated":1`)

	ns, err := repo.ListByUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, ns, 1)
	assert.True(t, ns[0].Read)
}

func TestServerStreamsOwnNotifications(t *testing.T) {
	repo := newRepo(t)
	bus := eventbus.New()
	srv := httptest.NewServer(newRouter(repo, bus))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/notifications/subscribe/users/alice", nil)
	require.NoError(t, err)
	req.Header.Set("X-Actor", "alice:employee")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	// headers arrive only after the subscription exists
	before := &task.Task{ID: "t1", Name: "Release", CreatedBy: "bob", AssignedTo: "alice", Status: task.StatusTodo}
	after := before.Snapshot()
	after.Status = task.StatusReview
	require.NoError(t, notification.NewNotifier(repo, bus).NotifyTaskChanged(context.Background(), before, after))

	scanner := bufio.NewScanner(resp.Body)
	var data string
	for scanner.Scan() {
		line := scanner.Text()
		if payload, ok := strings.CutPrefix(line, "data: "); ok {
			data = payload
			break
		}
	}
	assert.Contains(t, data, `"forUser":"alice"`)
	assert.Contains(t, data, `status has been set to`)
}
