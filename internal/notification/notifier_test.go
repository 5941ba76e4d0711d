package notification_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskboard/internal/eventbus"
	"github.com/kazz187/taskboard/internal/notification"
	"github.com/kazz187/taskboard/internal/notification/repositoryimpl"
	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/pkg/storage"
)

func newRepo(t *testing.T) notification.Repository {
	t.Helper()
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return repositoryimpl.NewYAMLRepository(s)
}

func TestChangeMessages(t *testing.T) {
	due := time.Date(2026, 6, 30, 17, 0, 0, 0, time.UTC)
	before := &task.Task{Name: "Release", Status: task.StatusTodo, Priority: task.PriorityLow}
	after := before.Snapshot()
	after.Status = task.StatusDone
	after.DueDate = &due
	after.Effort = 8

	assert.Equal(t, []string{
		`Release - dueDate has been set to "2026-06-30T17:00:00Z"`,
		`Release - status has been set to "done"`,
	}, notification.ChangeMessages(before, after))

	assert.Empty(t, notification.ChangeMessages(before, before.Snapshot()))
}

func TestBuildPriorityChange(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	before := &task.Task{ID: "t1", Name: "Release", CreatedBy: "creator", AssignedTo: "assignee", Priority: task.PriorityLow}
	after := before.Snapshot()
	after.Priority = task.PriorityHigh

	ns := notification.Build(before, after, now)
	require.Len(t, ns, 2)

	assert.Equal(t, "creator", ns[0].ForUser)
	assert.Equal(t, "A task created by you has been updated.", ns[0].Title)
	assert.Equal(t, `Release - priority has been set to "high"`, ns[0].Message)

	assert.Equal(t, "assignee", ns[1].ForUser)
	assert.Equal(t, "A task assigned to you has been updated.", ns[1].Title)
	assert.Equal(t, `Release - priority has been set to "high"`, ns[1].Message)

	for _, n := range ns {
		assert.False(t, n.Read)
		assert.Equal(t, now, n.CreatedAt)
		assert.NotEmpty(t, n.ID)
	}
}

func TestBuildUnassignedTaskNotifiesCreatorOnly(t *testing.T) {
	before := &task.Task{Name: "Release", CreatedBy: "creator", Priority: task.PriorityLow}
	after := before.Snapshot()
	after.Priority = task.PriorityHigh

	ns := notification.Build(before, after, time.Now())
	require.Len(t, ns, 1)
	assert.Equal(t, "creator", ns[0].ForUser)
}

func TestNotifierPersistsAndPublishes(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	bus := eventbus.New()
	_, events := bus.Subscribe(8)
	n := notification.NewNotifier(repo, bus)

	before := &task.Task{ID: "t1", Name: "Release", CreatedBy: "creator", AssignedTo: "assignee", Priority: task.PriorityLow}
	after := before.Snapshot()
	after.Priority = task.PriorityHigh
	require.NoError(t, n.NotifyTaskChanged(ctx, before, after))

	for _, userID := range []string{"creator", "assignee"} {
		ns, err := repo.ListByUser(ctx, userID)
		require.NoError(t, err)
		require.Len(t, ns, 1, userID)
		assert.Contains(t, ns[0].Message, `priority has been set to "high"`)
	}

	got := map[string]bool{}
	for i := 0; i < 2; i++ {
		ev := <-events
		assert.Equal(t, eventbus.NotificationCreated, ev.Type)
		assert.Equal(t, "t1", ev.Metadata["task_id"])
		got[ev.Metadata["for_user"]] = true
	}
	assert.Equal(t, map[string]bool{"creator": true, "assignee": true}, got)
}

func TestNotifierNoChangesIsNoop(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	n := notification.NewNotifier(repo, nil)

	before := &task.Task{ID: "t1", Name: "Release", CreatedBy: "creator", Priority: task.PriorityLow}
	after := before.Snapshot()
	after.Description = "only description changed"
	require.NoError(t, n.NotifyTaskChanged(ctx, before, after))

	ns, err := repo.ListByUser(ctx, "creator")
	require.NoError(t, err)
	assert.Empty(t, ns)
}
