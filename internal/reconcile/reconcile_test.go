package reconcile_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskboard/internal/auth"
	"github.com/kazz187/taskboard/internal/project"
	projectrepo "github.com/kazz187/taskboard/internal/project/repositoryimpl"
	"github.com/kazz187/taskboard/internal/reconcile"
	"github.com/kazz187/taskboard/internal/task"
	taskrepo "github.com/kazz187/taskboard/internal/task/repositoryimpl"
	"github.com/kazz187/taskboard/internal/user"
	userrepo "github.com/kazz187/taskboard/internal/user/repositoryimpl"
	"github.com/kazz187/taskboard/pkg/storage"
)

type fixture struct {
	tasks    task.Repository
	users    user.Repository
	projects project.Repository
}

// seed leaves alice with a stale id and a missing one, bob with nothing and
// the project index missing two tasks.
func seed(t *testing.T) *fixture {
	t.Helper()
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	f := &fixture{
		tasks:    taskrepo.NewYAMLRepository(s),
		users:    userrepo.NewYAMLRepository(s),
		projects: projectrepo.NewYAMLRepository(s),
	}
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, f.users.Create(ctx, &user.User{ID: "alice", Name: "Alice", Email: "alice@example.com", Role: auth.RoleEmployee, ResponsibleFor: []string{"stale", "t2"}, CreatedAt: base}))
	require.NoError(t, f.users.Create(ctx, &user.User{ID: "bob", Name: "Bob", Email: "bob@example.com", Role: auth.RoleEmployee, CreatedAt: base.Add(time.Second)}))
	require.NoError(t, f.projects.Create(ctx, &project.Project{ID: "p1", Name: "proj", IncludeTasks: []string{"t1"}, CreatedAt: base}))

	for i, tk := range []*task.Task{
		{ID: "t1", AssignedTo: "alice", InProject: "p1"},
		{ID: "t2", AssignedTo: "alice", InProject: "p1"},
		{ID: "t3", AssignedTo: "bob", InProject: "p1", IsDeleted: true},
	} {
		tk.Name = tk.ID
		tk.Status = task.StatusTodo
		tk.Priority = task.PriorityMedium
		tk.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		tk.UpdatedAt = tk.CreatedAt
		require.NoError(t, f.tasks.Create(ctx, tk))
	}
	return f
}

func TestRun_Repairs(t *testing.T) {
	f := seed(t)
	ctx := context.Background()

	report, err := reconcile.New(f.tasks, f.users, f.projects).Run(ctx, reconcile.Options{Concurrency: 2})
	require.NoError(t, err)
	require.Len(t, report.Changes, 3)
	assert.Equal(t, "projects/p1", report.Changes[0].Name())
	assert.Equal(t, "users/alice", report.Changes[1].Name())
	assert.Equal(t, "users/bob", report.Changes[2].Name())

	alice, err := f.users.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"t2", "t1"}, alice.ResponsibleFor)

	bob, err := f.users.Get(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"t3"}, bob.ResponsibleFor)

	p, err := f.projects.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2", "t3"}, p.IncludeTasks)

	again, err := reconcile.New(f.tasks, f.users, f.projects).Run(ctx, reconcile.Options{})
	require.NoError(t, err)
	assert.Empty(t, again.Changes)
}

func TestRun_DryRun(t *testing.T) {
	f := seed(t)
	ctx := context.Background()

	report, err := reconcile.New(f.tasks, f.users, f.projects).Run(ctx, reconcile.Options{DryRun: true})
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	require.Len(t, report.Changes, 3)

	diff, err := report.Diff()
	require.NoError(t, err)
	assert.Contains(t, diff, "--- a/users/alice")
	assert.Contains(t, diff, "+++ b/users/alice")
	assert.Contains(t, diff, "-- stale")
	assert.Contains(t, diff, "+- t1")

	alice, err := f.users.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"stale", "t2"}, alice.ResponsibleFor)

	p, err := f.projects.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, p.IncludeTasks)
}
