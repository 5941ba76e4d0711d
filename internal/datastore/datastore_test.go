package datastore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskboard/internal/config"
	"github.com/kazz187/taskboard/internal/datastore"
	"github.com/kazz187/taskboard/internal/task"
)

func TestOpen_Local(t *testing.T) {
	env := &config.Env{StorageEnv: config.StorageEnv{Type: config.StorageTypeLocal, BaseDir: t.TempDir()}}
	ctx := context.Background()

	repos, err := datastore.Open(ctx, env)
	require.NoError(t, err)
	defer func() { assert.NoError(t, repos.Close(ctx)) }()

	now := time.Now().UTC()
	require.NoError(t, repos.Tasks.Create(ctx, &task.Task{ID: "t1", Name: "write docs", Status: task.StatusTodo, CreatedAt: now, UpdatedAt: now}))

	got, err := repos.Tasks.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "write docs", got.Name)

	projects, err := repos.Projects.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)
}
