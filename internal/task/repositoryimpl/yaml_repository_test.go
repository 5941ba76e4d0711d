package repositoryimpl

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/storage"
)

func newRepo(t *testing.T) *YAMLRepository {
	t.Helper()
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return NewYAMLRepository(s)
}

func TestYAMLRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	tk := &task.Task{ID: "t1", Name: "write docs", Status: task.StatusTodo, Priority: task.PriorityHigh, DueDate: &due, InProject: "p1"}
	require.NoError(t, repo.Create(ctx, tk))
	assert.True(t, cerr.IsCode(repo.Create(ctx, tk), cerr.AlreadyExists))

	got, err := repo.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "write docs", got.Name)
	require.NotNil(t, got.DueDate)
	assert.True(t, due.Equal(*got.DueDate))

	got.Status = task.StatusDone
	require.NoError(t, repo.Save(ctx, got))
	got, err = repo.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, task.StatusDone, got.Status)

	_, err = repo.Get(ctx, "missing")
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
	assert.True(t, cerr.IsCode(repo.Save(ctx, &task.Task{ID: "missing"}), cerr.NotFound))
}

func TestYAMLRepositoryFindOrderAndPaging(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, repo.Create(ctx, &task.Task{
			ID:        id,
			Status:    task.StatusTodo,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
			IsDeleted: id == "c",
		}))
	}

	all, err := repo.Find(ctx, task.Filter{}, task.Page{})
	require.NoError(t, err)
	assert.Equal(t, []string{"e", "d", "b", "a"}, ids(all))

	page, err := repo.Find(ctx, task.Filter{}, task.Page{Skip: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "b"}, ids(page))

	empty, err := repo.Find(ctx, task.Filter{}, task.Page{Skip: 10, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, empty)

	n, err := repo.Count(ctx, task.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = repo.Count(ctx, task.Filter{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestYAMLRepositorySkipsMalformedDocuments(t *testing.T) {
	ctx := context.Background()
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	repo := NewYAMLRepository(s)

	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	require.NoError(t, repo.Create(ctx, &task.Task{ID: "ok", Status: task.StatusTodo}))
	require.NoError(t, s.Write(ctx, "tasks/broken.yaml", []byte("::: not yaml [")))

	all, err := repo.Find(ctx, task.Filter{}, task.Page{})
	require.NoError(t, err)
	assert.Equal(t, []string{"ok"}, ids(all))

	n, err := repo.Count(ctx, task.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Contains(t, buf.String(), "skipping malformed task")
	assert.Contains(t, buf.String(), "tasks/broken.yaml")
}

func ids(tasks []*task.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}
