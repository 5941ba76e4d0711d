package repositoryimpl

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskboard/internal/notification"
	"github.com/kazz187/taskboard/pkg/storage"
)

func TestYAMLRepository(t *testing.T) {
	ctx := context.Background()
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	repo := NewYAMLRepository(s)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.CreateMany(ctx, nil))
	require.NoError(t, repo.CreateMany(ctx, []*notification.Notification{
		{ID: "01", ForUser: "u1", Message: "old", CreatedAt: base},
		{ID: "02", ForUser: "u1", Message: "new", CreatedAt: base.Add(time.Minute)},
		{ID: "03", ForUser: "u2", Message: "other", CreatedAt: base},
	}))

	ns, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, ns, 2)
	assert.Equal(t, "new", ns[0].Message)
	assert.Equal(t, "old", ns[1].Message)

	n, err := repo.MarkAllRead(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = repo.MarkAllRead(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, n)

	others, err := repo.ListByUser(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, others, 1)
	assert.False(t, others[0].Read)

	none, err := repo.ListByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}
