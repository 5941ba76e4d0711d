package repositoryimpl

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/kazz187/taskboard/internal/notification"
	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/storage"
)

const notificationsPrefix = "notifications"

var _ notification.Repository = (*YAMLRepository)(nil)

// YAMLRepository stores one document per notification, grouped in a
// directory per user.
type YAMLRepository struct {
	storage storage.Storage
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{storage: s}
}

func userPrefix(userID string) string {
	return fmt.Sprintf("%s/%s", notificationsPrefix, userID)
}

func path(userID, id string) string {
	return fmt.Sprintf("%s/%s.yaml", userPrefix(userID), id)
}

func (r *YAMLRepository) CreateMany(ctx context.Context, ns []*notification.Notification) error {
	for _, n := range ns {
		if err := r.write(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

func (r *YAMLRepository) ListByUser(ctx context.Context, userID string) ([]*notification.Notification, error) {
	paths, err := r.storage.List(ctx, userPrefix(userID))
	if err != nil {
		return nil, cerr.WrapStorageReadError("notifications", err)
	}
	ns := []*notification.Notification{}
	for _, p := range paths {
		data, err := r.storage.Read(ctx, p)
		if err != nil {
			slog.WarnContext(ctx, "skipping unreadable notification", "path", p, "error", err)
			continue
		}
		var n notification.Notification
		if err := yaml.Unmarshal(data, &n); err != nil {
			slog.WarnContext(ctx, "skipping malformed notification", "path", p, "error", err)
			continue
		}
		ns = append(ns, &n)
	}
	sort.SliceStable(ns, func(i, j int) bool {
		if !ns[i].CreatedAt.Equal(ns[j].CreatedAt) {
			return ns[i].CreatedAt.After(ns[j].CreatedAt)
		}
		return ns[i].ID > ns[j].ID
	})
	return ns, nil
}

func (r *YAMLRepository) MarkAllRead(ctx context.Context, userID string) (int, error) {
	ns, err := r.ListByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	changed := 0
	for _, n := range ns {
		if n.Read {
			continue
		}
		n.Read = true
		if err := r.write(ctx, n); err != nil {
			return changed, err
		}
		changed++
	}
	return changed, nil
}

func (r *YAMLRepository) write(ctx context.Context, n *notification.Notification) error {
	data, err := yaml.Marshal(n)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal notification: %w", err))
	}
	if err := r.storage.Write(ctx, path(n.ForUser, n.ID), data); err != nil {
		return cerr.WrapStorageWriteError("notification", err)
	}
	return nil
}
