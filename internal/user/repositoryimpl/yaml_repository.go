package repositoryimpl

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kazz187/taskboard/internal/user"
	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/storage"
)

const usersPrefix = "users"

var _ user.Repository = (*YAMLRepository)(nil)

type YAMLRepository struct {
	storage storage.Storage
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{storage: s}
}

func path(id string) string {
	return fmt.Sprintf("%s/%s.yaml", usersPrefix, id)
}

func (r *YAMLRepository) Create(ctx context.Context, u *user.User) error {
	exists, err := r.storage.Exists(ctx, path(u.ID))
	if err != nil {
		return cerr.WrapStorageWriteError("user", err)
	}
	if exists {
		return cerr.NewError(cerr.AlreadyExists, "user already exists", nil)
	}
	if _, err := r.FindByEmail(ctx, u.Email); err == nil {
		return cerr.NewError(cerr.AlreadyExists, "user already exists", nil)
	} else if !cerr.IsCode(err, cerr.NotFound) {
		return err
	}
	return r.write(ctx, u)
}

func (r *YAMLRepository) Get(ctx context.Context, id string) (*user.User, error) {
	data, err := r.storage.Read(ctx, path(id))
	if err != nil {
		return nil, cerr.WrapStorageReadError("user", err)
	}
	var u user.User
	if err := yaml.Unmarshal(data, &u); err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to unmarshal user: %w", err))
	}
	return &u, nil
}

func (r *YAMLRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.findFirst(ctx, func(u *user.User) bool {
		return strings.EqualFold(u.Email, email)
	})
}

func (r *YAMLRepository) FindByName(ctx context.Context, pattern string) (*user.User, error) {
	pattern = strings.ToLower(pattern)
	return r.findFirst(ctx, func(u *user.User) bool {
		return strings.Contains(strings.ToLower(u.Name), pattern)
	})
}

func (r *YAMLRepository) List(ctx context.Context, f user.ListFilter) ([]*user.User, error) {
	all, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	var users []*user.User
	for _, u := range all {
		if f.Name != "" && u.Name != f.Name {
			continue
		}
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		users = append(users, u)
	}
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

func (r *YAMLRepository) Save(ctx context.Context, u *user.User) error {
	exists, err := r.storage.Exists(ctx, path(u.ID))
	if err != nil {
		return cerr.WrapStorageWriteError("user", err)
	}
	if !exists {
		return cerr.NewError(cerr.NotFound, "user not found", nil)
	}
	return r.write(ctx, u)
}

func (r *YAMLRepository) write(ctx context.Context, u *user.User) error {
	data, err := yaml.Marshal(u)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal user: %w", err))
	}
	if err := r.storage.Write(ctx, path(u.ID), data); err != nil {
		return cerr.WrapStorageWriteError("user", err)
	}
	return nil
}

func (r *YAMLRepository) findFirst(ctx context.Context, match func(*user.User) bool) (*user.User, error) {
	all, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range all {
		if match(u) {
			return u, nil
		}
	}
	return nil, cerr.NewError(cerr.NotFound, "user not found", nil)
}

// all loads every user in id order, which for ULIDs is creation order.
func (r *YAMLRepository) all(ctx context.Context) ([]*user.User, error) {
	paths, err := r.storage.List(ctx, usersPrefix)
	if err != nil {
		return nil, cerr.WrapStorageReadError("users", err)
	}
	var all []*user.User
	for _, p := range paths {
		data, err := r.storage.Read(ctx, p)
		if err != nil {
			slog.WarnContext(ctx, "skipping unreadable user", "path", p, "error", err)
			continue
		}
		var u user.User
		if err := yaml.Unmarshal(data, &u); err != nil {
			slog.WarnContext(ctx, "skipping malformed user", "path", p, "error", err)
			continue
		}
		all = append(all, &u)
	}
	return all, nil
}
