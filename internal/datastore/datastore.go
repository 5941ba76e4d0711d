// Package datastore opens every repository against the configured backend.
package datastore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kazz187/taskboard/internal/config"
	"github.com/kazz187/taskboard/internal/notification"
	notificationrepo "github.com/kazz187/taskboard/internal/notification/repositoryimpl"
	"github.com/kazz187/taskboard/internal/project"
	projectrepo "github.com/kazz187/taskboard/internal/project/repositoryimpl"
	"github.com/kazz187/taskboard/internal/pushsubscription"
	pushsubrepo "github.com/kazz187/taskboard/internal/pushsubscription/repositoryimpl"
	"github.com/kazz187/taskboard/internal/task"
	taskrepo "github.com/kazz187/taskboard/internal/task/repositoryimpl"
	"github.com/kazz187/taskboard/internal/user"
	userrepo "github.com/kazz187/taskboard/internal/user/repositoryimpl"
	"github.com/kazz187/taskboard/pkg/mongodb"
	"github.com/kazz187/taskboard/pkg/storage"
)

type Repositories struct {
	Tasks             task.Repository
	Users             user.Repository
	Projects          project.Repository
	Notifications     notification.Repository
	PushSubscriptions pushsubscription.Repository

	close func(context.Context) error
}

// Close releases the backend connection. It is a no-op for document storage.
func (r *Repositories) Close(ctx context.Context) error {
	if r.close == nil {
		return nil
	}
	return r.close(ctx)
}

func Open(ctx context.Context, env *config.Env) (*Repositories, error) {
	switch env.StorageEnv.Type {
	case config.StorageTypeMongo:
		return openMongo(ctx, &env.MongoEnv)
	case config.StorageTypeS3:
		store, err := storage.NewS3Storage(ctx, env.S3Bucket, env.S3Prefix, env.S3Region)
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 storage: %w", err)
		}
		return FromStorage(store), nil
	default:
		store, err := storage.NewLocalStorage(env.BaseDir)
		if err != nil {
			return nil, fmt.Errorf("failed to create local storage: %w", err)
		}
		return FromStorage(store), nil
	}
}

// FromStorage backs every repository with YAML documents in store.
func FromStorage(store storage.Storage) *Repositories {
	return &Repositories{
		Tasks:             taskrepo.NewYAMLRepository(store),
		Users:             userrepo.NewYAMLRepository(store),
		Projects:          projectrepo.NewYAMLRepository(store),
		Notifications:     notificationrepo.NewYAMLRepository(store),
		PushSubscriptions: pushsubrepo.NewYAMLRepository(store),
	}
}

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

func openMongo(ctx context.Context, env *config.MongoEnv) (*Repositories, error) {
	client, err := mongodb.Connect(ctx, env.MongoURI)
	if err != nil {
		return nil, err
	}
	repos, err := fromDatabase(ctx, client.Database(env.MongoDatabase))
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	repos.close = client.Disconnect
	return repos, nil
}

func fromDatabase(ctx context.Context, db *mongo.Database) (*Repositories, error) {
	tasks := taskrepo.NewMongoRepository(db)
	users := userrepo.NewMongoRepository(db)
	projects := projectrepo.NewMongoRepository(db)
	notifications := notificationrepo.NewMongoRepository(db)
	pushSubs := pushsubrepo.NewMongoRepository(db)

	for _, ix := range []any{tasks, users, projects, notifications, pushSubs} {
		if i, ok := ix.(indexer); ok {
			if err := i.EnsureIndexes(ctx); err != nil {
				return nil, err
			}
		}
	}
	return &Repositories{
		Tasks:             tasks,
		Users:             users,
		Projects:          projects,
		Notifications:     notifications,
		PushSubscriptions: pushSubs,
	}, nil
}
