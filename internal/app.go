package internal

import (
	"fmt"

	"github.com/kazz187/taskboard/internal/auth"
	"github.com/kazz187/taskboard/internal/config"
	"github.com/kazz187/taskboard/internal/datastore"
	"github.com/kazz187/taskboard/internal/eventbus"
	"github.com/kazz187/taskboard/internal/notification"
	"github.com/kazz187/taskboard/internal/project"
	"github.com/kazz187/taskboard/internal/pushnotification"
	"github.com/kazz187/taskboard/internal/reconcile"
	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/internal/user"
)

// App is the wired service graph shared by the server and the admin CLI.
type App struct {
	Env        *config.Env
	Repos      *datastore.Repositories
	Bus        *eventbus.Bus
	Tokens     *auth.TokenManager
	Tasks      *task.Service
	Users      *user.Service
	Projects   *project.Service
	Reconciler *reconcile.Reconciler
	Dispatcher *pushnotification.Dispatcher
	Server     *Server
}

func NewApp(env *config.Env, repos *datastore.Repositories, bus *eventbus.Bus) (*App, error) {
	tokens, err := auth.NewTokenManager(env.JWTSecret, env.JWTTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create token manager: %w", err)
	}

	notifier := notification.NewNotifier(repos.Notifications, bus)
	projects := project.NewService(repos.Projects)
	tasks := task.NewService(repos.Tasks, repos.Users, repos.Projects, notifier, bus)
	users := user.NewService(repos.Users, tasks, projects, auth.NewBcryptHasher(env.BcryptCost), tokens)

	pushSender := pushnotification.NewSender(&env.VAPIDEnv, repos.PushSubscriptions)

	srv := NewServer(
		env,
		tokens,
		user.NewServer(users),
		task.NewServer(tasks),
		project.NewServer(projects),
		notification.NewServer(repos.Notifications, bus),
		pushnotification.NewServer(&env.VAPIDEnv, repos.PushSubscriptions),
	)

	return &App{
		Env:        env,
		Repos:      repos,
		Bus:        bus,
		Tokens:     tokens,
		Tasks:      tasks,
		Users:      users,
		Projects:   projects,
		Reconciler: reconcile.New(repos.Tasks, repos.Users, repos.Projects),
		Dispatcher: pushnotification.NewDispatcher(bus, pushSender),
		Server:     srv,
	}, nil
}
