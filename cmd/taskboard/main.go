package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"

	server "github.com/kazz187/taskboard/internal"
	"github.com/kazz187/taskboard/internal/auth"
	"github.com/kazz187/taskboard/internal/config"
	"github.com/kazz187/taskboard/internal/datastore"
	"github.com/kazz187/taskboard/internal/eventbus"
	"github.com/kazz187/taskboard/internal/project"
	"github.com/kazz187/taskboard/internal/reconcile"
	"github.com/kazz187/taskboard/pkg/clog"
)

var (
	app = kingpin.New("taskboard", "Administration tool for the taskboard backend")

	reconcileCmd         = app.Command("reconcile", "Rebuild user and project task indexes from the tasks")
	reconcileDryRun      = reconcileCmd.Flag("dry-run", "Print the changes without saving them").Bool()
	reconcileConcurrency = reconcileCmd.Flag("concurrency", "Records repaired in parallel").Default("8").Int()

	userCmd         = app.Command("user", "User management commands")
	userAddCmd      = userCmd.Command("add", "Add a verified user")
	userAddName     = userAddCmd.Arg("name", "Display name").Required().String()
	userAddEmail    = userAddCmd.Arg("email", "Login email").Required().String()
	userAddPassword = userAddCmd.Arg("password", "Initial password").Required().String()
	userAddRole     = userAddCmd.Flag("role", "User role").Default(string(auth.RoleEmployee)).Enum(string(auth.RoleManager), string(auth.RoleEmployee))

	tokenCmd    = app.Command("token", "Issue an access token for a user")
	tokenUserID = tokenCmd.Arg("user-id", "User ID").Required().String()

	projectCmd            = app.Command("project", "Project management commands")
	projectAddCmd         = projectCmd.Command("add", "Create a project")
	projectAddManager     = projectAddCmd.Arg("manager-id", "ID of the manager creating the project").Required().String()
	projectAddName        = projectAddCmd.Arg("name", "Project name").Required().String()
	projectAddDescription = projectAddCmd.Flag("description", "Project description").String()
	projectAddMembers     = projectAddCmd.Flag("member", "Member user ID (repeatable)").Strings()
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	env, err := config.LoadEnv(".env")
	app.FatalIfError(err, "load env")
	slog.SetDefault(slog.New(clog.NewAttributesHandler(
		clog.NewHTTPTextHandler(os.Stderr, clog.WithLevel(env.SlogLevel())),
	)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, err := datastore.Open(ctx, env)
	app.FatalIfError(err, "open datastore")
	defer repos.Close(context.Background())

	a, err := server.NewApp(env, repos, eventbus.New())
	app.FatalIfError(err, "build app")

	switch command {
	case reconcileCmd.FullCommand():
		err = runReconcile(ctx, a, *reconcileDryRun, *reconcileConcurrency)
	case userAddCmd.FullCommand():
		err = runUserAdd(ctx, a)
	case tokenCmd.FullCommand():
		err = runToken(ctx, a, *tokenUserID)
	case projectAddCmd.FullCommand():
		err = runProjectAdd(ctx, a)
	}
	if err != nil {
		repos.Close(context.Background())
		app.Fatalf("%s: %v", command, err)
	}
}

func runReconcile(ctx context.Context, a *server.App, dryRun bool, concurrency int) error {
	report, err := a.Reconciler.Run(ctx, reconcile.Options{DryRun: dryRun, Concurrency: concurrency})
	if err != nil {
		return err
	}
	if len(report.Changes) == 0 {
		fmt.Println("indexes are consistent")
		return nil
	}
	diff, err := report.Diff()
	if err != nil {
		return err
	}
	printDiff(diff)
	verb := "repaired"
	if dryRun {
		verb = "would repair"
	}
	fmt.Printf("%s %d record(s)\n", verb, len(report.Changes))
	return nil
}

func printDiff(diff string) {
	added := color.New(color.FgGreen)
	removed := color.New(color.FgRed)
	header := color.New(color.Bold)
	for _, line := range strings.SplitAfter(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			header.Print(line)
		case strings.HasPrefix(line, "+"):
			added.Print(line)
		case strings.HasPrefix(line, "-"):
			removed.Print(line)
		default:
			fmt.Print(line)
		}
	}
}

func runUserAdd(ctx context.Context, a *server.App) error {
	u, err := a.Users.Add(ctx, *userAddName, *userAddEmail, *userAddPassword, auth.Role(*userAddRole))
	if err != nil {
		return err
	}
	return printJSON(u)
}

func runToken(ctx context.Context, a *server.App, userID string) error {
	u, err := a.Repos.Users.Get(ctx, userID)
	if err != nil {
		return err
	}
	token, err := a.Tokens.Issue(u.ID, u.Role)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func runProjectAdd(ctx context.Context, a *server.App) error {
	m, err := a.Repos.Users.Get(ctx, *projectAddManager)
	if err != nil {
		return err
	}
	p, err := a.Projects.Create(ctx, auth.Actor{UserID: m.ID, Role: m.Role}, &project.CreateRequest{
		Name:           *projectAddName,
		Description:    *projectAddDescription,
		IncludeMembers: *projectAddMembers,
	})
	if err != nil {
		return err
	}
	return printJSON(p)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
