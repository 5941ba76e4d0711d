package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	server "github.com/kazz187/taskboard/internal"
	"github.com/kazz187/taskboard/internal/config"
	"github.com/kazz187/taskboard/internal/datastore"
	"github.com/kazz187/taskboard/internal/eventbus"
	"github.com/kazz187/taskboard/pkg/clog"
	"github.com/kazz187/taskboard/pkg/panicerr"
)

func main() {
	env, err := config.LoadEnv(".env")
	if err != nil {
		slog.Error("failed to load env", "error", err)
		os.Exit(1)
	}

	// Setup logger
	level := env.SlogLevel()
	var handler slog.Handler
	if env.IsLocal() {
		handler = clog.NewHTTPTextHandler(os.Stderr, clog.WithLevel(level))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(clog.NewAttributesHandler(handler)))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	repos, err := datastore.Open(ctx, env)
	if err != nil {
		slog.Error("failed to open datastore", "storage", env.StorageEnv.Type, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := repos.Close(context.Background()); err != nil {
			slog.Error("failed to close datastore", "error", err)
		}
	}()

	bus := eventbus.New()
	app, err := server.NewApp(env, repos, bus)
	if err != nil {
		slog.Error("failed to build app", "error", err)
		os.Exit(1)
	}

	panicerr.Go(ctx, "push-dispatcher", app.Dispatcher.Start)

	if env.NATSURL != "" {
		conn, err := eventbus.Connect(env.NATSURL, "taskboard-server")
		if err != nil {
			slog.Error("failed to connect to nats", "error", err)
			os.Exit(1)
		}
		defer conn.Close()
		panicerr.Go(ctx, "nats-forwarder", eventbus.NewForwarder(bus, conn, env.NATSSubjectPrefix).Start)
	}

	go func() {
		if err := app.Server.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := app.Server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
