package internal

import (
	"context"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kazz187/taskboard/internal/auth"
	"github.com/kazz187/taskboard/internal/config"
	"github.com/kazz187/taskboard/internal/notification"
	"github.com/kazz187/taskboard/internal/project"
	"github.com/kazz187/taskboard/internal/pushnotification"
	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/internal/user"
	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/clog"
)

type Server struct {
	server                 *http.Server
	env                    *config.Env
	tokens                 *auth.TokenManager
	userServer             *user.Server
	taskServer             *task.Server
	projectServer          *project.Server
	notificationServer     *notification.Server
	pushNotificationServer *pushnotification.Server
}

func NewServer(
	env *config.Env,
	tokens *auth.TokenManager,
	userServer *user.Server,
	taskServer *task.Server,
	projectServer *project.Server,
	notificationServer *notification.Server,
	pushNotificationServer *pushnotification.Server,
) *Server {
	return &Server{
		env:                    env,
		tokens:                 tokens,
		userServer:             userServer,
		taskServer:             taskServer,
		projectServer:          projectServer,
		notificationServer:     notificationServer,
		pushNotificationServer: pushNotificationServer,
	}
}

// Handler builds the full HTTP handler tree without CORS or h2c.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Use(
			middleware.RequestID,
			clog.SlogChiMiddleware(),
			cerr.NewJSONEnvelopeChiMiddleware(),
		)
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			cerr.SetNewJSONError(r.Context(), "Route Error", cerr.NotFound, "not found", nil)
		})

		r.Group(s.userServer.PublicRoutes)
		r.Group(func(r chi.Router) {
			r.Use(s.tokens.Middleware)
			s.userServer.Routes(r)
			r.Route("/tasks", s.taskServer.Routes)
			r.Route("/projects", s.projectServer.Routes)
			r.Route("/notifications", s.notificationServer.Routes)
			r.Route("/push", s.pushNotificationServer.Routes)
		})
	})

	mux := http.NewServeMux()
	mux.Handle("/health", &HealthChecker{})
	mux.Handle("/api/", r)
	return mux
}

// ListenAndServe starts the HTTP server. ctx becomes the base context of
// every request, so cancelling it ends open event streams before Shutdown
// waits on them.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := net.JoinHostPort(s.env.HTTPHost, s.env.HTTPPort)
	slog.Info("starting server", "addr", addr)

	s.server = &http.Server{
		Addr: addr,
		Handler: h2c.NewHandler(cors.New(cors.Options{
			AllowedOrigins:   s.env.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
		}).Handler(s.Handler()), &http2.Server{}),
		BaseContext: func(_ net.Listener) context.Context { return ctx },
	}

	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

type HealthChecker struct{}

func (hc *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
