package notification

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kazz187/taskboard/internal/auth"
	"github.com/kazz187/taskboard/internal/eventbus"
	"github.com/kazz187/taskboard/pkg/cerr"
)

const (
	opList      = "Get Notifications Error"
	opSubscribe = "Subscribe Notifications Error"
	opMarkRead  = "Mark Notifications Read Error"

	keepAliveInterval = 30 * time.Second
)

type Server struct {
	repo Repository
	bus  *eventbus.Bus
}

func NewServer(repo Repository, bus *eventbus.Bus) *Server {
	return &Server{repo: repo, bus: bus}
}

func (s *Server) Routes(r chi.Router) {
	r.Get("/users/{userID}", s.ListNotifications)
	r.Get("/subscribe/users/{userID}", s.SubscribeNotifications)
	r.Delete("/users/{userID}", s.MarkAllRead)
}

// authorizeFor allows users to reach their own notifications and managers
// to reach anyone's.
func authorizeFor(ctx context.Context, userID string) error {
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		return err
	}
	if actor.IsManager() || actor.UserID == userID {
		return nil
	}
	return cerr.NewError(cerr.PermissionDenied, "cannot access other user's notifications", nil)
}

func (s *Server) ListNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")
	if err := authorizeFor(ctx, userID); err != nil {
		cerr.SetJSONError(ctx, opList, err)
		return
	}
	ns, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		cerr.SetJSONError(ctx, opList, err)
		return
	}
	cerr.SetJSONResponse(ctx, "Get notifications success", ns)
}

func (s *Server) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")
	if err := authorizeFor(ctx, userID); err != nil {
		cerr.SetJSONError(ctx, opMarkRead, err)
		return
	}
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		cerr.SetJSONError(ctx, opMarkRead, err)
		return
	}
	cerr.SetJSONResponse(ctx, "Mark notifications read success", map[string]int{"updated": n})
}

// SubscribeNotifications streams the user's new notifications as
// server-sent events until the client goes away.
func (s *Server) SubscribeNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")
	if err := authorizeFor(ctx, userID); err != nil {
		cerr.SetJSONError(ctx, opSubscribe, err)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		cerr.SetNewJSONError(ctx, opSubscribe, cerr.Unimplemented, "streaming unsupported", nil)
		return
	}

	subID, ch := s.bus.Subscribe(64)
	defer s.bus.Unsubscribe(subID)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case event, ok := <-ch:
			if !ok {
				return
			}
			if event.Type != eventbus.NotificationCreated || event.Metadata["for_user"] != userID {
				continue
			}
			if _, err := fmt.Fprintf(w, "id: %s\nevent: notification\ndata: %s\n\n", event.ResourceID, event.Payload); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
