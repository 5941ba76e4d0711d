package pushnotification

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/kazz187/taskboard/internal/auth"
	"github.com/kazz187/taskboard/internal/config"
	"github.com/kazz187/taskboard/internal/pushsubscription"
	"github.com/kazz187/taskboard/pkg/cerr"
)

const (
	opVapidKey   = "Get VAPID Public Key Error"
	opRegister   = "Register Push Subscription Error"
	opUnregister = "Unregister Push Subscription Error"
)

type RegisterRequest struct {
	Endpoint  string `json:"endpoint"`
	P256dhKey string `json:"p256dhKey"`
	AuthKey   string `json:"authKey"`
}

type UnregisterRequest struct {
	Endpoint string `json:"endpoint"`
}

type Server struct {
	vapidEnv *config.VAPIDEnv
	repo     pushsubscription.Repository
}

func NewServer(vapidEnv *config.VAPIDEnv, repo pushsubscription.Repository) *Server {
	return &Server{
		vapidEnv: vapidEnv,
		repo:     repo,
	}
}

func (s *Server) Routes(r chi.Router) {
	r.Get("/vapid-public-key", s.GetVapidPublicKey)
	r.Post("/subscriptions", s.RegisterPushSubscription)
	r.Delete("/subscriptions", s.UnregisterPushSubscription)
}

func (s *Server) GetVapidPublicKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.vapidEnv.VAPIDPublicKey == "" {
		cerr.SetNewJSONError(ctx, opVapidKey, cerr.FailedPrecondition, "VAPID keys not configured", nil)
		return
	}
	cerr.SetJSONResponse(ctx, "Get VAPID public key success", map[string]string{"publicKey": s.vapidEnv.VAPIDPublicKey})
}

func (s *Server) RegisterPushSubscription(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		cerr.SetJSONError(ctx, opRegister, err)
		return
	}
	var req RegisterRequest
	if err := cerr.DecodeJSONRequest(r, &req); err != nil {
		cerr.SetJSONError(ctx, opRegister, err)
		return
	}
	switch {
	case req.Endpoint == "":
		cerr.SetNewJSONError(ctx, opRegister, cerr.InvalidArgument, "endpoint is required", nil)
		return
	case req.P256dhKey == "":
		cerr.SetNewJSONError(ctx, opRegister, cerr.InvalidArgument, "p256dhKey is required", nil)
		return
	case req.AuthKey == "":
		cerr.SetNewJSONError(ctx, opRegister, cerr.InvalidArgument, "authKey is required", nil)
		return
	}

	// an endpoint already known is re-keyed and moved to the caller
	existing, err := s.repo.FindByEndpoint(ctx, req.Endpoint)
	switch {
	case err == nil:
		existing.UserID = actor.UserID
		existing.P256dhKey = req.P256dhKey
		existing.AuthKey = req.AuthKey
		if err := s.repo.Save(ctx, existing); err != nil {
			cerr.SetJSONError(ctx, opRegister, err)
			return
		}
		cerr.SetJSONResponse(ctx, "Register push subscription success", existing)
		return
	case !cerr.IsCode(err, cerr.NotFound):
		cerr.SetJSONError(ctx, opRegister, err)
		return
	}

	sub := &pushsubscription.Subscription{
		ID:        ulid.Make().String(),
		UserID:    actor.UserID,
		Endpoint:  req.Endpoint,
		P256dhKey: req.P256dhKey,
		AuthKey:   req.AuthKey,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		cerr.SetJSONError(ctx, opRegister, err)
		return
	}
	cerr.SetJSONResponse(ctx, "Register push subscription success", sub)
}

func (s *Server) UnregisterPushSubscription(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		cerr.SetJSONError(ctx, opUnregister, err)
		return
	}
	var req UnregisterRequest
	if err := cerr.DecodeJSONRequest(r, &req); err != nil {
		cerr.SetJSONError(ctx, opUnregister, err)
		return
	}
	if req.Endpoint == "" {
		cerr.SetNewJSONError(ctx, opUnregister, cerr.InvalidArgument, "endpoint is required", nil)
		return
	}
	sub, err := s.repo.FindByEndpoint(ctx, req.Endpoint)
	if err != nil {
		cerr.SetJSONError(ctx, opUnregister, err)
		return
	}
	if sub.UserID != actor.UserID {
		cerr.SetNewJSONError(ctx, opUnregister, cerr.NotFound, "push subscription not found", nil)
		return
	}
	if err := s.repo.Delete(ctx, sub.ID); err != nil {
		cerr.SetJSONError(ctx, opUnregister, err)
		return
	}
	cerr.SetJSONResponse(ctx, "Unregister push subscription success", nil)
}
