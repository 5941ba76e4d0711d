package user

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kazz187/taskboard/internal/auth"
	"github.com/kazz187/taskboard/pkg/cerr"
)

const (
	opRegister       = "Create User Error"
	opConfirmEmail   = "Confirm Email Error"
	opLogin          = "Login Error"
	opList           = "Get All Users Error"
	opCurrent        = "Get Current User Error"
	opChangePassword = "Change Password Error"
	opGet            = "Get Single User Error"
	opByProject      = "Get Users By Project Error"
	opDelete         = "Delete User Error"
)

type Server struct {
	service *Service
}

func NewServer(service *Service) *Server {
	return &Server{service: service}
}

// PublicRoutes mounts the endpoints reachable without a token.
func (s *Server) PublicRoutes(r chi.Router) {
	r.Post("/users", s.Register)
	r.Get("/users/confirm_email", s.ConfirmEmail)
	r.Post("/auth/login", s.Login)
}

func (s *Server) Routes(r chi.Router) {
	r.Get("/users", s.ListUsers)
	r.Get("/users/me", s.GetCurrentUser)
	r.Put("/users/me/password", s.ChangePassword)
	r.Get("/users/projects/{projectID}", s.ListUsersByProject)
	r.Get("/users/{id}", s.GetUser)
	r.Delete("/users/{id}", s.DeleteUser)
}

func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req RegisterRequest
	if err := cerr.DecodeJSONRequest(r, &req); err != nil {
		cerr.SetJSONError(ctx, opRegister, err)
		return
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	u, err := s.service.Register(ctx, &req, scheme+"://"+r.Host+"/api/users/confirm_email")
	if err != nil {
		cerr.SetJSONError(ctx, opRegister, err)
		return
	}
	cerr.SetJSONResponse(ctx, "Create User successful", map[string]*User{"user": u})
}

func (s *Server) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	u, err := s.service.ConfirmEmail(ctx, q.Get("email"), q.Get("token"))
	if err != nil {
		cerr.SetJSONError(ctx, opConfirmEmail, err)
		return
	}
	cerr.SetJSONResponse(ctx, "Confirm Invitation Email successful", map[string]*User{"user": u})
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req LoginRequest
	if err := cerr.DecodeJSONRequest(r, &req); err != nil {
		cerr.SetJSONError(ctx, opLogin, err)
		return
	}
	res, err := s.service.Login(ctx, &req)
	if err != nil {
		cerr.SetJSONError(ctx, opLogin, err)
		return
	}
	cerr.SetJSONResponse(ctx, "Login successful", res)
}

func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	f := ListFilter{Name: q.Get("name"), Role: auth.Role(q.Get("role"))}
	users, err := s.service.List(ctx, f)
	if err != nil {
		cerr.SetJSONError(ctx, opList, err)
		return
	}
	cerr.SetJSONResponse(ctx, "Get all users success", users)
}

func (s *Server) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		cerr.SetJSONError(ctx, opCurrent, err)
		return
	}
	p, err := s.service.Get(ctx, actor.UserID)
	if err != nil {
		cerr.SetJSONError(ctx, opCurrent, err)
		return
	}
	cerr.SetJSONResponse(ctx, "Get current User success", p)
}

func (s *Server) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		cerr.SetJSONError(ctx, opChangePassword, err)
		return
	}
	var req ChangePasswordRequest
	if err := cerr.DecodeJSONRequest(r, &req); err != nil {
		cerr.SetJSONError(ctx, opChangePassword, err)
		return
	}
	u, err := s.service.ChangePassword(ctx, actor, &req)
	if err != nil {
		cerr.SetJSONError(ctx, opChangePassword, err)
		return
	}
	cerr.SetJSONResponse(ctx, "Change password success", u)
}

func (s *Server) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := s.service.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		cerr.SetJSONError(ctx, opGet, err)
		return
	}
	cerr.SetJSONResponse(ctx, "Get single user success", p)
}

func (s *Server) ListUsersByProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	users, err := s.service.ByProject(ctx, chi.URLParam(r, "projectID"))
	if err != nil {
		cerr.SetJSONError(ctx, opByProject, err)
		return
	}
	cerr.SetJSONResponse(ctx, "Get users by project success", users)
}

func (s *Server) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		cerr.SetJSONError(ctx, opDelete, err)
		return
	}
	if !actor.IsManager() {
		cerr.SetNewJSONError(ctx, opDelete, cerr.PermissionDenied, "only managers can delete users", nil)
		return
	}
	u, err := s.service.Delete(ctx, chi.URLParam(r, "id"))
	if err != nil {
		cerr.SetJSONError(ctx, opDelete, err)
		return
	}
	cerr.SetJSONResponse(ctx, "Delete user success", u)
}
