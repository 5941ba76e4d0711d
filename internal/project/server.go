package project

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kazz187/taskboard/internal/auth"
	"github.com/kazz187/taskboard/pkg/cerr"
)

const (
	opCreate = "Create Project Error"
	opList   = "Get All Projects Error"
	opGet    = "Get Single Project Error"
)

type Server struct {
	service *Service
}

func NewServer(service *Service) *Server {
	return &Server{service: service}
}

func (s *Server) Routes(r chi.Router) {
	r.Post("/", s.CreateProject)
	r.Get("/", s.ListProjects)
	r.Get("/{id}", s.GetProject)
}

func (s *Server) CreateProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		cerr.SetJSONError(ctx, opCreate, err)
		return
	}
	var req CreateRequest
	if err := cerr.DecodeJSONRequest(r, &req); err != nil {
		cerr.SetJSONError(ctx, opCreate, err)
		return
	}
	p, err := s.service.Create(ctx, actor, &req)
	if err != nil {
		cerr.SetJSONError(ctx, opCreate, err)
		return
	}
	cerr.SetJSONResponse(ctx, "Create project success", p)
}

func (s *Server) ListProjects(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ps, err := s.service.List(ctx)
	if err != nil {
		cerr.SetJSONError(ctx, opList, err)
		return
	}
	cerr.SetJSONResponse(ctx, "Get all projects success", ps)
}

func (s *Server) GetProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := s.service.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		cerr.SetJSONError(ctx, opGet, err)
		return
	}
	cerr.SetJSONResponse(ctx, "Get single project success", p)
}
