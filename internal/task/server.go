package task

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kazz187/taskboard/internal/auth"
	"github.com/kazz187/taskboard/pkg/cerr"
)

const (
	opCreate        = "Create Task Error"
	opList          = "Get All Tasks Error"
	opListByProject = "Get Tasks By Project Error"
	opGet           = "Get Single Task Error"
	opDelete        = "Delete Task Error"
	opEdit          = "Edit Task Error"
)

type Server struct {
	service *Service
}

func NewServer(service *Service) *Server {
	return &Server{service: service}
}

// Routes mounts the task endpoints on r. Callers install the auth
// middleware.
func (s *Server) Routes(r chi.Router) {
	r.Post("/", s.CreateTask)
	r.Get("/", s.ListTasks)
	r.Get("/projects/{projectID}", s.ListTasksByProject)
	r.Get("/{id}", s.GetTask)
	r.Delete("/{id}", s.DeleteTask)
	r.Put("/{id}", s.EditTask)
}

func (s *Server) CreateTask(w http.ResponseWriter, r *http.Request) {
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
	t, err := s.service.Create(ctx, actor, &req)
	if err != nil {
		cerr.SetJSONError(ctx, opCreate, err)
		return
	}
	cerr.SetJSONResponse(ctx, "Create task success", t)
}

func (s *Server) ListTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		cerr.SetJSONError(ctx, opList, err)
		return
	}
	res, err := s.service.List(ctx, actor, ParseQuery(r.URL.Query()))
	if err != nil {
		cerr.SetJSONError(ctx, opList, err)
		return
	}
	cerr.SetJSONResponse(ctx, "Get all tasks success", res)
}

func (s *Server) ListTasksByProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	views, err := s.service.ListByProject(ctx, chi.URLParam(r, "projectID"))
	if err != nil {
		cerr.SetJSONError(ctx, opListByProject, err)
		return
	}
	cerr.SetJSONResponse(ctx, "Get tasks by project success", views)
}

func (s *Server) GetTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	v, err := s.service.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		cerr.SetJSONError(ctx, opGet, err)
		return
	}
	cerr.SetJSONResponse(ctx, "Get single task success", v)
}

func (s *Server) DeleteTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	t, err := s.service.Delete(ctx, chi.URLParam(r, "id"))
	if err != nil {
		cerr.SetJSONError(ctx, opDelete, err)
		return
	}
	cerr.SetJSONResponse(ctx, "Delete task success", t)
}

func (s *Server) EditTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		cerr.SetJSONError(ctx, opEdit, err)
		return
	}
	var req EditRequest
	if err := cerr.DecodeJSONRequest(r, &req); err != nil {
		cerr.SetJSONError(ctx, opEdit, err)
		return
	}
	v, err := s.service.Edit(ctx, actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		cerr.SetJSONError(ctx, opEdit, err)
		return
	}
	cerr.SetJSONResponse(ctx, "Update task success", v)
}
