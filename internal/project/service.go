package project

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/kazz187/taskboard/internal/auth"
	"github.com/kazz187/taskboard/pkg/cerr"
)

type CreateRequest struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	IncludeMembers []string `json:"includeMembers"`
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Create adds a project. Only managers may create projects; the creator
// joins as a member.
func (s *Service) Create(ctx context.Context, actor auth.Actor, req *CreateRequest) (*Project, error) {
	if !actor.IsManager() {
		return nil, cerr.NewError(cerr.PermissionDenied, "only managers can create projects", nil)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, cerr.NewError(cerr.InvalidArgument, "project name is required", nil)
	}
	members := slices.Clone(req.IncludeMembers)
	if !slices.Contains(members, actor.UserID) {
		members = append(members, actor.UserID)
	}
	now := s.now()
	p := &Project{
		ID:             ulid.Make().String(),
		Name:           name,
		Description:    req.Description,
		IncludeTasks:   []string{},
		IncludeMembers: members,
		CreatedBy:      actor.UserID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Project, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Project, error) {
	return s.repo.List(ctx)
}

func (s *Service) MemberIDs(ctx context.Context, projectID string) ([]string, error) {
	p, err := s.repo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return p.IncludeMembers, nil
}
