package user

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/kazz187/taskboard/internal/auth"
	"github.com/kazz187/taskboard/pkg/cerr"
)

// TaskSummaries expands task ids into summaries.
type TaskSummaries interface {
	Summaries(ctx context.Context, ids []string) ([]TaskSummary, error)
}

// ProjectMembers resolves the member ids of a project.
type ProjectMembers interface {
	MemberIDs(ctx context.Context, projectID string) ([]string, error)
}

type TokenIssuer interface {
	Issue(userID string, role auth.Role) (string, error)
}

// Profile is a user with its responsibilities expanded.
type Profile struct {
	*User
	ResponsibleFor []TaskSummary `json:"responsibleFor"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	User        *User  `json:"user"`
	AccessToken string `json:"accessToken"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type Service struct {
	repo    Repository
	tasks   TaskSummaries
	members ProjectMembers
	hasher  auth.PasswordHasher
	tokens  TokenIssuer
	now     func() time.Time
}

func NewService(repo Repository, tasks TaskSummaries, members ProjectMembers, hasher auth.PasswordHasher, tokens TokenIssuer) *Service {
	return &Service{
		repo:    repo,
		tasks:   tasks,
		members: members,
		hasher:  hasher,
		tokens:  tokens,
		now:     time.Now,
	}
}

// Add creates a user directly, bypassing email confirmation.
func (s *Service) Add(ctx context.Context, name, email, password string, role auth.Role) (*User, error) {
	if !role.Valid() {
		return nil, cerr.NewError(cerr.InvalidArgument, "invalid role", nil)
	}
	u, err := s.newUser(name, email, password, role)
	if err != nil {
		return nil, err
	}
	u.IsVerified = true
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Register signs up an employee account that stays unverified until the
// confirmation token is presented.
func (s *Service) Register(ctx context.Context, req *RegisterRequest, confirmURL string) (*User, error) {
	u, err := s.newUser(req.Name, req.Email, req.Password, auth.RoleEmployee)
	if err != nil {
		return nil, err
	}
	token, err := newConfirmToken()
	if err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", err)
	}
	u.ConfirmToken = token
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	// no mail transport; the link goes to the log
	slog.InfoContext(ctx, "user registered", "user_id", u.ID, "confirm_url",
		confirmURL+"?"+url.Values{"email": {u.Email}, "token": {token}}.Encode())
	return u, nil
}

func (s *Service) newUser(name, email, password string, role auth.Role) (*User, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, cerr.NewError(cerr.InvalidArgument, "name, email and password are required", nil)
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", err)
	}
	now := s.now()
	return &User{
		ID:             ulid.Make().String(),
		Name:           name,
		Email:          email,
		Password:       hash,
		Role:           role,
		ResponsibleFor: []string{},
		MemberOf:       []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func newConfirmToken() (string, error) {
	b := make([]byte, 48)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate confirm token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (s *Service) ConfirmEmail(ctx context.Context, email, token string) (*User, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u.ConfirmToken == "" || token != u.ConfirmToken {
		return nil, cerr.NewError(cerr.NotFound, "user not found", nil)
	}
	u.IsVerified = true
	u.ConfirmToken = ""
	u.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Login(ctx context.Context, req *LoginRequest) (*LoginResult, error) {
	u, err := s.repo.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if cerr.IsCode(err, cerr.NotFound) {
			return nil, cerr.NewError(cerr.Unauthenticated, "wrong email or password", err)
		}
		return nil, err
	}
	if u.IsDeleted {
		return nil, cerr.NewError(cerr.Unauthenticated, "wrong email or password", nil)
	}
	if err := s.hasher.Compare(u.Password, req.Password); err != nil {
		return nil, cerr.NewError(cerr.Unauthenticated, "wrong email or password", err)
	}
	if !u.IsVerified {
		return nil, cerr.NewError(cerr.PermissionDenied, "email not verified", nil)
	}
	token, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", err)
	}
	return &LoginResult{User: u, AccessToken: token}, nil
}

func (s *Service) ChangePassword(ctx context.Context, actor auth.Actor, req *ChangePasswordRequest) (*User, error) {
	if req.NewPassword == "" {
		return nil, cerr.NewError(cerr.InvalidArgument, "new password is required", nil)
	}
	u, err := s.repo.Get(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.hasher.Compare(u.Password, req.CurrentPassword); err != nil {
		return nil, cerr.NewError(cerr.InvalidArgument, "wrong current password", err)
	}
	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", err)
	}
	u.Password = hash
	u.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]*Profile, error) {
	users, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	profiles := make([]*Profile, 0, len(users))
	for _, u := range users {
		p, err := s.profile(ctx, u)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Profile, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.profile(ctx, u)
}

func (s *Service) ByProject(ctx context.Context, projectID string) ([]*User, error) {
	ids, err := s.members.MemberIDs(ctx, projectID)
	if err != nil {
		return nil, err
	}
	users := make([]*User, 0, len(ids))
	for _, id := range ids {
		u, err := s.repo.Get(ctx, id)
		if err != nil {
			if cerr.IsCode(err, cerr.NotFound) {
				continue
			}
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// Delete tombstones the user.
func (s *Service) Delete(ctx context.Context, id string) (*User, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	u.IsDeleted = true
	u.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) profile(ctx context.Context, u *User) (*Profile, error) {
	p := &Profile{User: u, ResponsibleFor: []TaskSummary{}}
	if s.tasks == nil || len(u.ResponsibleFor) == 0 {
		return p, nil
	}
	summaries, err := s.tasks.Summaries(ctx, u.ResponsibleFor)
	if err != nil {
		return nil, err
	}
	p.ResponsibleFor = summaries
	return p, nil
}
