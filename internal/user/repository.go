package user

import (
	"context"

	"github.com/kazz187/taskboard/internal/auth"
)

type ListFilter struct {
	Name string
	Role auth.Role
}

type Repository interface {
	Create(ctx context.Context, u *User) error
	Get(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	// FindByName returns the first user whose name contains pattern,
	// ignoring case.
	FindByName(ctx context.Context, pattern string) (*User, error)
	// List returns users newest first.
	List(ctx context.Context, f ListFilter) ([]*User, error)
	Save(ctx context.Context, u *User) error
}
