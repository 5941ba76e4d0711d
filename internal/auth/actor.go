// Package auth resolves who is calling: bearer-token parsing, the actor
// carried on the request context, and password hashing.
package auth

import (
	"context"

	"github.com/kazz187/taskboard/pkg/cerr"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID string
	Role   Role
}

func (a Actor) IsManager() bool {
	return a.Role == RoleManager
}

type actorKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}

// RequireActor returns the actor stored by Middleware, or Unauthenticated
// when the route was mounted without it.
func RequireActor(ctx context.Context) (Actor, error) {
	a, ok := ActorFromContext(ctx)
	if !ok || a.UserID == "" {
		return Actor{}, cerr.NewError(cerr.Unauthenticated, "login required", nil)
	}
	return a, nil
}
