package auth

import (
	"context"

	"github.com/google/uuid"
)

// Roles stored on users.role.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Actor is the authenticated caller resolved by the middleware.
type Actor struct {
	ID   uuid.UUID
	Role string
}

// IsAdmin reports whether the actor may act on other users' resources.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

type actorKey struct{}

// WithActor stores the actor in ctx.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFromContext returns the actor set by Authenticate, if any.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}

// PlayerID returns the actor id as a pointer, or nil for anonymous callers.
func PlayerID(ctx context.Context) *uuid.UUID {
	a, ok := ActorFromContext(ctx)
	if !ok {
		return nil
	}
	id := a.ID
	return &id
}
