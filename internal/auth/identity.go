package auth

import (
	"context"

	"memories/internal/models"
)

// Identity is the authenticated caller attached to a request.
type Identity struct {
	UserID string
	Name   string
	Role   models.Role
}

func (id Identity) IsAdmin() bool {
	return id.Role == models.RoleAdmin
}

// Define a custom context key type to avoid collisions
type identityKey struct{}

// WithIdentity saves the caller in the request context
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom retrieves the caller from the context
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok && id.UserID != ""
}
