package contracts

import (
	"context"

	"github.com/google/uuid"
)

// Principal is the authenticated caller of one request
type Principal struct {
	UserID   uuid.UUID
	Email    string
	Name     string
	Role     Role
	JobTitle JobTitle
}

type principalKey struct{}

// WithPrincipal attaches the caller to the request context
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the caller attached to ctx
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// IsAdmin reports whether the principal has the ADMIN role
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Require fails with an AuthorizationError unless the principal holds one of roles
func (p Principal) Require(action string, roles ...Role) error {
	for _, r := range roles {
		if p.Role == r {
			return nil
		}
	}
	return &AuthorizationError{Action: action, Role: p.Role}
}

// RequireSelfOrAdmin allows ADMIN or the user identified by userID
func (p Principal) RequireSelfOrAdmin(action string, userID uuid.UUID) error {
	if p.IsAdmin() || p.UserID == userID {
		return nil
	}
	return &AuthorizationError{Action: action, Role: p.Role}
}

// ActorID returns the caller's user id, or uuid.Nil without a principal
func ActorID(ctx context.Context) uuid.UUID {
	p, _ := PrincipalFrom(ctx)
	return p.UserID
}
