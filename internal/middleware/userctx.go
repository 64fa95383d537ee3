package middleware

import (
	"context"

	"github.com/minbank/ledger-service/internal/models"
)

type userKey struct{}

// Principal is the authenticated caller the auth middleware hands to
// the handlers: identity plus role, nothing else.
type Principal struct {
	Username string
	Role     models.Role
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, userKey{}, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(userKey{}).(Principal)
	return p, ok
}
