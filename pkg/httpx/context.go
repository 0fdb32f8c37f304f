package httpx

import (
	"context"
	"slices"

	"github.com/aussiebroadwan/escritorio/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeyUserID ctxKey = "user_id"
	CtxKeyClaims ctxKey = "claims"
)

// Principal is the authenticated caller as seen by handlers.
type Principal struct {
	UserID   string
	Username string
	Name     string
	Role     string
	ClientID string // set for client portal users only
	Scopes   []string
}

// HasScope reports whether the principal was granted scope.
func (p Principal) HasScope(scope string) bool {
	return slices.Contains(p.Scopes, scope)
}

// IsPortal reports whether the caller is a client portal user.
func (p Principal) IsPortal() bool {
	return p.ClientID != ""
}

// PrincipalFromContext returns the principal stored by AuthnMiddleware.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	c, ok := ctx.Value(CtxKeyClaims).(jwtx.Claims)
	if !ok {
		return Principal{}, false
	}
	return Principal{
		UserID:   c.Subject,
		Username: c.Username,
		Name:     c.PreferredName,
		Role:     c.Role,
		ClientID: c.ClientID,
		Scopes:   c.Scopes,
	}, true
}

// ContextWithClaims stores verified claims on ctx.
func ContextWithClaims(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	return context.WithValue(ctx, CtxKeyClaims, c)
}

func scopesFromCtx(ctx context.Context) []string {
	if c, ok := ctx.Value(CtxKeyClaims).(jwtx.Claims); ok {
		return c.Scopes
	}
	return nil
}
