package auth

import (
	"context"
	"time"

	"github.com/secmon-lab/fieldlink/pkg/domain/types"
)

// Claims are the verified contents of a session token
type Claims struct {
	AccountID types.AccountID
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type ctxClaimsKey struct{}

// ContextWithClaims stores verified claims in the request context
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, ctxClaimsKey{}, claims)
}

// ClaimsFromContext returns the claims of the authenticated caller
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ctxClaimsKey{}).(*Claims)
	if !ok || claims == nil {
		return nil, false
	}
	return claims, true
}
