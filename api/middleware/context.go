package middleware

import (
	"context"

	"github.com/kaoruharada/marketcore-backend/pkg/auth"
)

type contextKey string

const ctxClaims contextKey = "claims"

// ClaimsFromContext returns the authenticated token claims, or nil.
func ClaimsFromContext(ctx context.Context) *auth.AccessTokenClaims {
	if ctx == nil {
		return nil
	}
	if claims, ok := ctx.Value(ctxClaims).(*auth.AccessTokenClaims); ok {
		return claims
	}
	return nil
}

// OperatorFromContext narrows the request claims to an operator context.
// Returns nil when the caller is unauthenticated or carries no provider.
func OperatorFromContext(ctx context.Context) *auth.OperatorClaims {
	return ClaimsFromContext(ctx).Operator()
}

// WithClaims injects token claims into the context.
func WithClaims(ctx context.Context, claims *auth.AccessTokenClaims) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxClaims, claims)
}
