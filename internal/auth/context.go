package auth

import "context"

type ctxKey int

const claimsKey ctxKey = 0

// ContextWithClaims attaches verified access claims to the request context.
func ContextWithClaims(ctx context.Context, claims *AccessClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext returns the verified claims, if any.
func ClaimsFromContext(ctx context.Context) (*AccessClaims, bool) {
	claims, ok := ctx.Value(claimsKey).(*AccessClaims)
	return claims, ok && claims != nil
}

// IsSystemActor reports whether the context carries a system access token.
func IsSystemActor(ctx context.Context) bool {
	claims, ok := ClaimsFromContext(ctx)
	return ok && claims.IsSys
}
