package auth

import (
	"context"
)

type claimsKey struct{}

func SetUserClaims(ctx context.Context, claims *UserClaims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// GetUserClaims returns the caller set by the auth middleware, or nil.
// The nil claims answer every role check with false.
func GetUserClaims(ctx context.Context) *UserClaims {
	claims, _ := ctx.Value(claimsKey{}).(*UserClaims)
	return claims
}
