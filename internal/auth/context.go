package auth

import (
	"context"
	"errors"
)

type ctxKey int

const ctxClaims ctxKey = iota

// WithClaims attaches verified claims to ctx.
func WithClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, ctxClaims, c)
}

// ClaimsFrom returns the claims attached by the authentication gate.
func ClaimsFrom(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(ctxClaims).(Claims)
	if !ok || c.UserID == "" {
		return Claims{}, false
	}
	return c, true
}

func UserID(ctx context.Context) (string, error) {
	if c, ok := ClaimsFrom(ctx); ok {
		return c.UserID, nil
	}
	return "", errors.New("user_id not in context")
}

// IsAdmin reports whether the request was authenticated with an admin token.
// It is false when no claims are attached.
func IsAdmin(ctx context.Context) bool {
	c, ok := ClaimsFrom(ctx)
	return ok && c.IsAdmin
}
