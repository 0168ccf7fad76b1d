package auth

import (
	"errors"
	"net/http"
	"strings"

	"storefront/pkg/logger"

	"github.com/gin-gonic/gin"
)

const authorizationHeader = "Authorization"
const bearerPrefix = "bearer "

// Gin context keys set by RequireAuth for handler convenience.
const (
	ClaimsKey = "claims"
	UserIDKey = "user_id"
)

// RequireAuth verifies the request's token and injects its claims into the request
// context. It does not check privileges; that belongs to internal/rbac, chained after it.
func RequireAuth(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, err := BearerToken(c.GetHeader(authorizationHeader))
		if err != nil {
			reject(c, err)
			return
		}

		claims, err := m.Verify(tok, m.now())
		if err != nil {
			reject(c, err)
			return
		}

		ctx := WithClaims(c.Request.Context(), claims)
		c.Request = c.Request.WithContext(ctx)

		c.Set(ClaimsKey, claims)
		c.Set(UserIDKey, claims.UserID)

		c.Next()
	}
}

// BearerToken extracts the credential from an Authorization header value.
// Both "Bearer <token>" (any case) and a bare token are accepted.
func BearerToken(header string) (string, error) {
	v := strings.TrimSpace(header)
	if v == "" {
		return "", ErrMissingCredential
	}
	if strings.EqualFold(v, strings.TrimSpace(bearerPrefix)) {
		return "", ErrInvalidToken
	}
	if len(v) >= len(bearerPrefix) && strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		v = strings.TrimSpace(v[len(bearerPrefix):])
	}
	if v == "" {
		return "", ErrInvalidToken
	}
	return v, nil
}

// reject answers 401 for both failure kinds; the log line keeps them apart.
func reject(c *gin.Context, err error) {
	reason, msg := "invalid_token", "invalid token"
	if errors.Is(err, ErrMissingCredential) {
		reason, msg = "missing_credential", "missing token"
	}
	logger.FromGin(c).Debug("request rejected", "reason", reason, "err", err)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}
