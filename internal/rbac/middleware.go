package rbac

import (
	"net/http"

	"storefront/internal/auth"
	"storefront/pkg/logger"

	"github.com/gin-gonic/gin"
)

// DeniedFunc observes a rejected admin request. hasClaims is false when the gate
// ran without a preceding authentication gate.
type DeniedFunc func(c *gin.Context, claims auth.Claims, hasClaims bool)

type options struct {
	deniedStatus int
	onDenied     DeniedFunc
}

type Option func(*options)

// WithForbiddenStatus answers privilege failures with 403 instead of 401.
func WithForbiddenStatus() Option {
	return func(o *options) { o.deniedStatus = http.StatusForbidden }
}

// OnDenied registers a hook called before the rejection is written.
func OnDenied(fn DeniedFunc) Option {
	return func(o *options) { o.onDenied = fn }
}

// RequireAdmin allows the request only if the claims attached by auth.RequireAuth
// carry the admin flag. It cannot decode tokens itself: without claims in context
// it always rejects. Use AdminChain to get both gates in the right order.
func RequireAdmin(opts ...Option) gin.HandlerFunc {
	o := options{deniedStatus: http.StatusUnauthorized}
	for _, fn := range opts {
		fn(&o)
	}

	return func(c *gin.Context) {
		claims, ok := auth.ClaimsFrom(c.Request.Context())
		if ok && claims.IsAdmin {
			c.Next()
			return
		}

		logger.FromGin(c).Debug("request rejected", "reason", "insufficient_privilege", "has_claims", ok)
		if o.onDenied != nil {
			o.onDenied(c, claims, ok)
		}
		c.AbortWithStatusJSON(o.deniedStatus, gin.H{"error": "admin token required"})
	}
}

// AdminChain returns the authentication gate followed by the authorization gate.
func AdminChain(m *auth.Manager, opts ...Option) []gin.HandlerFunc {
	return []gin.HandlerFunc{auth.RequireAuth(m), RequireAdmin(opts...)}
}
