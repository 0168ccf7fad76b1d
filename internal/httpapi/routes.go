package httpapi

import (
	"net/http"

	"storefront/internal/auth"
	"storefront/internal/rbac"

	"github.com/gin-gonic/gin"
)

// Routes registers the public, authenticated and admin route groups on r.
// Keep this free of business logic; handlers delegate to internal services.
func (h Handlers) Routes(r gin.IRouter, adminOpts ...rbac.Option) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")

	users := v1.Group("/users")
	{
		users.POST("/register", h.Register)
		users.POST("/login", h.Login)
		users.GET("/profile", auth.RequireAuth(h.Auth), h.Profile)
	}

	// Authentication always runs before the admin check.
	opts := append([]rbac.Option{rbac.OnDenied(h.auditDenied)}, adminOpts...)
	admin := v1.Group("/admin")
	admin.Use(rbac.AdminChain(h.Auth, opts...)...)
	{
		admin.GET("/users", h.AdminListUsers)
		admin.PUT("/users/:id/admin", h.AdminSetAdmin)
	}
}
