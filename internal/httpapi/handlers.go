package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"storefront/internal/audit"
	"storefront/internal/auth"
	"storefront/internal/rbac"
	"storefront/internal/user"
	"storefront/pkg/logger"

	"github.com/gin-gonic/gin"
)

// AttemptLimiter throttles repeated login attempts per key.
// *utils.AttemptLimiter satisfies it.
type AttemptLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Auth    *auth.Manager
	Users   *user.Service
	Audit   *audit.Service
	Limiter AttemptLimiter

	// Now defaults to time.Now; tests pin it.
	Now func() time.Time
}

type sessionResponse struct {
	User  user.User `json:"user"`
	Token string    `json:"token"`
}

// --- Users ---

func (h Handlers) Register(c *gin.Context) {
	if h.Auth == nil || h.Users == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "users not configured"})
		return
	}
	var req user.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	ctx := c.Request.Context()
	u, err := h.Users.Register(ctx, req)
	switch {
	case errors.Is(err, user.ErrInvalidArgument):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "name, valid email and a password of 6 to 72 bytes required"})
		return
	case errors.Is(err, user.ErrEmailTaken):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "email already registered"})
		return
	case err != nil:
		logger.FromGin(c).Error("register failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}

	tok, err := h.Auth.Issue(h.now(), u.Identity())
	if err != nil {
		logger.FromGin(c).Error("token issuance failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}

	h.Audit.LogRegister(ctx, u.ID, c.ClientIP())
	c.JSON(http.StatusCreated, sessionResponse{User: u, Token: tok})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login checks credentials and issues a session token.
// The attempt limiter fails open: a Redis outage must not lock every customer out.
func (h Handlers) Login(c *gin.Context) {
	if h.Auth == nil || h.Users == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "users not configured"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "email and password required"})
		return
	}

	ctx := c.Request.Context()
	ip := c.ClientIP()
	key := strings.ToLower(strings.TrimSpace(req.Email)) + ":" + ip

	if h.Limiter != nil {
		ok, err := h.Limiter.Allow(ctx, key)
		if err != nil {
			logger.FromGin(c).Warn("login limiter unavailable", "err", err)
		} else if !ok {
			h.Audit.LogLoginFailed(ctx, req.Email, ip, "rate_limited")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many login attempts"})
			return
		}
	}

	u, err := h.Users.Authenticate(ctx, req.Email, req.Password)
	if errors.Is(err, user.ErrInvalidCredentials) {
		h.Audit.LogLoginFailed(ctx, req.Email, ip, "invalid_credentials")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}
	if err != nil {
		logger.FromGin(c).Error("login failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	tok, err := h.Auth.Issue(h.now(), u.Identity())
	if err != nil {
		logger.FromGin(c).Error("token issuance failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}

	if h.Limiter != nil {
		if err := h.Limiter.Reset(ctx, key); err != nil {
			logger.FromGin(c).Warn("login limiter reset failed", "err", err)
		}
	}
	h.Audit.LogLogin(ctx, u.ID, rbac.RoleOf(u.IsAdmin), ip)
	c.JSON(http.StatusOK, sessionResponse{User: u, Token: tok})
}

// Profile answers from the token's claims; it does not hit the database.
func (h Handlers) Profile(c *gin.Context) {
	claims, ok := auth.ClaimsFrom(c.Request.Context())
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	c.JSON(http.StatusOK, claims.Identity())
}

// --- Admin ---

func (h Handlers) AdminListUsers(c *gin.Context) {
	if h.Users == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "users not configured"})
		return
	}
	users, err := h.Users.List(c.Request.Context())
	if err != nil {
		logger.FromGin(c).Error("list users failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "list users failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

type setAdminRequest struct {
	IsAdmin *bool `json:"is_admin"`
}

// AdminSetAdmin grants or revokes the admin flag. Tokens already issued to the
// target keep their old flag until they log in again.
func (h Handlers) AdminSetAdmin(c *gin.Context) {
	if h.Users == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "users not configured"})
		return
	}
	var req setAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsAdmin == nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "is_admin required"})
		return
	}

	ctx := c.Request.Context()
	targetID := c.Param("id")
	u, err := h.Users.SetAdmin(ctx, targetID, *req.IsAdmin)
	switch {
	case errors.Is(err, user.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	case errors.Is(err, user.ErrInvalidArgument):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user id required"})
		return
	case err != nil:
		logger.FromGin(c).Error("set admin failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "privilege change failed"})
		return
	}

	actorID, _ := auth.UserID(ctx)
	h.Audit.LogPrivilegeChange(ctx, actorID, u.ID, c.ClientIP(), u.IsAdmin)
	c.JSON(http.StatusOK, u)
}

func (h Handlers) now() time.Time {
	if h.Now == nil {
		return time.Now()
	}
	return h.Now()
}

// auditDenied records admin gate rejections.
func (h Handlers) auditDenied(c *gin.Context, claims auth.Claims, hasClaims bool) {
	role := ""
	if hasClaims {
		role = rbac.RoleOfClaims(claims)
	}
	h.Audit.LogAccessDenied(c.Request.Context(), claims.UserID, role, c.ClientIP(), c.FullPath())
}
