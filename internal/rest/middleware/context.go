package middleware

import (
	"context"
	"strings"

	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	"github.com/brokerdesk/brokerdesk/internal/logger"
	"github.com/brokerdesk/brokerdesk/internal/service"
	"github.com/brokerdesk/brokerdesk/internal/types"
	"github.com/gin-gonic/gin"
)

// RequestIDMiddleware assigns every request an id and binds client
// metadata (IP, user agent) into the context for downstream audit
// records.
func RequestIDMiddleware(c *gin.Context) {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REQUEST)
	}

	ctx := c.Request.Context()
	ctx = context.WithValue(ctx, types.CtxRequestID, requestID)
	ctx = context.WithValue(ctx, types.CtxClientIP, c.ClientIP())
	ctx = context.WithValue(ctx, types.CtxUserAgent, c.Request.UserAgent())

	c.Request = c.Request.WithContext(ctx)
	c.Header("X-Request-ID", requestID)
	c.Next()
}

// AuthenticateMiddleware validates the bearer token, loads the user
// and binds identity into the request context. Suspended accounts are
// rejected here, before any handler runs.
func AuthenticateMiddleware(authService service.AuthContextService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Error(ierr.NewError("missing authorization header").
				WithHint("Sign in to access this resource").
				Mark(ierr.ErrPermissionDenied))
			c.Abort()
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		claims, u, err := authService.ResolveToken(c.Request.Context(), token)
		if err != nil {
			log.Debugw("token validation failed", "error", err)
			c.Error(err)
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		ctx = context.WithValue(ctx, types.CtxUserID, claims.UserID)
		ctx = context.WithValue(ctx, types.CtxUserRole, u.Role)
		tenantID := claims.TenantID
		if tenantID == "" {
			tenantID = types.DefaultTenantID
		}
		ctx = context.WithValue(ctx, types.CtxTenantID, tenantID)

		c.Request = c.Request.WithContext(ctx)
		c.Set("user_id", claims.UserID)
		c.Set("tenant_id", tenantID)
		c.Next()
	}
}

// RequireStaff rejects customers on admin-portal routes.
func RequireStaff(c *gin.Context) {
	if !types.GetUserRole(c.Request.Context()).IsStaff() {
		c.Error(ierr.NewError("staff access required").
			WithHint("You do not have access to this resource").
			Mark(ierr.ErrPermissionDenied))
		c.Abort()
		return
	}
	c.Next()
}

// RequireAdmin rejects everyone but admins.
func RequireAdmin(c *gin.Context) {
	if types.GetUserRole(c.Request.Context()) != types.UserRoleAdmin {
		c.Error(ierr.NewError("admin access required").
			WithHint("You do not have access to this resource").
			Mark(ierr.ErrPermissionDenied))
		c.Abort()
		return
	}
	c.Next()
}
