package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aifmhub/fund-approvals/internal/domain/approval"
)

// Identity headers set by the upstream gateway after authentication. The
// service trusts them as already verified; it never performs authentication
// itself.
const (
	HeaderTenantID = "x-aifm-tenant-id"
	HeaderUserID   = "x-aifm-user-id"
	HeaderUserName = "x-aifm-user-name"
	HeaderRole     = "x-aifm-role"
)

const (
	ctxKeyAuth     = "auth_context"
	ctxKeyTenantID = "tenant_id"
)

// identityMiddleware resolves the caller identity from the trusted headers
// into an AuthContext so the core services stay framework-agnostic.
func identityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := c.GetHeader(HeaderTenantID)
		userID := c.GetHeader(HeaderUserID)
		role := c.GetHeader(HeaderRole)

		if tenantID == "" || userID == "" || role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "missing identity headers",
			})
			return
		}

		c.Set(ctxKeyTenantID, tenantID)
		c.Set(ctxKeyAuth, approval.AuthContext{
			UserID:   userID,
			UserName: c.GetHeader(HeaderUserName),
			Role:     role,
		})
		c.Next()
	}
}

func authFrom(c *gin.Context) approval.AuthContext {
	if v, ok := c.Get(ctxKeyAuth); ok {
		if auth, ok := v.(approval.AuthContext); ok {
			return auth
		}
	}
	return approval.AuthContext{}
}

func tenantFrom(c *gin.Context) string {
	return c.GetString(ctxKeyTenantID)
}
