package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/voucher-flow/internal/application/service"
	"github.com/garyjia/voucher-flow/internal/domain/entity"
)

// authMiddleware resolves the bearer token and stores the user in the
// request context
func authMiddleware(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Success: false, Error: "authentication required"})
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Success: false, Error: "invalid or expired token"})
			return
		}

		c.Request = c.Request.WithContext(service.WithCurrentUser(c.Request.Context(), user))
		c.Next()
	}
}

// requireRole rejects users that hold none of roles
func requireRole(roles ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := service.CurrentUser(c.Request.Context())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Success: false, Error: "authentication required"})
			return
		}
		if !roleIn(user.Role, roles) {
			c.AbortWithStatusJSON(http.StatusForbidden, Response{Success: false, Error: "role not permitted"})
			return
		}
		c.Next()
	}
}
