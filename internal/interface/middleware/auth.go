package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-user-lifecycle/pkg/helpers"
	"github.com/oksasatya/go-user-lifecycle/pkg/response"
)

const (
	CtxUserIDKey = "userID"
	CtxRoleKey   = "role"
)

// Auth validates the Authorization bearer token and sets userID and role in
// the Gin context on success.
func Auth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			response.Abort(c, response.Error[any](c, http.StatusUnauthorized, "missing bearer token", nil))
			return
		}
		claims, err := jwt.ParseToken(strings.TrimSpace(token))
		if err != nil {
			response.Abort(c, response.Error[any](c, http.StatusUnauthorized, "invalid bearer token", err.Error()))
			return
		}
		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxRoleKey, claims.Role)
		c.Next()
	}
}

// RequireOperator rejects callers whose token does not carry the operator role.
// It must run after Auth.
func RequireOperator() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsOperator(c) {
			response.Abort(c, response.Error[any](c, http.StatusForbidden, "operator role required", nil))
			return
		}
		c.Next()
	}
}

func IsOperator(c *gin.Context) bool {
	return c.GetString(CtxRoleKey) == helpers.RoleOperator
}
