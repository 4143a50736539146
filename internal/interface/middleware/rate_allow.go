package middleware

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-user-lifecycle/pkg/response"
)

// AllowPrivateIP reports whether the client address is loopback or in a
// private range. Used both as a rate-limit bypass and as a route guard.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		parsed := net.ParseIP(ipFromCtx(c))
		if parsed == nil {
			return false
		}
		return parsed.IsLoopback() || parsed.IsPrivate()
	}
}

// PrivateOnly rejects requests from public addresses.
func PrivateOnly() gin.HandlerFunc {
	allow := AllowPrivateIP()
	return func(c *gin.Context) {
		if !allow(c) {
			response.Abort(c, response.Error[any](c, http.StatusForbidden, "forbidden", nil))
			return
		}
		c.Next()
	}
}
