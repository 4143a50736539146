package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// RealIPKey is the gin context key RealIP writes to.
const RealIPKey = "real_ip"

// forwardedIP returns the first parseable address from the proxy headers.
// CF-Connecting-IP wins over the left-most X-Forwarded-For entry.
func forwardedIP(c *gin.Context) (string, bool) {
	candidates := []string{c.GetHeader("CF-Connecting-IP")}
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		candidates = append(candidates, first)
	}
	for _, raw := range candidates {
		if ip := net.ParseIP(strings.TrimSpace(raw)); ip != nil {
			return ip.String(), true
		}
	}
	return "", false
}

// RealIP stores the client address for the rate limiter and PrivateOnly.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip, ok := forwardedIP(c)
		if !ok {
			ip = c.ClientIP()
		}
		c.Set(RealIPKey, ip)
		c.Next()
	}
}
