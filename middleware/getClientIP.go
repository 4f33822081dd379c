package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// TrustForwardedFor makes the rate limiter key on X-Forwarded-For and
// X-Real-IP. Leave it off unless the simulator sits behind a proxy.
var TrustForwardedFor = false

func getClientIP(c *gin.Context) string {
	if TrustForwardedFor {
		// The header may contain a comma-separated list of IPs. Use the first one.
		if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
			if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
				return first
			}
		}
		if xri := strings.TrimSpace(c.GetHeader("X-Real-IP")); xri != "" {
			return xri
		}
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	// RemoteAddr might be in "ip:port" format; strip the port if present.
	if host, _, err := net.SplitHostPort(c.Request.RemoteAddr); err == nil {
		return host
	}
	return c.Request.RemoteAddr
}
