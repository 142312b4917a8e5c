package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// getClientIP resolves the address used for rate limiting. Telephony webhooks
// arrive through the provider's proxy fleet, so the forwarded chain is
// consulted before the socket address; entries that do not parse as an IP are
// skipped rather than trusted.
func getClientIP(c *gin.Context) string {
	for _, hop := range strings.Split(c.GetHeader("X-Forwarded-For"), ",") {
		hop = strings.TrimSpace(hop)
		if net.ParseIP(hop) != nil {
			return hop
		}
	}

	if xri := strings.TrimSpace(c.GetHeader("X-Real-IP")); net.ParseIP(xri) != nil {
		return xri
	}

	if host, _, err := net.SplitHostPort(c.Request.RemoteAddr); err == nil {
		return host
	}
	return c.Request.RemoteAddr
}
