package middleware

import (
	"net"      // Host/port splitting
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"github.com/gin-gonic/gin" // Gin web framework
)

// AllowedHostsMiddleware rejects requests whose Host header is not listed.
// "*" allows every host; a leading dot matches the domain and its subdomains.
func AllowedHostsMiddleware(hosts []string) gin.HandlerFunc {
	allowAll := len(hosts) == 0
	for _, h := range hosts {
		if h == "*" {
			allowAll = true
		}
	}
	return func(c *gin.Context) {
		if allowAll {
			c.Next()
			return
		}
		host := c.Request.Host
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
		host = strings.ToLower(host)
		for _, allowed := range hosts {
			allowed = strings.ToLower(allowed)
			if host == allowed || (strings.HasPrefix(allowed, ".") && (host == allowed[1:] || strings.HasSuffix(host, allowed))) {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid host header"})
	}
}
