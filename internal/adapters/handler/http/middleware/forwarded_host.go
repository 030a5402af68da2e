package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// ForwardedHost fills in X-Forwarded-Host and X-Forwarded-Proto for requests
// reaching the service through a public host, so redirects and absolute URLs
// built downstream point at publicHost. Headers already set by the proxy win.
func ForwardedHost(publicHost string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if publicHost == "" || strings.Contains(c.Request.Host, "localhost") {
			c.Next()
			return
		}

		h := c.Request.Header
		if h.Get("X-Forwarded-Host") == "" {
			h.Set("X-Forwarded-Host", publicHost)
		}
		if h.Get("X-Forwarded-Proto") == "" {
			h.Set("X-Forwarded-Proto", "https")
		}
		c.Next()
	}
}
