package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORSConfig controls which cross-origin requests the API accepts.
type CORSConfig struct {
	AllowedOrigins []string
}

// CORS answers preflight requests and stamps the response headers browsers
// require for cross-origin calls. With no configured origins every origin is
// allowed, which suits local development.
func CORS(opts ...CORSConfig) gin.HandlerFunc {
	allowed := map[string]struct{}{}
	if len(opts) > 0 {
		for _, origin := range opts[0].AllowedOrigins {
			origin = strings.TrimRight(strings.TrimSpace(origin), "/")
			if origin != "" {
				allowed[origin] = struct{}{}
			}
		}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		switch {
		case len(allowed) == 0:
			c.Header("Access-Control-Allow-Origin", "*")
		case origin != "":
			if _, ok := allowed[strings.TrimRight(origin, "/")]; ok {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
				c.Header("Access-Control-Allow-Credentials", "true")
			}
		}

		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Company-ID")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
