package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SugiKent/attendance-system/internal/auth"
	"github.com/SugiKent/attendance-system/internal/middleware"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

func callerClaims(c *gin.Context) *auth.Claims {
	return middleware.ClaimsFrom(c)
}

// monthQuery parses the ?month=YYYY-MM query parameter, defaulting to the
// current month.
func monthQuery(c *gin.Context) (time.Time, error) {
	raw := c.Query("month")
	if raw == "" {
		return time.Now(), nil
	}
	return time.Parse("2006-01", raw)
}
