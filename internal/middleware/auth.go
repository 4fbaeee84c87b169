package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/SugiKent/attendance-system/internal/auth"
	"github.com/SugiKent/attendance-system/internal/models"
	"github.com/SugiKent/attendance-system/pkg/errors"
	"github.com/SugiKent/attendance-system/pkg/response"
)

const (
	CtxClaimsKey    = "authClaims"
	CtxUserIDKey    = "userID"
	CtxCompanyIDKey = "companyID"
	CtxRoleKey      = "role"
)

// Auth enforces JWT authentication using the supplied JWT service.
func Auth(jwt *iauth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := bearerClaims(c, jwt)
		if !ok {
			// Normalise all validation failures to 401
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth populates identity from a bearer token when one is present but
// lets anonymous requests through. Registration uses this: an admin caller
// changes which company the new account lands in.
func OptionalAuth(jwt *iauth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := bearerClaims(c, jwt); ok {
			setClaims(c, claims)
		}
		c.Next()
	}
}

// RequireRole allows the request through only when the authenticated user
// holds one of the given roles. It must run after Auth.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := ClaimsFrom(c)
		if claims == nil {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		for _, role := range roles {
			if claims.Role == role {
				c.Next()
				return
			}
		}

		response.Error(c, errors.ErrForbidden)
		c.Abort()
	}
}

// ClaimsFrom extracts the authenticated claims from the request context, or
// nil for anonymous requests.
func ClaimsFrom(c *gin.Context) *iauth.Claims {
	value, exists := c.Get(CtxClaimsKey)
	if !exists {
		return nil
	}
	claims, _ := value.(*iauth.Claims)
	return claims
}

func bearerClaims(c *gin.Context, jwt *iauth.JWTService) (*iauth.Claims, bool) {
	authz := c.GetHeader("Authorization")
	if len(authz) < 8 || !strings.EqualFold(authz[:7], "Bearer ") {
		return nil, false
	}

	token := strings.TrimSpace(authz[7:])
	claims, err := jwt.ValidateAccessToken(token)
	if err != nil {
		return nil, false
	}
	return claims, true
}

func setClaims(c *gin.Context, claims *iauth.Claims) {
	c.Set(CtxClaimsKey, claims)
	c.Set(CtxUserIDKey, claims.UserID)
	c.Set(CtxRoleKey, string(claims.Role))
	if claims.CompanyID != nil {
		c.Set(CtxCompanyIDKey, *claims.CompanyID)
	}
}
