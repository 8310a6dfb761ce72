package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/serendigo/serendigo-backend-go/internal/service"
	"github.com/serendigo/serendigo-backend-go/pkg/response"
)

const claimsKey = "claims"

// TokenParser validates session tokens.
type TokenParser interface {
	Parse(token string) (*service.Claims, error)
}

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(p TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := p.Parse(bearerToken(c))
		if err != nil {
			response.Unauthorized(c, "ログインが必要です")
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// OptionalAuth attaches claims when a valid token is present and lets
// anonymous requests through.
func OptionalAuth(p TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if claims, err := p.Parse(token); err == nil {
				c.Set(claimsKey, claims)
			}
		}
		c.Next()
	}
}

// ClaimsFrom returns the caller's claims, nil for anonymous requests.
func ClaimsFrom(c *gin.Context) *service.Claims {
	if v, ok := c.Get(claimsKey); ok {
		if claims, ok := v.(*service.Claims); ok {
			return claims
		}
	}
	return nil
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
