package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/pkg/helpers"
)

// Context keys set by BearerClaims.
const (
	CtxClaimsKey    = "claims"
	CtxUsernameKey  = "username"
	CtxUserEmailKey = "userEmail"
	CtxUserRoleKey  = "userRole"
)

// TokenParser validates an access token and returns its claims.
type TokenParser interface {
	ParseAccessToken(token string) (*helpers.Claims, error)
}

// BearerClaims reads "Authorization: Bearer <token>" and, when the token
// verifies, puts its claims on the context. It never aborts: handlers decide
// what a missing claim means.
func BearerClaims(jwt TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.Next()
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			c.Next()
			return
		}
		c.Set(CtxClaimsKey, claims)
		c.Set(CtxUsernameKey, claims.Username())
		c.Set(CtxUserEmailKey, claims.Email)
		c.Set(CtxUserRoleKey, claims.Role)
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
