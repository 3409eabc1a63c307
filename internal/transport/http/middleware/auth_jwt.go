package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"go-auth-api/internal/core/auth"
	"go-auth-api/internal/domain"
	resp "go-auth-api/internal/transport/http/response"
)

const (
	KeyClaims = "claims"
	KeyUserID = "userId"
	KeyRole   = "role"
)

// AuthJWT verifies the bearer token and attaches the identity to the
// request context. 401 on anything missing or invalid.
func AuthJWT(j *auth.JWTer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "missing token"))
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(resp.CodeInvalidToken, ""))
			return
		}
		c.Set(KeyClaims, claims)
		c.Set(KeyUserID, claims.UID)
		c.Set(KeyRole, string(claims.Role))
		c.Next()
	}
}

// RequireRole gates a route group on role membership. Must run after
// AuthJWT.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		role := domain.Role(c.GetString(KeyRole))
		if _, ok := allowed[role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, resp.Error(resp.CodeForbidden, ""))
			return
		}
		c.Next()
	}
}

// Identity pulls the authenticated claims out of the context.
func Identity(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(KeyClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}
