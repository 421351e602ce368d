package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Context keys for the authenticated account.
const (
	ContextKeyUserID = "auth_user_id"
	ContextKeyLogin  = "auth_login"
	ContextKeyRole   = "auth_role"
)

// CookieName is the cookie carrying the access token.
const CookieName = "access_token"

// RequireAuth authenticates the request from the access-token cookie
// and stores the claims in the gin context.
func RequireAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(CookieName)
		if err != nil || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		claims, err := ParseToken(secret, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token expired or invalid"})
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyLogin, claims.Login)
		c.Set(ContextKeyRole, claims.Role)
		c.Next()
	}
}

// RequireRoles allows only accounts whose role name is in the given
// set. Must run after RequireAuth.
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(c *gin.Context) {
		role := c.GetString(ContextKeyRole)
		if !allowed[role] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			return
		}
		c.Next()
	}
}

// GetUserID extracts the authenticated account id from the context.
func GetUserID(c *gin.Context) uint {
	if id, ok := c.Get(ContextKeyUserID); ok {
		if userID, ok := id.(uint); ok {
			return userID
		}
	}
	return 0
}
