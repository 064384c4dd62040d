package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextUserIDKey is where the middleware stores the authenticated
// account id on the gin context.
const ContextUserIDKey = "auth_user_id"

// Middleware requires a valid Bearer session token. A missing or
// invalid identity is a session error; the chat surface never creates
// identities implicitly.
func Middleware(tokens *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		userID, err := tokens.Verify(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
			return
		}

		c.Set(ContextUserIDKey, userID)
		c.Next()
	}
}

// UserID extracts the authenticated account id set by Middleware.
func UserID(c *gin.Context) (string, bool) {
	id, ok := c.Get(ContextUserIDKey)
	if !ok {
		return "", false
	}
	s, ok := id.(string)
	return s, ok && s != ""
}
