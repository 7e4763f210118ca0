package middleware

import (
	"net/http"
	"strings"

	"wordsearch_arena/internal/service"

	"github.com/gin-gonic/gin"
)

// JWT authenticates the long-lived credential and stores the resolved
// player id on the request context.
func JWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}

		playerID, err := service.ResolvePlayerID(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("player_id", playerID)
		c.Next()
	}
}

// PlayerID extracts the authenticated player id set by JWT().
func PlayerID(c *gin.Context) (string, bool) {
	v, ok := c.Get("player_id")
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}
