package ws

import (
	"context"
	"net/http"
	"os"

	"wordsearch_arena/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// TokenConsumer resolves a single-use connection token to a player id,
// invalidating it in the same call.
type TokenConsumer interface {
	ConsumeWSToken(ctx context.Context, token string) (string, error)
}

// UsernameResolver looks up a player's display name.
type UsernameResolver interface {
	Username(ctx context.Context, playerID string) string
}

// HandleGameSocket upgrades a session-scoped connection. The short-lived
// token (obtained via /ws-auth) is consumed on first use; a reused or
// expired token never reaches the upgrade.
func HandleGameSocket(registry *Registry, tokens TokenConsumer, usernames UsernameResolver) gin.HandlerFunc {
	allowedOrigin := os.Getenv("ALLOWED_ORIGIN")
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	return func(c *gin.Context) {
		gameID := c.Param("id")
		token := c.Query("token")
		if gameID == "" || token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}

		playerID, err := tokens.ConsumeWSToken(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		username := usernames.Username(c.Request.Context(), playerID)

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", "error", err)
			return
		}

		client := NewClient(playerID, username, conn)
		registry.Join(gameID, client)
		client.Run()
	}
}
