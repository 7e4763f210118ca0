package handlers

import (
	"net/http"
	"strings"

	"wordsearch_arena/internal/domain"
	"wordsearch_arena/internal/http/middleware"
	"wordsearch_arena/internal/logger"
	"wordsearch_arena/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type guestRequest struct {
	Username string `json:"username"`
}

// Guest registers an anonymous player and returns the bearer credential
// used by every authenticated endpoint.
func (h *Handler) Guest(c *gin.Context) {
	var req guestRequest
	_ = c.ShouldBindJSON(&req)

	playerID := uuid.NewString()
	username := strings.TrimSpace(req.Username)
	if username == "" {
		username = "player_" + playerID[:8]
	}
	if len(username) > 32 {
		username = username[:32]
	}

	player := &domain.Player{PlayerID: playerID, Username: username}
	if err := h.players.Create(c.Request.Context(), player); err != nil {
		logger.Error("create guest player", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create player"})
		return
	}

	token, err := service.GenerateJWT(playerID)
	if err != nil {
		logger.Error("sign jwt", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"player_id": playerID,
		"username":  username,
		"token":     token,
	})
}

// WSAuth exchanges the bearer credential for a short-lived, single-use
// websocket token passed as a query parameter on the upgrade request.
func (h *Handler) WSAuth(c *gin.Context) {
	playerID, ok := middleware.PlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}

	token := uuid.NewString()
	if err := h.store.StoreWSToken(c.Request.Context(), token, playerID, h.cfg.WSTokenTTL); err != nil {
		logger.Error("store ws token", "error", err, "player_id", playerID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue ws token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ws_token":   token,
		"expires_in": int(h.cfg.WSTokenTTL.Seconds()),
	})
}
