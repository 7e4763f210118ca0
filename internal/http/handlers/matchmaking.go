package handlers

import (
	"errors"
	"net/http"

	"wordsearch_arena/internal/domain"
	"wordsearch_arena/internal/http/middleware"
	"wordsearch_arena/internal/logger"
	"wordsearch_arena/internal/state"

	"github.com/gin-gonic/gin"
)

type queueRequest struct {
	GameType string `json:"game_type"`
}

func parseGameType(raw string) (domain.GameType, bool) {
	if raw == "" {
		return domain.GameTypeWordSearch, true
	}
	for _, gt := range domain.AllGameTypes {
		if string(gt) == raw {
			return gt, true
		}
	}
	return "", false
}

// JoinQueue puts the player into the matchmaking queue for a game type.
// Joining twice is reported, not duplicated.
func (h *Handler) JoinQueue(c *gin.Context) {
	playerID, ok := middleware.PlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}

	var req queueRequest
	_ = c.ShouldBindJSON(&req)
	game, ok := parseGameType(req.GameType)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown game type"})
		return
	}

	ctx := c.Request.Context()
	waiting, err := h.store.QueueContains(ctx, game, playerID)
	if err != nil {
		logger.Error("queue lookup", "error", err, "player_id", playerID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "matchmaking unavailable"})
		return
	}
	if waiting {
		c.JSON(http.StatusOK, gin.H{"status": "already_waiting", "game_type": string(game)})
		return
	}

	if err := h.store.EnqueuePlayer(ctx, game, playerID); err != nil {
		logger.Error("enqueue player", "error", err, "player_id", playerID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "matchmaking unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "waiting", "game_type": string(game)})
}

// LeaveQueue removes the player from the queue. Leaving a queue the player
// is not in succeeds quietly.
func (h *Handler) LeaveQueue(c *gin.Context) {
	playerID, ok := middleware.PlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}

	var req queueRequest
	_ = c.ShouldBindJSON(&req)
	game, ok := parseGameType(req.GameType)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown game type"})
		return
	}

	removed, err := h.store.RemoveFromQueue(c.Request.Context(), game, playerID)
	if err != nil {
		logger.Error("leave queue", "error", err, "player_id", playerID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "matchmaking unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "left", "removed": removed > 0})
}

// CheckMatch is the polling endpoint clients hit while waiting. A pending
// notification is consumed on first read.
func (h *Handler) CheckMatch(c *gin.Context) {
	playerID, ok := middleware.PlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}
	ctx := c.Request.Context()

	note, err := h.store.TakeMatchNotification(ctx, playerID)
	if err != nil {
		if errors.Is(err, state.ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{"status": "waiting"})
			return
		}
		logger.Error("check match", "error", err, "player_id", playerID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "matchmaking unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "matched",
		"game_id":     note.GameID,
		"game_name":   note.GameName,
		"opponent_id": note.OpponentID,
	})
}

// QueueStatus reports per-game queue depth.
func (h *Handler) QueueStatus(c *gin.Context) {
	ctx := c.Request.Context()

	queues := make(map[string]int64, len(domain.AllGameTypes))
	for _, game := range domain.AllGameTypes {
		n, err := h.store.QueueLength(ctx, game)
		if err != nil {
			logger.Error("queue status", "error", err, "game_type", game)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "matchmaking unavailable"})
			return
		}
		queues[string(game)] = n
	}

	c.JSON(http.StatusOK, gin.H{"queues": queues})
}
