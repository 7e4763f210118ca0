package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"wordsearch_arena/internal/domain"
	"wordsearch_arena/internal/logger"
	"wordsearch_arena/internal/repository"

	"github.com/gin-gonic/gin"
)

// Profile returns a player's public record.
func (h *Handler) Profile(c *gin.Context) {
	playerID := c.Param("id")

	player, err := h.players.GetByID(c.Request.Context(), playerID)
	if err != nil {
		if errors.Is(err, repository.ErrPlayerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "player not found"})
			return
		}
		logger.Error("load profile", "error", err, "player_id", playerID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load profile"})
		return
	}

	c.JSON(http.StatusOK, player)
}

// Leaderboard lists the top players by victories.
func (h *Handler) Leaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	entries, err := h.players.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		logger.Error("load leaderboard", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load leaderboard"})
		return
	}
	if entries == nil {
		entries = []domain.PlayerStats{}
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}
