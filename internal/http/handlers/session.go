package handlers

import (
	"errors"
	"net/http"

	"wordsearch_arena/internal/logger"
	"wordsearch_arena/internal/repository"

	"github.com/gin-gonic/gin"
)

// Session returns the durable record of a game: players, status, winner and
// the final snapshot once the game is finished.
func (h *Handler) Session(c *gin.Context) {
	gameID := c.Param("id")

	session, err := h.sessions.GetSession(c.Request.Context(), gameID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		logger.Error("load session", "error", err, "game_id", gameID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load session"})
		return
	}

	c.JSON(http.StatusOK, session)
}
