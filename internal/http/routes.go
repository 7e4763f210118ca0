package http

import (
	"wordsearch_arena/internal/config"
	"wordsearch_arena/internal/http/handlers"
	"wordsearch_arena/internal/http/middleware"
	"wordsearch_arena/internal/repository"
	"wordsearch_arena/internal/state"
	"wordsearch_arena/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes mounts the REST surface and the game websocket endpoint.
func RegisterRoutes(r *gin.Engine, h *handlers.Handler, registry *ws.Registry, store *state.Store, players *repository.PlayerRepository, cfg *config.Config) {
	// Health and metrics (no rate limiting)
	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow))

	v1.POST("/auth/guest", h.Guest)
	v1.GET("/profile/:id", h.Profile)
	v1.GET("/leaderboard", h.Leaderboard)
	v1.GET("/session/:id", h.Session)

	v1.POST("/ws-auth", middleware.JWT(), h.WSAuth)
	v1.POST("/matchmaking/join", middleware.JWT(), h.JoinQueue)
	v1.POST("/matchmaking/leave", middleware.JWT(), h.LeaveQueue)
	v1.GET("/matchmaking/check-match", middleware.JWT(), h.CheckMatch)
	v1.GET("/matchmaking/status", middleware.JWT(), h.QueueStatus)

	// The upgrade request authenticates with a single-use token instead of
	// the Authorization header, browsers cannot set headers on websockets.
	r.GET("/ws/game/:id", ws.HandleGameSocket(registry, store, players))
}
