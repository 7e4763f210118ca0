package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wordsearch_arena/internal/config"
	"wordsearch_arena/internal/db"
	"wordsearch_arena/internal/engine"
	httpServer "wordsearch_arena/internal/http"
	"wordsearch_arena/internal/http/handlers"
	"wordsearch_arena/internal/http/middleware"
	"wordsearch_arena/internal/logger"
	"wordsearch_arena/internal/matchmaking"
	"wordsearch_arena/internal/redisdb"
	"wordsearch_arena/internal/repository"
	"wordsearch_arena/internal/service"
	"wordsearch_arena/internal/state"
	"wordsearch_arena/internal/ws"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	service.InitJWT(cfg.JWTSecret)

	dbPool := db.Connect(cfg.DatabaseURL)
	defer dbPool.Close()

	rdb := redisdb.Connect(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer rdb.Close()

	store := state.NewStore(rdb)
	players := repository.NewPlayerRepository(dbPool)
	sessions := repository.NewSessionRepository(dbPool)
	wordLists := repository.NewWordListRepository(dbPool)

	newEngine := func(gameID string) *engine.Engine {
		return engine.New(gameID, store, sessions)
	}

	registry := ws.NewRegistry(newEngine, ws.Config{
		CountdownSeconds: cfg.CountdownSeconds,
		GameDuration:     cfg.GameDuration,
	})

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()

	consumer := matchmaking.NewConsumer(store, wordLists, newEngine,
		cfg.GridSize, cfg.GameDuration, cfg.MatchPollInterval)
	go consumer.Run(consumerCtx)

	r := gin.Default()

	// CORS for production (frontend on different domain)
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	middleware.InitRedisRateLimiter(rdb)

	h := handlers.New(players, sessions, store, cfg)
	httpServer.RegisterRoutes(r, h, registry, store, players, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	stopConsumer()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
