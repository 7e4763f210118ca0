package config

import (
	"os"
	"strconv"
	"time"

	"wordsearch_arena/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort       string
	DatabaseURL   string
	JWTSecret     string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LogLevel string
	LogJSON  bool

	// Game tuning
	GridSize         int
	GameDuration     time.Duration
	CountdownSeconds int

	// Matchmaking
	MatchPollInterval time.Duration

	// WebSocket auth
	WSTokenTTL time.Duration

	// API rate limiting
	APIRateLimit  int
	APIRateWindow time.Duration
}

// Load reads configuration from the environment (.env honored in dev).
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	return &Config{
		AppPort:       port,
		DatabaseURL:   dbURL,
		JWTSecret:     jwtSecret,
		RedisAddr:     redisAddr,
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),

		LogLevel: envDefault("LOG_LEVEL", "info"),
		LogJSON:  os.Getenv("LOG_JSON") == "true",

		GridSize:         envInt("GRID_SIZE", 10),
		GameDuration:     time.Duration(envInt("GAME_DURATION_SECONDS", 180)) * time.Second,
		CountdownSeconds: envInt("COUNTDOWN_SECONDS", 3),

		MatchPollInterval: time.Duration(envInt("MATCH_POLL_INTERVAL_MS", 1000)) * time.Millisecond,

		WSTokenTTL: time.Duration(envInt("WS_TOKEN_TTL_SECONDS", 600)) * time.Second,

		APIRateLimit:  envInt("API_RATE_LIMIT", 60),
		APIRateWindow: time.Duration(envInt("API_RATE_WINDOW_SECONDS", 60)) * time.Second,
	}
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return fallback
}
