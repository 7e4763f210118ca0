package matchmaking

import (
	"context"
	"fmt"
	"time"

	"wordsearch_arena/internal/domain"
	"wordsearch_arena/internal/engine"
	"wordsearch_arena/internal/logger"
	"wordsearch_arena/internal/puzzle"
	"wordsearch_arena/internal/state"

	"github.com/google/uuid"
)

const matchNotificationTTL = 60 * time.Second

// QueueStore is the slice of the ephemeral store the consumer needs.
type QueueStore interface {
	QueueLength(ctx context.Context, game domain.GameType) (int64, error)
	DequeuePair(ctx context.Context, game domain.GameType) (string, string, error)
	RequeuePlayers(ctx context.Context, game domain.GameType, playerIDs ...string) error
	SetMatchNotification(ctx context.Context, playerID string, note state.MatchNotification, ttl time.Duration) error
	IncrDailySessions(ctx context.Context) error
}

// WordSource provides a themed word list for a new puzzle.
type WordSource interface {
	RandomTheme(ctx context.Context) (string, []string, error)
}

// EngineFactory builds the engine that initializes a new session.
type EngineFactory func(gameID string) *engine.Engine

// Consumer drains every game type's waiting queue on a fixed interval and
// pairs players two at a time. It assumes a single active instance per
// deployment; the transactional double-pop only protects concurrent pollers
// within one Redis connection pool, not independent replicas.
type Consumer struct {
	store     QueueStore
	words     WordSource
	newEngine EngineFactory

	gridSize int
	duration time.Duration
	interval time.Duration
}

func NewConsumer(store QueueStore, words WordSource, newEngine EngineFactory, gridSize int, gameDuration, pollInterval time.Duration) *Consumer {
	return &Consumer{
		store:     store,
		words:     words,
		newEngine: newEngine,
		gridSize:  gridSize,
		duration:  gameDuration,
		interval:  pollInterval,
	}
}

// Run polls until the context is cancelled.
func (c *Consumer) Run(ctx context.Context) {
	logger.Info("matchmaking consumer started", "interval", c.interval)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("matchmaking consumer stopped")
			return
		case <-ticker.C:
			c.processQueues(ctx)
		}
	}
}

func (c *Consumer) processQueues(ctx context.Context) {
	for _, game := range domain.AllGameTypes {
		if err := c.tryMatch(ctx, game); err != nil {
			logger.Error("matchmaking round failed", "game", game, "error", err)
		}
	}
}

// tryMatch pops exactly two waiting players atomically and spins up their
// session. Half-failed pops push the survivor back; a failed session
// initialization requeues both so nobody is silently dropped.
func (c *Consumer) tryMatch(ctx context.Context, game domain.GameType) error {
	size, err := c.store.QueueLength(ctx, game)
	if err != nil {
		return fmt.Errorf("queue length: %w", err)
	}
	if size < 2 {
		return nil
	}

	player1, player2, err := c.store.DequeuePair(ctx, game)
	if err != nil {
		return fmt.Errorf("dequeue pair: %w", err)
	}
	if player1 == "" || player2 == "" {
		if err := c.store.RequeuePlayers(ctx, game, player1, player2); err != nil {
			return fmt.Errorf("requeue after partial pop: %w", err)
		}
		return nil
	}

	gameID := uuid.NewString()

	if err := c.createSession(ctx, game, gameID, player1, player2); err != nil {
		if reqErr := c.store.RequeuePlayers(ctx, game, player1, player2); reqErr != nil {
			logger.Error("requeue after init failure lost players", "game", game,
				"players", []string{player1, player2}, "error", reqErr)
		}
		return fmt.Errorf("initialize session: %w", err)
	}

	if err := c.notifyPlayers(ctx, game, gameID, player1, player2); err != nil {
		logger.Error("match notification failed", "game_id", gameID, "error", err)
	}

	if err := c.store.IncrDailySessions(ctx); err != nil {
		logger.Warn("daily session counter failed", "error", err)
	}
	sessionsCreated.Inc()

	logger.Info("match created", "game", game, "game_id", gameID,
		"player1", player1, "player2", player2)
	return nil
}

func (c *Consumer) createSession(ctx context.Context, game domain.GameType, gameID, player1, player2 string) error {
	theme, wordList, err := c.words.RandomTheme(ctx)
	if err != nil {
		return fmt.Errorf("word list: %w", err)
	}

	grid, solutions := puzzle.NewGenerator(c.gridSize, nil).Generate(wordList)

	eng := c.newEngine(gameID)
	_, err = eng.InitializeSession(ctx, game, player1, player2, theme, grid, solutions, int(c.duration.Seconds()))
	return err
}

func (c *Consumer) notifyPlayers(ctx context.Context, game domain.GameType, gameID, player1, player2 string) error {
	note := state.MatchNotification{
		Type:     "match_found",
		GameID:   gameID,
		GameName: string(game),
	}

	n1 := note
	n1.OpponentID = player2
	if err := c.store.SetMatchNotification(ctx, player1, n1, matchNotificationTTL); err != nil {
		return err
	}

	n2 := note
	n2.OpponentID = player1
	return c.store.SetMatchNotification(ctx, player2, n2, matchNotificationTTL)
}
