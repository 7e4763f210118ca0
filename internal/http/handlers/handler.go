package handlers

import (
	"context"

	"wordsearch_arena/internal/config"
	"wordsearch_arena/internal/domain"
	"wordsearch_arena/internal/state"
)

// PlayerStore is the slice of the player repository the handlers need.
type PlayerStore interface {
	Create(ctx context.Context, p *domain.Player) error
	GetByID(ctx context.Context, playerID string) (*domain.Player, error)
	Leaderboard(ctx context.Context, limit int) ([]domain.PlayerStats, error)
}

// SessionStore looks up finished and running sessions.
type SessionStore interface {
	GetSession(ctx context.Context, gameID string) (*domain.GameSession, error)
}

// Handler carries the dependencies shared by the REST endpoints.
type Handler struct {
	players  PlayerStore
	sessions SessionStore
	store    *state.Store
	cfg      *config.Config
}

func New(players PlayerStore, sessions SessionStore, store *state.Store, cfg *config.Config) *Handler {
	return &Handler{
		players:  players,
		sessions: sessions,
		store:    store,
		cfg:      cfg,
	}
}
