package repository

import (
	"context"
	"errors"

	"wordsearch_arena/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrPlayerNotFound = errors.New("player not found")

type PlayerRepository struct {
	db *pgxpool.Pool
}

func NewPlayerRepository(db *pgxpool.Pool) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) Create(ctx context.Context, p *domain.Player) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO players (player_id, username)
		 VALUES ($1, $2)
		 RETURNING created_at`,
		p.PlayerID,
		p.Username,
	).Scan(&p.CreatedAt)
}

func (r *PlayerRepository) GetByID(ctx context.Context, playerID string) (*domain.Player, error) {
	var p domain.Player
	err := r.db.QueryRow(ctx,
		`SELECT player_id, username, victories, defeats, created_at
		 FROM players
		 WHERE player_id = $1`,
		playerID,
	).Scan(&p.PlayerID, &p.Username, &p.Victories, &p.Defeats, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Username resolves a display name; missing players come back empty, not as
// an error, because rooms only use this for opponent info.
func (r *PlayerRepository) Username(ctx context.Context, playerID string) string {
	p, err := r.GetByID(ctx, playerID)
	if err != nil {
		return ""
	}
	return p.Username
}

func (r *PlayerRepository) Leaderboard(ctx context.Context, limit int) ([]domain.PlayerStats, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	rows, err := r.db.Query(ctx,
		`SELECT player_id, username, victories, defeats
		 FROM players
		 ORDER BY victories DESC, defeats ASC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.PlayerStats
	for rows.Next() {
		var s domain.PlayerStats
		if err := rows.Scan(&s.PlayerID, &s.Username, &s.Victories, &s.Defeats); err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}
