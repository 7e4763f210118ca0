package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"wordsearch_arena/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrSessionNotFound = errors.New("session not found")

type SessionRepository struct {
	db *pgxpool.Pool
}

func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) CreateSession(ctx context.Context, s *domain.GameSession) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO game_sessions (game_id, game_name, player1_id, player2_id, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`,
		s.GameID,
		s.GameName,
		s.Player1ID,
		s.Player2ID,
		s.Status,
	).Scan(&s.CreatedAt)
}

func (r *SessionRepository) GetSession(ctx context.Context, gameID string) (*domain.GameSession, error) {
	var (
		s        domain.GameSession
		dataJSON []byte
	)
	err := r.db.QueryRow(ctx,
		`SELECT game_id, game_name, player1_id, player2_id, game_data, winner_id, status, created_at
		 FROM game_sessions
		 WHERE game_id = $1`,
		gameID,
	).Scan(&s.GameID, &s.GameName, &s.Player1ID, &s.Player2ID, &dataJSON, &s.WinnerID, &s.Status, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	if len(dataJSON) > 0 {
		if err := json.Unmarshal(dataJSON, &s.GameData); err != nil {
			return nil, fmt.Errorf("decode game_data: %w", err)
		}
	}
	return &s, nil
}

// FinalizeSession commits the terminal outcome: winner, final snapshot and
// the two players' counters move in one transaction. The status guard makes
// the write idempotent; a session that is already game_finished is left
// untouched and the method reports applied=false.
func (r *SessionRepository) FinalizeSession(ctx context.Context, gameID string, winnerID, loserID *string, snapshot map[string]any) (bool, error) {
	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return false, fmt.Errorf("encode snapshot: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	var status domain.SessionStatus
	err = tx.QueryRow(ctx,
		`SELECT status FROM game_sessions WHERE game_id = $1 FOR UPDATE`,
		gameID,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrSessionNotFound
		}
		return false, err
	}

	if status == domain.StatusFinished {
		return false, nil
	}

	if _, err := tx.Exec(ctx,
		`UPDATE game_sessions
		 SET winner_id = $2, game_data = $3, status = $4
		 WHERE game_id = $1`,
		gameID, winnerID, snapshotJSON, domain.StatusFinished,
	); err != nil {
		return false, err
	}

	if winnerID != nil {
		if _, err := tx.Exec(ctx,
			`UPDATE players SET victories = victories + 1 WHERE player_id = $1`,
			*winnerID,
		); err != nil {
			return false, err
		}
	}
	if loserID != nil {
		if _, err := tx.Exec(ctx,
			`UPDATE players SET defeats = defeats + 1 WHERE player_id = $1`,
			*loserID,
		); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}
