package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wordsearch_arena/internal/domain"

	"github.com/redis/go-redis/v9"
)

// Redis key prefixes.
const (
	queueKeyPrefix        = "matchmaking:queue:"
	gameStateKeyPrefix    = "game:state:"
	solutionKeyPrefix     = "game:solution:"
	notificationKeyPrefix = "match_notification:"
	wsTokenKeyPrefix      = "ws_auth:"
	dailySessionsPrefix   = "stats:sessions:"
)

// ErrNotFound - the requested key does not exist or has expired.
var ErrNotFound = errors.New("state: not found")

// Store is the ephemeral backend for sessions: live game state, hidden
// solution sets, the matchmaking queues, single-use ws tokens, match
// notifications and daily counters.
type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// --- game state -----------------------------------------------------------

func (s *Store) GetState(ctx context.Context, gameID string) (*domain.GameState, error) {
	raw, err := s.rdb.Get(ctx, gameStateKeyPrefix+gameID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: state for game %s", ErrNotFound, gameID)
		}
		return nil, err
	}

	var state domain.GameState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("decode game state: %w", err)
	}
	return &state, nil
}

func (s *Store) SaveState(ctx context.Context, gameID string, state *domain.GameState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode game state: %w", err)
	}
	return s.rdb.Set(ctx, gameStateKeyPrefix+gameID, raw, 0).Err()
}

func (s *Store) DeleteState(ctx context.Context, gameID string) error {
	return s.rdb.Del(ctx, gameStateKeyPrefix+gameID).Err()
}

// --- solution sets --------------------------------------------------------

func (s *Store) GetSolutions(ctx context.Context, gameID string) (*domain.SolutionSet, error) {
	raw, err := s.rdb.Get(ctx, solutionKeyPrefix+gameID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: solutions for game %s", ErrNotFound, gameID)
		}
		return nil, err
	}

	var solutions domain.SolutionSet
	if err := json.Unmarshal(raw, &solutions); err != nil {
		return nil, fmt.Errorf("decode solution set: %w", err)
	}
	return &solutions, nil
}

func (s *Store) SaveSolutions(ctx context.Context, gameID string, solutions *domain.SolutionSet) error {
	raw, err := json.Marshal(solutions)
	if err != nil {
		return fmt.Errorf("encode solution set: %w", err)
	}
	return s.rdb.Set(ctx, solutionKeyPrefix+gameID, raw, 0).Err()
}

func (s *Store) DeleteSolutions(ctx context.Context, gameID string) error {
	return s.rdb.Del(ctx, solutionKeyPrefix+gameID).Err()
}

// --- matchmaking queue ----------------------------------------------------

func queueKey(game domain.GameType) string {
	return queueKeyPrefix + string(game)
}

func (s *Store) EnqueuePlayer(ctx context.Context, game domain.GameType, playerID string) error {
	return s.rdb.RPush(ctx, queueKey(game), playerID).Err()
}

// RemoveFromQueue drops every queue entry of the player. Returns how many
// entries were removed.
func (s *Store) RemoveFromQueue(ctx context.Context, game domain.GameType, playerID string) (int64, error) {
	return s.rdb.LRem(ctx, queueKey(game), 0, playerID).Result()
}

func (s *Store) QueueLength(ctx context.Context, game domain.GameType) (int64, error) {
	return s.rdb.LLen(ctx, queueKey(game)).Result()
}

func (s *Store) QueueContains(ctx context.Context, game domain.GameType, playerID string) (bool, error) {
	entries, err := s.rdb.LRange(ctx, queueKey(game), 0, -1).Result()
	if err != nil {
		return false, err
	}
	for _, entry := range entries {
		if entry == playerID {
			return true, nil
		}
	}
	return false, nil
}

// DequeuePair pops two waiting players in one transaction so that two
// concurrent pollers can never pair the same player twice. Either id may
// come back empty when the queue drained between the length check and the
// pop; the caller pushes the survivor back.
func (s *Store) DequeuePair(ctx context.Context, game domain.GameType) (string, string, error) {
	pipe := s.rdb.TxPipeline()
	pop1 := pipe.LPop(ctx, queueKey(game))
	pop2 := pipe.LPop(ctx, queueKey(game))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return "", "", err
	}

	p1, err := pop1.Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", "", err
	}
	p2, err := pop2.Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return p1, "", err
	}
	return p1, p2, nil
}

// RequeuePlayers pushes players back to the end of the queue, e.g. after a
// failed pairing.
func (s *Store) RequeuePlayers(ctx context.Context, game domain.GameType, playerIDs ...string) error {
	values := make([]any, 0, len(playerIDs))
	for _, pid := range playerIDs {
		if pid != "" {
			values = append(values, pid)
		}
	}
	if len(values) == 0 {
		return nil
	}
	return s.rdb.RPush(ctx, queueKey(game), values...).Err()
}

// --- match notifications --------------------------------------------------

// MatchNotification is what a client polling check-match discovers.
type MatchNotification struct {
	Type       string `json:"type"`
	GameID     string `json:"game_id"`
	GameName   string `json:"game_name"`
	OpponentID string `json:"opponent_id"`
}

func (s *Store) SetMatchNotification(ctx context.Context, playerID string, note MatchNotification, ttl time.Duration) error {
	raw, err := json.Marshal(note)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, notificationKeyPrefix+playerID, raw, ttl).Err()
}

// TakeMatchNotification reads and deletes the pending notification so a
// match is reported to each player once.
func (s *Store) TakeMatchNotification(ctx context.Context, playerID string) (*MatchNotification, error) {
	raw, err := s.rdb.GetDel(ctx, notificationKeyPrefix+playerID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var note MatchNotification
	if err := json.Unmarshal(raw, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// --- websocket tokens -----------------------------------------------------

func (s *Store) StoreWSToken(ctx context.Context, token, playerID string, ttl time.Duration) error {
	return s.rdb.Set(ctx, wsTokenKeyPrefix+token, playerID, ttl).Err()
}

// ConsumeWSToken resolves a token to its player id and invalidates it in the
// same call: tokens are strictly single-use, the TTL only bounds unused ones.
func (s *Store) ConsumeWSToken(ctx context.Context, token string) (string, error) {
	playerID, err := s.rdb.GetDel(ctx, wsTokenKeyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", err
	}
	return playerID, nil
}

// --- daily counters -------------------------------------------------------

// IncrDailySessions bumps the sessions-created counter for today. The key
// expires after two days so counters clean themselves up.
func (s *Store) IncrDailySessions(ctx context.Context) error {
	key := dailySessionsPrefix + time.Now().UTC().Format("2006-01-02")
	n, err := s.rdb.Incr(ctx, key).Result()
	if err != nil {
		return err
	}
	if n == 1 {
		return s.rdb.Expire(ctx, key, 48*time.Hour).Err()
	}
	return nil
}
