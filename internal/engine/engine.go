package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"wordsearch_arena/internal/domain"
	"wordsearch_arena/internal/logger"
)

// Finalize reasons.
const (
	ReasonCompleted = "all_solutions_found"
	ReasonTimeout   = "timeout"
	ReasonAbandon   = "abandon"
)

var (
	// ErrAlreadyFinalized - a later Finalize found the durable record
	// already terminal; counters were not touched again.
	ErrAlreadyFinalized = errors.New("session already finalized")

	ErrInsufficientPlayers = errors.New("fewer than two players have state recorded")
)

// StateStore is the ephemeral side of a session: the live grid, scores and
// the hidden solution set. Implemented by internal/state on Redis.
type StateStore interface {
	GetState(ctx context.Context, gameID string) (*domain.GameState, error)
	SaveState(ctx context.Context, gameID string, state *domain.GameState) error
	DeleteState(ctx context.Context, gameID string) error
	GetSolutions(ctx context.Context, gameID string) (*domain.SolutionSet, error)
	SaveSolutions(ctx context.Context, gameID string, solutions *domain.SolutionSet) error
	DeleteSolutions(ctx context.Context, gameID string) error
}

// SessionStore is the durable side: the session row and the players'
// victory/defeat counters. Implemented by internal/repository on Postgres.
type SessionStore interface {
	CreateSession(ctx context.Context, session *domain.GameSession) error
	GetSession(ctx context.Context, gameID string) (*domain.GameSession, error)
	// FinalizeSession writes winner, snapshot and counter increments in one
	// transaction, guarded so a terminal session is never written twice.
	// Returns false with nil error when the session was already terminal.
	FinalizeSession(ctx context.Context, gameID string, winnerID, loserID *string, snapshot map[string]any) (bool, error)
}

// SelectionResult mirrors the wire payload of a submit_selection response.
type SelectionResult struct {
	Success      bool              `json:"success"`
	Reason       string            `json:"reason,omitempty"`
	NewSolution  *domain.Placement `json:"new_solution,omitempty"`
	PointsDetail *PointsDetail     `json:"points_detail,omitempty"`
	PointsEarned int               `json:"points_earned,omitempty"`
	NewScore     int               `json:"new_score,omitempty"`
}

// FinalizeResult is the terminal outcome of a session.
type FinalizeResult struct {
	Status   domain.SessionStatus `json:"status"`
	WinnerID *string              `json:"winner_id"`
	LoserID  *string              `json:"loser_id"`
	Scores   map[string]int       `json:"scores"`
	Reason   string               `json:"reason"`
}

// Engine arbitrates one session: it validates claimed moves against the
// hidden solution set, keeps the realtime scores, and commits the final
// result. All calls for a given session come from that session's room loop,
// so there is no concurrent writer of the ephemeral state.
type Engine struct {
	gameID   string
	states   StateStore
	sessions SessionStore

	// solutions never change after generation; one fetch per session.
	solutionCache *domain.SolutionSet
}

func New(gameID string, states StateStore, sessions SessionStore) *Engine {
	return &Engine{gameID: gameID, states: states, sessions: sessions}
}

func (e *Engine) GameID() string { return e.gameID }

// InitializeSession persists the durable session row and seeds the ephemeral
// state and solution set. Both players start at score zero so a later
// finalize always sees two recorded players.
func (e *Engine) InitializeSession(
	ctx context.Context,
	gameName domain.GameType,
	player1ID, player2ID string,
	theme string,
	grid [][]string,
	solutions domain.SolutionSet,
	durationSeconds int,
) (*domain.GameState, error) {
	state := &domain.GameState{
		Theme:       theme,
		Grid:        grid,
		WordsToFind: solutions.Words(),
		WordsFound: map[string][]domain.Placement{
			player1ID: {},
			player2ID: {},
		},
		RealtimeScore: map[string]int{
			player1ID: 0,
			player2ID: 0,
		},
		DurationSeconds: durationSeconds,
		Status:          domain.StatusWaitingForPlayers,
	}

	session := &domain.GameSession{
		GameID:    e.gameID,
		GameName:  gameName,
		Player1ID: player1ID,
		Player2ID: player2ID,
		Status:    domain.StatusWaitingForPlayers,
	}

	if err := e.sessions.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if err := e.states.SaveSolutions(ctx, e.gameID, &solutions); err != nil {
		return nil, fmt.Errorf("save solutions: %w", err)
	}
	if err := e.states.SaveState(ctx, e.gameID, state); err != nil {
		return nil, fmt.Errorf("save state: %w", err)
	}

	e.solutionCache = &solutions
	return state, nil
}

// State returns the current ephemeral state.
func (e *Engine) State(ctx context.Context) (*domain.GameState, error) {
	return e.states.GetState(ctx, e.gameID)
}

// MarkStarted records the game start in the ephemeral state so remaining
// time survives a room rebuild.
func (e *Engine) MarkStarted(ctx context.Context, startedAt int64) error {
	state, err := e.states.GetState(ctx, e.gameID)
	if err != nil {
		return err
	}
	state.Status = domain.StatusInProgress
	state.StartedAt = startedAt
	return e.states.SaveState(ctx, e.gameID, state)
}

// ValidateSelection checks a claimed move and, when valid, atomically
// applies the score update and the found-word append before persisting.
// Rejections are results, not errors: the session continues unaffected.
func (e *Engine) ValidateSelection(ctx context.Context, playerID string, selection domain.Placement) (*SelectionResult, error) {
	state, err := e.states.GetState(ctx, e.gameID)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	solutions, err := e.solutions(ctx)
	if err != nil {
		return nil, err
	}

	claimed := strings.ToUpper(selection.Word)

	reconstructed, err := reconstructWord(state.Grid, selection.Start, selection.End)
	if err != nil {
		return &SelectionResult{Success: false, Reason: "invalid selection: " + err.Error()}, nil
	}
	if reconstructed != claimed {
		return &SelectionResult{Success: false, Reason: "selection does not match the submitted word"}, nil
	}

	found := false
	for _, sol := range solutions.Solutions {
		if strings.EqualFold(sol.Word, claimed) {
			found = true
			break
		}
	}
	if !found {
		return &SelectionResult{Success: false, Reason: "word is not part of this puzzle"}, nil
	}

	if state.WordAlreadyFound(claimed) {
		return &SelectionResult{Success: false, Reason: "word already found"}, nil
	}

	dir := determineDirection(selection.Start, selection.End)
	detail := scoreWord(claimed, dir)

	placement := domain.Placement{Word: claimed, Start: selection.Start, End: selection.End}

	// score update and found-word append happen together, then persist
	if state.RealtimeScore == nil {
		state.RealtimeScore = map[string]int{}
	}
	if state.WordsFound == nil {
		state.WordsFound = map[string][]domain.Placement{}
	}
	newScore := state.RealtimeScore[playerID] + detail.TotalPoints
	state.RealtimeScore[playerID] = newScore
	state.WordsFound[playerID] = append(state.WordsFound[playerID], placement)

	if err := e.states.SaveState(ctx, e.gameID, state); err != nil {
		return nil, fmt.Errorf("save state: %w", err)
	}

	return &SelectionResult{
		Success:      true,
		NewSolution:  &placement,
		PointsDetail: &detail,
		PointsEarned: detail.TotalPoints,
		NewScore:     newScore,
	}, nil
}

// CheckAllFound finalizes the session with reason "all_solutions_found" once
// the combined found count reaches the solution count. Returns nil while the
// puzzle is unfinished.
func (e *Engine) CheckAllFound(ctx context.Context) (*FinalizeResult, error) {
	state, err := e.states.GetState(ctx, e.gameID)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	solutions, err := e.solutions(ctx)
	if err != nil {
		return nil, err
	}

	if state.TotalFound() < len(solutions.Solutions) {
		return nil, nil
	}
	return e.Finalize(ctx, ReasonCompleted, "")
}

// Finalize computes the winner, writes the durable outcome and only then
// clears the ephemeral state. abandoningPlayerID, when set, loses
// unconditionally. A failed durable write keeps the ephemeral state so the
// call can be retried; a repeat after success returns ErrAlreadyFinalized
// without touching the counters again.
func (e *Engine) Finalize(ctx context.Context, reason string, abandoningPlayerID string) (*FinalizeResult, error) {
	state, err := e.states.GetState(ctx, e.gameID)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	if len(state.RealtimeScore) < 2 {
		return nil, ErrInsufficientPlayers
	}

	playerIDs := make([]string, 0, len(state.RealtimeScore))
	for pid := range state.RealtimeScore {
		playerIDs = append(playerIDs, pid)
	}
	a, b := playerIDs[0], playerIDs[1]
	scoreA, scoreB := state.RealtimeScore[a], state.RealtimeScore[b]

	var winnerID, loserID *string
	switch {
	case abandoningPlayerID != "":
		for _, pid := range playerIDs {
			if pid == abandoningPlayerID {
				loserID = ptr(pid)
			} else {
				winnerID = ptr(pid)
			}
		}
	case scoreA > scoreB:
		winnerID, loserID = ptr(a), ptr(b)
	case scoreB > scoreA:
		winnerID, loserID = ptr(b), ptr(a)
	default:
		// exact tie: no winner, no counter updates
	}

	state.Status = domain.StatusFinished
	snapshot, err := stateSnapshot(state)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	applied, err := e.sessions.FinalizeSession(ctx, e.gameID, winnerID, loserID, snapshot)
	if err != nil {
		// ephemeral state intentionally retained: finalize is retryable
		return nil, fmt.Errorf("finalize session %s: %w", e.gameID, err)
	}

	result := &FinalizeResult{
		Status:   domain.StatusFinished,
		WinnerID: winnerID,
		LoserID:  loserID,
		Scores:   map[string]int{a: scoreA, b: scoreB},
		Reason:   reason,
	}

	if !applied {
		return result, ErrAlreadyFinalized
	}

	if err := e.states.DeleteState(ctx, e.gameID); err != nil {
		logger.Warn("failed to delete ephemeral state", "game_id", e.gameID, "error", err)
	}
	if err := e.states.DeleteSolutions(ctx, e.gameID); err != nil {
		logger.Warn("failed to delete solution set", "game_id", e.gameID, "error", err)
	}

	return result, nil
}

func (e *Engine) solutions(ctx context.Context) (*domain.SolutionSet, error) {
	if e.solutionCache == nil {
		solutions, err := e.states.GetSolutions(ctx, e.gameID)
		if err != nil {
			return nil, fmt.Errorf("load solutions: %w", err)
		}
		e.solutionCache = solutions
	}
	return e.solutionCache, nil
}

// stateSnapshot converts the final state into the jsonb shape stored on the
// durable session row.
func stateSnapshot(state *domain.GameState) (map[string]any, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, err
	}
	var snapshot map[string]any
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func ptr(s string) *string { return &s }
