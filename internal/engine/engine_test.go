package engine

import (
	"context"
	"errors"
	"testing"

	"wordsearch_arena/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStateStore keeps ephemeral state in memory.
type fakeStateStore struct {
	states    map[string]*domain.GameState
	solutions map[string]*domain.SolutionSet
}

func newFakeStateStore() *fakeStateStore {
	return &fakeStateStore{
		states:    map[string]*domain.GameState{},
		solutions: map[string]*domain.SolutionSet{},
	}
}

func (f *fakeStateStore) GetState(_ context.Context, gameID string) (*domain.GameState, error) {
	s, ok := f.states[gameID]
	if !ok {
		return nil, errors.New("state not found")
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStateStore) SaveState(_ context.Context, gameID string, state *domain.GameState) error {
	cp := *state
	f.states[gameID] = &cp
	return nil
}

func (f *fakeStateStore) DeleteState(_ context.Context, gameID string) error {
	delete(f.states, gameID)
	return nil
}

func (f *fakeStateStore) GetSolutions(_ context.Context, gameID string) (*domain.SolutionSet, error) {
	s, ok := f.solutions[gameID]
	if !ok {
		return nil, errors.New("solutions not found")
	}
	return s, nil
}

func (f *fakeStateStore) SaveSolutions(_ context.Context, gameID string, solutions *domain.SolutionSet) error {
	f.solutions[gameID] = solutions
	return nil
}

func (f *fakeStateStore) DeleteSolutions(_ context.Context, gameID string) error {
	delete(f.solutions, gameID)
	return nil
}

// fakeSessionStore mimics the status-guarded durable store.
type fakeSessionStore struct {
	sessions map[string]*domain.GameSession

	finalizeCalls int
	appliedCalls  int
	finalizeErr   error

	lastWinner *string
	lastLoser  *string
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[string]*domain.GameSession{}}
}

func (f *fakeSessionStore) CreateSession(_ context.Context, session *domain.GameSession) error {
	cp := *session
	f.sessions[session.GameID] = &cp
	return nil
}

func (f *fakeSessionStore) GetSession(_ context.Context, gameID string) (*domain.GameSession, error) {
	s, ok := f.sessions[gameID]
	if !ok {
		return nil, errors.New("session not found")
	}
	return s, nil
}

func (f *fakeSessionStore) FinalizeSession(_ context.Context, gameID string, winnerID, loserID *string, _ map[string]any) (bool, error) {
	f.finalizeCalls++
	if f.finalizeErr != nil {
		return false, f.finalizeErr
	}

	s, ok := f.sessions[gameID]
	if !ok {
		return false, errors.New("session not found")
	}
	if s.Status == domain.StatusFinished {
		return false, nil
	}

	s.Status = domain.StatusFinished
	s.WinnerID = winnerID
	f.lastWinner = winnerID
	f.lastLoser = loserID
	f.appliedCalls++
	return true, nil
}

// pythonGrid builds a grid with PYTHON readable bottom-right to top-left
// (P at 5,5 up to N at 0,0) and GO left-to-right on the last row.
func pythonGrid(size int) ([][]string, domain.SolutionSet) {
	grid := make([][]string, size)
	for r := range grid {
		grid[r] = make([]string, size)
		for c := range grid[r] {
			grid[r][c] = "Z"
		}
	}

	word := "PYTHON"
	for i, letter := range word {
		grid[5-i][5-i] = string(letter)
	}
	grid[size-1][0] = "G"
	grid[size-1][1] = "O"

	return grid, domain.SolutionSet{Solutions: []domain.Placement{
		{Word: "PYTHON", Start: domain.Cell{Row: 5, Col: 5}, End: domain.Cell{Row: 0, Col: 0}},
		{Word: "GO", Start: domain.Cell{Row: size - 1, Col: 0}, End: domain.Cell{Row: size - 1, Col: 1}},
	}}
}

func newTestEngine(t *testing.T) (*Engine, *fakeStateStore, *fakeSessionStore) {
	t.Helper()

	states := newFakeStateStore()
	sessions := newFakeSessionStore()
	eng := New("game-1", states, sessions)

	grid, solutions := pythonGrid(10)
	_, err := eng.InitializeSession(context.Background(), domain.GameTypeWordSearch,
		"alice", "bob", "technology", grid, solutions, 180)
	require.NoError(t, err)

	return eng, states, sessions
}

func TestInitializeSessionSeedsBothPlayers(t *testing.T) {
	eng, states, sessions := newTestEngine(t)

	state := states.states[eng.GameID()]
	require.NotNil(t, state)
	assert.Equal(t, map[string]int{"alice": 0, "bob": 0}, state.RealtimeScore)
	assert.Len(t, state.WordsFound, 2)
	assert.Equal(t, domain.StatusWaitingForPlayers, state.Status)
	assert.ElementsMatch(t, []string{"PYTHON", "GO"}, state.WordsToFind)

	session, err := sessions.GetSession(context.Background(), eng.GameID())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWaitingForPlayers, session.Status)
}

func TestValidateSelectionScoresDiagonalUpLeft(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	res, err := eng.ValidateSelection(context.Background(), "alice", domain.Placement{
		Word:  "python",
		Start: domain.Cell{Row: 5, Col: 5},
		End:   domain.Cell{Row: 0, Col: 0},
	})
	require.NoError(t, err)
	require.True(t, res.Success, "reason: %s", res.Reason)

	assert.Equal(t, 22, res.PointsEarned)
	assert.Equal(t, 22, res.NewScore)
	assert.Equal(t, DirDiagonalUpL, res.PointsDetail.Direction)
	assert.Equal(t, 20, res.PointsDetail.BasePoints)
	assert.Equal(t, 2, res.PointsDetail.LengthBonus)
	assert.Equal(t, "PYTHON", res.NewSolution.Word)
}

func TestValidateSelectionRejectsDuplicate(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	ctx := context.Background()

	sel := domain.Placement{
		Word:  "PYTHON",
		Start: domain.Cell{Row: 5, Col: 5},
		End:   domain.Cell{Row: 0, Col: 0},
	}

	res, err := eng.ValidateSelection(ctx, "alice", sel)
	require.NoError(t, err)
	require.True(t, res.Success)

	// the opponent tries the same word
	res, err = eng.ValidateSelection(ctx, "bob", sel)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "word already found", res.Reason)
	assert.Zero(t, res.PointsEarned)
}

func TestValidateSelectionRejectsMismatchedCells(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	// claims PYTHON but the cells spell something else
	res, err := eng.ValidateSelection(context.Background(), "alice", domain.Placement{
		Word:  "PYTHON",
		Start: domain.Cell{Row: 0, Col: 0},
		End:   domain.Cell{Row: 0, Col: 5},
	})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "selection does not match the submitted word", res.Reason)
}

func TestValidateSelectionRejectsNonColinear(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	res, err := eng.ValidateSelection(context.Background(), "alice", domain.Placement{
		Word:  "PYTHON",
		Start: domain.Cell{Row: 0, Col: 0},
		End:   domain.Cell{Row: 2, Col: 1},
	})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Reason, "invalid selection")
}

func TestValidateSelectionRejectsWordOutsidePuzzle(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	// ZZ is on the grid but not part of the solution set
	res, err := eng.ValidateSelection(context.Background(), "alice", domain.Placement{
		Word:  "ZZ",
		Start: domain.Cell{Row: 0, Col: 1},
		End:   domain.Cell{Row: 0, Col: 2},
	})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "word is not part of this puzzle", res.Reason)
}

func TestCheckAllFoundFinalizesOnLastWord(t *testing.T) {
	eng, states, sessions := newTestEngine(t)
	ctx := context.Background()

	res, err := eng.CheckAllFound(ctx)
	require.NoError(t, err)
	assert.Nil(t, res, "unfinished puzzle must not finalize")

	_, err = eng.ValidateSelection(ctx, "alice", domain.Placement{
		Word:  "PYTHON",
		Start: domain.Cell{Row: 5, Col: 5},
		End:   domain.Cell{Row: 0, Col: 0},
	})
	require.NoError(t, err)
	_, err = eng.ValidateSelection(ctx, "bob", domain.Placement{
		Word:  "GO",
		Start: domain.Cell{Row: 9, Col: 0},
		End:   domain.Cell{Row: 9, Col: 1},
	})
	require.NoError(t, err)

	res, err = eng.CheckAllFound(ctx)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, ReasonCompleted, res.Reason)
	require.NotNil(t, res.WinnerID)
	assert.Equal(t, "alice", *res.WinnerID) // 22 beats 5
	assert.Equal(t, map[string]int{"alice": 22, "bob": 5}, res.Scores)

	// ephemeral state is gone, the durable row is terminal
	assert.Empty(t, states.states)
	assert.Empty(t, states.solutions)
	assert.Equal(t, 1, sessions.appliedCalls)
}

func TestFinalizeTieHasNoWinner(t *testing.T) {
	eng, _, sessions := newTestEngine(t)

	res, err := eng.Finalize(context.Background(), ReasonTimeout, "")
	require.NoError(t, err)

	assert.Nil(t, res.WinnerID)
	assert.Nil(t, res.LoserID)
	assert.Nil(t, sessions.lastWinner)
	assert.Nil(t, sessions.lastLoser)
	assert.Equal(t, ReasonTimeout, res.Reason)
}

func TestFinalizeAbandonerLosesRegardlessOfScore(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	ctx := context.Background()

	// alice leads on points but abandons
	_, err := eng.ValidateSelection(ctx, "alice", domain.Placement{
		Word:  "PYTHON",
		Start: domain.Cell{Row: 5, Col: 5},
		End:   domain.Cell{Row: 0, Col: 0},
	})
	require.NoError(t, err)

	res, err := eng.Finalize(ctx, ReasonAbandon, "alice")
	require.NoError(t, err)

	require.NotNil(t, res.WinnerID)
	assert.Equal(t, "bob", *res.WinnerID)
	require.NotNil(t, res.LoserID)
	assert.Equal(t, "alice", *res.LoserID)
}

func TestFinalizeIsIdempotent(t *testing.T) {
	eng, _, sessions := newTestEngine(t)
	ctx := context.Background()

	_, err := eng.Finalize(ctx, ReasonTimeout, "")
	require.NoError(t, err)

	// the state was deleted after the first finalize; rebuild it the way a
	// racing caller would still see it
	grid, solutions := pythonGrid(10)
	require.NoError(t, eng.states.SaveState(ctx, eng.GameID(), &domain.GameState{
		Grid:          grid,
		WordsToFind:   solutions.Words(),
		RealtimeScore: map[string]int{"alice": 0, "bob": 0},
		WordsFound:    map[string][]domain.Placement{"alice": {}, "bob": {}},
	}))

	_, err = eng.Finalize(ctx, ReasonTimeout, "")
	assert.ErrorIs(t, err, ErrAlreadyFinalized)
	assert.Equal(t, 2, sessions.finalizeCalls)
	assert.Equal(t, 1, sessions.appliedCalls, "counters must move exactly once")
}

func TestFinalizeKeepsStateOnDurableFailure(t *testing.T) {
	eng, states, sessions := newTestEngine(t)
	sessions.finalizeErr = errors.New("connection refused")

	_, err := eng.Finalize(context.Background(), ReasonTimeout, "")
	require.Error(t, err)

	// retryable: nothing ephemeral was thrown away
	assert.Contains(t, states.states, eng.GameID())
	assert.Contains(t, states.solutions, eng.GameID())
}

func TestMarkStartedPersistsStartTimestamp(t *testing.T) {
	eng, states, _ := newTestEngine(t)

	require.NoError(t, eng.MarkStarted(context.Background(), 1700000000))

	state := states.states[eng.GameID()]
	assert.Equal(t, domain.StatusInProgress, state.Status)
	assert.Equal(t, int64(1700000000), state.StartedAt)
}

func TestFinalizeRequiresTwoPlayers(t *testing.T) {
	states := newFakeStateStore()
	sessions := newFakeSessionStore()
	eng := New("game-solo", states, sessions)

	require.NoError(t, states.SaveState(context.Background(), "game-solo", &domain.GameState{
		RealtimeScore: map[string]int{"alice": 10},
	}))

	_, err := eng.Finalize(context.Background(), ReasonTimeout, "")
	assert.ErrorIs(t, err, ErrInsufficientPlayers)
}
