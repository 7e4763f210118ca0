package matchmaking

import (
	"context"
	"errors"
	"testing"
	"time"

	"wordsearch_arena/internal/domain"
	"wordsearch_arena/internal/engine"
	"wordsearch_arena/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueue struct {
	queues map[domain.GameType][]string
	notes  map[string]state.MatchNotification
	daily  int
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{
		queues: map[domain.GameType][]string{},
		notes:  map[string]state.MatchNotification{},
	}
}

func (f *fakeQueue) QueueLength(_ context.Context, game domain.GameType) (int64, error) {
	return int64(len(f.queues[game])), nil
}

func (f *fakeQueue) DequeuePair(_ context.Context, game domain.GameType) (string, string, error) {
	var p1, p2 string
	q := f.queues[game]
	if len(q) > 0 {
		p1, q = q[0], q[1:]
	}
	if len(q) > 0 {
		p2, q = q[0], q[1:]
	}
	f.queues[game] = q
	return p1, p2, nil
}

func (f *fakeQueue) RequeuePlayers(_ context.Context, game domain.GameType, playerIDs ...string) error {
	for _, pid := range playerIDs {
		if pid != "" {
			f.queues[game] = append(f.queues[game], pid)
		}
	}
	return nil
}

func (f *fakeQueue) SetMatchNotification(_ context.Context, playerID string, note state.MatchNotification, _ time.Duration) error {
	f.notes[playerID] = note
	return nil
}

func (f *fakeQueue) IncrDailySessions(context.Context) error {
	f.daily++
	return nil
}

type fakeWords struct{}

func (fakeWords) RandomTheme(context.Context) (string, []string, error) {
	return "space", []string{"GALAXY", "NEBULA", "COMET"}, nil
}

type failingWords struct{}

func (failingWords) RandomTheme(context.Context) (string, []string, error) {
	return "", nil, errors.New("word_lists is empty")
}

// in-memory engine backends, enough for InitializeSession
type memStates struct {
	states    map[string]*domain.GameState
	solutions map[string]*domain.SolutionSet
}

func newMemStates() *memStates {
	return &memStates{
		states:    map[string]*domain.GameState{},
		solutions: map[string]*domain.SolutionSet{},
	}
}

func (m *memStates) GetState(_ context.Context, id string) (*domain.GameState, error) {
	s, ok := m.states[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return s, nil
}
func (m *memStates) SaveState(_ context.Context, id string, s *domain.GameState) error {
	m.states[id] = s
	return nil
}
func (m *memStates) DeleteState(_ context.Context, id string) error {
	delete(m.states, id)
	return nil
}
func (m *memStates) GetSolutions(_ context.Context, id string) (*domain.SolutionSet, error) {
	s, ok := m.solutions[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return s, nil
}
func (m *memStates) SaveSolutions(_ context.Context, id string, s *domain.SolutionSet) error {
	m.solutions[id] = s
	return nil
}
func (m *memStates) DeleteSolutions(_ context.Context, id string) error {
	delete(m.solutions, id)
	return nil
}

type memSessions struct {
	sessions  map[string]*domain.GameSession
	createErr error
}

func newMemSessions() *memSessions {
	return &memSessions{sessions: map[string]*domain.GameSession{}}
}

func (m *memSessions) CreateSession(_ context.Context, s *domain.GameSession) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.sessions[s.GameID] = s
	return nil
}
func (m *memSessions) GetSession(_ context.Context, id string) (*domain.GameSession, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return s, nil
}
func (m *memSessions) FinalizeSession(context.Context, string, *string, *string, map[string]any) (bool, error) {
	return true, nil
}

func newTestConsumer(queue *fakeQueue, words WordSource, sessions *memSessions) (*Consumer, *memStates) {
	states := newMemStates()
	factory := func(gameID string) *engine.Engine {
		return engine.New(gameID, states, sessions)
	}
	return NewConsumer(queue, words, factory, 10, 180*time.Second, time.Second), states
}

func TestTryMatchPairsTwoPlayers(t *testing.T) {
	queue := newFakeQueue()
	queue.queues[domain.GameTypeWordSearch] = []string{"alice", "bob"}
	sessions := newMemSessions()
	consumer, states := newTestConsumer(queue, fakeWords{}, sessions)

	require.NoError(t, consumer.tryMatch(context.Background(), domain.GameTypeWordSearch))

	assert.Empty(t, queue.queues[domain.GameTypeWordSearch])
	require.Len(t, sessions.sessions, 1)

	var gameID string
	for id, s := range sessions.sessions {
		gameID = id
		assert.Equal(t, "alice", s.Player1ID)
		assert.Equal(t, "bob", s.Player2ID)
		assert.Equal(t, domain.StatusWaitingForPlayers, s.Status)
	}

	// both sides got a notification naming the other
	require.Contains(t, queue.notes, "alice")
	require.Contains(t, queue.notes, "bob")
	assert.Equal(t, gameID, queue.notes["alice"].GameID)
	assert.Equal(t, "bob", queue.notes["alice"].OpponentID)
	assert.Equal(t, "alice", queue.notes["bob"].OpponentID)

	// ephemeral state was seeded
	st, ok := states.states[gameID]
	require.True(t, ok)
	assert.Equal(t, "space", st.Theme)
	assert.Equal(t, map[string]int{"alice": 0, "bob": 0}, st.RealtimeScore)

	assert.Equal(t, 1, queue.daily)
}

func TestTryMatchSkipsShortQueue(t *testing.T) {
	queue := newFakeQueue()
	queue.queues[domain.GameTypeWordSearch] = []string{"alice"}
	sessions := newMemSessions()
	consumer, _ := newTestConsumer(queue, fakeWords{}, sessions)

	require.NoError(t, consumer.tryMatch(context.Background(), domain.GameTypeWordSearch))

	assert.Equal(t, []string{"alice"}, queue.queues[domain.GameTypeWordSearch])
	assert.Empty(t, sessions.sessions)
	assert.Empty(t, queue.notes)
}

func TestTryMatchRequeuesBothOnSessionFailure(t *testing.T) {
	queue := newFakeQueue()
	queue.queues[domain.GameTypeWordSearch] = []string{"alice", "bob"}
	sessions := newMemSessions()
	sessions.createErr = errors.New("db down")
	consumer, _ := newTestConsumer(queue, fakeWords{}, sessions)

	err := consumer.tryMatch(context.Background(), domain.GameTypeWordSearch)
	require.Error(t, err)

	assert.ElementsMatch(t, []string{"alice", "bob"}, queue.queues[domain.GameTypeWordSearch])
	assert.Empty(t, queue.notes)
}

func TestTryMatchRequeuesBothWhenNoWordList(t *testing.T) {
	queue := newFakeQueue()
	queue.queues[domain.GameTypeWordSearch] = []string{"alice", "bob"}
	consumer, _ := newTestConsumer(queue, failingWords{}, newMemSessions())

	err := consumer.tryMatch(context.Background(), domain.GameTypeWordSearch)
	require.Error(t, err)

	assert.ElementsMatch(t, []string{"alice", "bob"}, queue.queues[domain.GameTypeWordSearch])
}

func TestProcessQueuesPairsFloorOfHalf(t *testing.T) {
	queue := newFakeQueue()
	queue.queues[domain.GameTypeWordSearch] = []string{"p1", "p2", "p3", "p4", "p5"}
	sessions := newMemSessions()
	consumer, _ := newTestConsumer(queue, fakeWords{}, sessions)

	// one pairing per poll per game type
	for i := 0; i < 5; i++ {
		consumer.processQueues(context.Background())
	}

	assert.Len(t, sessions.sessions, 2)
	assert.Equal(t, []string{"p5"}, queue.queues[domain.GameTypeWordSearch])
}
