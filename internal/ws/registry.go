package ws

import (
	"sync"

	"wordsearch_arena/internal/engine"
	"wordsearch_arena/internal/logger"
)

// EngineFactory builds the engine for a session id.
type EngineFactory func(gameID string) *engine.Engine

// Registry maps session ids to their rooms. It is the one structure shared
// between connection arrival and room teardown, so get-or-create and
// delete-if-empty both happen under its mutex: two connections for one
// session can never spawn two rooms, and a room that just accepted a join
// is never deleted out from under it.
type Registry struct {
	mu        sync.Mutex
	rooms     map[string]*Room
	newEngine EngineFactory
	cfg       Config
}

func NewRegistry(newEngine EngineFactory, cfg Config) *Registry {
	return &Registry{
		rooms:     make(map[string]*Room),
		newEngine: newEngine,
		cfg:       cfg,
	}
}

// Join attaches a client to the session's room, creating the room lazily.
func (g *Registry) Join(gameID string, c *Client) {
	g.mu.Lock()
	room, ok := g.rooms[gameID]
	if !ok {
		room = newRoom(gameID, g.newEngine(gameID), g, g.cfg)
		g.rooms[gameID] = room
		go room.run()
		logger.Info("room created", "game_id", gameID)
	}
	accepted := room.join(c)
	g.mu.Unlock()

	if !accepted {
		logger.Warn("room event buffer full, rejecting connection", "game_id", gameID)
		c.conn.Close()
	}
}

// remove is called by the room itself when its loop exits.
func (g *Registry) remove(r *Room) {
	g.mu.Lock()
	if g.rooms[r.ID] == r {
		delete(g.rooms, r.ID)
	}
	g.mu.Unlock()
}

// Count reports the number of live rooms.
func (g *Registry) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.rooms)
}
