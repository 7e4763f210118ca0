package ws

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"wordsearch_arena/internal/domain"
	"wordsearch_arena/internal/engine"
	"wordsearch_arena/internal/logger"
)

const maxPlayers = 2

// Config tunes every room the registry creates.
type Config struct {
	CountdownSeconds int
	GameDuration     time.Duration
}

type eventKind int

const (
	evJoin eventKind = iota
	evLeave
	evMessage
	evCountdownTick
	evDurationElapsed
)

type roomEvent struct {
	kind   eventKind
	client *Client
	raw    []byte
}

type playerSlot struct {
	client   *Client
	username string
}

// Room drives one session's state machine. All mutable room state is owned
// by the run loop: every join, disconnect, player message and timer fire is
// an event processed strictly one at a time, so score updates apply in
// receipt order and no locking is needed inside the room.
type Room struct {
	ID string

	registry *Registry
	engine   *engine.Engine
	cfg      Config

	events chan roomEvent
	done   chan struct{}

	// loop-owned state below
	players map[string]*playerSlot
	known   map[string]string // player id -> username, survives disconnects
	ready   map[string]bool
	status  domain.SessionStatus

	startedAt      time.Time
	countdownLeft  int
	countdownTimer *time.Timer
	durationTimer  *time.Timer
	closing        bool
}

func newRoom(id string, eng *engine.Engine, registry *Registry, cfg Config) *Room {
	return &Room{
		ID:       id,
		registry: registry,
		engine:   eng,
		cfg:      cfg,
		events:   make(chan roomEvent, 64),
		done:     make(chan struct{}),
		players:  make(map[string]*playerSlot),
		known:    make(map[string]string),
		ready:    make(map[string]bool),
		status:   domain.StatusWaitingForPlayers,
	}
}

// HandleIncoming forwards a raw frame into the room loop.
func (r *Room) HandleIncoming(c *Client, raw []byte) {
	r.post(roomEvent{kind: evMessage, client: c, raw: raw})
}

// Leave signals that a client's connection is gone.
func (r *Room) Leave(c *Client) {
	r.post(roomEvent{kind: evLeave, client: c})
}

func (r *Room) post(ev roomEvent) {
	select {
	case r.events <- ev:
	case <-r.done:
	}
}

// join is called by the registry with its mutex held; the room is
// guaranteed to still be draining events at that point.
func (r *Room) join(c *Client) bool {
	select {
	case r.events <- roomEvent{kind: evJoin, client: c}:
		return true
	default:
		return false
	}
}

func (r *Room) run() {
	r.restore()
	activeRooms.Inc()

	for !r.closing {
		r.dispatch(<-r.events)
	}

	r.shutdown()
}

func (r *Room) dispatch(ev roomEvent) {
	switch ev.kind {
	case evJoin:
		r.handleJoin(ev.client)
	case evLeave:
		r.handleLeave(ev.client)
	case evMessage:
		r.handleMessage(ev.client, ev.raw)
	case evCountdownTick:
		r.handleCountdownTick()
	case evDurationElapsed:
		r.handleDurationElapsed()
	}
}

// restore adopts an in-progress session after a room rebuild (both players
// dropped mid-game, or the process restarted): the persisted started_at
// lets the duration timer resume where it left off.
func (r *Room) restore() {
	ctx, cancel := r.opCtx()
	defer cancel()

	state, err := r.engine.State(ctx)
	if err != nil {
		return
	}
	for pid := range state.RealtimeScore {
		r.known[pid] = ""
	}
	if state.Status != domain.StatusInProgress || state.StartedAt == 0 {
		return
	}

	r.status = domain.StatusInProgress
	r.startedAt = time.Unix(state.StartedAt, 0)

	remaining := r.cfg.GameDuration - time.Since(r.startedAt)
	if remaining < 0 {
		remaining = 0
	}
	r.durationTimer = time.AfterFunc(remaining, func() {
		r.post(roomEvent{kind: evDurationElapsed})
	})
	logger.Info("room restored mid-game", "game_id", r.ID, "remaining", remaining)
}

// --- joins and departures -------------------------------------------------

func (r *Room) handleJoin(c *Client) {
	c.room = r

	_, seen := r.known[c.PlayerID]
	if seen && r.status != domain.StatusWaitingForPlayers {
		r.handleReconnect(c)
		return
	}

	if len(r.players) >= maxPlayers {
		r.sendTo(c, errorMsg{Type: MsgError, Reason: "room is full"})
		c.conn.Close()
		return
	}

	r.players[c.PlayerID] = &playerSlot{client: c, username: c.Username}
	r.known[c.PlayerID] = c.Username

	logger.Info("player joined room", "game_id", r.ID, "player_id", c.PlayerID,
		"players", len(r.players))

	r.sendTo(c, waitingForOpponentMsg{
		Type:        MsgWaitingForOpponent,
		Message:     "waiting for an opponent...",
		PlayerCount: len(r.players),
		MaxPlayers:  maxPlayers,
	})

	r.broadcastExcept(c.PlayerID, playerJoinedMsg{
		Type:        MsgPlayerJoined,
		PlayerID:    c.PlayerID,
		Username:    c.Username,
		PlayerCount: len(r.players),
	})

	if len(r.players) == maxPlayers {
		r.startPreparation()
	}
}

func (r *Room) handleReconnect(c *Client) {
	if old, ok := r.players[c.PlayerID]; ok && old.client != c {
		old.client.conn.Close()
	}
	r.players[c.PlayerID] = &playerSlot{client: c, username: c.Username}
	r.known[c.PlayerID] = c.Username

	ctx, cancel := r.opCtx()
	defer cancel()

	state, err := r.engine.State(ctx)
	if err != nil {
		logger.Error("reconnect: state unavailable", "game_id", r.ID, "error", err)
		r.sendTo(c, errorMsg{Type: MsgError, Reason: "game state unavailable"})
		return
	}

	msg := reconnectedMsg{
		Type:            MsgReconnected,
		Status:          r.status,
		GameData:        state,
		Opponent:        r.opponentInfo(c.PlayerID, state),
		DurationSeconds: int(r.cfg.GameDuration.Seconds()),
	}
	if r.status == domain.StatusInProgress {
		remaining := r.timeRemaining()
		msg.StartTimestamp = r.startedAt.Unix()
		msg.TimeRemaining = &remaining
	}
	r.sendTo(c, msg)

	r.broadcastExcept(c.PlayerID, opponentPresenceMsg{
		Type:     MsgOpponentReconnected,
		PlayerID: c.PlayerID,
		Username: c.Username,
	})

	logger.Info("player reconnected", "game_id", r.ID, "player_id", c.PlayerID)
}

func (r *Room) handleLeave(c *Client) {
	slot, ok := r.players[c.PlayerID]
	if !ok || slot.client != c {
		return
	}

	delete(r.players, c.PlayerID)
	delete(r.ready, c.PlayerID)

	r.broadcast(opponentPresenceMsg{
		Type:     MsgOpponentDisconnected,
		PlayerID: c.PlayerID,
		Message:  "your opponent disconnected",
	})

	logger.Info("player left room", "game_id", r.ID, "player_id", c.PlayerID,
		"status", r.status)

	// An in-progress game survives an empty room: the duration timer still
	// runs and a reconnecting player finds the session where they left it.
	if len(r.players) == 0 && r.status != domain.StatusInProgress {
		r.closing = true
	}
}

// --- message dispatch -----------------------------------------------------

func (r *Room) handleMessage(c *Client, raw []byte) {
	if _, ok := r.players[c.PlayerID]; !ok {
		return
	}

	msg, err := decodeClientMessage(raw)
	if err != nil {
		r.sendTo(c, errorMsg{Type: MsgError, Reason: "malformed message"})
		return
	}

	switch msg.Type {
	case MsgPlayerReady:
		r.handlePlayerReady(c)
	case MsgSubmitSelection:
		r.handleSubmitSelection(c, msg)
	case MsgAbandon:
		r.handleAbandon(c)
	case MsgSelectionUpdate:
		r.relayToOpponent(c, msg.Raw)
	default:
		// permissive default: unrecognized traffic goes to the opponent
		r.relayToOpponent(c, msg.Raw)
	}
}

func (r *Room) handlePlayerReady(c *Client) {
	if r.status != domain.StatusPreparing {
		logger.Debug("player_ready ignored", "game_id", r.ID, "status", r.status)
		return
	}

	r.ready[c.PlayerID] = true

	r.broadcastExcept(c.PlayerID, opponentReadyMsg{
		Type:       MsgOpponentReady,
		PlayerID:   c.PlayerID,
		ReadyCount: len(r.ready),
	})

	if len(r.ready) >= maxPlayers {
		r.startCountdown()
	}
}

func (r *Room) handleSubmitSelection(c *Client, msg *ClientMessage) {
	if r.status != domain.StatusInProgress {
		r.sendTo(c, errorMsg{Type: MsgError, Reason: "game is not in progress"})
		return
	}
	if msg.Solution == nil {
		r.sendTo(c, errorMsg{Type: MsgError, Reason: "missing solution"})
		return
	}

	ctx, cancel := r.opCtx()
	defer cancel()

	result, err := r.engine.ValidateSelection(ctx, c.PlayerID, *msg.Solution)
	if err != nil {
		logger.Error("validate selection failed", "game_id", r.ID, "error", err)
		r.sendTo(c, errorMsg{Type: MsgError, Reason: "internal error"})
		return
	}

	if !result.Success {
		r.sendTo(c, errorMsg{Type: MsgError, Reason: result.Reason})
		return
	}

	wordsFound.Inc()

	r.broadcast(wordFoundMsg{
		Type:         MsgWordFoundSuccess,
		NewSolution:  result.NewSolution,
		PointsDetail: result.PointsDetail,
		PointsEarned: result.PointsEarned,
		NewScore:     result.NewScore,
		FoundBy:      r.known[c.PlayerID],
	})
	r.broadcast(scoreUpdateMsg{
		Type:     MsgScoreUpdate,
		PlayerID: c.PlayerID,
		NewScore: result.NewScore,
	})

	final, err := r.engine.CheckAllFound(ctx)
	if err != nil && !errors.Is(err, engine.ErrAlreadyFinalized) {
		logger.Error("completion check failed", "game_id", r.ID, "error", err)
		return
	}
	if final != nil && err == nil {
		r.finish(final, "")
	}
}

func (r *Room) handleAbandon(c *Client) {
	if r.status == domain.StatusFinished {
		return
	}

	// cancel before finalizing so a racing duration timer cannot fire a
	// second finalize
	r.stopTimers()

	ctx, cancel := r.opCtx()
	defer cancel()

	result, err := r.engine.Finalize(ctx, engine.ReasonAbandon, c.PlayerID)
	if err != nil {
		if errors.Is(err, engine.ErrAlreadyFinalized) {
			return
		}
		logger.Error("abandon finalize failed", "game_id", r.ID, "error", err)
		r.sendTo(c, errorMsg{Type: MsgError, Reason: "could not finalize game"})
		return
	}

	r.finish(result, c.PlayerID)
}

func (r *Room) relayToOpponent(c *Client, raw json.RawMessage) {
	opponent := r.opponentOf(c.PlayerID)
	if opponent == nil {
		return
	}

	// annotate with the sender before relaying
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return
	}
	payload["from"] = r.known[c.PlayerID]
	r.sendTo(opponent.client, payload)
}

// --- state transitions ----------------------------------------------------

func (r *Room) startPreparation() {
	r.status = domain.StatusPreparing
	clear(r.ready)

	ctx, cancel := r.opCtx()
	defer cancel()

	state, err := r.engine.State(ctx)
	if err != nil {
		logger.Error("prepare: state unavailable", "game_id", r.ID, "error", err)
		r.broadcast(errorMsg{Type: MsgError, Reason: "game data unavailable"})
		return
	}

	for pid, slot := range r.players {
		r.sendTo(slot.client, prepareGameMsg{
			Type:     MsgPrepareGame,
			GameData: state,
			Opponent: r.opponentInfo(pid, state),
			Message:  "loading the game...",
		})
	}

	logger.Info("room full, preparing", "game_id", r.ID)
}

func (r *Room) startCountdown() {
	r.status = domain.StatusCountdown
	r.countdownLeft = r.cfg.CountdownSeconds

	r.broadcast(countdownMsg{Type: MsgCountdown, Seconds: r.countdownLeft})
	r.countdownTimer = time.AfterFunc(time.Second, func() {
		r.post(roomEvent{kind: evCountdownTick})
	})
}

func (r *Room) handleCountdownTick() {
	if r.status != domain.StatusCountdown {
		return
	}

	r.countdownLeft--
	if r.countdownLeft > 0 {
		r.broadcast(countdownMsg{Type: MsgCountdown, Seconds: r.countdownLeft})
		r.countdownTimer = time.AfterFunc(time.Second, func() {
			r.post(roomEvent{kind: evCountdownTick})
		})
		return
	}

	r.startGame()
}

func (r *Room) startGame() {
	r.status = domain.StatusInProgress
	r.startedAt = time.Now()

	ctx, cancel := r.opCtx()
	defer cancel()
	if err := r.engine.MarkStarted(ctx, r.startedAt.Unix()); err != nil {
		logger.Error("failed to persist game start", "game_id", r.ID, "error", err)
	}

	r.broadcast(gameStartMsg{
		Type:            MsgGameStart,
		StartTimestamp:  r.startedAt.Unix(),
		DurationSeconds: int(r.cfg.GameDuration.Seconds()),
	})

	r.durationTimer = time.AfterFunc(r.cfg.GameDuration, func() {
		r.post(roomEvent{kind: evDurationElapsed})
	})

	logger.Info("game started", "game_id", r.ID, "duration", r.cfg.GameDuration)
}

func (r *Room) handleDurationElapsed() {
	if r.status != domain.StatusInProgress {
		return
	}

	ctx, cancel := r.opCtx()
	defer cancel()

	result, err := r.engine.Finalize(ctx, engine.ReasonTimeout, "")
	if err != nil {
		if errors.Is(err, engine.ErrAlreadyFinalized) {
			return
		}
		logger.Error("timeout finalize failed", "game_id", r.ID, "error", err)
		return
	}

	r.finish(result, "")
}

// finish broadcasts the terminal result. The engine has already committed
// the durable outcome and cleared the ephemeral state.
func (r *Room) finish(result *engine.FinalizeResult, abandonPlayerID string) {
	r.stopTimers()
	r.status = domain.StatusFinished

	msg := gameFinishedMsg{
		Type:     MsgGameFinished,
		Reason:   result.Reason,
		WinnerID: result.WinnerID,
		LoserID:  result.LoserID,
		Scores:   result.Scores,
	}
	if result.WinnerID != nil {
		msg.WinnerUsername = r.known[*result.WinnerID]
	}
	if abandonPlayerID != "" {
		msg.AbandonPlayerID = abandonPlayerID
		msg.AbandonUsername = r.known[abandonPlayerID]
	}
	r.broadcast(msg)

	logger.Info("game finished", "game_id", r.ID, "reason", result.Reason,
		"winner", result.WinnerID)

	if len(r.players) == 0 {
		r.closing = true
	}
}

// --- helpers --------------------------------------------------------------

func (r *Room) stopTimers() {
	if r.countdownTimer != nil {
		r.countdownTimer.Stop()
		r.countdownTimer = nil
	}
	if r.durationTimer != nil {
		r.durationTimer.Stop()
		r.durationTimer = nil
	}
}

func (r *Room) timeRemaining() int {
	remaining := r.cfg.GameDuration - time.Since(r.startedAt)
	if remaining < 0 {
		remaining = 0
	}
	return int(remaining.Seconds())
}

func (r *Room) opponentOf(playerID string) *playerSlot {
	for pid, slot := range r.players {
		if pid != playerID {
			return slot
		}
	}
	return nil
}

func (r *Room) opponentInfo(playerID string, state *domain.GameState) *OpponentInfo {
	var opponentID string
	for pid := range r.known {
		if pid != playerID {
			opponentID = pid
			break
		}
	}
	if opponentID == "" {
		return nil
	}

	info := &OpponentInfo{ID: opponentID, Username: r.known[opponentID]}
	if state != nil {
		info.Score = state.RealtimeScore[opponentID]
	}
	return info
}

func (r *Room) sendTo(target any, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Error("marshal outbound message", "game_id", r.ID, "error", err)
		return
	}

	switch t := target.(type) {
	case *Client:
		t.enqueue(data)
	case *playerSlot:
		t.client.enqueue(data)
	}
}

func (r *Room) broadcast(msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Error("marshal broadcast", "game_id", r.ID, "error", err)
		return
	}
	for _, slot := range r.players {
		slot.client.enqueue(data)
	}
}

func (r *Room) broadcastExcept(exclude string, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Error("marshal broadcast", "game_id", r.ID, "error", err)
		return
	}
	for pid, slot := range r.players {
		if pid != exclude {
			slot.client.enqueue(data)
		}
	}
}

func (r *Room) opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// shutdown removes the room from the registry, then redirects any join that
// slipped into the buffer before removal so nobody gets lost.
func (r *Room) shutdown() {
	r.stopTimers()
	select {
	case <-r.done:
	default:
		close(r.done)
	}
	r.registry.remove(r)
	activeRooms.Dec()

	for {
		select {
		case ev := <-r.events:
			if ev.kind == evJoin {
				r.registry.Join(r.ID, ev.client)
			}
		default:
			logger.Info("room closed", "game_id", r.ID)
			return
		}
	}
}
