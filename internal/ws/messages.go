package ws

import (
	"encoding/json"

	"wordsearch_arena/internal/domain"
	"wordsearch_arena/internal/engine"
)

// ClientMsgType - closed set of message types a player may send. Anything
// outside the set is relayed verbatim to the opponent (game-specific preview
// traffic rides on this).
type ClientMsgType string

const (
	MsgPlayerReady     ClientMsgType = "player_ready"
	MsgSelectionUpdate ClientMsgType = "selection_update"
	MsgSubmitSelection ClientMsgType = "submit_selection"
	MsgAbandon         ClientMsgType = "abandon"
)

// ClientMessage is the decoded envelope of an incoming frame. Raw keeps the
// original bytes so relayed messages pass through untouched.
type ClientMessage struct {
	Type     ClientMsgType     `json:"type"`
	Solution *domain.Placement `json:"solution,omitempty"`

	Raw json.RawMessage `json:"-"`
}

func decodeClientMessage(raw []byte) (*ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, err
	}
	msg.Raw = json.RawMessage(raw)
	return &msg, nil
}

// Server → client message types.
const (
	MsgWaitingForOpponent   = "waiting_for_opponent"
	MsgPlayerJoined         = "player_joined"
	MsgPrepareGame          = "prepare_game"
	MsgOpponentReady        = "opponent_ready"
	MsgCountdown            = "starting_countdown"
	MsgGameStart            = "game_start"
	MsgWordFoundSuccess     = "word_found_success"
	MsgScoreUpdate          = "score_update"
	MsgReconnected          = "reconnected"
	MsgOpponentReconnected  = "opponent_reconnected"
	MsgOpponentDisconnected = "opponent_disconnected"
	MsgGameFinished         = "game_finished"
	MsgError                = "error"
)

// OpponentInfo is the public identity of the other player.
type OpponentInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Score    int    `json:"score"`
}

type waitingForOpponentMsg struct {
	Type        string `json:"type"`
	Message     string `json:"message"`
	PlayerCount int    `json:"player_count"`
	MaxPlayers  int    `json:"max_players"`
}

type playerJoinedMsg struct {
	Type        string `json:"type"`
	PlayerID    string `json:"player_id"`
	Username    string `json:"username"`
	PlayerCount int    `json:"player_count"`
}

type prepareGameMsg struct {
	Type     string            `json:"type"`
	GameData *domain.GameState `json:"game_data"`
	Opponent *OpponentInfo     `json:"opponent"`
	Message  string            `json:"message"`
}

type opponentReadyMsg struct {
	Type       string `json:"type"`
	PlayerID   string `json:"player_id"`
	ReadyCount int    `json:"ready_count"`
}

type countdownMsg struct {
	Type    string `json:"type"`
	Seconds int    `json:"seconds"`
}

type gameStartMsg struct {
	Type            string `json:"type"`
	StartTimestamp  int64  `json:"start_timestamp"`
	DurationSeconds int    `json:"duration_seconds"`
}

type wordFoundMsg struct {
	Type         string               `json:"type"`
	NewSolution  *domain.Placement    `json:"new_solution"`
	PointsDetail *engine.PointsDetail `json:"points_detail"`
	PointsEarned int                  `json:"points_earned"`
	NewScore     int                  `json:"new_score"`
	FoundBy      string               `json:"found_by"`
}

type scoreUpdateMsg struct {
	Type     string `json:"type"`
	PlayerID string `json:"player_id"`
	NewScore int    `json:"new_score"`
}

type reconnectedMsg struct {
	Type            string               `json:"type"`
	Status          domain.SessionStatus `json:"status"`
	GameData        *domain.GameState    `json:"game_data"`
	Opponent        *OpponentInfo        `json:"opponent"`
	StartTimestamp  int64                `json:"start_timestamp,omitempty"`
	TimeRemaining   *int                 `json:"time_remaining,omitempty"`
	DurationSeconds int                  `json:"duration_seconds"`
}

type opponentPresenceMsg struct {
	Type     string `json:"type"`
	PlayerID string `json:"player_id"`
	Username string `json:"username,omitempty"`
	Message  string `json:"message,omitempty"`
}

type gameFinishedMsg struct {
	Type            string         `json:"type"`
	Reason          string         `json:"reason"`
	WinnerID        *string        `json:"winner_id"`
	WinnerUsername  string         `json:"winner_username,omitempty"`
	LoserID         *string        `json:"loser_id"`
	Scores          map[string]int `json:"scores"`
	AbandonPlayerID string         `json:"abandon_player_id,omitempty"`
	AbandonUsername string         `json:"abandon_username,omitempty"`
}

type errorMsg struct {
	Type    string `json:"type"`
	Reason  string `json:"reason"`
	Success bool   `json:"success"`
}
