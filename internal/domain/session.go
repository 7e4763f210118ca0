package domain

import "time"

// GameType - which game a queue entry or session belongs to
type GameType string

const (
	GameTypeWordSearch GameType = "wordsearch"
)

// AllGameTypes lists every queue the matchmaking consumer drains.
var AllGameTypes = []GameType{GameTypeWordSearch}

// SessionStatus - lifecycle status of a session
type SessionStatus string

const (
	StatusWaitingForPlayers SessionStatus = "waiting_for_players"
	StatusPreparing         SessionStatus = "prepare_game"
	StatusCountdown         SessionStatus = "starting_countdown"
	StatusInProgress        SessionStatus = "game_in_progress"
	StatusFinished          SessionStatus = "game_finished"
	StatusClosed            SessionStatus = "game_closed"
)

// GameSession is the durable record. It is created by the matchmaking
// consumer and mutated exactly once afterwards, by GameEngine.Finalize.
type GameSession struct {
	GameID    string         `db:"game_id" json:"game_id"`
	GameName  GameType       `db:"game_name" json:"game_name"`
	Player1ID string         `db:"player1_id" json:"player1_id"`
	Player2ID string         `db:"player2_id" json:"player2_id"`
	GameData  map[string]any `db:"game_data" json:"game_data,omitempty"`
	WinnerID  *string        `db:"winner_id" json:"winner_id,omitempty"`
	Status    SessionStatus  `db:"status" json:"status"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}
