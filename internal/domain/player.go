package domain

import "time"

// Player is owned by the identity layer; the game core only needs the id
// and display name plus the aggregate counters it increments on finalize.
type Player struct {
	PlayerID  string    `db:"player_id" json:"player_id"`
	Username  string    `db:"username" json:"username"`
	Victories int       `db:"victories" json:"victories"`
	Defeats   int       `db:"defeats" json:"defeats"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// PlayerStats - aggregate win/loss counters for profile and leaderboard views
type PlayerStats struct {
	PlayerID  string `json:"player_id"`
	Username  string `json:"username"`
	Victories int    `json:"victories"`
	Defeats   int    `json:"defeats"`
}
