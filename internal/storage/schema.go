// FILE: internal/storage/schema.go
package storage

import (
	"database/sql"
	"time"
)

// GameRecord represents a row in the games table
type GameRecord struct {
	GameID       string       `db:"game_id"`
	InitialFEN   string       `db:"initial_fen"`
	ClockSeconds int          `db:"clock_seconds"`
	StartTimeUTC time.Time    `db:"start_time_utc"`
	Status       string       `db:"status"` // "active", "check", "checkmate"
	Winner       string       `db:"winner"` // "w", "b" or empty
	FlagFall     bool         `db:"flag_fall"`
	EndTimeUTC   sql.NullTime `db:"end_time_utc"`
}

// MoveRecord represents a row in the moves table
type MoveRecord struct {
	MoveID         int64     `db:"move_id"`
	GameID         string    `db:"game_id"`
	MoveNumber     int       `db:"move_number"`
	FromSquare     string    `db:"from_sq"`
	ToSquare       string    `db:"to_sq"`
	Notation       string    `db:"notation"`
	PlayerColor    string    `db:"player_color"` // "w" or "b"
	Captured       string    `db:"captured"`     // piece kind, empty if none
	ClockRemaining int       `db:"clock_remaining"`
	MoveTimeUTC    time.Time `db:"move_time_utc"`
}

// ResultRecord closes a game row
type ResultRecord struct {
	GameID     string
	Status     string
	Winner     string
	FlagFall   bool
	EndTimeUTC time.Time
}

// Schema defines the SQLite database structure
const Schema = `
CREATE TABLE IF NOT EXISTS games (
	game_id TEXT PRIMARY KEY,
	initial_fen TEXT NOT NULL,
	clock_seconds INTEGER NOT NULL,
	start_time_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	status TEXT NOT NULL DEFAULT 'active' CHECK(status IN ('active', 'check', 'checkmate')),
	winner TEXT NOT NULL DEFAULT '' CHECK(winner IN ('', 'w', 'b')),
	flag_fall INTEGER NOT NULL DEFAULT 0,
	end_time_utc DATETIME
);

CREATE TABLE IF NOT EXISTS moves (
	move_id INTEGER PRIMARY KEY AUTOINCREMENT,
	game_id TEXT NOT NULL,
	move_number INTEGER NOT NULL,
	from_sq TEXT NOT NULL,
	to_sq TEXT NOT NULL,
	notation TEXT NOT NULL,
	player_color TEXT NOT NULL CHECK(player_color IN ('w', 'b')),
	captured TEXT NOT NULL DEFAULT '',
	clock_remaining INTEGER NOT NULL,
	move_time_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (game_id) REFERENCES games(game_id) ON DELETE CASCADE,
	UNIQUE(game_id, move_number)
);

CREATE INDEX IF NOT EXISTS idx_moves_game_id ON moves(game_id);
CREATE INDEX IF NOT EXISTS idx_games_status ON games(status);
`
