// FILE: internal/storage/game.go
package storage

import (
	"database/sql"
	"fmt"
)

// RecordNewGame asynchronously records a new game
func (s *Store) RecordNewGame(record GameRecord) {
	s.enqueue("game", func(tx *sql.Tx) error {
		query := `INSERT INTO games (
			game_id, initial_fen, clock_seconds, start_time_utc, status
		) VALUES (?, ?, ?, ?, ?)`

		status := record.Status
		if status == "" {
			status = "active"
		}
		_, err := tx.Exec(query,
			record.GameID, record.InitialFEN, record.ClockSeconds,
			record.StartTimeUTC, status,
		)
		return err
	})
}

// RecordMove asynchronously records an accepted move
func (s *Store) RecordMove(record MoveRecord) {
	s.enqueue("move", func(tx *sql.Tx) error {
		query := `INSERT INTO moves (
			game_id, move_number, from_sq, to_sq, notation,
			player_color, captured, clock_remaining, move_time_utc
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

		_, err := tx.Exec(query,
			record.GameID, record.MoveNumber, record.FromSquare, record.ToSquare, record.Notation,
			record.PlayerColor, record.Captured, record.ClockRemaining, record.MoveTimeUTC,
		)
		return err
	})
}

// RecordResult asynchronously stores the final status of a game
func (s *Store) RecordResult(record ResultRecord) {
	s.enqueue("result", func(tx *sql.Tx) error {
		query := `UPDATE games
			SET status = ?, winner = ?, flag_fall = ?, end_time_utc = ?
			WHERE game_id = ?`

		_, err := tx.Exec(query,
			record.Status, record.Winner, record.FlagFall, record.EndTimeUTC, record.GameID,
		)
		return err
	})
}

// QueryGames retrieves games with optional filtering; "" or "*" matches all
func (s *Store) QueryGames(gameID, status string) ([]GameRecord, error) {
	query := `SELECT
		game_id, initial_fen, clock_seconds, start_time_utc,
		status, winner, flag_fall, end_time_utc
	FROM games WHERE 1=1`

	var args []any

	if gameID != "" && gameID != "*" {
		query += " AND game_id = ?"
		args = append(args, gameID)
	}

	if status != "" && status != "*" {
		query += " AND status = ?"
		args = append(args, status)
	}

	query += " ORDER BY start_time_utc DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var games []GameRecord
	for rows.Next() {
		var g GameRecord
		err := rows.Scan(
			&g.GameID, &g.InitialFEN, &g.ClockSeconds, &g.StartTimeUTC,
			&g.Status, &g.Winner, &g.FlagFall, &g.EndTimeUTC,
		)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		games = append(games, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return games, nil
}

// QueryMoves returns the moves of one game in play order
func (s *Store) QueryMoves(gameID string) ([]MoveRecord, error) {
	rows, err := s.db.Query(`SELECT
		move_id, game_id, move_number, from_sq, to_sq, notation,
		player_color, captured, clock_remaining, move_time_utc
	FROM moves WHERE game_id = ? ORDER BY move_number`, gameID)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var moves []MoveRecord
	for rows.Next() {
		var m MoveRecord
		err := rows.Scan(
			&m.MoveID, &m.GameID, &m.MoveNumber, &m.FromSquare, &m.ToSquare, &m.Notation,
			&m.PlayerColor, &m.Captured, &m.ClockRemaining, &m.MoveTimeUTC,
		)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		moves = append(moves, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return moves, nil
}
