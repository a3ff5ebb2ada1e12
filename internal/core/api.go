// FILE: internal/core/api.go
package core

// Request types

type CreateGameRequest struct {
	ClockSeconds int    `json:"clockSeconds,omitempty" validate:"omitempty,min=1,max=86400"`
	FEN          string `json:"fen,omitempty" validate:"omitempty,max=100"`
}

type MoveRequest struct {
	Move string `json:"move" validate:"required,len=4"` // coordinate form, e.g. "e2e4"
}

// Response types

type GameResponse struct {
	GameID   string         `json:"gameId"`
	FEN      string         `json:"fen"`
	Turn     string         `json:"turn"`   // "w" or "b"
	Status   string         `json:"status"` // "active", "check", "checkmate"
	Winner   string         `json:"winner,omitempty"`
	FlagFall bool           `json:"flagFall,omitempty"`
	Moves    []string       `json:"moves"`
	Clocks   ClockResponse  `json:"clocks"`
	Revision int            `json:"revision"`
	LastMove *MoveInfo      `json:"lastMove,omitempty"`
	Seats    *SeatsResponse `json:"seats,omitempty"`
}

type ClockResponse struct {
	White int `json:"white"`
	Black int `json:"black"`
}

type MoveInfo struct {
	Move        string `json:"move"` // notation token
	From        string `json:"from"`
	To          string `json:"to"`
	PlayerColor string `json:"playerColor"`
	Captured    string `json:"captured,omitempty"`
}

// SeatsResponse carries the bearer tokens for each side, only on creation
type SeatsResponse struct {
	White string `json:"white"`
	Black string `json:"black"`
}

type BoardResponse struct {
	FEN   string `json:"fen"`
	Board string `json:"board"` // ASCII representation
}

type TargetsResponse struct {
	From    string   `json:"from"`
	Targets []string `json:"targets"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
