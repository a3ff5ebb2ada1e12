// FILE: internal/core/error.go
package core

import (
	"errors"
	"fmt"
)

// Error codes
const (
	ErrGameNotFound      = "GAME_NOT_FOUND"
	ErrInvalidMove       = "INVALID_MOVE"
	ErrGameOver          = "GAME_OVER"
	ErrRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrInvalidContent    = "INVALID_CONTENT_TYPE"
	ErrInvalidRequest    = "INVALID_REQUEST"
	ErrInvalidFEN        = "INVALID_FEN"
	ErrInternalError     = "INTERNAL_ERROR"
	ErrResourceLimit     = "RESOURCE_LIMIT"
	ErrUnauthorized      = "UNAUTHORIZED"
	ErrNotYourTurn       = "NOT_YOUR_TURN"
)

// RejectReason is the closed set of reasons a move can be refused
type RejectReason int

const (
	RejectOutOfBounds RejectReason = iota + 1
	RejectOwnPieceCapture
	RejectWrongTurn
	RejectPieceRule
	RejectLeavesKingInCheck
)

func (r RejectReason) String() string {
	switch r {
	case RejectOutOfBounds:
		return "out_of_bounds"
	case RejectOwnPieceCapture:
		return "own_piece_capture"
	case RejectWrongTurn:
		return "wrong_turn"
	case RejectPieceRule:
		return "piece_rule_violation"
	case RejectLeavesKingInCheck:
		return "leaves_king_in_check"
	default:
		return "unknown"
	}
}

// Sentinels matched by Rejection.Is
var (
	ErrOutOfBounds       = errors.New("outside the board")
	ErrOwnPieceCapture   = errors.New("cannot capture your own piece")
	ErrWrongTurn         = errors.New("wrong turn")
	ErrPieceRule         = errors.New("piece rule violation")
	ErrLeavesKingInCheck = errors.New("move leaves king in check")
	ErrGameFinished      = errors.New("game is over")
)

// Rejection reports why a move was refused. The game state is unchanged
// whenever a Rejection is returned.
type Rejection struct {
	Reason RejectReason
	Piece  PieceKind // set for RejectPieceRule
	Square Position  // origin or destination the reason refers to
	Turn   Color     // side to move, set for RejectWrongTurn
	Empty  bool      // origin held no piece
	Over   bool      // game already ended
}

func (r *Rejection) Error() string {
	switch r.Reason {
	case RejectOutOfBounds:
		return "invalid move: outside the board"
	case RejectOwnPieceCapture:
		return "invalid move: cannot capture your own piece"
	case RejectWrongTurn:
		switch {
		case r.Over:
			return "game is over"
		case r.Empty:
			return fmt.Sprintf("no piece on %s", r.Square)
		default:
			return fmt.Sprintf("it's %s's turn", r.Turn.Name())
		}
	case RejectPieceRule:
		return fmt.Sprintf("invalid %s move", r.Piece)
	case RejectLeavesKingInCheck:
		return "must move to get out of check"
	default:
		return "invalid move"
	}
}

func (r *Rejection) Is(target error) bool {
	switch target {
	case ErrOutOfBounds:
		return r.Reason == RejectOutOfBounds
	case ErrOwnPieceCapture:
		return r.Reason == RejectOwnPieceCapture
	case ErrWrongTurn:
		return r.Reason == RejectWrongTurn
	case ErrPieceRule:
		return r.Reason == RejectPieceRule
	case ErrLeavesKingInCheck:
		return r.Reason == RejectLeavesKingInCheck
	case ErrGameFinished:
		return r.Reason == RejectWrongTurn && r.Over
	}
	return false
}

// AsRejection unwraps err into a Rejection if it carries one
func AsRejection(err error) (*Rejection, bool) {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}
