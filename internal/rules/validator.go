// Package rules decides geometric legality of moves and detects attacks on
// a king. Every function is pure over a board snapshot.
package rules

import (
	"fmt"

	"chessclock/internal/board"
	"chessclock/internal/core"
)

// Validate reports whether moving the piece on from to to is legal on b.
// A nil error means legal; otherwise the error is a *core.Rejection.
//
// With ignoreCheck set only the piece's movement pattern and path are
// tested. Without it the move must also leave the mover's own king
// unattacked, which is what makes escaping check mandatory and keeps a
// king from ever being capturable.
func Validate(b board.Board, from, to core.Position, ignoreCheck bool) error {
	if !from.Valid() {
		return &core.Rejection{Reason: core.RejectOutOfBounds, Square: from}
	}
	if !to.Valid() {
		return &core.Rejection{Reason: core.RejectOutOfBounds, Square: to}
	}

	piece := b.Get(from)
	if piece.IsEmpty() {
		return &core.Rejection{Reason: core.RejectWrongTurn, Square: from, Empty: true}
	}

	if target := b.Get(to); !target.IsEmpty() && target.Color == piece.Color {
		return &core.Rejection{Reason: core.RejectOwnPieceCapture, Square: to}
	}

	if !geometric(b, piece, from, to) {
		return &core.Rejection{Reason: core.RejectPieceRule, Piece: piece.Kind, Square: from}
	}

	if !ignoreCheck && IsInCheck(b.Move(from, to), piece.Color) {
		return &core.Rejection{Reason: core.RejectLeavesKingInCheck, Square: from}
	}

	return nil
}

func IsLegal(b board.Board, from, to core.Position, ignoreCheck bool) bool {
	return Validate(b, from, to, ignoreCheck) == nil
}

// LegalMoves lists every destination the piece on from can legally reach
func LegalMoves(b board.Board, from core.Position) []core.Position {
	var targets []core.Position
	for r := 0; r < core.BoardSize; r++ {
		for c := 0; c < core.BoardSize; c++ {
			to := core.Pos(r, c)
			if Validate(b, from, to, false) == nil {
				targets = append(targets, to)
			}
		}
	}
	return targets
}

func geometric(b board.Board, p core.Piece, from, to core.Position) bool {
	switch p.Kind {
	case core.Pawn:
		return pawnMove(b, p.Color, from, to)
	case core.Rook:
		return rookMove(b, from, to)
	case core.Knight:
		return knightMove(from, to)
	case core.Bishop:
		return bishopMove(b, from, to)
	case core.Queen:
		return rookMove(b, from, to) || bishopMove(b, from, to)
	case core.King:
		return kingMove(from, to)
	default:
		panic(fmt.Sprintf("rules: unknown piece kind %d", p.Kind))
	}
}

// forward is the row delta of a pawn advance
func forward(c core.Color) int {
	if c == core.ColorWhite {
		return -1
	}
	return 1
}

func startRow(c core.Color) int {
	if c == core.ColorWhite {
		return 6
	}
	return 1
}

func pawnMove(b board.Board, c core.Color, from, to core.Position) bool {
	dir := forward(c)
	dRow := to.Row - from.Row
	dCol := to.Col - from.Col
	target := b.Get(to)

	switch {
	case dCol == 0 && dRow == dir:
		return target.IsEmpty()
	case dCol == 0 && dRow == 2*dir:
		return from.Row == startRow(c) &&
			target.IsEmpty() &&
			b.Get(core.Pos(from.Row+dir, from.Col)).IsEmpty()
	case abs(dCol) == 1 && dRow == dir:
		return !target.IsEmpty() && target.Color != c
	default:
		return false
	}
}

func rookMove(b board.Board, from, to core.Position) bool {
	if from.Row != to.Row && from.Col != to.Col {
		return false
	}
	return pathClear(b, from, to)
}

func bishopMove(b board.Board, from, to core.Position) bool {
	dRow, dCol := abs(to.Row-from.Row), abs(to.Col-from.Col)
	if dRow == 0 || dRow != dCol {
		return false
	}
	return pathClear(b, from, to)
}

func knightMove(from, to core.Position) bool {
	dRow, dCol := abs(to.Row-from.Row), abs(to.Col-from.Col)
	return (dRow == 2 && dCol == 1) || (dRow == 1 && dCol == 2)
}

func kingMove(from, to core.Position) bool {
	return abs(to.Row-from.Row) <= 1 && abs(to.Col-from.Col) <= 1
}

// pathClear walks the squares strictly between from and to along a rank,
// file or diagonal and reports whether all of them are empty
func pathClear(b board.Board, from, to core.Position) bool {
	stepRow, stepCol := sign(to.Row-from.Row), sign(to.Col-from.Col)
	r, c := from.Row+stepRow, from.Col+stepCol
	for r != to.Row || c != to.Col {
		if !b.Get(core.Pos(r, c)).IsEmpty() {
			return false
		}
		r += stepRow
		c += stepCol
	}
	return true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}
