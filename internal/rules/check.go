// FILE: internal/rules/check.go
package rules

import (
	"fmt"

	"chessclock/internal/board"
	"chessclock/internal/core"
)

// IsAttacked reports whether any piece of the side opposing defender could
// legally capture on target. Attackers are tested with ignoreCheck so the
// check-escape rule never recurses back into this function. Pawn diagonals
// only count when target is occupied, which always holds for a king square.
func IsAttacked(b board.Board, target core.Position, defender core.Color) bool {
	attacker := core.OppositeColor(defender)
	attacked := false
	b.Each(func(pos core.Position, p core.Piece) {
		if attacked || p.Color != attacker {
			return
		}
		if Validate(b, pos, target, true) == nil {
			attacked = true
		}
	})
	return attacked
}

// FindKing returns the square of color's king. A board without that king
// violates an engine invariant and panics.
func FindKing(b board.Board, color core.Color) core.Position {
	king := core.NewPiece(core.King, color)
	for r := 0; r < core.BoardSize; r++ {
		for c := 0; c < core.BoardSize; c++ {
			pos := core.Pos(r, c)
			if b.Get(pos) == king {
				return pos
			}
		}
	}
	panic(fmt.Sprintf("rules: no %s king on board %s", color.Name(), b.Placement()))
}

func IsInCheck(b board.Board, color core.Color) bool {
	return IsAttacked(b, FindKing(b, color), color)
}

// HasLegalMove reports whether color has at least one move after which its
// king is not attacked
func HasLegalMove(b board.Board, color core.Color) bool {
	found := false
	b.Each(func(from core.Position, p core.Piece) {
		if found || p.Color != color {
			return
		}
		for r := 0; r < core.BoardSize && !found; r++ {
			for c := 0; c < core.BoardSize; c++ {
				to := core.Pos(r, c)
				if Validate(b, from, to, true) != nil {
					continue
				}
				if !IsInCheck(b.Move(from, to), color) {
					found = true
					break
				}
			}
		}
	})
	return found
}

// IsCheckmate reports whether color is in check with no escaping move
func IsCheckmate(b board.Board, color core.Color) bool {
	return IsInCheck(b, color) && !HasLegalMove(b, color)
}
