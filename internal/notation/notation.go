// Package notation renders accepted moves as short history tokens and parses
// coordinate move input.
package notation

import (
	"errors"
	"fmt"
	"strings"

	"chessclock/internal/core"
)

// Token builds the history token for a move: the uppercase piece letter
// (none for pawns), "x" on capture, then the destination square.
func Token(kind core.PieceKind, capture bool, dest core.Position) string {
	var sb strings.Builder
	if kind != core.Pawn {
		if l := kind.Letter(); l != 0 {
			sb.WriteByte(l - ('a' - 'A'))
		}
	}
	if capture {
		sb.WriteByte('x')
	}
	sb.WriteString(dest.String())
	return sb.String()
}

// ParseSquare converts a square name such as "e4", case-insensitive
func ParseSquare(s string) (core.Position, error) {
	return core.ParseSquare(strings.ToLower(strings.TrimSpace(s)))
}

var ErrMoveFormat = errors.New("invalid move format")

// ParseMove splits coordinate input such as "e2e4" or "e2-e4". Every
// failure wraps ErrMoveFormat.
func ParseMove(s string) (from, to core.Position, err error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", "")
	if len(s) != 4 {
		return core.Position{}, core.Position{}, fmt.Errorf("%w: %q (expected e.g. e2e4)", ErrMoveFormat, s)
	}
	if from, err = core.ParseSquare(s[:2]); err != nil {
		return core.Position{}, core.Position{}, fmt.Errorf("%w: %w", ErrMoveFormat, err)
	}
	if to, err = core.ParseSquare(s[2:]); err != nil {
		return core.Position{}, core.Position{}, fmt.Errorf("%w: %w", ErrMoveFormat, err)
	}
	return from, to, nil
}

// Coordinate renders a move back into "e2e4" form
func Coordinate(from, to core.Position) string {
	return from.String() + to.String()
}

// Pairs groups tokens into numbered full moves, "1. e4 e5". A history that
// started with Black to move opens with "1... token".
func Pairs(tokens []string, firstMover core.Color) []string {
	var lines []string
	i := 0
	n := 1
	if firstMover == core.ColorBlack && len(tokens) > 0 {
		lines = append(lines, fmt.Sprintf("%d... %s", n, tokens[0]))
		i = 1
		n++
	}
	for ; i < len(tokens); i += 2 {
		if i+1 < len(tokens) {
			lines = append(lines, fmt.Sprintf("%d. %s %s", n, tokens[i], tokens[i+1]))
		} else {
			lines = append(lines, fmt.Sprintf("%d. %s", n, tokens[i]))
		}
		n++
	}
	return lines
}
