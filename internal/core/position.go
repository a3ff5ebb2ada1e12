// FILE: internal/core/position.go
package core

import "fmt"

const BoardSize = 8

// Position addresses a square. Row 0 is rank 8, col 0 is file a.
type Position struct {
	Row int
	Col int
}

func Pos(row, col int) Position {
	return Position{Row: row, Col: col}
}

func (p Position) Valid() bool {
	return p.Row >= 0 && p.Row < BoardSize && p.Col >= 0 && p.Col < BoardSize
}

// String renders the square in file-letter/rank-number form, e.g. "e4"
func (p Position) String() string {
	if !p.Valid() {
		return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
	}
	return fmt.Sprintf("%c%c", 'a'+p.Col, '8'-p.Row)
}

// ParseSquare converts "e4" to its Position
func ParseSquare(s string) (Position, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return Position{}, fmt.Errorf("invalid square: %q", s)
	}
	return Position{Row: int('8' - s[1]), Col: int(s[0] - 'a')}, nil
}
