// Package board holds the 8x8 grid value type. It has no rules knowledge:
// every method either reads the grid or returns a modified copy.
package board

import (
	"fmt"
	"strings"

	"chessclock/internal/core"
)

const (
	StartingFEN       = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1"
	startingPlacement = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR"
)

// Board is an 8x8 array of squares indexed [row][col]. Being an array it
// copies on assignment, so a Board passed by value is a snapshot.
type Board struct {
	squares [core.BoardSize][core.BoardSize]core.Piece
}

// Empty returns a board with no pieces
func Empty() Board {
	return Board{}
}

// Initial returns the standard starting position
func Initial() Board {
	b, err := parsePlacement(startingPlacement)
	if err != nil {
		panic(fmt.Sprintf("board: starting placement: %v", err))
	}
	return b
}

// Get returns the square content; positions off the board read as empty
func (b Board) Get(pos core.Position) core.Piece {
	if !pos.Valid() {
		return core.Piece{}
	}
	return b.squares[pos.Row][pos.Col]
}

// Set returns a copy of b with pos holding p
func (b Board) Set(pos core.Position, p core.Piece) Board {
	if !pos.Valid() {
		panic(fmt.Sprintf("board: set outside the board: %v", pos))
	}
	b.squares[pos.Row][pos.Col] = p
	return b
}

func (b Board) Clone() Board {
	return b
}

// Move returns a copy of b with the piece on from placed on to and from
// cleared. Whatever stood on to is overwritten.
func (b Board) Move(from, to core.Position) Board {
	p := b.Get(from)
	return b.Set(from, core.Piece{}).Set(to, p)
}

// Each calls fn for every occupied square in row-major order
func (b Board) Each(fn func(pos core.Position, p core.Piece)) {
	for r := 0; r < core.BoardSize; r++ {
		for c := 0; c < core.BoardSize; c++ {
			if p := b.squares[r][c]; !p.IsEmpty() {
				fn(core.Pos(r, c), p)
			}
		}
	}
}

// Count returns how many squares hold p
func (b Board) Count(p core.Piece) int {
	n := 0
	b.Each(func(_ core.Position, q core.Piece) {
		if q == p {
			n++
		}
	})
	return n
}

// ParseFEN reads the placement and side-to-move fields of a FEN string.
// Castling, en passant and move counters are accepted but ignored.
func ParseFEN(fen string) (Board, core.Color, error) {
	parts := strings.Fields(fen)
	if len(parts) < 2 || len(parts) > 6 {
		return Board{}, 0, fmt.Errorf("invalid FEN: expected 2 to 6 fields, got %d", len(parts))
	}

	b, err := parsePlacement(parts[0])
	if err != nil {
		return Board{}, 0, err
	}

	var turn core.Color
	switch parts[1] {
	case "w":
		turn = core.ColorWhite
	case "b":
		turn = core.ColorBlack
	default:
		return Board{}, 0, fmt.Errorf("invalid FEN: turn must be 'w' or 'b'")
	}

	return b, turn, nil
}

func parsePlacement(placement string) (Board, error) {
	var b Board

	ranks := strings.Split(placement, "/")
	if len(ranks) != core.BoardSize {
		return Board{}, fmt.Errorf("invalid FEN: expected 8 ranks")
	}

	for r, rank := range ranks {
		file := 0
		for i := 0; i < len(rank); i++ {
			ch := rank[i]
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			if file >= core.BoardSize {
				return Board{}, fmt.Errorf("invalid FEN: too many pieces in rank %d", 8-r)
			}
			p, ok := core.PieceFromFEN(ch)
			if !ok {
				return Board{}, fmt.Errorf("invalid FEN: unknown piece %q", ch)
			}
			b.squares[r][file] = p
			file++
		}
		if file != core.BoardSize {
			return Board{}, fmt.Errorf("invalid FEN: rank %d has %d files", 8-r, file)
		}
	}

	return b, nil
}

// Placement renders the piece placement field of FEN
func (b Board) Placement() string {
	var sb strings.Builder
	for r := 0; r < core.BoardSize; r++ {
		if r > 0 {
			sb.WriteByte('/')
		}
		gap := 0
		for c := 0; c < core.BoardSize; c++ {
			p := b.squares[r][c]
			if p.IsEmpty() {
				gap++
				continue
			}
			if gap > 0 {
				sb.WriteByte(byte('0' + gap))
				gap = 0
			}
			sb.WriteByte(p.FEN())
		}
		if gap > 0 {
			sb.WriteByte(byte('0' + gap))
		}
	}
	return sb.String()
}

// FEN renders a full FEN string with no castling or en passant rights
func (b Board) FEN(turn core.Color) string {
	return fmt.Sprintf("%s %s - - 0 1", b.Placement(), turn)
}

// ToASCII creates an ASCII representation of the board
func (b Board) ToASCII() string {
	var sb strings.Builder
	sb.WriteString("  a b c d e f g h\n")

	for r := 0; r < core.BoardSize; r++ {
		sb.WriteString(fmt.Sprintf("%d ", 8-r))
		for c := 0; c < core.BoardSize; c++ {
			p := b.squares[r][c]
			if p.IsEmpty() {
				sb.WriteString(". ")
			} else {
				sb.WriteString(fmt.Sprintf("%c ", p.FEN()))
			}
		}
		sb.WriteString(fmt.Sprintf(" %d\n", 8-r))
	}
	sb.WriteString("  a b c d e f g h")

	return sb.String()
}
