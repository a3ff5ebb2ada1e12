// FILE: internal/core/core.go
package core

import "fmt"

type Color byte

const (
	ColorWhite Color = iota + 1
	ColorBlack
)

func (c Color) String() string {
	switch c {
	case ColorWhite:
		return "w"
	case ColorBlack:
		return "b"
	default:
		return "-"
	}
}

// Name returns the capitalised colour name used in messages
func (c Color) Name() string {
	switch c {
	case ColorWhite:
		return "White"
	case ColorBlack:
		return "Black"
	default:
		return "None"
	}
}

func OppositeColor(c Color) Color {
	if c == ColorWhite {
		return ColorBlack
	}
	return ColorWhite
}

// ParseColor accepts "w"/"b" and "white"/"black"
func ParseColor(s string) (Color, error) {
	switch s {
	case "w", "white":
		return ColorWhite, nil
	case "b", "black":
		return ColorBlack, nil
	default:
		return 0, fmt.Errorf("invalid color: %q", s)
	}
}

type PieceKind byte

const (
	NoPiece PieceKind = iota
	Pawn
	Rook
	Knight
	Bishop
	Queen
	King
)

func (k PieceKind) String() string {
	switch k {
	case Pawn:
		return "pawn"
	case Rook:
		return "rook"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Queen:
		return "queen"
	case King:
		return "king"
	default:
		return "none"
	}
}

// Letter is the lowercase FEN letter of the kind
func (k PieceKind) Letter() byte {
	switch k {
	case Pawn:
		return 'p'
	case Rook:
		return 'r'
	case Knight:
		return 'n'
	case Bishop:
		return 'b'
	case Queen:
		return 'q'
	case King:
		return 'k'
	default:
		return 0
	}
}

// Piece is the content of a square. The zero value is an empty square.
type Piece struct {
	Kind  PieceKind
	Color Color
}

func NewPiece(kind PieceKind, color Color) Piece {
	return Piece{Kind: kind, Color: color}
}

func (p Piece) IsEmpty() bool {
	return p.Kind == NoPiece
}

// FEN returns the piece letter, uppercase for White, or 0 for an empty square
func (p Piece) FEN() byte {
	l := p.Kind.Letter()
	if l != 0 && p.Color == ColorWhite {
		l -= 'a' - 'A'
	}
	return l
}

// PieceFromFEN decodes a FEN piece letter
func PieceFromFEN(ch byte) (Piece, bool) {
	color := ColorBlack
	if ch >= 'A' && ch <= 'Z' {
		color = ColorWhite
		ch += 'a' - 'A'
	}
	var kind PieceKind
	switch ch {
	case 'p':
		kind = Pawn
	case 'r':
		kind = Rook
	case 'n':
		kind = Knight
	case 'b':
		kind = Bishop
	case 'q':
		kind = Queen
	case 'k':
		kind = King
	default:
		return Piece{}, false
	}
	return Piece{Kind: kind, Color: color}, true
}

func (p Piece) String() string {
	if p.IsEmpty() {
		return "empty"
	}
	return fmt.Sprintf("%s %s", p.Color.Name(), p.Kind)
}

// Status is the game status recomputed after every accepted move and clock tick
type Status int

const (
	StatusActive Status = iota
	StatusCheck
	StatusCheckmate
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusCheck:
		return "check"
	case StatusCheckmate:
		return "checkmate"
	default:
		return "unknown"
	}
}

func (s Status) IsTerminal() bool {
	return s == StatusCheckmate
}
