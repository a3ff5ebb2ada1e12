// FILE: internal/game/game.go
package game

import (
	"errors"
	"fmt"
	"slices"

	"chessclock/internal/board"
	"chessclock/internal/core"
	"chessclock/internal/notation"
	"chessclock/internal/rules"
)

var ErrInvalidPosition = errors.New("invalid starting position")

// Move is an accepted move as it appears in history
type Move struct {
	From     core.Position
	To       core.Position
	Piece    core.Piece
	Captured core.Piece // empty when nothing was taken
	Notation string
}

func (m Move) IsCapture() bool {
	return !m.Captured.IsEmpty()
}

// Coordinate returns the move in "e2e4" form
func (m Move) Coordinate() string {
	return notation.Coordinate(m.From, m.To)
}

// Clocks holds the remaining seconds per side
type Clocks struct {
	White int
	Black int
}

func (c Clocks) Of(color core.Color) int {
	if color == core.ColorWhite {
		return c.White
	}
	return c.Black
}

func (c Clocks) with(color core.Color, seconds int) Clocks {
	if color == core.ColorWhite {
		c.White = seconds
	} else {
		c.Black = seconds
	}
	return c
}

// Outcome describes an accepted move
type Outcome struct {
	Move   Move
	Status core.Status
}

// State is one immutable game snapshot. Every transition returns a new
// State and leaves the receiver untouched.
type State struct {
	board     board.Board
	turn      core.Color
	status    core.Status
	clocks    Clocks
	history   []Move
	selection core.Position
	selected  bool
	flagFall  bool
	startFEN  string
	startTurn core.Color
}

// NewGame starts the standard initial position with both clocks at clockSeconds
func NewGame(clockSeconds int) State {
	b := board.Initial()
	return State{
		board:     b,
		turn:      core.ColorWhite,
		status:    core.StatusActive,
		clocks:    Clocks{White: clockSeconds, Black: clockSeconds},
		startFEN:  b.FEN(core.ColorWhite),
		startTurn: core.ColorWhite,
	}
}

// FromPosition starts a game from an arbitrary board. The board must hold
// exactly one king per colour and the side not to move must not be in check.
// The initial status is computed for the side to move.
func FromPosition(b board.Board, turn core.Color, clockSeconds int) (State, error) {
	if turn != core.ColorWhite && turn != core.ColorBlack {
		return State{}, fmt.Errorf("%w: no side to move", ErrInvalidPosition)
	}
	for _, c := range []core.Color{core.ColorWhite, core.ColorBlack} {
		if n := b.Count(core.NewPiece(core.King, c)); n != 1 {
			return State{}, fmt.Errorf("%w: %s has %d kings", ErrInvalidPosition, c.Name(), n)
		}
	}
	if rules.IsInCheck(b, core.OppositeColor(turn)) {
		return State{}, fmt.Errorf("%w: %s is in check but not to move", ErrInvalidPosition, core.OppositeColor(turn).Name())
	}

	return State{
		board:     b,
		turn:      turn,
		status:    statusFor(b, turn),
		clocks:    Clocks{White: clockSeconds, Black: clockSeconds},
		startFEN:  b.FEN(turn),
		startTurn: turn,
	}, nil
}

// FromFEN parses fen and starts a game from it
func FromFEN(fen string, clockSeconds int) (State, error) {
	b, turn, err := board.ParseFEN(fen)
	if err != nil {
		return State{}, err
	}
	return FromPosition(b, turn, clockSeconds)
}

// SubmitMove applies a move for the side to move. On rejection the returned
// state is s itself and the error is a *core.Rejection.
func SubmitMove(s State, from, to core.Position) (State, Outcome, error) {
	if s.status.IsTerminal() {
		return s, Outcome{}, &core.Rejection{Reason: core.RejectWrongTurn, Turn: s.turn, Over: true}
	}

	piece := s.board.Get(from)
	if from.Valid() {
		if piece.IsEmpty() {
			return s, Outcome{}, &core.Rejection{Reason: core.RejectWrongTurn, Square: from, Turn: s.turn, Empty: true}
		}
		if piece.Color != s.turn {
			return s, Outcome{}, &core.Rejection{Reason: core.RejectWrongTurn, Square: from, Turn: s.turn}
		}
	}

	if err := rules.Validate(s.board, from, to, false); err != nil {
		return s, Outcome{}, err
	}

	captured := s.board.Get(to)
	opponent := core.OppositeColor(s.turn)

	next := s
	next.board = s.board.Move(from, to)
	next.status = statusFor(next.board, opponent)
	next.turn = opponent
	next.selected = false

	mv := Move{
		From:     from,
		To:       to,
		Piece:    piece,
		Captured: captured,
		Notation: notation.Token(piece.Kind, !captured.IsEmpty(), to),
	}
	next.history = append(slices.Clip(s.history), mv)

	return next, Outcome{Move: mv, Status: next.status}, nil
}

// Tick takes one second from the side to move. Reaching zero is a flag-fall
// and ends the game as checkmate. A finished game is returned unchanged.
func Tick(s State) State {
	if s.status.IsTerminal() {
		return s
	}
	remaining := s.clocks.Of(s.turn) - 1
	if remaining < 0 {
		remaining = 0
	}
	next := s
	next.clocks = s.clocks.with(s.turn, remaining)
	if remaining == 0 {
		next.status = core.StatusCheckmate
		next.flagFall = true
		next.selected = false
	}
	return next
}

// Select marks a piece of the side to move as the pending selection
func Select(s State, pos core.Position) (State, error) {
	if s.status.IsTerminal() {
		return s, &core.Rejection{Reason: core.RejectWrongTurn, Turn: s.turn, Over: true}
	}
	if !pos.Valid() {
		return s, &core.Rejection{Reason: core.RejectOutOfBounds, Square: pos}
	}
	p := s.board.Get(pos)
	if p.IsEmpty() {
		return s, &core.Rejection{Reason: core.RejectWrongTurn, Square: pos, Turn: s.turn, Empty: true}
	}
	if p.Color != s.turn {
		return s, &core.Rejection{Reason: core.RejectWrongTurn, Square: pos, Turn: s.turn}
	}
	next := s
	next.selection = pos
	next.selected = true
	return next, nil
}

func Deselect(s State) State {
	s.selected = false
	return s
}

// statusFor evaluates the position from the point of view of color, the
// side about to move
func statusFor(b board.Board, color core.Color) core.Status {
	if !rules.IsInCheck(b, color) {
		return core.StatusActive
	}
	if rules.HasLegalMove(b, color) {
		return core.StatusCheck
	}
	return core.StatusCheckmate
}

func (s State) Board() board.Board {
	return s.board
}

func (s State) Turn() core.Color {
	return s.turn
}

func (s State) Status() core.Status {
	return s.status
}

func (s State) Clocks() Clocks {
	return s.clocks
}

func (s State) Remaining(color core.Color) int {
	return s.clocks.Of(color)
}

// History returns a copy of the accepted moves in order
func (s State) History() []Move {
	return slices.Clone(s.history)
}

// Notation returns the history tokens in order
func (s State) Notation() []string {
	tokens := make([]string, len(s.history))
	for i, m := range s.history {
		tokens[i] = m.Notation
	}
	return tokens
}

func (s State) MoveCount() int {
	return len(s.history)
}

func (s State) LastMove() (Move, bool) {
	if len(s.history) == 0 {
		return Move{}, false
	}
	return s.history[len(s.history)-1], true
}

func (s State) Selection() (core.Position, bool) {
	return s.selection, s.selected
}

func (s State) FEN() string {
	return s.board.FEN(s.turn)
}

// InitialFEN is the position the game started from
func (s State) InitialFEN() string {
	return s.startFEN
}

// StartingTurn is the side that moved first
func (s State) StartingTurn() core.Color {
	return s.startTurn
}

func (s State) IsOver() bool {
	return s.status.IsTerminal()
}

// Winner returns the side that won, or 0 while the game is running. The
// side to move is always the loser, by mate or by flag.
func (s State) Winner() core.Color {
	if !s.status.IsTerminal() {
		return 0
	}
	return core.OppositeColor(s.turn)
}

// Targets lists the squares the piece on from may move to. Only pieces of
// the side to move in an unfinished game have targets.
func (s State) Targets(from core.Position) []core.Position {
	if s.IsOver() || !from.Valid() {
		return nil
	}
	if p := s.board.Get(from); p.IsEmpty() || p.Color != s.turn {
		return nil
	}
	return rules.LegalMoves(s.board, from)
}

// FlagFall reports whether the game ended on time
func (s State) FlagFall() bool {
	return s.flagFall
}
