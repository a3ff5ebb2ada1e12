// FILE: internal/service/game.go
package service

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"chessclock/internal/core"
	"chessclock/internal/game"
	"chessclock/internal/storage"
)

// session is the single writer for one game. Moves, ticks and selection
// changes all take mu, so they apply in one total order.
type session struct {
	id         string
	mu         sync.Mutex
	state      game.State
	revision   int
	finishedAt time.Time
	removed    bool // dropped from the service; no new waiters

	stop     chan struct{}
	stopOnce sync.Once
}

func (sess *session) snapshot() Snapshot {
	return Snapshot{GameID: sess.id, State: sess.state, Revision: sess.revision}
}

func (sess *session) stopClock() {
	sess.stopOnce.Do(func() { close(sess.stop) })
}

func (sess *session) markRemoved() {
	sess.mu.Lock()
	sess.removed = true
	sess.mu.Unlock()
}

func (sess *session) endedAt() (time.Time, bool) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.finishedAt, sess.state.IsOver()
}

// Snapshot is a consistent view of one game
type Snapshot struct {
	GameID   string
	State    game.State
	Revision int
}

// CreateOptions describes a new game; zero values use the service defaults
type CreateOptions struct {
	ClockSeconds int
	FEN          string
}

// Created is returned by CreateGame; Seats is nil unless seat tokens are required
type Created struct {
	Snapshot
	Seats *Seats
}

// CreateGame registers a new game and starts its clock
func (s *Service) CreateGame(opts CreateOptions) (Created, error) {
	clock := opts.ClockSeconds
	if clock <= 0 {
		clock = s.opts.ClockSeconds
	}

	var state game.State
	if opts.FEN == "" {
		state = game.NewGame(clock)
	} else {
		var err error
		state, err = game.FromFEN(opts.FEN, clock)
		if err != nil {
			return Created{}, fmt.Errorf("%w: %w", ErrInvalidFEN, err)
		}
	}

	s.mu.Lock()
	if s.opts.MaxGames > 0 && len(s.games) >= s.opts.MaxGames {
		s.mu.Unlock()
		return Created{}, fmt.Errorf("%w: %d games", ErrGameLimit, s.opts.MaxGames)
	}
	id := s.generateGameID()

	var seats *Seats
	if s.opts.RequireSeats {
		var err error
		if seats, err = s.issueSeats(id); err != nil {
			s.mu.Unlock()
			return Created{}, err
		}
	}

	sess := &session{
		id:    id,
		state: state,
		stop:  make(chan struct{}),
	}
	now := time.Now().UTC()
	if state.IsOver() {
		sess.finishedAt = now
	}

	// Archive before publishing so the game row precedes any move row
	if s.store != nil {
		s.store.RecordNewGame(storage.GameRecord{
			GameID:       id,
			InitialFEN:   state.InitialFEN(),
			ClockSeconds: clock,
			StartTimeUTC: now,
			Status:       state.Status().String(),
		})
		if state.IsOver() {
			s.archiveResult(sess, now)
		}
	}

	snap := sess.snapshot()
	s.games[id] = sess
	s.mu.Unlock()

	if s.opts.TickInterval > 0 && !state.IsOver() {
		s.wg.Add(1)
		go s.runClock(sess, s.opts.TickInterval)
	}

	s.log.Info("game created",
		zap.String("game_id", id),
		zap.Int("clock_seconds", clock),
		zap.String("fen", state.FEN()))

	return Created{Snapshot: snap, Seats: seats}, nil
}

// GetGame returns the current snapshot of a game
func (s *Service) GetGame(gameID string) (Snapshot, error) {
	sess, err := s.lookup(gameID)
	if err != nil {
		return Snapshot{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshot(), nil
}

// SubmitMove applies a move on behalf of seat. When seat tokens are not
// required seat is ignored and may be zero.
func (s *Service) SubmitMove(gameID string, seat core.Color, from, to core.Position) (Snapshot, game.Outcome, error) {
	sess, err := s.lookup(gameID)
	if err != nil {
		return Snapshot{}, game.Outcome{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	prev := sess.state
	if s.opts.RequireSeats && !prev.IsOver() && seat != prev.Turn() {
		return sess.snapshot(), game.Outcome{}, fmt.Errorf("%w: %s to move", ErrNotYourSeat, prev.Turn().Name())
	}

	next, outcome, err := game.SubmitMove(prev, from, to)
	if err != nil {
		return sess.snapshot(), game.Outcome{}, err
	}

	sess.state = next
	sess.revision++
	now := time.Now().UTC()
	if next.IsOver() {
		sess.finishedAt = now
		sess.stopClock()
	}
	s.waiter.NotifyGame(gameID, sess.revision)

	if s.store != nil {
		captured := ""
		if outcome.Move.IsCapture() {
			captured = outcome.Move.Captured.Kind.String()
		}
		s.store.RecordMove(storage.MoveRecord{
			GameID:         gameID,
			MoveNumber:     next.MoveCount(),
			FromSquare:     outcome.Move.From.String(),
			ToSquare:       outcome.Move.To.String(),
			Notation:       outcome.Move.Notation,
			PlayerColor:    prev.Turn().String(),
			Captured:       captured,
			ClockRemaining: next.Remaining(prev.Turn()),
			MoveTimeUTC:    now,
		})
		if next.IsOver() {
			s.archiveResult(sess, now)
		}
	}

	if next.IsOver() {
		s.log.Info("game finished by checkmate",
			zap.String("game_id", gameID),
			zap.String("winner", next.Winner().Name()),
			zap.Int("moves", next.MoveCount()))
	}

	return sess.snapshot(), outcome, nil
}

// Tick runs one clock unit on a game by hand
func (s *Service) Tick(gameID string) (Snapshot, error) {
	sess, err := s.lookup(gameID)
	if err != nil {
		return Snapshot{}, err
	}
	s.tick(sess)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshot(), nil
}

// tick reports whether the game is over afterwards
func (s *Service) tick(sess *session) bool {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	prev := sess.state
	if prev.IsOver() {
		return true
	}
	sess.state = game.Tick(prev)
	if !sess.state.IsOver() {
		return false
	}

	sess.revision++
	now := time.Now().UTC()
	sess.finishedAt = now
	s.waiter.NotifyGame(sess.id, sess.revision)
	if s.store != nil {
		s.archiveResult(sess, now)
	}
	s.log.Info("flag fell",
		zap.String("game_id", sess.id),
		zap.String("loser", prev.Turn().Name()),
		zap.Int("moves", prev.MoveCount()))
	return true
}

// runClock ticks the side to move every interval until the game ends, the
// game is deleted or the service shuts down
func (s *Service) runClock(sess *session, interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-sess.stop:
			return
		case <-ticker.C:
			if s.tick(sess) {
				return
			}
		}
	}
}

// Select marks a piece of the side to move as pending
func (s *Service) Select(gameID string, pos core.Position) (Snapshot, error) {
	sess, err := s.lookup(gameID)
	if err != nil {
		return Snapshot{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	next, err := game.Select(sess.state, pos)
	if err != nil {
		return sess.snapshot(), err
	}
	sess.state = next
	return sess.snapshot(), nil
}

// Deselect clears a pending selection
func (s *Service) Deselect(gameID string) (Snapshot, error) {
	sess, err := s.lookup(gameID)
	if err != nil {
		return Snapshot{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.state = game.Deselect(sess.state)
	return sess.snapshot(), nil
}

// archiveResult closes the game row; caller holds sess.mu
func (s *Service) archiveResult(sess *session, at time.Time) {
	st := sess.state
	s.store.RecordResult(storage.ResultRecord{
		GameID:     sess.id,
		Status:     st.Status().String(),
		Winner:     winnerCode(st.Winner()),
		FlagFall:   st.FlagFall(),
		EndTimeUTC: at,
	})
}

func winnerCode(c core.Color) string {
	if c == 0 {
		return ""
	}
	return c.String()
}
