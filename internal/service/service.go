// FILE: internal/service/service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chessclock/internal/obslog"
	"chessclock/internal/storage"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameLimit    = errors.New("game limit reached")
	ErrNotYourSeat  = errors.New("not your turn to move")
	ErrInvalidFEN   = errors.New("invalid FEN")
)

// Options configures the service; zero values fall back to sane defaults
type Options struct {
	ClockSeconds int           // default clock per side
	TickInterval time.Duration // wall-clock length of one clock unit, 0 for manual ticks
	MaxGames     int           // 0 means unlimited
	FinishedTTL  time.Duration // finished games are evicted after this long
	RequireSeats bool          // moves must present the mover's seat token
	SeatSecret   string        // HS256 key for seat tokens, random when empty
	SeatTTL      time.Duration
	WaitTimeout  time.Duration // long-poll timeout, WaitTimeout when zero
}

// Service owns every running game. Each game sits behind its own mutex so
// moves and clock ticks on one game apply one at a time.
type Service struct {
	games      map[string]*session
	mu         sync.RWMutex
	store      *storage.Store // nil if persistence disabled
	waiter     *WaitRegistry
	opts       Options
	seatSecret []byte
	log        *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new service instance with optional storage
func New(store *storage.Store, opts Options) (*Service, error) {
	if opts.ClockSeconds <= 0 {
		opts.ClockSeconds = 600
	}
	secret, err := newSeatSecret(opts.SeatSecret)
	if err != nil {
		return nil, err
	}
	waitTimeout := opts.WaitTimeout
	if waitTimeout <= 0 {
		waitTimeout = WaitTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		games:      make(map[string]*session),
		store:      store,
		waiter:     newWaitRegistry(waitTimeout),
		opts:       opts,
		seatSecret: secret,
		log:        obslog.L().Named("service"),
		ctx:        ctx,
		cancel:     cancel,
	}, nil
}

// DefaultClockSeconds is the clock used when a game is created without one
func (s *Service) DefaultClockSeconds() int {
	return s.opts.ClockSeconds
}

// GetStorageHealth returns the storage component status
func (s *Service) GetStorageHealth() string {
	if s.store == nil {
		return "disabled"
	}
	if s.store.IsHealthy() {
		return "ok"
	}
	return "degraded"
}

// GameCount returns the number of games held in memory
func (s *Service) GameCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}

// RegisterWait registers a client to wait for a revision change on a game.
// The check and the registration happen under the session lock, so a
// revision that is already stale, or a game that is gone, fires at once.
func (s *Service) RegisterWait(ctx context.Context, gameID string, revision int) <-chan struct{} {
	sess, err := s.lookup(gameID)
	if err != nil {
		return firedWait()
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.removed || sess.revision != revision {
		return firedWait()
	}
	return s.waiter.RegisterWait(ctx, gameID, revision)
}

// generateGameID creates a new unique game ID; caller holds s.mu
func (s *Service) generateGameID() string {
	for {
		id := uuid.New().String()
		if _, exists := s.games[id]; !exists {
			return id
		}
	}
}

func (s *Service) lookup(gameID string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.games[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return sess, nil
}

// DeleteGame stops the game's clock and removes it from memory
func (s *Service) DeleteGame(gameID string) error {
	s.mu.Lock()
	sess, ok := s.games[gameID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	delete(s.games, gameID)
	s.mu.Unlock()

	sess.markRemoved()
	sess.stopClock()
	s.waiter.RemoveGame(gameID)
	s.log.Info("game deleted", zap.String("game_id", gameID))
	return nil
}

// RunCleanupJob periodically evicts finished games until ctx is done
func (s *Service) RunCleanupJob(ctx context.Context, interval time.Duration) {
	if interval <= 0 || s.opts.FinishedTTL <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.CleanupFinished(now); n > 0 {
				s.log.Info("cleanup: evicted finished games", zap.Int("count", n))
			}
		}
	}
}

// CleanupFinished evicts games that ended at least FinishedTTL before now
func (s *Service) CleanupFinished(now time.Time) int {
	s.mu.Lock()
	var expired []string
	for id, sess := range s.games {
		if ended, ok := sess.endedAt(); ok && now.Sub(ended) >= s.opts.FinishedTTL {
			expired = append(expired, id)
			delete(s.games, id)
			sess.markRemoved()
		}
	}
	s.mu.Unlock()

	for _, id := range expired {
		s.waiter.RemoveGame(id)
	}
	return len(expired)
}

// Shutdown stops every clock, wakes long-poll clients and closes storage
func (s *Service) Shutdown(timeout time.Duration) error {
	var errs []error

	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		errs = append(errs, fmt.Errorf("clock goroutines did not stop within %s", timeout))
	}

	if err := s.waiter.Shutdown(timeout); err != nil {
		errs = append(errs, fmt.Errorf("wait registry: %w", err))
	}

	s.mu.Lock()
	s.games = make(map[string]*session)
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	return errors.Join(errs...)
}
