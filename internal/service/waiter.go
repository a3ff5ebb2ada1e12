// FILE: internal/service/waiter.go
package service

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	// WaitTimeout is the maximum time a client can wait for notifications
	WaitTimeout = 25 * time.Second

	// WaitChannelBuffer size for notification channels
	WaitChannelBuffer = 1
)

// WaitRegistry manages long-polling clients waiting for game state changes
type WaitRegistry struct {
	mu       sync.RWMutex
	waiters  map[string][]*WaitRequest // gameID → waiting clients
	timeout  time.Duration
	shutdown chan struct{}
	once     sync.Once
	wg       sync.WaitGroup
}

// WaitRequest represents a single client waiting for game updates
type WaitRequest struct {
	Revision int             // Last revision the client has seen
	Notify   chan struct{}   // Buffered channel for notifications
	Timer    *time.Timer     // Timeout timer
	Context  context.Context // Client connection context
	GameID   string          // Game being watched

	once sync.Once
	done chan struct{}
}

// fire delivers the single notification a request ever gets
func (r *WaitRequest) fire() {
	r.once.Do(func() {
		r.Timer.Stop()
		r.Notify <- struct{}{}
		close(r.done)
	})
}

func newWaitRegistry(timeout time.Duration) *WaitRegistry {
	return &WaitRegistry{
		waiters:  make(map[string][]*WaitRequest),
		timeout:  timeout,
		shutdown: make(chan struct{}),
	}
}

// firedWait returns a channel that is ready at once
func firedWait() <-chan struct{} {
	ch := make(chan struct{}, WaitChannelBuffer)
	ch <- struct{}{}
	return ch
}

// RegisterWait registers a client to wait for a revision other than revision.
// The returned channel fires on change, timeout, game removal or shutdown.
func (w *WaitRegistry) RegisterWait(ctx context.Context, gameID string, revision int) <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()

	req := &WaitRequest{
		Revision: revision,
		Notify:   make(chan struct{}, WaitChannelBuffer),
		Context:  ctx,
		GameID:   gameID,
		done:     make(chan struct{}),
	}

	req.Timer = time.AfterFunc(w.timeout, func() {
		w.handleTimeout(req)
	})

	w.waiters[gameID] = append(w.waiters[gameID], req)

	// The caller reads Notify; this goroutine only cleans up the registry
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		select {
		case <-ctx.Done():
			w.removeWaiter(gameID, req)
		case <-req.done:
		case <-w.shutdown:
			w.removeWaiter(gameID, req)
			req.fire()
		}
	}()

	return req.Notify
}

// NotifyGame wakes every waiter on gameID whose revision differs from the
// current one
func (w *WaitRegistry) NotifyGame(gameID string, revision int) {
	w.mu.Lock()
	waitList := w.waiters[gameID]
	var keep []*WaitRequest
	var fire []*WaitRequest
	for _, req := range waitList {
		if req.Revision != revision {
			fire = append(fire, req)
		} else {
			keep = append(keep, req)
		}
	}
	if len(keep) == 0 {
		delete(w.waiters, gameID)
	} else {
		w.waiters[gameID] = keep
	}
	w.mu.Unlock()

	for _, req := range fire {
		req.fire()
	}
}

// RemoveGame wakes and drops all waiters for a game
func (w *WaitRegistry) RemoveGame(gameID string) {
	w.mu.Lock()
	waitList := w.waiters[gameID]
	delete(w.waiters, gameID)
	w.mu.Unlock()

	for _, req := range waitList {
		req.fire()
	}
}

// Pending returns how many clients wait on gameID
func (w *WaitRegistry) Pending(gameID string) int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.waiters[gameID])
}

// Shutdown wakes every waiter and waits for the cleanup goroutines
func (w *WaitRegistry) Shutdown(timeout time.Duration) error {
	w.once.Do(func() { close(w.shutdown) })

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("wait registry shutdown timed out after %s", timeout)
	}
}

func (w *WaitRegistry) handleTimeout(req *WaitRequest) {
	w.removeWaiter(req.GameID, req)
	req.fire()
}

// removeWaiter removes a specific waiter from the registry
func (w *WaitRegistry) removeWaiter(gameID string, req *WaitRequest) {
	w.mu.Lock()
	defer w.mu.Unlock()

	waitList := w.waiters[gameID]
	for i, waiter := range waitList {
		if waiter == req {
			w.waiters[gameID] = append(waitList[:i:i], waitList[i+1:]...)
			break
		}
	}

	if len(w.waiters[gameID]) == 0 {
		delete(w.waiters, gameID)
	}
}
