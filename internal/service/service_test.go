package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"chessclock/internal/core"
	"chessclock/internal/storage"
	"chessclock/internal/testutil"
)

// Black to move, mated by the rook on the back rank
const matedFEN = "R5k1/5ppp/8/8/8/8/8/6K1 b - - 0 1"

func newTestService(t *testing.T, opts Options) *Service {
	t.Helper()
	svc, err := New(nil, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { svc.Shutdown(time.Second) })
	return svc
}

func move(t *testing.T, svc *Service, id string, seat core.Color, coord string) (Snapshot, error) {
	t.Helper()
	from := testutil.MustSquare(t, coord[:2])
	to := testutil.MustSquare(t, coord[2:])
	snap, _, err := svc.SubmitMove(id, seat, from, to)
	return snap, err
}

func waitFor(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestCreateAndMove(t *testing.T) {
	svc := newTestService(t, Options{ClockSeconds: 300})

	created, err := svc.CreateGame(CreateOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if created.Seats != nil {
		t.Error("seats issued although not required")
	}
	testutil.AssertEqual(t, created.State.Remaining(core.ColorWhite), 300, "default clock")
	testutil.AssertEqual(t, created.Revision, 0, "initial revision")

	snap, err := move(t, svc, created.GameID, 0, "e2e4")
	if err != nil {
		t.Fatalf("e2e4: %v", err)
	}
	testutil.AssertEqual(t, snap.Revision, 1, "revision after move")
	testutil.AssertEqual(t, snap.State.Notation(), []string{"e4"}, "history")

	// Rejections leave the revision alone
	_, err = move(t, svc, created.GameID, 0, "e4e5")
	testutil.AssertRejected(t, err, core.RejectWrongTurn)

	got, err := svc.GetGame(created.GameID)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, got.Revision, 1, "revision after rejection")
	testutil.AssertEqual(t, got.State.Turn(), core.ColorBlack, "turn")
}

func TestCreateGameErrors(t *testing.T) {
	svc := newTestService(t, Options{MaxGames: 1})

	if _, err := svc.CreateGame(CreateOptions{FEN: "8/8/8/8/8/8/8/8 w"}); !errors.Is(err, ErrInvalidFEN) {
		t.Errorf("kingless FEN: got %v, want ErrInvalidFEN", err)
	}
	if _, err := svc.CreateGame(CreateOptions{}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateGame(CreateOptions{}); !errors.Is(err, ErrGameLimit) {
		t.Errorf("second game: got %v, want ErrGameLimit", err)
	}
	if _, err := svc.GetGame("missing"); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("GetGame: got %v, want ErrGameNotFound", err)
	}
	if err := svc.DeleteGame("missing"); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("DeleteGame: got %v, want ErrGameNotFound", err)
	}
}

func TestSeats(t *testing.T) {
	svc := newTestService(t, Options{RequireSeats: true, SeatSecret: "seat-secret-for-tests-0123456789abcdef"})
	if !svc.SeatsRequired() {
		t.Fatal("SeatsRequired = false")
	}

	g1, err := svc.CreateGame(CreateOptions{})
	if err != nil {
		t.Fatal(err)
	}
	g2, err := svc.CreateGame(CreateOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if g1.Seats == nil || g1.Seats.White == "" || g1.Seats.Black == "" {
		t.Fatalf("seats not issued: %+v", g1.Seats)
	}

	white, err := svc.VerifySeat(g1.GameID, g1.Seats.White)
	if err != nil || white != core.ColorWhite {
		t.Errorf("white seat = %v, %v", white, err)
	}
	black, err := svc.VerifySeat(g1.GameID, g1.Seats.Black)
	if err != nil || black != core.ColorBlack {
		t.Errorf("black seat = %v, %v", black, err)
	}
	if _, err := svc.VerifySeat(g2.GameID, g1.Seats.White); !errors.Is(err, ErrInvalidSeat) {
		t.Errorf("seat used in another game: got %v", err)
	}
	if _, err := svc.VerifySeat(g1.GameID, "garbage"); !errors.Is(err, ErrInvalidSeat) {
		t.Errorf("garbage token: got %v", err)
	}

	if _, err := move(t, svc, g1.GameID, core.ColorBlack, "e2e4"); !errors.Is(err, ErrNotYourSeat) {
		t.Errorf("black seat moving white: got %v", err)
	}
	if _, err := move(t, svc, g1.GameID, core.ColorWhite, "e2e4"); err != nil {
		t.Errorf("white seat: %v", err)
	}
}

func TestShortSeatSecretRejected(t *testing.T) {
	if _, err := New(nil, Options{RequireSeats: true, SeatSecret: "s3cret"}); !errors.Is(err, ErrWeakSeatSecret) {
		t.Fatalf("New with short secret: got %v, want ErrWeakSeatSecret", err)
	}
}

func TestManualTickFlagFall(t *testing.T) {
	svc := newTestService(t, Options{ClockSeconds: 2})
	created, err := svc.CreateGame(CreateOptions{})
	if err != nil {
		t.Fatal(err)
	}
	id := created.GameID

	snap, err := svc.Tick(id)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, snap.State.Clocks().White, 1, "white clock")
	testutil.AssertEqual(t, snap.Revision, 0, "plain tick keeps revision")

	snap, _ = svc.Tick(id)
	if !snap.State.FlagFall() || snap.State.Status() != core.StatusCheckmate {
		t.Fatalf("expected flag-fall, got status %s", snap.State.Status())
	}
	testutil.AssertEqual(t, snap.Revision, 1, "flag-fall bumps revision")
	testutil.AssertEqual(t, snap.State.Winner(), core.ColorBlack, "winner")

	// A move after the flag fell gets the terminal rejection
	_, err = move(t, svc, id, 0, "e2e4")
	testutil.AssertErrorIs(t, err, core.ErrGameFinished)

	snap, _ = svc.Tick(id)
	testutil.AssertEqual(t, snap.Revision, 1, "tick after game over")
}

func TestClockRunsInBackground(t *testing.T) {
	svc := newTestService(t, Options{ClockSeconds: 3, TickInterval: 5 * time.Millisecond})
	created, err := svc.CreateGame(CreateOptions{})
	if err != nil {
		t.Fatal(err)
	}

	var snap Snapshot
	deadline := time.Now().Add(2 * time.Second)
	for {
		snap, err = svc.GetGame(created.GameID)
		if err != nil {
			t.Fatal(err)
		}
		if snap.State.IsOver() || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !snap.State.FlagFall() {
		t.Fatalf("expected flag-fall, got %s", snap.State.Status())
	}
	testutil.AssertEqual(t, snap.Revision, 1, "revision")
	testutil.AssertEqual(t, snap.State.Clocks().White, 0, "white clock")
	testutil.AssertEqual(t, snap.State.Clocks().Black, 3, "black clock untouched")
}

func TestDeleteStopsClockAndWakesWaiters(t *testing.T) {
	svc := newTestService(t, Options{TickInterval: time.Hour})
	created, err := svc.CreateGame(CreateOptions{})
	if err != nil {
		t.Fatal(err)
	}
	ch := svc.RegisterWait(context.Background(), created.GameID, 0)

	if err := svc.DeleteGame(created.GameID); err != nil {
		t.Fatal(err)
	}
	waitFor(t, ch, "waiter released by delete")
	testutil.AssertEqual(t, svc.GameCount(), 0, "games after delete")
}

func TestWaitNotifiedOnMove(t *testing.T) {
	svc := newTestService(t, Options{})
	created, err := svc.CreateGame(CreateOptions{})
	if err != nil {
		t.Fatal(err)
	}
	ch := svc.RegisterWait(context.Background(), created.GameID, 0)

	select {
	case <-ch:
		t.Fatal("waiter fired before any change")
	default:
	}

	if _, err := move(t, svc, created.GameID, 0, "g1f3"); err != nil {
		t.Fatal(err)
	}
	waitFor(t, ch, "move notification")
}

func TestWaitWithStaleRevisionFiresAtOnce(t *testing.T) {
	svc := newTestService(t, Options{WaitTimeout: time.Minute})
	created, err := svc.CreateGame(CreateOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := move(t, svc, created.GameID, 0, "e2e4"); err != nil {
		t.Fatal(err)
	}

	// The client last saw revision 0; the move already made it 1
	select {
	case <-svc.RegisterWait(context.Background(), created.GameID, 0):
	case <-time.After(100 * time.Millisecond):
		t.Fatal("waiter on a stale revision did not fire at once")
	}
	testutil.AssertEqual(t, svc.waiter.Pending(created.GameID), 0, "pending waiters")

	if err := svc.DeleteGame(created.GameID); err != nil {
		t.Fatal(err)
	}
	select {
	case <-svc.RegisterWait(context.Background(), created.GameID, 1):
	case <-time.After(100 * time.Millisecond):
		t.Fatal("waiter on a deleted game did not fire at once")
	}
}

func TestCleanupFinished(t *testing.T) {
	svc := newTestService(t, Options{FinishedTTL: time.Minute})

	running, err := svc.CreateGame(CreateOptions{})
	if err != nil {
		t.Fatal(err)
	}
	mated, err := svc.CreateGame(CreateOptions{FEN: matedFEN})
	if err != nil {
		t.Fatal(err)
	}
	if !mated.State.IsOver() {
		t.Fatalf("mated position status = %s", mated.State.Status())
	}

	testutil.AssertEqual(t, svc.CleanupFinished(time.Now()), 0, "evicted before ttl")
	testutil.AssertEqual(t, svc.CleanupFinished(time.Now().Add(2*time.Minute)), 1, "evicted after ttl")

	if _, err := svc.GetGame(mated.GameID); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("finished game still present: %v", err)
	}
	if _, err := svc.GetGame(running.GameID); err != nil {
		t.Errorf("running game evicted: %v", err)
	}
}

func TestSelection(t *testing.T) {
	svc := newTestService(t, Options{})
	created, err := svc.CreateGame(CreateOptions{})
	if err != nil {
		t.Fatal(err)
	}
	id := created.GameID

	_, err = svc.Select(id, testutil.MustSquare(t, "e7"))
	testutil.AssertRejected(t, err, core.RejectWrongTurn)

	snap, err := svc.Select(id, testutil.MustSquare(t, "e2"))
	if err != nil {
		t.Fatal(err)
	}
	if pos, ok := snap.State.Selection(); !ok || pos.String() != "e2" {
		t.Errorf("selection = %v, %v", pos, ok)
	}

	snap, _ = svc.Deselect(id)
	if _, ok := snap.State.Selection(); ok {
		t.Error("selection survived Deselect")
	}
}

func TestMovesAreArchived(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")
	store, err := storage.NewStore(path, false)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.InitDB(); err != nil {
		t.Fatal(err)
	}

	svc, err := New(store, Options{ClockSeconds: 60})
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, svc.GetStorageHealth(), "ok", "storage health")

	created, err := svc.CreateGame(CreateOptions{})
	if err != nil {
		t.Fatal(err)
	}
	id := created.GameID
	for _, m := range []string{"e2e4", "f7f6", "d2d4", "g7g5", "d1h5"} {
		if _, err := move(t, svc, id, 0, m); err != nil {
			t.Fatalf("%s: %v", m, err)
		}
	}

	// Shutdown drains the write queue and closes the store
	if err := svc.Shutdown(time.Second); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	r, err := storage.NewStore(path, false)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	games, err := r.QueryGames(id, "")
	if err != nil || len(games) != 1 {
		t.Fatalf("QueryGames = %+v, %v", games, err)
	}
	g := games[0]
	testutil.AssertEqual(t, []any{g.Status, g.Winner, g.FlagFall, g.EndTimeUTC.Valid}, []any{"checkmate", "w", false, true}, "result row")

	moves, err := r.QueryMoves(id)
	if err != nil {
		t.Fatal(err)
	}
	var tokens []string
	for _, m := range moves {
		tokens = append(tokens, m.Notation)
	}
	testutil.AssertEqual(t, tokens, []string{"e4", "f6", "d4", "g5", "Qh5"}, "archived notation")
	testutil.AssertEqual(t, moves[4].PlayerColor, "w", "mover")
	testutil.AssertEqual(t, moves[4].ClockRemaining, 60, "clock remaining")
}
