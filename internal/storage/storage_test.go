package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"chessclock/internal/testutil"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chess.db")
	s, err := NewStore(path, false)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := s.InitDB(); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	return s, path
}

func reopen(t *testing.T, path string) *Store {
	t.Helper()
	s, err := NewStore(path, false)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestArchiveRoundTrip(t *testing.T) {
	s, path := openTestStore(t)
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	s.RecordNewGame(GameRecord{
		GameID:       "g1",
		InitialFEN:   "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1",
		ClockSeconds: 600,
		StartTimeUTC: start,
	})
	s.RecordNewGame(GameRecord{GameID: "g2", InitialFEN: "x", ClockSeconds: 60, StartTimeUTC: start.Add(time.Minute)})
	s.RecordMove(MoveRecord{
		GameID: "g1", MoveNumber: 1, FromSquare: "e2", ToSquare: "e4", Notation: "e4",
		PlayerColor: "w", ClockRemaining: 598, MoveTimeUTC: start.Add(2 * time.Second),
	})
	s.RecordMove(MoveRecord{
		GameID: "g1", MoveNumber: 2, FromSquare: "d7", ToSquare: "d5", Notation: "d5",
		PlayerColor: "b", ClockRemaining: 597, MoveTimeUTC: start.Add(5 * time.Second),
	})
	s.RecordResult(ResultRecord{GameID: "g1", Status: "checkmate", Winner: "b", FlagFall: true, EndTimeUTC: start.Add(time.Hour)})

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !s.IsHealthy() {
		t.Fatal("store degraded during normal writes")
	}

	r := reopen(t, path)

	all, err := r.QueryGames("*", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].GameID != "g2" {
		t.Fatalf("QueryGames(*) = %+v, want g2 first", all)
	}

	finished, err := r.QueryGames("", "checkmate")
	if err != nil {
		t.Fatal(err)
	}
	if len(finished) != 1 {
		t.Fatalf("checkmate games = %d, want 1", len(finished))
	}
	g := finished[0]
	testutil.AssertEqual(t, []any{g.GameID, g.Winner, g.FlagFall, g.ClockSeconds}, []any{"g1", "b", true, 600}, "result")
	if !g.StartTimeUTC.Equal(start) || !g.EndTimeUTC.Valid || !g.EndTimeUTC.Time.Equal(start.Add(time.Hour)) {
		t.Errorf("times = %v / %v", g.StartTimeUTC, g.EndTimeUTC)
	}

	moves, err := r.QueryMoves("g1")
	if err != nil {
		t.Fatal(err)
	}
	if len(moves) != 2 {
		t.Fatalf("moves = %d, want 2", len(moves))
	}
	testutil.AssertEqual(t, []string{moves[0].Notation, moves[1].Notation}, []string{"e4", "d5"}, "notation order")
	testutil.AssertEqual(t, moves[1].ClockRemaining, 597, "clock remaining")

	active, err := r.QueryGames("g2", "active")
	if err != nil || len(active) != 1 || active[0].EndTimeUTC.Valid {
		t.Errorf("g2 should still be active and open: %+v %v", active, err)
	}
}

func TestFailedWriteDegradesStore(t *testing.T) {
	s, _ := openTestStore(t)

	s.RecordNewGame(GameRecord{GameID: "g1", InitialFEN: "x", ClockSeconds: 60, StartTimeUTC: time.Now().UTC()})
	move := MoveRecord{GameID: "g1", MoveNumber: 1, FromSquare: "e2", ToSquare: "e4", Notation: "e4", PlayerColor: "w", MoveTimeUTC: time.Now().UTC()}
	s.RecordMove(move)
	s.RecordMove(move) // duplicate move number violates UNIQUE

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if s.IsHealthy() {
		t.Error("store should be degraded after a constraint violation")
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestDeleteDB(t *testing.T) {
	s, path := openTestStore(t)
	if err := s.DeleteDB(); err != nil {
		t.Fatalf("DeleteDB: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("database file still present: %v", err)
	}
}
