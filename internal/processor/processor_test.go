package processor

import (
	"testing"
	"time"

	"chessclock/internal/core"
	"chessclock/internal/service"
	"chessclock/internal/testutil"
)

func newTestProcessor(t *testing.T, opts service.Options) *Processor {
	t.Helper()
	svc, err := service.New(nil, opts)
	if err != nil {
		t.Fatalf("service.New: %v", err)
	}
	t.Cleanup(func() { svc.Shutdown(time.Second) })
	return New(svc)
}

func createGame(t *testing.T, p *Processor, req core.CreateGameRequest) core.GameResponse {
	t.Helper()
	resp := p.Execute(NewCreateGameCommand(req))
	if !resp.Success {
		t.Fatalf("create game: %+v", resp.Error)
	}
	return resp.Data.(core.GameResponse)
}

func expectCode(t *testing.T, resp ProcessorResponse, code string) {
	t.Helper()
	if resp.Success {
		t.Fatalf("expected error %s, got success", code)
	}
	if resp.Error.Code != code {
		t.Fatalf("error code = %s (%s), want %s", resp.Error.Code, resp.Error.Error, code)
	}
}

func TestCreateGameResponse(t *testing.T) {
	p := newTestProcessor(t, service.Options{ClockSeconds: 90})

	g := createGame(t, p, core.CreateGameRequest{})
	testutil.AssertEqual(t, g, core.GameResponse{
		GameID: g.GameID,
		FEN:    "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1",
		Turn:   "w",
		Status: "active",
		Moves:  []string{},
		Clocks: core.ClockResponse{White: 90, Black: 90},
	}, "new game")

	custom := createGame(t, p, core.CreateGameRequest{ClockSeconds: 5, FEN: "4k3/8/8/8/8/8/8/4K2R b - - 0 1"})
	testutil.AssertEqual(t, []any{custom.Turn, custom.Clocks.Black}, []any{"b", 5}, "custom game")
}

func TestCreateGameInvalidFEN(t *testing.T) {
	p := newTestProcessor(t, service.Options{})

	for _, fen := range []string{
		"not a fen",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w\nquit",
		"8/8/8/8/8/8/8/8 w",       // no kings
		"4k3/8/8/8/8/8/8/4K3/8 w", // nine ranks
	} {
		expectCode(t, p.Execute(NewCreateGameCommand(core.CreateGameRequest{FEN: fen})), core.ErrInvalidFEN)
	}
}

func TestMakeMoveFlow(t *testing.T) {
	p := newTestProcessor(t, service.Options{})
	id := createGame(t, p, core.CreateGameRequest{}).GameID

	resp := p.Execute(NewMakeMoveCommand(id, "", core.MoveRequest{Move: "E2E4"}))
	if !resp.Success {
		t.Fatalf("e2e4: %+v", resp.Error)
	}
	g := resp.Data.(core.GameResponse)
	testutil.AssertEqual(t, g.LastMove, &core.MoveInfo{Move: "e4", From: "e2", To: "e4", PlayerColor: "w"}, "last move")
	testutil.AssertEqual(t, g.Revision, 1, "revision")

	expectCode(t, p.Execute(NewMakeMoveCommand(id, "", core.MoveRequest{Move: "e4e5"})), core.ErrInvalidMove)
	expectCode(t, p.Execute(NewMakeMoveCommand(id, "", core.MoveRequest{Move: "e7e4"})), core.ErrInvalidMove)
	expectCode(t, p.Execute(NewMakeMoveCommand(id, "", core.MoveRequest{Move: "e9e4"})), core.ErrInvalidMove)
	expectCode(t, p.Execute(NewMakeMoveCommand("missing", "", core.MoveRequest{Move: "e7e5"})), core.ErrGameNotFound)

	bad := p.Execute(NewMakeMoveCommand(id, "", core.MoveRequest{Move: "b8b6"}))
	expectCode(t, bad, core.ErrInvalidMove)
	testutil.AssertEqual(t, bad.Error.Details, "piece_rule_violation", "rejection reason")
	testutil.AssertEqual(t, bad.Error.Error, "invalid knight move", "rejection message")
}

func TestMoveAfterMate(t *testing.T) {
	p := newTestProcessor(t, service.Options{})
	id := createGame(t, p, core.CreateGameRequest{}).GameID

	var last core.GameResponse
	for _, m := range []string{"f2f3", "e7e5", "g2g4", "d8h4"} {
		resp := p.Execute(NewMakeMoveCommand(id, "", core.MoveRequest{Move: m}))
		if !resp.Success {
			t.Fatalf("%s: %+v", m, resp.Error)
		}
		last = resp.Data.(core.GameResponse)
	}
	testutil.AssertEqual(t, []any{last.Status, last.Winner, last.FlagFall}, []any{"checkmate", "b", false}, "fool's mate")
	testutil.AssertEqual(t, last.Moves, []string{"f3", "e5", "g4", "Qh4"}, "moves")

	resp := p.Execute(NewMakeMoveCommand(id, "", core.MoveRequest{Move: "a2a3"}))
	expectCode(t, resp, core.ErrGameOver)
	testutil.AssertEqual(t, resp.Error.Error, "game is over", "message")
}

func TestSeatTokens(t *testing.T) {
	p := newTestProcessor(t, service.Options{RequireSeats: true, SeatSecret: "seat-secret-for-tests-0123456789abcdef"})
	g := createGame(t, p, core.CreateGameRequest{})
	if g.Seats == nil {
		t.Fatal("seats missing from creation response")
	}

	e2e4 := core.MoveRequest{Move: "e2e4"}
	expectCode(t, p.Execute(NewMakeMoveCommand(g.GameID, "", e2e4)), core.ErrUnauthorized)
	expectCode(t, p.Execute(NewMakeMoveCommand(g.GameID, "bogus", e2e4)), core.ErrUnauthorized)
	expectCode(t, p.Execute(NewMakeMoveCommand(g.GameID, g.Seats.Black, e2e4)), core.ErrNotYourTurn)

	if resp := p.Execute(NewMakeMoveCommand(g.GameID, g.Seats.White, e2e4)); !resp.Success {
		t.Fatalf("white seat: %+v", resp.Error)
	}

	// Seats are only returned on creation
	resp := p.Execute(NewGetGameCommand(g.GameID))
	if resp.Data.(core.GameResponse).Seats != nil {
		t.Error("seats leaked into GetGame")
	}
}

func TestBoardAndTargets(t *testing.T) {
	p := newTestProcessor(t, service.Options{})
	id := createGame(t, p, core.CreateGameRequest{}).GameID

	resp := p.Execute(NewGetBoardCommand(id))
	if !resp.Success {
		t.Fatal(resp.Error)
	}
	board := resp.Data.(core.BoardResponse)
	testutil.AssertEqual(t, board.FEN, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1", "fen")
	if board.Board == "" {
		t.Error("empty ascii board")
	}

	cases := []struct {
		square string
		want   []string
	}{
		{"g1", []string{"f3", "h3"}},
		{"e2", []string{"e4", "e3"}},
		{"e7", []string{}}, // not the side to move
		{"e4", []string{}}, // empty
	}
	for _, tc := range cases {
		resp := p.Execute(NewGetTargetsCommand(id, tc.square))
		if !resp.Success {
			t.Fatalf("%s: %+v", tc.square, resp.Error)
		}
		testutil.AssertEqual(t, resp.Data.(core.TargetsResponse).Targets, tc.want, tc.square)
	}

	expectCode(t, p.Execute(NewGetTargetsCommand(id, "z9")), core.ErrInvalidRequest)
}

func TestDeleteGame(t *testing.T) {
	p := newTestProcessor(t, service.Options{})
	id := createGame(t, p, core.CreateGameRequest{}).GameID

	if resp := p.Execute(NewDeleteGameCommand(id)); !resp.Success {
		t.Fatal(resp.Error)
	}
	expectCode(t, p.Execute(NewGetGameCommand(id)), core.ErrGameNotFound)
	expectCode(t, p.Execute(NewDeleteGameCommand(id)), core.ErrGameNotFound)
}

func TestGameLimit(t *testing.T) {
	p := newTestProcessor(t, service.Options{MaxGames: 1})
	createGame(t, p, core.CreateGameRequest{})
	expectCode(t, p.Execute(NewCreateGameCommand(core.CreateGameRequest{})), core.ErrResourceLimit)
}
