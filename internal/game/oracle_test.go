package game

import (
	"slices"
	"strings"
	"testing"

	nchess "github.com/corentings/chess/v2"

	"chessclock/internal/core"
	"chessclock/internal/rules"
)

// oracleMoves lists the moves the reference engine allows, minus the rules
// this engine leaves out (castling, en passant, promotion)
func oracleMoves(g *nchess.Game) []string {
	valid := g.ValidMoves()
	var out []string
	for i := range valid {
		m := &valid[i]
		if m.HasTag(nchess.KingSideCastle) || m.HasTag(nchess.QueenSideCastle) ||
			m.HasTag(nchess.EnPassant) || m.Promo() != nchess.NoPieceType {
			continue
		}
		out = append(out, m.S1().String()+m.S2().String())
	}
	slices.Sort(out)
	return out
}

func engineMoves(s State) []string {
	var out []string
	s.Board().Each(func(from core.Position, p core.Piece) {
		if p.Color != s.Turn() {
			return
		}
		for _, to := range rules.LegalMoves(s.Board(), from) {
			out = append(out, from.String()+to.String())
		}
	})
	slices.Sort(out)
	return out
}

func TestAgainstReferenceEngine(t *testing.T) {
	games := []struct {
		name  string
		moves []string
		mate  bool
	}{
		{
			name:  "scholar's mate",
			moves: []string{"e2e4", "e7e5", "f1c4", "b8c6", "d1h5", "g8f6", "h5f7"},
			mate:  true,
		},
		{
			name: "scandinavian",
			moves: []string{
				"e2e4", "d7d5", "e4d5", "d8d5", "b1c3", "d5a5", "d2d4", "g8f6",
				"g1f3", "c8f5", "f1c4", "e7e6", "c1d2", "c7c6", "d1e2", "f8b4",
				"a2a3", "b4c3", "d2c3",
			},
		},
	}

	for _, tt := range games {
		t.Run(tt.name, func(t *testing.T) {
			ref := nchess.NewGame()
			s := NewGame(600)

			for i, mv := range tt.moves {
				testEqualMoves(t, i, engineMoves(s), oracleMoves(ref))

				if err := ref.PushNotationMove(mv, nchess.UCINotation{}, nil); err != nil {
					t.Fatalf("reference rejected %s: %v", mv, err)
				}
				s, _ = mustMove(t, s, mv)

				refPlacement := strings.Fields(ref.FEN())[0]
				if got := s.Board().Placement(); got != refPlacement {
					t.Fatalf("after %s placement = %s, reference %s", mv, got, refPlacement)
				}
				wantTurn := core.ColorWhite
				if ref.Position().Turn() == nchess.Black {
					wantTurn = core.ColorBlack
				}
				if s.Turn() != wantTurn {
					t.Fatalf("after %s turn = %s, reference %s", mv, s.Turn().Name(), wantTurn.Name())
				}
			}

			mated := s.Status() == core.StatusCheckmate
			refMated := ref.Method() == nchess.Checkmate
			if mated != tt.mate || refMated != tt.mate {
				t.Fatalf("checkmate: engine %v, reference %v, want %v", mated, refMated, tt.mate)
			}
			if tt.mate && ref.Outcome() != nchess.WhiteWon {
				t.Errorf("reference outcome = %s", ref.Outcome())
			}
		})
	}
}

func testEqualMoves(t *testing.T, ply int, got, want []string) {
	t.Helper()
	if !slices.Equal(got, want) {
		t.Fatalf("ply %d legal moves differ\nengine:    %v\nreference: %v", ply, got, want)
	}
}
