package cli

import (
	"bytes"
	"strings"
	"testing"

	"chessclock/internal/board"
	"chessclock/internal/game"
	"chessclock/internal/testutil"
)

func TestFormatClock(t *testing.T) {
	cases := map[int]string{
		0:    "0:00",
		-3:   "0:00",
		59:   "0:59",
		600:  "10:00",
		3600: "1:00:00",
		3725: "1:02:05",
	}
	for in, want := range cases {
		testutil.AssertEqual(t, FormatClock(in), want, "FormatClock")
	}
}

func TestDisplayBoardMarks(t *testing.T) {
	var out bytes.Buffer
	view := New(NewScannerReader(strings.NewReader(""), nil), &out)

	view.DisplayBoard(board.Initial(), testutil.MustSquare(t, "e3"), testutil.MustSquare(t, "e4"))

	lines := strings.Split(out.String(), "\n")
	// header blank line, file letters, then rank 8 first
	testutil.AssertEqual(t, lines[2], "8 r n b q k b n r  8", "rank 8")
	testutil.AssertEqual(t, lines[5], "5 . . . . . . . .  5", "rank 5")
	testutil.AssertEqual(t, lines[6], "4 . . . . * . . .  4", "rank 4")
	testutil.AssertEqual(t, lines[7], "3 . . . . * . . .  3", "rank 3")
}

func TestPromptAndHistory(t *testing.T) {
	st := game.NewGame(75)
	testutil.AssertEqual(t, Prompt(st), "[W 1:15 | B 1:15] w> ", "prompt")

	st, _, err := game.SubmitMove(st, testutil.MustSquare(t, "e2"), testutil.MustSquare(t, "e4"))
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	view := New(NewScannerReader(strings.NewReader(""), nil), &out)
	view.ShowGameHistory(st)

	if !strings.Contains(out.String(), "\n1. e4\n") {
		t.Errorf("history output:\n%s", out.String())
	}
}

func TestScannerReaderEOF(t *testing.T) {
	view := New(NewScannerReader(strings.NewReader("help\n"), nil), &bytes.Buffer{})

	cmd, err := view.GetCommand("> ")
	if err != nil || cmd.Type != CmdHelp {
		t.Fatalf("first command = %+v, %v", cmd, err)
	}
	cmd, err = view.GetCommand("> ")
	if err != nil || cmd.Type != CmdQuit {
		t.Fatalf("EOF = %+v, %v; want quit", cmd, err)
	}
}
