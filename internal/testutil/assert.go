// Package testutil holds helpers shared by package tests.
package testutil

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"chessclock/internal/board"
	"chessclock/internal/core"
)

// AssertEqual compares got and want using cmp.Diff and reports differences.
func AssertEqual(t *testing.T, got, want any, msg string) {
	t.Helper()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("%s: mismatch (-want +got):\n%s", msg, diff)
	}
}

// MustFEN parses a FEN or fails the test
func MustFEN(t *testing.T, fen string) (board.Board, core.Color) {
	t.Helper()
	b, turn, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return b, turn
}

// MustSquare parses a square name or fails the test
func MustSquare(t *testing.T, s string) core.Position {
	t.Helper()
	p, err := core.ParseSquare(s)
	if err != nil {
		t.Fatalf("ParseSquare(%q): %v", s, err)
	}
	return p
}

// AssertRejected fails unless err is a Rejection with the given reason
func AssertRejected(t *testing.T, err error, want core.RejectReason) *core.Rejection {
	t.Helper()
	rej, ok := core.AsRejection(err)
	if !ok {
		t.Fatalf("expected rejection %s, got %v", want, err)
	}
	if rej.Reason != want {
		t.Fatalf("rejection reason = %s (%v), want %s", rej.Reason, rej, want)
	}
	return rej
}

// AssertErrorIs fails unless errors.Is(err, target)
func AssertErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected error %v, got %v", target, err)
	}
}
