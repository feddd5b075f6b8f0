package engine

import (
	"testing"

	"github.com/hailam/chessplay/internal/board"
)

func TestOrderMovesMVVLVA(t *testing.T) {
	// Pawn and queen can both take the rook on d5
	pos, err := board.ParseFEN("4k3/8/4p3/3r4/4P3/1N6/8/3QK3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}

	ordered := OrderMoves(pos, pos.LegalMoves())
	if len(ordered) != pos.MoveCount() {
		t.Fatalf("ordered %d moves, want %d", len(ordered), pos.MoveCount())
	}

	first, second := ordered[0], ordered[1]
	if first.String() != "e4d5" {
		t.Errorf("first move = %s, want e4d5 (PxR)", first)
	}
	if second.String() != "d1d5" {
		t.Errorf("second move = %s, want d1d5 (QxR)", second)
	}

	seenQuiet := false
	for _, m := range ordered {
		if m.IsQuiet() {
			seenQuiet = true
		} else if seenQuiet {
			t.Errorf("capture %s ordered after a quiet move", m)
		}
	}
}

func TestOrderMovesPromotionTieBreak(t *testing.T) {
	pos, err := board.ParseFEN("4k3/P7/8/8/8/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	ordered := OrderMoves(pos, pos.LegalMoves())
	for i := 0; i < 4; i++ {
		if !ordered[i].IsPromotion() {
			t.Errorf("move %d = %s, want a promotion", i, ordered[i])
		}
	}
}

func TestOrderMovesStable(t *testing.T) {
	pos := board.NewPosition()
	moves := pos.LegalMoves()
	ordered := OrderMoves(pos, moves)
	for i := range moves {
		if !moves[i].Same(ordered[i]) {
			t.Fatalf("quiet moves reordered at %d: %s vs %s", i, ordered[i], moves[i])
		}
	}
}

func TestOrderTactical(t *testing.T) {
	pos, err := board.ParseFEN("4k3/P7/4p3/3r4/4P3/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	tactical := OrderTactical(pos, pos.LegalMoves())
	if len(tactical) != 5 {
		t.Fatalf("got %d tactical moves, want 5 (4 promotions + exd5)", len(tactical))
	}
	if tactical[0].String() != "e4d5" {
		t.Errorf("first tactical = %s, want e4d5", tactical[0])
	}
	for _, m := range tactical {
		if m.IsQuiet() {
			t.Errorf("quiet move %s in tactical list", m)
		}
	}
}
