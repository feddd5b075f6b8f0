package board

import "testing"

// Perft counts the number of leaf nodes at the given depth.
// This is the standard way to verify move generation correctness.
func perft(p *Position, depth int) int64 {
	if depth == 0 {
		return 1
	}

	moves := p.LegalMoves()
	if depth == 1 {
		return int64(len(moves))
	}

	var nodes int64
	for _, m := range moves {
		p.MakeMove(m)
		nodes += perft(p, depth-1)
		p.UnmakeMove()
	}
	return nodes
}

// TestPerftStartingPosition tests move generation from the starting position.
func TestPerftStartingPosition(t *testing.T) {
	pos := NewPosition()

	tests := []struct {
		depth    int
		expected int64
	}{
		{1, 20},
		{2, 400},
		{3, 8902},
	}

	for _, tc := range tests {
		t.Run("", func(t *testing.T) {
			got := perft(pos, tc.depth)
			if got != tc.expected {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
		})
	}

	if pos.ToFEN() != StartFEN {
		t.Errorf("position changed after perft: %s", pos.ToFEN())
	}
}

// TestPerftKiwipete tests the famous Kiwipete position with many edge cases.
func TestPerftKiwipete(t *testing.T) {
	pos, err := ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -")
	if err != nil {
		t.Fatalf("Failed to parse FEN: %v", err)
	}

	tests := []struct {
		depth    int
		expected int64
	}{
		{1, 48},
		{2, 2039},
	}

	for _, tc := range tests {
		t.Run("", func(t *testing.T) {
			got := perft(pos, tc.depth)
			if got != tc.expected {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
		})
	}
}

// TestMakeUnmakeRestoresFEN plays every legal move and takes it back.
func TestMakeUnmakeRestoresFEN(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3",
		"8/P7/8/8/8/8/8/k6K w - - 0 1",
	}

	for _, fen := range fens {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}
		want := pos.ToFEN()
		for _, m := range pos.LegalMoves() {
			pos.MakeMove(m)
			pos.UnmakeMove()
			if got := pos.ToFEN(); got != want {
				t.Errorf("%s: after %s/undo got %s, want %s", fen, m, got, want)
			}
		}
	}
}

func TestMakeMoveState(t *testing.T) {
	pos := NewPosition()

	e4, err := ParseUCI("e2e4", pos)
	if err != nil {
		t.Fatal(err)
	}
	pos.MakeMove(e4)
	if got, want := pos.ToFEN(), "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"; got != want {
		t.Errorf("after e4 got %s, want %s", got, want)
	}

	for _, san := range []string{"e5", "Ke2"} {
		if _, err := pos.PlaySAN(san); err != nil {
			t.Fatalf("PlaySAN(%s): %v", san, err)
		}
	}
	if got, want := pos.ToFEN(), "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPPKPPP/RNBQ1BNR b kq - 1 2"; got != want {
		t.Errorf("after Ke2 got %s, want %s", got, want)
	}
}

func TestNullMove(t *testing.T) {
	pos, err := ParseFEN("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1")
	if err != nil {
		t.Fatal(err)
	}
	before := pos.ToFEN()

	pos.MakeNullMove()
	if pos.SideToMove() != White {
		t.Errorf("side to move after null = %v, want White", pos.SideToMove())
	}
	if pos.EnPassant() != NoSquare {
		t.Errorf("en passant after null = %v, want none", pos.EnPassant())
	}
	if n := len(pos.LegalMoves()); n == 0 {
		t.Error("no legal moves after null move")
	}

	pos.UnmakeNullMove()
	if got := pos.ToFEN(); got != before {
		t.Errorf("after null/undo got %s, want %s", got, before)
	}
}
