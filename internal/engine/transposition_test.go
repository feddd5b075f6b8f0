package engine

import (
	"testing"

	"github.com/hailam/chessplay/internal/board"
)

func TestTranspositionExactRoundTrip(t *testing.T) {
	tt := NewTranspositionTable(DefaultTableSize)
	pos := board.NewPosition()
	key := Hash(pos)
	best := pos.LegalMoves()[0]

	tt.Store(key, 5, 42, BoundExact, best, true)

	for depth := 0; depth <= 5; depth++ {
		score, ok := tt.Probe(key, depth, -Infinity, Infinity)
		if !ok || score != 42 {
			t.Errorf("Probe(depth %d) = %d, %v; want 42, true", depth, score, ok)
		}
	}
	if _, ok := tt.Probe(key, 6, -Infinity, Infinity); ok {
		t.Error("a deeper request must not be answered by a shallower entry")
	}

	entry, ok := tt.Lookup(key)
	if !ok || !entry.HasMove || !entry.BestMove.Same(best) {
		t.Errorf("Lookup = %+v, %v; want best move %s", entry, ok, best)
	}
}

func TestTranspositionBounds(t *testing.T) {
	tt := NewTranspositionTable(DefaultTableSize)
	const lower, upper = 1, 2

	tt.Store(lower, 3, 100, BoundLower, board.NoMove, false)
	tt.Store(upper, 3, -100, BoundUpper, board.NoMove, false)

	tests := []struct {
		name        string
		key         uint64
		alpha, beta int
		hit         bool
	}{
		{"lower meets beta", lower, 0, 50, true},
		{"lower below beta", lower, 0, 200, false},
		{"upper under alpha", upper, -50, 50, true},
		{"upper above alpha", upper, -200, 50, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := tt.Probe(tc.key, 3, tc.alpha, tc.beta)
			if ok != tc.hit {
				t.Errorf("Probe hit = %v, want %v", ok, tc.hit)
			}
		})
	}
}

func TestTranspositionEviction(t *testing.T) {
	tt := NewTranspositionTable(10)
	for key := uint64(1); key <= 10; key++ {
		tt.Store(key, 1, int(key), BoundExact, board.NoMove, false)
	}
	if tt.Len() != 10 {
		t.Fatalf("Len = %d, want 10", tt.Len())
	}

	// Overwriting an existing key never evicts
	tt.Store(3, 2, 33, BoundExact, board.NoMove, false)
	if tt.Len() != 10 {
		t.Fatalf("Len after overwrite = %d, want 10", tt.Len())
	}

	tt.Store(11, 1, 11, BoundExact, board.NoMove, false)
	if tt.Len() != 6 {
		t.Fatalf("Len after overflow = %d, want 6", tt.Len())
	}
	for key := uint64(1); key <= 5; key++ {
		if _, ok := tt.Lookup(key); ok {
			t.Errorf("key %d should have been evicted", key)
		}
	}
	for key := uint64(6); key <= 11; key++ {
		if _, ok := tt.Lookup(key); !ok {
			t.Errorf("key %d should have survived", key)
		}
	}

	tt.Clear()
	if tt.Len() != 0 {
		t.Errorf("Len after Clear = %d", tt.Len())
	}
}

func TestMateScoreAdjustment(t *testing.T) {
	// Mate found 3 plies below a node at ply 4
	root := MateScore - 7
	stored := AdjustScoreToTT(root, 4)
	if stored != MateScore-3 {
		t.Errorf("stored = %d, want %d", stored, MateScore-3)
	}
	if got := AdjustScoreFromTT(stored, 2); got != MateScore-5 {
		t.Errorf("re-based at ply 2 = %d, want %d", got, MateScore-5)
	}
	if got := AdjustScoreToTT(150, 9); got != 150 {
		t.Errorf("normal scores must not change, got %d", got)
	}
	if got := AdjustScoreFromTT(-stored, 4); got != -root {
		t.Errorf("negative mate = %d, want %d", got, -root)
	}
}
