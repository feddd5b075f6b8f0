package engine

import (
	"cmp"
	"slices"

	"github.com/hailam/chessplay/internal/board"
)

// MVV-LVA (Most Valuable Victim - Least Valuable Attacker) score.
// Higher score = search first. Quiet moves score 0.
func mvvLva(m board.Move) int {
	if !m.IsCapture() {
		return 0
	}
	return 10*pieceValues[m.Captured] - pieceValues[m.Piece]
}

type scoredMove struct {
	move  board.Move
	score int
}

// OrderMoves returns moves sorted by MVV-LVA, best first. Among equal scores
// promotions go first; otherwise the generator order is kept.
func OrderMoves(pos *board.Position, moves []board.Move) []board.Move {
	scored := make([]scoredMove, len(moves))
	for i, m := range moves {
		scored[i] = scoredMove{move: m, score: mvvLva(m)}
	}

	slices.SortStableFunc(scored, func(a, b scoredMove) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		switch {
		case a.move.IsPromotion() && !b.move.IsPromotion():
			return -1
		case b.move.IsPromotion() && !a.move.IsPromotion():
			return 1
		}
		return 0
	})

	ordered := make([]board.Move, len(scored))
	for i, s := range scored {
		ordered[i] = s.move
	}
	return ordered
}

// OrderTactical keeps only captures and promotions, ordered like OrderMoves.
func OrderTactical(pos *board.Position, moves []board.Move) []board.Move {
	tactical := make([]board.Move, 0, len(moves))
	for _, m := range moves {
		if !m.IsQuiet() {
			tactical = append(tactical, m)
		}
	}
	return OrderMoves(pos, tactical)
}
