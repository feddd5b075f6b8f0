// Package engine implements the chess search engine: static evaluation, move
// ordering, Zobrist hashing, the transposition table, alpha-beta search and
// the difficulty profiles that drive it.
package engine

import (
	"github.com/hailam/chessplay/internal/board"
)

// Evaluation constants
const (
	PawnValue   = 100
	KnightValue = 320
	BishopValue = 330
	RookValue   = 500
	QueenValue  = 900
	KingValue   = 20000
)

// Piece values array for quick lookup
var pieceValues = [7]int{PawnValue, KnightValue, BishopValue, RookValue, QueenValue, KingValue, 0}

// Pawn structure terms
const (
	passedPawnBase    = 20
	passedPawnPerRank = 10
	isolatedPawn      = -15
	doubledPawn       = -10
)

// King safety and phase terms
const (
	pawnShieldBonus    = 10
	openFileNearKing   = -15
	kingSafetyMinPhase = 100
	mobilityWeight     = 2
	maxPhase           = 24
	phaseScale         = 256
)

// Phase weight per piece type (Pawn, Knight, Bishop, Rook, Queen, King)
var phaseWeight = [6]int{0, 1, 1, 2, 4, 0}

// Piece-Square Tables (PST) for positional evaluation.
// Tables are written from White's point of view with rank 8 in the first row.

// Pawn PST - encourages central control and advancement
var pawnPST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	50, 50, 50, 50, 50, 50, 50, 50,
	10, 10, 20, 30, 30, 20, 10, 10,
	5, 5, 10, 25, 25, 10, 5, 5,
	0, 0, 0, 20, 20, 0, 0, 0,
	5, -5, -10, 0, 0, -10, -5, 5,
	5, 10, 10, -20, -20, 10, 10, 5,
	0, 0, 0, 0, 0, 0, 0, 0,
}

// Knight PST - encourages central positioning
var knightPST = [64]int{
	-50, -40, -30, -30, -30, -30, -40, -50,
	-40, -20, 0, 0, 0, 0, -20, -40,
	-30, 0, 10, 15, 15, 10, 0, -30,
	-30, 5, 15, 20, 20, 15, 5, -30,
	-30, 0, 15, 20, 20, 15, 0, -30,
	-30, 5, 10, 15, 15, 10, 5, -30,
	-40, -20, 0, 5, 5, 0, -20, -40,
	-50, -40, -30, -30, -30, -30, -40, -50,
}

// Bishop PST - encourages central diagonals
var bishopPST = [64]int{
	-20, -10, -10, -10, -10, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 10, 10, 5, 0, -10,
	-10, 5, 5, 10, 10, 5, 5, -10,
	-10, 0, 10, 10, 10, 10, 0, -10,
	-10, 10, 10, 10, 10, 10, 10, -10,
	-10, 5, 0, 0, 0, 0, 5, -10,
	-20, -10, -10, -10, -10, -10, -10, -20,
}

// Rook PST - encourages 7th rank and central files
var rookPST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	5, 10, 10, 10, 10, 10, 10, 5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	0, 0, 0, 5, 5, 0, 0, 0,
}

// Queen PST - slight central preference
var queenPST = [64]int{
	-20, -10, -10, -5, -5, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 5, 5, 5, 0, -10,
	-5, 0, 5, 5, 5, 5, 0, -5,
	0, 0, 5, 5, 5, 5, 0, -5,
	-10, 5, 5, 5, 5, 5, 0, -10,
	-10, 0, 5, 0, 0, 0, 0, -10,
	-20, -10, -10, -5, -5, -10, -10, -20,
}

// King PST (middlegame) - encourages castling
var kingMidgamePST = [64]int{
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-20, -30, -30, -40, -40, -30, -30, -20,
	-10, -20, -20, -20, -20, -20, -20, -10,
	20, 20, 0, 0, 0, 0, 20, 20,
	20, 30, 10, 0, 0, 10, 30, 20,
}

// King PST (endgame) - king should be active
var kingEndgamePST = [64]int{
	-50, -40, -30, -20, -20, -30, -40, -50,
	-30, -20, -10, 0, 0, -10, -20, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -30, 0, 0, 0, 0, -30, -30,
	-50, -30, -30, -30, -30, -30, -30, -50,
}

// All non-king PSTs for easy lookup
var psts = [...][64]int{
	pawnPST, knightPST, bishopPST, rookPST, queenPST,
}

// Breakdown holds the individual terms of a static evaluation, each from
// White's point of view.
type Breakdown struct {
	Material   int
	Positional int
	Pawns      int
	KingSafety int
	Mobility   int
	Phase      int // 0 (bare endgame) .. 256 (opening)
	Total      int
}

// Evaluate returns the static evaluation of the position in centipawns.
// Positive scores favour White.
func Evaluate(pos *board.Position) int {
	return evaluate(pos, nil)
}

// EvaluateBreakdown returns the evaluation split into its terms.
func EvaluateBreakdown(pos *board.Position) Breakdown {
	b := Breakdown{Phase: GamePhase(pos)}

	for c := board.White; c <= board.Black; c++ {
		sign := 1
		if c == board.Black {
			sign = -1
		}
		material, positional := pieceScores(pos, c, b.Phase)
		b.Material += sign * material
		b.Positional += sign * positional
		b.KingSafety += sign * kingSafety(pos, c, b.Phase)
	}
	b.Pawns = pawnStructure(pos, board.White) - pawnStructure(pos, board.Black)
	b.Mobility = mobility(pos)

	b.Total = b.Material + b.Positional + b.Pawns + b.KingSafety + b.Mobility
	return b
}

// evaluate is Evaluate with an optional pawn structure cache.
func evaluate(pos *board.Position, pawns *PawnTable) int {
	phase := GamePhase(pos)
	score := 0

	for c := board.White; c <= board.Black; c++ {
		sign := 1
		if c == board.Black {
			sign = -1
		}
		material, positional := pieceScores(pos, c, phase)
		score += sign * (material + positional + kingSafety(pos, c, phase))
	}

	score += pawnScore(pos, pawns)
	score += mobility(pos)
	return score
}

// GamePhase returns the game phase scaled to 0..256, 256 being the opening.
func GamePhase(pos *board.Position) int {
	phase := 0
	for c := board.White; c <= board.Black; c++ {
		for pt := board.Knight; pt <= board.Queen; pt++ {
			phase += pos.Pieces(c, pt).PopCount() * phaseWeight[pt]
		}
	}
	if phase > maxPhase {
		phase = maxPhase
	}
	return phase * phaseScale / maxPhase
}

// pstIndex maps a square to its PST slot for the given color.
func pstIndex(sq board.Square, c board.Color) int {
	if c == board.White {
		return int(sq.Mirror())
	}
	return int(sq)
}

// pieceScores returns the material and piece-square totals of one side.
func pieceScores(pos *board.Position, c board.Color, phase int) (material, positional int) {
	for pt := board.Pawn; pt <= board.King; pt++ {
		bb := pos.Pieces(c, pt)
		for bb != 0 {
			idx := pstIndex(bb.PopLSB(), c)

			if pt == board.King {
				// Linear blend between middlegame and endgame tables
				positional += (kingMidgamePST[idx]*phase + kingEndgamePST[idx]*(phaseScale-phase)) / phaseScale
				continue
			}
			material += pieceValues[pt]
			positional += psts[pt][idx]
		}
	}
	return material, positional
}

// forwardMask returns every square strictly ahead of sq from c's side.
func forwardMask(sq board.Square, c board.Color) board.Bitboard {
	rank := sq.Rank()
	if c == board.White {
		if rank == 7 {
			return board.Empty
		}
		return ^board.Bitboard(0) << (uint(rank+1) * 8)
	}
	return board.Bitboard(1)<<(uint(rank)*8) - 1
}

// isPassedPawn reports whether no enemy pawn stands ahead of the pawn on the
// same or an adjacent file.
func isPassedPawn(pos *board.Position, sq board.Square, c board.Color) bool {
	file := sq.File()
	zone := (board.FileMask[file] | board.AdjacentFiles(file)) & forwardMask(sq, c)
	return pos.Pieces(c.Other(), board.Pawn)&zone == 0
}

// pawnStructure scores passed, isolated and doubled pawns for one side.
func pawnStructure(pos *board.Position, c board.Color) int {
	score := 0
	pawns := pos.Pieces(c, board.Pawn)

	for bb := pawns; bb != 0; {
		sq := bb.PopLSB()

		if isPassedPawn(pos, sq, c) {
			score += passedPawnBase + passedPawnPerRank*(sq.RelativeRank(c)-1)
		}
		if pawns&board.AdjacentFiles(sq.File()) == 0 {
			score += isolatedPawn
		}
	}

	for file := 0; file < 8; file++ {
		if n := (pawns & board.FileMask[file]).PopCount(); n > 1 {
			score += doubledPawn * (n - 1)
		}
	}
	return score
}

// pawnScore returns the White-minus-Black pawn structure, using the cache
// when one is supplied.
func pawnScore(pos *board.Position, pawns *PawnTable) int {
	if pawns == nil {
		return pawnStructure(pos, board.White) - pawnStructure(pos, board.Black)
	}

	key := pawnKey(pos)
	if score, ok := pawns.Probe(key); ok {
		return score
	}
	score := pawnStructure(pos, board.White) - pawnStructure(pos, board.Black)
	pawns.Store(key, score)
	return score
}

// kingSafety rewards a pawn shield and penalises open files around the king.
// It only applies while enough material remains.
func kingSafety(pos *board.Position, c board.Color, phase int) int {
	if phase <= kingSafetyMinPhase {
		return 0
	}

	kingSq := pos.KingSquare(c)
	if kingSq == board.NoSquare {
		return 0
	}
	file, rank := kingSq.File(), kingSq.Rank()

	shieldRank := rank + 1
	if c == board.Black {
		shieldRank = rank - 1
	}

	ours := pos.Pieces(c, board.Pawn)
	all := ours | pos.Pieces(c.Other(), board.Pawn)

	score := 0
	for f := file - 1; f <= file+1; f++ {
		if f < 0 || f > 7 {
			continue
		}
		if shieldRank >= 0 && shieldRank <= 7 && ours.IsSet(board.NewSquare(f, shieldRank)) {
			score += pawnShieldBonus
		}
		if all&board.FileMask[f] == 0 {
			score += openFileNearKing
		}
	}

	return score * phase / phaseScale
}

// mobility counts the legal moves of the side to move only.
func mobility(pos *board.Position) int {
	bonus := pos.MoveCount() * mobilityWeight
	if pos.SideToMove() == board.Black {
		return -bonus
	}
	return bonus
}
