package engine

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/hailam/chessplay/internal/board"
)

// Search constants
const (
	Infinity      = 30000
	MateScore     = 20000
	MaxPly        = 128
	MateThreshold = MateScore - MaxPly // scores beyond this are forced mates
)

// Pruning constants
const (
	nullMoveMinDepth = 3
	nullMoveR        = 2
	lmrMinDepth      = 3
	lmrFullMoves     = 4 // quiet moves searched at full depth before reducing
	maxQuiescence    = 4
	pawnTableSlots   = 1 << 14
)

// SearchInfo contains information about a finished search.
type SearchInfo struct {
	Depth   int
	Score   int
	Nodes   uint64
	Time    time.Duration
	PV      []board.Move
	Random  bool
	TTSize  int
	HitRate float64

	NullCutoffs uint64
	Reductions  uint64 // late moves searched at reduced depth
	ReSearches  uint64 // reduced moves searched again at full depth
}

// Result is the outcome of a root search.
type Result struct {
	Move  board.Move // board.NoMove when the side to move has no legal move
	PV    []board.Move
	Score int // centipawns, positive favours White
	Info  SearchInfo
}

// RootMove is one root move with its searched score.
type RootMove struct {
	Move  board.Move
	Score int
}

// SearchContext carries everything one search invocation owns. Nothing in it
// is shared with other searches.
type SearchContext struct {
	pos     *board.Position
	tt      *TranspositionTable
	pawns   *PawnTable
	keys    *ZobristKeys
	profile DifficultyProfile
	rng     Randomizer

	nodes     uint64
	ply       int
	allowNull bool

	nullCutoffs uint64
	reductions  uint64
	reSearches  uint64
}

// NewSearchContext prepares a search over pos, which it will mutate and
// restore. A nil keys uses DefaultKeys.
func NewSearchContext(pos *board.Position, profile DifficultyProfile, tableSize int, keys *ZobristKeys, rng Randomizer) *SearchContext {
	if keys == nil {
		keys = DefaultKeys()
	}
	return &SearchContext{
		pos:       pos,
		tt:        NewTranspositionTable(tableSize),
		pawns:     NewPawnTable(pawnTableSlots),
		keys:      keys,
		profile:   profile,
		rng:       rng,
		allowNull: true,
	}
}

// Nodes returns the number of nodes searched.
func (sc *SearchContext) Nodes() uint64 { return sc.nodes }

// Table exposes the transposition table of this search.
func (sc *SearchContext) Table() *TranspositionTable { return sc.tt }

func (sc *SearchContext) info() SearchInfo {
	return SearchInfo{
		Depth:       sc.profile.Depth,
		Nodes:       sc.nodes,
		TTSize:      sc.tt.Len(),
		HitRate:     sc.tt.HitRate(),
		NullCutoffs: sc.nullCutoffs,
		Reductions:  sc.reductions,
		ReSearches:  sc.reSearches,
	}
}

func (sc *SearchContext) evaluate() int {
	return evaluate(sc.pos, sc.pawns)
}

// mateScore scores a checkmate of the side to move; quicker mates score higher.
func (sc *SearchContext) mateScore() int {
	if sc.pos.SideToMove() == board.White {
		return -(MateScore - sc.ply)
	}
	return MateScore - sc.ply
}

// makeMove plays a real move, after which a null move is allowed again.
func (sc *SearchContext) makeMove(m board.Move) {
	sc.pos.MakeMove(m)
	sc.ply++
	sc.allowNull = true
}

func (sc *SearchContext) unmakeMove() {
	sc.pos.UnmakeMove()
	sc.ply--
}

// search is depth-limited minimax with alpha-beta pruning. maximizing is true
// when White is to move.
func (sc *SearchContext) search(depth, alpha, beta int, maximizing bool) int {
	sc.nodes++
	origAlpha, origBeta := alpha, beta
	key := sc.keys.Hash(sc.pos)

	// Transposition table cutoff
	if score, ok := sc.tt.Probe(key, depth, AdjustScoreToTT(alpha, sc.ply), AdjustScoreToTT(beta, sc.ply)); ok {
		return AdjustScoreFromTT(score, sc.ply)
	}

	moves := sc.pos.LegalMoves()
	inCheck := sc.pos.InCheck()

	// Terminal positions
	if len(moves) == 0 {
		if inCheck {
			return sc.mateScore()
		}
		return 0
	}
	if sc.pos.HalfMoveClock() >= 100 || sc.pos.IsInsufficientMaterial() || sc.pos.IsRepetition() {
		return 0
	}

	if depth <= 0 || sc.ply >= MaxPly {
		if sc.profile.Quiescence {
			return sc.quiescence(alpha, beta, maximizing, 0)
		}
		return sc.evaluate()
	}

	// Null Move Pruning
	if sc.allowNull && !inCheck && depth >= nullMoveMinDepth && sc.pos.HasNonPawnMaterial() {
		sc.allowNull = false
		sc.pos.MakeNullMove()
		sc.ply++

		var cut bool
		if maximizing {
			score := sc.search(depth-1-nullMoveR, beta-1, beta, false)
			cut = score >= beta
		} else {
			score := sc.search(depth-1-nullMoveR, alpha, alpha+1, true)
			cut = score <= alpha
		}

		sc.ply--
		sc.pos.UnmakeNullMove()
		sc.allowNull = true

		if cut {
			sc.nullCutoffs++
			if maximizing {
				return beta
			}
			return alpha
		}
	}

	ordered := OrderMoves(sc.pos, moves)

	best := -Infinity
	if !maximizing {
		best = Infinity
	}
	bestMove := board.NoMove
	quietSeen := 0

	for _, m := range ordered {
		reduce := false
		if m.IsQuiet() {
			quietSeen++
			reduce = quietSeen > lmrFullMoves && depth >= lmrMinDepth && !inCheck
		}

		score := sc.searchMove(m, depth, alpha, beta, maximizing, reduce)

		if maximizing {
			if score > best {
				best, bestMove = score, m
			}
			if best > alpha {
				alpha = best
			}
		} else {
			if score < best {
				best, bestMove = score, m
			}
			if best < beta {
				beta = best
			}
		}

		if beta <= alpha {
			break
		}
	}

	bound := BoundExact
	switch {
	case best <= origAlpha:
		bound = BoundUpper
	case best >= origBeta:
		bound = BoundLower
	}
	sc.tt.Store(key, depth, AdjustScoreToTT(best, sc.ply), bound, bestMove, !bestMove.IsNone())

	return best
}

// searchMove plays m and searches the reply at depth-1. With reduce set it
// searches at depth-2 first and repeats at depth-1 only when the reduced
// score beats the bound (late move reduction).
func (sc *SearchContext) searchMove(m board.Move, depth, alpha, beta int, maximizing, reduce bool) int {
	sc.makeMove(m)
	var score int
	if reduce {
		sc.reductions++
		score = sc.search(depth-2, alpha, beta, !maximizing)
		if (maximizing && score > alpha) || (!maximizing && score < beta) {
			sc.reSearches++
			score = sc.search(depth-1, alpha, beta, !maximizing)
		}
	} else {
		score = sc.search(depth-1, alpha, beta, !maximizing)
	}
	sc.unmakeMove()
	return score
}

// quiescence extends a leaf through captures and promotions only.
func (sc *SearchContext) quiescence(alpha, beta int, maximizing bool, qdepth int) int {
	sc.nodes++

	standPat := sc.evaluate()
	if qdepth >= maxQuiescence {
		return standPat
	}

	if maximizing {
		if standPat >= beta {
			return standPat
		}
		if standPat > alpha {
			alpha = standPat
		}
	} else {
		if standPat <= alpha {
			return standPat
		}
		if standPat < beta {
			beta = standPat
		}
	}

	for _, m := range OrderTactical(sc.pos, sc.pos.LegalMoves()) {
		sc.makeMove(m)
		score := sc.quiescence(alpha, beta, !maximizing, qdepth+1)
		sc.unmakeMove()

		if maximizing {
			if score > alpha {
				alpha = score
			}
		} else {
			if score < beta {
				beta = score
			}
		}
		if beta <= alpha {
			break
		}
	}

	if maximizing {
		return alpha
	}
	return beta
}

// FindBestMove searches the root position to the profile depth. ctx is only
// checked between root moves.
func (sc *SearchContext) FindBestMove(ctx context.Context) (Result, error) {
	start := time.Now()
	depth := sc.profile.Depth

	moves := sc.pos.LegalMoves()
	if len(moves) == 0 {
		return Result{Move: board.NoMove, Score: sc.staticOrMate()}, nil
	}

	if sc.profile.Randomize(sc.rng) {
		rng := sc.rng
		if rng == nil {
			rng = processRandom{}
		}
		m := moves[rng.Intn(len(moves))]
		score := sc.evaluate()
		return Result{
			Move:  m,
			PV:    []board.Move{m},
			Score: score,
			Info:  SearchInfo{Score: score, Random: true, Time: time.Since(start), PV: []board.Move{m}},
		}, nil
	}

	maximizing := sc.pos.SideToMove() == board.White
	alpha, beta := -Infinity, Infinity
	best := -Infinity
	if !maximizing {
		best = Infinity
	}
	bestMove := board.NoMove

	for _, m := range OrderMoves(sc.pos, moves) {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		sc.makeMove(m)
		score := sc.search(depth-1, alpha, beta, !maximizing)
		sc.unmakeMove()

		if maximizing {
			if score > best || bestMove.IsNone() {
				best, bestMove = score, m
			}
			if best > alpha {
				alpha = best
			}
		} else {
			if score < best || bestMove.IsNone() {
				best, bestMove = score, m
			}
			if best < beta {
				beta = best
			}
		}
	}

	sc.tt.Store(sc.keys.Hash(sc.pos), depth, AdjustScoreToTT(best, sc.ply), BoundExact, bestMove, true)
	pv := sc.principalVariation(depth + 2)

	info := sc.info()
	info.Score = best
	info.Time = time.Since(start)
	info.PV = pv
	return Result{
		Move:  bestMove,
		PV:    pv,
		Score: best,
		Info:  info,
	}, nil
}

// RankRootMoves searches every root move with a full window and returns them
// best first for the side to move. Randomness is ignored.
func (sc *SearchContext) RankRootMoves(ctx context.Context) ([]RootMove, error) {
	depth := sc.profile.Depth
	maximizing := sc.pos.SideToMove() == board.White

	moves := OrderMoves(sc.pos, sc.pos.LegalMoves())
	ranked := make([]RootMove, 0, len(moves))

	for _, m := range moves {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sc.makeMove(m)
		score := sc.search(depth-1, -Infinity, Infinity, !maximizing)
		sc.unmakeMove()
		ranked = append(ranked, RootMove{Move: m, Score: score})
	}

	sortRootMoves(ranked, maximizing)
	return ranked, nil
}

// staticOrMate scores a position with no legal moves.
func (sc *SearchContext) staticOrMate() int {
	if sc.pos.InCheck() {
		return sc.mateScore()
	}
	return 0
}

// sortRootMoves orders root moves best first for the side to move, keeping
// search order among equal scores.
func sortRootMoves(moves []RootMove, maximizing bool) {
	slices.SortStableFunc(moves, func(a, b RootMove) int {
		if maximizing {
			return cmp.Compare(b.Score, a.Score)
		}
		return cmp.Compare(a.Score, b.Score)
	})
}

// principalVariation follows stored best moves from the current position.
// The position is restored before returning.
func (sc *SearchContext) principalVariation(maxLen int) []board.Move {
	var pv []board.Move
	seen := make(map[uint64]bool)

	for len(pv) < maxLen {
		key := sc.keys.Hash(sc.pos)
		if seen[key] {
			break
		}
		seen[key] = true

		entry, ok := sc.tt.Lookup(key)
		if !ok || !entry.HasMove {
			break
		}

		move, legal := findLegal(sc.pos, entry.BestMove)
		if !legal {
			break
		}
		sc.makeMove(move)
		pv = append(pv, move)
	}

	for range pv {
		sc.unmakeMove()
	}
	return pv
}

// findLegal returns the legal move matching m, if any.
func findLegal(pos *board.Position, m board.Move) (board.Move, bool) {
	for _, legal := range pos.LegalMoves() {
		if legal.Same(m) {
			return legal, true
		}
	}
	return board.NoMove, false
}
