package review

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hailam/chessplay/internal/board"
	"github.com/hailam/chessplay/internal/engine"
)

// MoveReview is the verdict on one ply of a game.
type MoveReview struct {
	Ply        int         `json:"ply"`
	Side       board.Color `json:"side"`
	SAN        string      `json:"san"`
	FENBefore  string      `json:"fen_before"`
	FENAfter   string      `json:"fen_after"`
	BestMove   string      `json:"best_move"`
	BestLine   []string    `json:"best_line"`
	EvalBefore int         `json:"eval_before"`
	EvalAfter  int         `json:"eval_after"`
	Rank       int         `json:"rank"`
	Classification
}

// Summary aggregates one side's moves.
type Summary struct {
	Moves    int           `json:"moves"`
	Accuracy float64       `json:"accuracy"`
	Labels   map[Label]int `json:"labels"`
}

// GameReview is a reviewed game.
type GameReview struct {
	ID         string            `json:"id"`
	StartFEN   string            `json:"start_fen"`
	Difficulty engine.Difficulty `json:"difficulty"`
	CreatedAt  time.Time         `json:"created_at"`
	Moves      []MoveReview      `json:"moves"`
	White      Summary           `json:"white"`
	Black      Summary           `json:"black"`
}

// Reviewer analyses every ply of a game.
type Reviewer struct {
	engine  *engine.Engine
	workers int
}

// NewReviewer returns a reviewer using e. workers <= 0 uses one per CPU.
func NewReviewer(e *engine.Engine, workers int) *Reviewer {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Reviewer{engine: e, workers: workers}
}

// ply is a replayed move with its own copies of the surrounding positions.
type ply struct {
	move   board.Move
	san    string
	before *board.Position
	after  *board.Position
}

// replay plays sans from startFEN.
func replay(startFEN string, sans []string) ([]ply, error) {
	pos, err := board.ParseFEN(startFEN)
	if err != nil {
		return nil, err
	}

	plies := make([]ply, 0, len(sans))
	for i, san := range sans {
		before := pos.Clone()
		m, err := pos.PlaySAN(san)
		if err != nil {
			return nil, fmt.Errorf("ply %d (%s): %w", i+1, san, err)
		}
		plies = append(plies, ply{
			move:   m,
			san:    m.ToSAN(before),
			before: before,
			after:  pos.Clone(),
		})
	}
	return plies, nil
}

// ReviewGame replays sans from startFEN and classifies every move. Plies are
// analysed concurrently; each worker owns its positions and search state.
// An empty startFEN means the initial position.
func (r *Reviewer) ReviewGame(ctx context.Context, startFEN string, sans []string, d engine.Difficulty) (*GameReview, error) {
	start := time.Now()
	if startFEN == "" {
		startFEN = board.StartFEN
	}
	plies, err := replay(startFEN, sans)
	if err != nil {
		return nil, err
	}

	moves := make([]MoveReview, len(plies))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, p := range plies {
		g.Go(func() error {
			mr, err := r.reviewPly(gctx, p, d)
			if err != nil {
				return fmt.Errorf("ply %d (%s): %w", i+1, p.san, err)
			}
			mr.Ply = i + 1
			moves[i] = mr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	gr := &GameReview{
		ID:         uuid.NewString(),
		StartFEN:   startFEN,
		Difficulty: d,
		CreatedAt:  time.Now(),
		Moves:      moves,
		White:      summarize(moves, board.White),
		Black:      summarize(moves, board.Black),
	}

	r.engine.Logger().Info().
		Str("id", gr.ID).
		Int("plies", len(moves)).
		Float64("white_accuracy", gr.White.Accuracy).
		Float64("black_accuracy", gr.Black.Accuracy).
		Dur("elapsed", time.Since(start)).
		Msg("game reviewed")

	return gr, nil
}

// reviewPly scores the played move against every alternative from the same
// root search, so the before and after evaluations share one horizon.
func (r *Reviewer) reviewPly(ctx context.Context, p ply, d engine.Difficulty) (MoveReview, error) {
	an, err := r.engine.Analyze(ctx, p.before, d)
	if err != nil {
		return MoveReview{}, err
	}

	mr := MoveReview{
		Side:      p.before.SideToMove(),
		SAN:       p.san,
		FENBefore: p.before.ToFEN(),
		FENAfter:  p.after.ToFEN(),
		Rank:      an.Rank(p.move),
		BestLine:  board.MovesToSAN(p.before, an.PV),
	}

	mr.EvalBefore = an.Score
	mr.EvalAfter = an.Score
	if len(an.Moves) > 0 {
		mr.BestMove = an.Moves[0].Move.ToSAN(p.before)
		mr.EvalBefore = an.Moves[0].Score
	}
	if mr.Rank > 0 {
		mr.EvalAfter = an.Moves[mr.Rank-1].Score
	}

	mr.Classification = Classify(Input{
		EvalBefore: mr.EvalBefore,
		EvalAfter:  mr.EvalAfter,
		Before:     p.before,
		After:      p.after,
		Played:     mr.SAN,
		Best:       mr.BestMove,
		Mover:      mr.Side,
		Rank:       mr.Rank,
	})

	r.engine.Logger().Debug().
		Str("move", mr.SAN).
		Str("best", mr.BestMove).
		Int("rank", mr.Rank).
		Stringer("label", mr.Label).
		Msg("ply classified")

	return mr, nil
}

func summarize(moves []MoveReview, side board.Color) Summary {
	s := Summary{Labels: make(map[Label]int)}
	total := 0.0
	for _, m := range moves {
		if m.Side != side {
			continue
		}
		s.Moves++
		total += m.Accuracy
		s.Labels[m.Label]++
	}
	if s.Moves > 0 {
		s.Accuracy = total / float64(s.Moves)
	}
	return s
}
