package engine

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/hailam/chessplay/internal/board"
)

// Engine is the chess AI engine. It holds configuration only; every search
// builds its own SearchContext, so one Engine may serve concurrent callers
// as long as its Randomizer is safe for concurrent use.
type Engine struct {
	tableSize int
	keys      *ZobristKeys
	rng       Randomizer
	logger    zerolog.Logger

	// Callbacks
	OnInfo func(SearchInfo)
}

// Option configures an Engine.
type Option func(*Engine)

// WithTableSize sets the transposition table entry cap.
func WithTableSize(entries int) Option {
	return func(e *Engine) { e.tableSize = entries }
}

// WithRandomizer sets the source of randomness for random-move difficulty.
func WithRandomizer(rng Randomizer) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithKeys sets the Zobrist key set.
func WithKeys(keys *ZobristKeys) Option {
	return func(e *Engine) { e.keys = keys }
}

// WithLogger sets the logger for search summaries. The default discards.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		tableSize: DefaultTableSize,
		keys:      DefaultKeys(),
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Logger returns the engine's logger.
func (e *Engine) Logger() *zerolog.Logger { return &e.logger }

// BestMove is the encoding-level answer to a search request.
type BestMove struct {
	Move       string   `json:"move"` // SAN, empty when there is no legal move
	PV         []string `json:"pv"`
	Evaluation int      `json:"evaluation"`
}

// ScoredMove is a legal move with its static evaluation after it is played.
type ScoredMove struct {
	Move  board.Move `json:"-"`
	SAN   string     `json:"move"`
	Score int        `json:"score"`
	FEN   string     `json:"fen"`
}

// Analysis is a root search plus a score for every root move.
type Analysis struct {
	Result
	Moves []RootMove // best first for the side to move
}

// Rank returns the 1-based rank of m among the analysed moves, or 0.
func (a Analysis) Rank(m board.Move) int {
	for i, rm := range a.Moves {
		if rm.Move.Same(m) {
			return i + 1
		}
	}
	return 0
}

// Search runs a search on a copy of pos.
func (e *Engine) Search(ctx context.Context, pos *board.Position, d Difficulty) (Result, error) {
	sc := NewSearchContext(pos.Clone(), Profile(d), e.tableSize, e.keys, e.rng)
	res, err := sc.FindBestMove(ctx)
	if err != nil {
		return Result{}, err
	}

	e.logger.Debug().
		Str("difficulty", d.String()).
		Int("depth", res.Info.Depth).
		Int("score", res.Score).
		Uint64("nodes", res.Info.Nodes).
		Dur("elapsed", res.Info.Time).
		Bool("random", res.Info.Random).
		Int("tt", res.Info.TTSize).
		Str("move", res.Move.String()).
		Msg("search finished")

	if e.OnInfo != nil {
		e.OnInfo(res.Info)
	}
	return res, nil
}

// FindBestMove searches the position encoded by fen at difficulty d.
func (e *Engine) FindBestMove(ctx context.Context, fen string, d Difficulty) (BestMove, error) {
	pos, err := board.ParseFEN(fen)
	if err != nil {
		return BestMove{}, err
	}

	res, err := e.Search(ctx, pos, d)
	if err != nil {
		return BestMove{}, err
	}

	out := BestMove{Evaluation: res.Score, PV: []string{}}
	if res.Move.IsNone() {
		return out, nil
	}
	out.Move = res.Move.ToSAN(pos)
	if len(res.PV) > 0 {
		out.PV = board.MovesToSAN(pos, res.PV)
	}
	return out, nil
}

// Analyze searches pos without randomness and scores every root move.
func (e *Engine) Analyze(ctx context.Context, pos *board.Position, d Difficulty) (Analysis, error) {
	profile := Profile(d)
	profile.Randomness = 0

	sc := NewSearchContext(pos.Clone(), profile, e.tableSize, e.keys, nil)
	res, err := sc.FindBestMove(ctx)
	if err != nil {
		return Analysis{}, err
	}

	// A fresh table keeps the ranking independent of the bounds stored above.
	rc := NewSearchContext(pos.Clone(), profile, e.tableSize, e.keys, nil)
	moves, err := rc.RankRootMoves(ctx)
	if err != nil {
		return Analysis{}, err
	}

	e.logger.Debug().
		Int("depth", profile.Depth).
		Int("score", res.Score).
		Int("moves", len(moves)).
		Uint64("nodes", res.Info.Nodes+rc.Nodes()).
		Msg("analysis finished")

	return Analysis{Result: res, Moves: moves}, nil
}

// EvaluatedMoves scores every legal move with the static evaluator only and
// returns the best limit of them for the side to move. limit <= 0 returns all.
func (e *Engine) EvaluatedMoves(fen string, limit int) ([]ScoredMove, error) {
	pos, err := board.ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	return EvaluatedMoves(pos, limit), nil
}

// EvaluatedMoves is the position-level form of Engine.EvaluatedMoves.
func EvaluatedMoves(pos *board.Position, limit int) []ScoredMove {
	moves := pos.LegalMoves()
	scored := make([]ScoredMove, 0, len(moves))

	for _, m := range moves {
		san := m.ToSAN(pos)
		pos.MakeMove(m)
		scored = append(scored, ScoredMove{
			Move:  m,
			SAN:   san,
			Score: Evaluate(pos),
			FEN:   pos.ToFEN(),
		})
		pos.UnmakeMove()
	}

	white := pos.SideToMove() == board.White
	slices.SortStableFunc(scored, func(a, b ScoredMove) int {
		if white {
			return b.Score - a.Score
		}
		return a.Score - b.Score
	})

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// Request asks a background worker for a move.
type Request struct {
	FEN        string
	Difficulty Difficulty
}

// Response answers a Request.
type Response struct {
	BestMove
	Err error
}

// Go runs FindBestMove on its own goroutine and delivers exactly one Response
// unless ctx is done first, in which case the result is dropped.
func (e *Engine) Go(ctx context.Context, req Request) <-chan Response {
	out := make(chan Response, 1)
	go func() {
		defer close(out)
		bm, err := e.FindBestMove(ctx, req.FEN, req.Difficulty)
		select {
		case out <- Response{BestMove: bm, Err: err}:
		case <-ctx.Done():
		}
	}()
	return out
}

// ScoreToString converts a White-relative score to a human-readable string.
func ScoreToString(score int) string {
	if score > MateThreshold {
		return "Mate in " + strconv.Itoa((MateScore-score+1)/2)
	}
	if score < -MateThreshold {
		return "Mated in " + strconv.Itoa((MateScore+score+1)/2)
	}
	return fmt.Sprintf("%+.2f", float64(score)/100)
}

// IsMateScore reports whether score encodes a forced mate.
func IsMateScore(score int) bool {
	return score > MateThreshold || score < -MateThreshold
}
