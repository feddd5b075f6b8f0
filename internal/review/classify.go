// Package review labels played moves against the engine's choice and
// reviews whole games.
package review

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/hailam/chessplay/internal/board"
	"github.com/hailam/chessplay/internal/engine"
)

// ErrUnknownLabel is returned when parsing a label name fails.
var ErrUnknownLabel = errors.New("unknown label")

// Label is the verdict on a played move. The first six are ordered from
// best to worst; Miss, Brilliant and Great are overrides.
type Label int

const (
	Best Label = iota
	Excellent
	Good
	Inaccuracy
	Mistake
	Blunder
	Miss
	Brilliant
	Great
)

var labelNames = [...]string{
	Best:       "best",
	Excellent:  "excellent",
	Good:       "good",
	Inaccuracy: "inaccuracy",
	Mistake:    "mistake",
	Blunder:    "blunder",
	Miss:       "miss",
	Brilliant:  "brilliant",
	Great:      "great",
}

func (l Label) String() string {
	if l >= 0 && int(l) < len(labelNames) {
		return labelNames[l]
	}
	return fmt.Sprintf("label(%d)", int(l))
}

// ParseLabel parses a label name.
func ParseLabel(s string) (Label, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for l, name := range labelNames {
		if name == s {
			return Label(l), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLabel, s)
}

func (l Label) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *Label) UnmarshalText(text []byte) error {
	parsed, err := ParseLabel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Classifier constants
const (
	sigmoidK   = 0.0035
	mateCutoff = 10000

	winningEP  = 0.8
	missLoss   = 0.2
	rankBestEP = 0.1

	brilliantMaxLoss   = 0.05
	brilliantMaxEP     = 0.9
	brilliantSacrifice = 100
	brilliantSlack     = 50
	brilliantMaxCP     = 500

	greatMaxCP    = 100
	greatJump     = 150
	saveMinCP     = -300
	saveSlack     = 20
	saveMinEPNext = 0.35
	saveMaxEPPrev = 0.45

	fullLoss = 0.5

	exchangeDepth = 6
)

// lossThresholds maps the upper epLoss bound of each base label.
var lossThresholds = []struct {
	max   float64
	label Label
}{
	{0.005, Best},
	{0.03, Excellent},
	{0.09, Good},
	{0.18, Inaccuracy},
	{0.35, Mistake},
}

// Input is everything Classify looks at. Evaluations are White-relative
// centipawns. Rank 0 or an empty Best means the engine's ranking is unknown.
type Input struct {
	EvalBefore int
	EvalAfter  int
	Before     *board.Position // optional, needed for sacrifice detection
	After      *board.Position
	Played     string
	Best       string
	Mover      board.Color
	Rank       int
}

// Classification is the verdict on one move.
type Classification struct {
	Label              Label   `json:"label"`
	Accuracy           float64 `json:"accuracy"`
	ExpectedPointsLoss float64 `json:"expected_points_loss"`
	Explanation        string  `json:"explanation"`
}

// ExpectedPoints converts a centipawn score from the mover's point of view
// into a win probability. Forced mates clamp to 0 or 1.
func ExpectedPoints(cp int) float64 {
	if cp > mateCutoff {
		return 1
	}
	if cp < -mateCutoff {
		return 0
	}
	return 1 / (1 + math.Exp(-sigmoidK*float64(cp)))
}

// baseLabel applies the loss threshold table.
func baseLabel(loss float64) Label {
	for _, t := range lossThresholds {
		if loss <= t.max {
			return t.label
		}
	}
	return Blunder
}

// Classify labels a played move.
func Classify(in Input) Classification {
	cpBefore, cpAfter := in.EvalBefore, in.EvalAfter
	if in.Mover == board.Black {
		cpBefore, cpAfter = -cpBefore, -cpAfter
	}

	epBefore := ExpectedPoints(cpBefore)
	epAfter := ExpectedPoints(cpAfter)
	loss := math.Max(0, epBefore-epAfter)
	ranked := in.Rank > 0 && in.Best != ""

	label := baseLabel(loss)
	if ranked && in.Rank == 1 && loss < rankBestEP {
		label = Best
	}

	if (label == Mistake || label == Blunder) && epBefore > winningEP && loss > missLoss {
		label = Miss
	}

	switch {
	case loss <= brilliantMaxLoss &&
		epBefore < brilliantMaxEP &&
		sacrificed(in.Before, in.After, in.Mover) >= brilliantSacrifice &&
		cpAfter >= cpBefore-brilliantSlack &&
		cpBefore < brilliantMaxCP:
		label = Brilliant
	case (label == Best || label == Excellent) && ranked && in.Rank == 1:
		turned := cpBefore <= greatMaxCP && (epAfter > winningEP || cpAfter-cpBefore >= greatJump)
		saved := cpBefore > saveMinCP && cpBefore < 0 &&
			cpAfter >= cpBefore-saveSlack &&
			epAfter > saveMinEPNext && epBefore < saveMaxEPPrev
		if turned || saved {
			label = Great
		}
	}

	accuracy := math.Max(0, 100*(1-loss/fullLoss))
	return Classification{
		Label:              label,
		Accuracy:           accuracy,
		ExpectedPointsLoss: loss,
		Explanation:        explain(in, label, accuracy, ranked),
	}
}

// sacrificed returns the piece material the move hands the opponent: the
// balance the opponent could force had the mover passed, minus the balance
// it can force after the move. Pieces already en prise before the move do not
// count, and neither do even trades or pawn gambits. 0 when either position
// is missing.
func sacrificed(before, after *board.Position, mover board.Color) int {
	if before == nil || after == nil {
		return 0
	}
	base := before.Clone()
	if base.SideToMove() == mover && !base.InCheck() {
		base.MakeNullMove()
	}
	return exchange(base, mover, -engine.Infinity, engine.Infinity, exchangeDepth) -
		exchange(after.Clone(), mover, -engine.Infinity, engine.Infinity, exchangeDepth)
}

// pieceBalance is mover's knights, bishops, rooks and queens minus the
// opponent's, in centipawns.
func pieceBalance(pos *board.Position, mover board.Color) int {
	balance := 0
	for pt := board.Knight; pt < board.King; pt++ {
		balance += (pos.Pieces(mover, pt).PopCount() - pos.Pieces(mover.Other(), pt).PopCount()) * board.PieceValue[pt]
	}
	return balance
}

// exchange resolves pending captures and promotions with alpha-beta over
// pieceBalance. Either side may stop capturing.
func exchange(pos *board.Position, mover board.Color, alpha, beta, depth int) int {
	standPat := pieceBalance(pos, mover)
	if depth == 0 {
		return standPat
	}

	maximizing := pos.SideToMove() == mover
	if maximizing {
		if standPat >= beta {
			return standPat
		}
		alpha = max(alpha, standPat)
	} else {
		if standPat <= alpha {
			return standPat
		}
		beta = min(beta, standPat)
	}

	best := standPat
	for _, m := range engine.OrderTactical(pos, pos.LegalMoves()) {
		pos.MakeMove(m)
		score := exchange(pos, mover, alpha, beta, depth-1)
		pos.UnmakeMove()

		if maximizing {
			best = max(best, score)
			alpha = max(alpha, best)
		} else {
			best = min(best, score)
			beta = min(beta, best)
		}
		if beta <= alpha {
			break
		}
	}
	return best
}

func explain(in Input, label Label, accuracy float64, ranked bool) string {
	var sb strings.Builder

	move := in.Played
	if move == "" {
		move = "This move"
	}
	fmt.Fprintf(&sb, "%s is %s", move, article(label))
	if ranked {
		if in.Rank == 1 {
			sb.WriteString(", the engine's top choice")
		} else {
			fmt.Fprintf(&sb, ", ranked #%d by the engine", in.Rank)
		}
	}
	fmt.Fprintf(&sb, ". Evaluation %s, accuracy %.0f%%.", formatEval(in.EvalAfter), accuracy)

	if in.Best != "" && in.Best != in.Played {
		fmt.Fprintf(&sb, " Best was %s.", in.Best)
	}
	return sb.String()
}

// formatEval renders a White-relative score, treating anything past the
// mate cutoff as a forced mate the way ExpectedPoints does.
func formatEval(cp int) string {
	switch {
	case engine.IsMateScore(cp):
		return engine.ScoreToString(cp)
	case cp > mateCutoff:
		return "White mates"
	case cp < -mateCutoff:
		return "Black mates"
	}
	return engine.ScoreToString(cp)
}

func article(l Label) string {
	switch l {
	case Best:
		return "the best move"
	case Excellent:
		return "an excellent move"
	case Inaccuracy:
		return "an inaccuracy"
	case Mistake, Blunder:
		return "a " + l.String()
	case Miss:
		return "a missed win"
	default:
		return "a " + l.String() + " move"
	}
}

// ClassifyMove is the encoding-level form of Classify. Either FEN may be
// empty, which disables sacrifice detection.
func ClassifyMove(evalBefore, evalAfter int, fenBefore, fenAfter, san, bestSAN string, side board.Color, rank int) (Classification, error) {
	in := Input{
		EvalBefore: evalBefore,
		EvalAfter:  evalAfter,
		Played:     san,
		Best:       bestSAN,
		Mover:      side,
		Rank:       rank,
	}

	var err error
	if fenBefore != "" {
		if in.Before, err = board.ParseFEN(fenBefore); err != nil {
			return Classification{}, fmt.Errorf("position before: %w", err)
		}
	}
	if fenAfter != "" {
		if in.After, err = board.ParseFEN(fenAfter); err != nil {
			return Classification{}, fmt.Errorf("position after: %w", err)
		}
	}
	return Classify(in), nil
}
