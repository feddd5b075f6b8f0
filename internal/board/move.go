package board

import (
	"fmt"

	"github.com/dylhunn/dragontoothmg"
)

// Move is a move generated for a specific position. Moves carry the moving
// piece and the captured piece so callers never need to look them up again.
type Move struct {
	From      Square
	To        Square
	Piece     PieceType
	Promotion PieceType // NoPieceType unless a pawn promotes
	Captured  PieceType // NoPieceType for quiet moves
	Castling  bool
	EnPassant bool
	Null      bool

	raw dragontoothmg.Move
}

// NoMove is the zero-value sentinel returned when no move exists.
var NoMove = Move{From: NoSquare, To: NoSquare, Piece: NoPieceType, Promotion: NoPieceType, Captured: NoPieceType}

// NullMove is the forced pass used by null-move pruning.
var NullMove = Move{From: NoSquare, To: NoSquare, Piece: NoPieceType, Promotion: NoPieceType, Captured: NoPieceType, Null: true}

// IsCapture returns true if this move captures a piece.
func (m Move) IsCapture() bool {
	return m.Captured != NoPieceType
}

// IsPromotion returns true if this is a promotion move.
func (m Move) IsPromotion() bool {
	return m.Promotion != NoPieceType
}

// IsQuiet returns true if this is not a capture or promotion.
func (m Move) IsQuiet() bool {
	return !m.IsCapture() && !m.IsPromotion()
}

// IsNone reports whether m is the NoMove sentinel.
func (m Move) IsNone() bool {
	return !m.Null && m.From == NoSquare
}

// Same compares the squares and promotion piece only, which is enough to
// identify a move within one position.
func (m Move) Same(o Move) bool {
	return m.From == o.From && m.To == o.To && m.Promotion == o.Promotion && m.Null == o.Null
}

// String returns the UCI format of the move (e.g., "e2e4", "e7e8q").
func (m Move) String() string {
	if m.Null {
		return "0000"
	}
	if m.IsNone() {
		return "-"
	}

	s := m.From.String() + m.To.String()
	if m.IsPromotion() {
		s += string("pnbrqk"[m.Promotion])
	}
	return s
}

// ParseUCI finds the legal move written in UCI notation (e.g. "e7e8q").
func ParseUCI(s string, pos *Position) (Move, error) {
	if len(s) < 4 || len(s) > 5 {
		return NoMove, fmt.Errorf("%w: %q", ErrIllegalMove, s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}

	promo := NoPieceType
	if len(s) == 5 {
		switch s[4] {
		case 'n':
			promo = Knight
		case 'b':
			promo = Bishop
		case 'r':
			promo = Rook
		case 'q':
			promo = Queen
		default:
			return NoMove, fmt.Errorf("%w: invalid promotion piece %c", ErrIllegalMove, s[4])
		}
	}

	for _, m := range pos.LegalMovesFrom(from) {
		if m.To == to && m.Promotion == promo {
			return m, nil
		}
	}
	return NoMove, fmt.Errorf("%w: %s", ErrIllegalMove, s)
}
