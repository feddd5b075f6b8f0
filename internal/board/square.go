// Package board adapts a dragontoothmg move generator into the position model
// used by the engine: FEN, legal moves, apply/undo, SAN and terminal states.
package board

import "fmt"

// Square indexes the board a1=0 ... h8=63, the same layout dragontoothmg
// uses for its bitboards and move encoding.
type Square uint8

// Named squares.
const (
	A1 Square = 0
	E1 Square = 4
	G1 Square = 6
	H1 Square = 7
	A8 Square = 56
	E8 Square = 60
	H8 Square = 63

	NoSquare Square = 64
)

// NewSquare creates a square from a 0-based file and rank.
func NewSquare(file, rank int) Square {
	return Square(rank<<3 | file)
}

// ParseSquare parses a square name such as "e4".
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return NoSquare, fmt.Errorf("invalid square: %q", s)
	}
	return NewSquare(int(s[0]-'a'), int(s[1]-'1')), nil
}

// File returns 0 for the a-file through 7 for the h-file.
func (sq Square) File() int { return int(sq & 7) }

// Rank returns 0 for the first rank through 7 for the eighth.
func (sq Square) Rank() int { return int(sq >> 3) }

func (sq Square) String() string {
	if !sq.IsValid() {
		return "-"
	}
	return string([]byte{'a' + byte(sq.File()), '1' + byte(sq.Rank())})
}

// IsValid reports whether sq is on the board.
func (sq Square) IsValid() bool { return sq < NoSquare }

// Mirror flips the square vertically.
func (sq Square) Mirror() Square { return sq ^ 56 }

// RelativeRank returns the rank counted from c's own back rank.
func (sq Square) RelativeRank(c Color) int {
	if c == Black {
		return 7 - sq.Rank()
	}
	return sq.Rank()
}
