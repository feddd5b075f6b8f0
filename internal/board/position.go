package board

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/dylhunn/dragontoothmg"
)

// CastlingRights represents the available castling options.
type CastlingRights uint8

const (
	WhiteKingSideCastle  CastlingRights = 1 << iota // K
	WhiteQueenSideCastle                            // Q
	BlackKingSideCastle                             // k
	BlackQueenSideCastle                            // q
	NoCastling           CastlingRights = 0
	AllCastling          CastlingRights = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// String returns the FEN castling rights string.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	s := ""
	if cr&WhiteKingSideCastle != 0 {
		s += "K"
	}
	if cr&WhiteQueenSideCastle != 0 {
		s += "Q"
	}
	if cr&BlackKingSideCastle != 0 {
		s += "k"
	}
	if cr&BlackQueenSideCastle != 0 {
		s += "q"
	}
	return s
}

// Position is a chess position backed by a dragontoothmg board.
// It is not safe for concurrent use; copy it with Clone per goroutine.
type Position struct {
	b dragontoothmg.Board

	castling       CastlingRights
	enPassant      Square
	halfMoveClock  int
	fullMoveNumber int

	undo []undoInfo
	keys []uint64 // repetition keys, oldest first, current last
}

// undoInfo stores the state needed to take back one MakeMove or MakeNullMove.
type undoInfo struct {
	move           Move
	unapply        func()
	board          dragontoothmg.Board // null moves restore the whole board
	castling       CastlingRights
	enPassant      Square
	halfMoveClock  int
	fullMoveNumber int
}

// NewPosition creates the starting position.
func NewPosition() *Position {
	pos, _ := ParseFEN(StartFEN)
	return pos
}

// Clone returns an independent copy without the undo history.
func (p *Position) Clone() *Position {
	c := &Position{
		b:              p.b,
		castling:       p.castling,
		enPassant:      p.enPassant,
		halfMoveClock:  p.halfMoveClock,
		fullMoveNumber: p.fullMoveNumber,
	}
	c.keys = append(c.keys, p.keys...)
	return c
}

// SideToMove returns the color to move.
func (p *Position) SideToMove() Color {
	if p.b.Wtomove {
		return White
	}
	return Black
}

// CastlingRights returns the current castling rights.
func (p *Position) CastlingRights() CastlingRights { return p.castling }

// EnPassant returns the en-passant target square, or NoSquare.
func (p *Position) EnPassant() Square { return p.enPassant }

// HalfMoveClock returns the number of plies since the last pawn move or capture.
func (p *Position) HalfMoveClock() int { return p.halfMoveClock }

// FullMoveNumber returns the full move counter, starting at 1.
func (p *Position) FullMoveNumber() int { return p.fullMoveNumber }

// Ply returns the number of moves applied since the position was parsed.
func (p *Position) Ply() int { return len(p.undo) }

func (p *Position) side(c Color) *dragontoothmg.Bitboards {
	if c == White {
		return &p.b.White
	}
	return &p.b.Black
}

// Pieces returns the bitboard of pieces of the given color and type.
func (p *Position) Pieces(c Color, pt PieceType) Bitboard {
	bb := p.side(c)
	switch pt {
	case Pawn:
		return Bitboard(bb.Pawns)
	case Knight:
		return Bitboard(bb.Knights)
	case Bishop:
		return Bitboard(bb.Bishops)
	case Rook:
		return Bitboard(bb.Rooks)
	case Queen:
		return Bitboard(bb.Queens)
	case King:
		return Bitboard(bb.Kings)
	}
	return Empty
}

// Occupied returns all pieces of one color.
func (p *Position) Occupied(c Color) Bitboard {
	return Bitboard(p.side(c).All)
}

// PieceAt returns the piece at the given square, or NoPiece if empty.
func (p *Position) PieceAt(sq Square) Piece {
	for c := White; c <= Black; c++ {
		if !p.Occupied(c).IsSet(sq) {
			continue
		}
		for pt := Pawn; pt <= King; pt++ {
			if p.Pieces(c, pt).IsSet(sq) {
				return NewPiece(pt, c)
			}
		}
	}
	return NoPiece
}

// KingSquare returns the square of the king of the given color.
func (p *Position) KingSquare(c Color) Square {
	return p.Pieces(c, King).LSB()
}

// Material returns the summed piece values (king excluded) of one color.
func (p *Position) Material(c Color) int {
	score := 0
	for pt := Pawn; pt < King; pt++ {
		score += p.Pieces(c, pt).PopCount() * PieceValue[pt]
	}
	return score
}

// HasNonPawnMaterial returns true if the side to move has non-pawn material.
// Used for null move pruning (avoid in pure pawn endgames due to zugzwang).
func (p *Position) HasNonPawnMaterial() bool {
	us := p.SideToMove()
	return p.Pieces(us, Knight)|p.Pieces(us, Bishop)|p.Pieces(us, Rook)|p.Pieces(us, Queen) != 0
}

// LegalMoves enumerates every legal move for the side to move.
func (p *Position) LegalMoves() []Move {
	raw := p.b.GenerateLegalMoves()
	moves := make([]Move, 0, len(raw))
	for _, r := range raw {
		moves = append(moves, p.convert(r))
	}
	return moves
}

// MoveCount returns the number of legal moves for the side to move.
func (p *Position) MoveCount() int {
	return len(p.b.GenerateLegalMoves())
}

// LegalMovesFrom enumerates the legal moves of the piece on one square.
func (p *Position) LegalMovesFrom(from Square) []Move {
	var moves []Move
	for _, m := range p.LegalMoves() {
		if m.From == from {
			moves = append(moves, m)
		}
	}
	return moves
}

// convert decorates a raw generator move with piece, capture and flags.
func (p *Position) convert(r dragontoothmg.Move) Move {
	from := Square(r.From())
	to := Square(r.To())
	piece := p.PieceAt(from).Type()

	m := Move{
		From:      from,
		To:        to,
		Piece:     piece,
		Promotion: fromDragon(r.Promote()),
		Captured:  NoPieceType,
		raw:       r,
	}

	if target := p.PieceAt(to); target != NoPiece {
		m.Captured = target.Type()
	} else if piece == Pawn && from.File() != to.File() {
		m.EnPassant = true
		m.Captured = Pawn
	}

	if piece == King && abs(to.File()-from.File()) == 2 {
		m.Castling = true
	}
	return m
}

// InCheck returns true if the side to move is in check.
func (p *Position) InCheck() bool {
	return p.b.OurKingInCheck()
}

// IsCheckmate returns true if the position is checkmate.
func (p *Position) IsCheckmate() bool {
	return p.InCheck() && len(p.b.GenerateLegalMoves()) == 0
}

// IsStalemate returns true if the position is stalemate.
func (p *Position) IsStalemate() bool {
	return !p.InCheck() && len(p.b.GenerateLegalMoves()) == 0
}

// IsDraw returns true for stalemate, the 50-move rule, insufficient
// material or threefold repetition.
func (p *Position) IsDraw() bool {
	if p.halfMoveClock >= 100 || p.IsInsufficientMaterial() || p.IsRepetition() {
		return true
	}
	return p.IsStalemate()
}

// GameOver returns true if the game is over (checkmate, stalemate, or draw).
func (p *Position) GameOver() bool {
	if len(p.b.GenerateLegalMoves()) == 0 {
		return true
	}
	return p.halfMoveClock >= 100 || p.IsInsufficientMaterial() || p.IsRepetition()
}

// IsRepetition reports whether the current position occurred twice before.
func (p *Position) IsRepetition() bool {
	if len(p.keys) < 5 {
		return false
	}
	current := p.keys[len(p.keys)-1]
	count := 0
	for i := len(p.keys) - 3; i >= 0; i -= 2 {
		if p.keys[i] == current {
			count++
			if count >= 2 {
				return true
			}
		}
	}
	return false
}

// IsInsufficientMaterial returns true if neither side can checkmate.
func (p *Position) IsInsufficientMaterial() bool {
	for c := White; c <= Black; c++ {
		if p.Pieces(c, Pawn)|p.Pieces(c, Rook)|p.Pieces(c, Queen) != 0 {
			return false
		}
	}

	wMinors := p.Pieces(White, Knight).PopCount() + p.Pieces(White, Bishop).PopCount()
	bMinors := p.Pieces(Black, Knight).PopCount() + p.Pieces(Black, Bishop).PopCount()

	// K vs K, K+minor vs K
	return wMinors+bMinors <= 1
}

// repetitionKey fingerprints placement, side, castling and en passant.
func (p *Position) repetitionKey() uint64 {
	var buf [8*12 + 3]byte
	off := 0
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			binary.LittleEndian.PutUint64(buf[off:], uint64(p.Pieces(c, pt)))
			off += 8
		}
	}
	buf[off] = byte(p.SideToMove())
	buf[off+1] = byte(p.castling)
	buf[off+2] = byte(p.enPassant)
	return xxhash.Sum64(buf[:])
}

// String returns a visual representation of the position.
func (p *Position) String() string {
	s := "\n"
	for rank := 7; rank >= 0; rank-- {
		s += fmt.Sprintf("%d  ", rank+1)
		for file := 0; file < 8; file++ {
			piece := p.PieceAt(NewSquare(file, rank))
			if piece == NoPiece {
				s += ". "
			} else {
				s += piece.String() + " "
			}
		}
		s += "\n"
	}
	s += "\n   a b c d e f g h\n\n"
	s += fmt.Sprintf("FEN: %s\n", p.ToFEN())
	return s
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
