package board

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dylhunn/dragontoothmg"
)

// MakeMove applies a move generated for this position. The move is not
// validated; use PlayMove for moves from outside the generator.
func (p *Position) MakeMove(m Move) {
	if m.Null {
		p.MakeNullMove()
		return
	}
	if m.raw == 0 {
		m = p.resolve(m)
	}

	us := p.SideToMove()
	u := undoInfo{
		move:           m,
		castling:       p.castling,
		enPassant:      p.enPassant,
		halfMoveClock:  p.halfMoveClock,
		fullMoveNumber: p.fullMoveNumber,
	}
	u.unapply = p.b.Apply(m.raw)

	// Update castling rights
	if m.Piece == King {
		if us == White {
			p.castling &^= WhiteKingSideCastle | WhiteQueenSideCastle
		} else {
			p.castling &^= BlackKingSideCastle | BlackQueenSideCastle
		}
	}
	p.castling &^= castlingMask(m.From) | castlingMask(m.To)

	p.enPassant = NoSquare
	if m.Piece == Pawn && abs(m.To.Rank()-m.From.Rank()) == 2 {
		p.enPassant = NewSquare(m.From.File(), (m.From.Rank()+m.To.Rank())/2)
	}

	if m.Piece == Pawn || m.IsCapture() {
		p.halfMoveClock = 0
	} else {
		p.halfMoveClock++
	}
	if us == Black {
		p.fullMoveNumber++
	}

	p.undo = append(p.undo, u)
	p.keys = append(p.keys, p.repetitionKey())
}

// UnmakeMove takes back the last MakeMove or MakeNullMove.
func (p *Position) UnmakeMove() {
	n := len(p.undo)
	if n == 0 {
		return
	}
	u := p.undo[n-1]
	p.undo = p.undo[:n-1]
	p.keys = p.keys[:len(p.keys)-1]

	if u.move.Null {
		p.b = u.board
	} else {
		u.unapply()
	}
	p.castling = u.castling
	p.enPassant = u.enPassant
	p.halfMoveClock = u.halfMoveClock
	p.fullMoveNumber = u.fullMoveNumber
}

// MakeNullMove passes the turn without moving a piece. It must not be
// called while in check.
func (p *Position) MakeNullMove() {
	u := undoInfo{
		move:           NullMove,
		board:          p.b,
		castling:       p.castling,
		enPassant:      p.enPassant,
		halfMoveClock:  p.halfMoveClock,
		fullMoveNumber: p.fullMoveNumber,
	}

	side := "b"
	if !p.b.Wtomove {
		side = "w"
		p.fullMoveNumber++
	}
	p.enPassant = NoSquare
	p.halfMoveClock++

	fen := strings.Join([]string{
		p.placement(),
		side,
		p.castling.String(),
		"-",
		strconv.Itoa(p.halfMoveClock),
		strconv.Itoa(p.fullMoveNumber),
	}, " ")
	p.b = dragontoothmg.ParseFen(fen)

	p.undo = append(p.undo, u)
	p.keys = append(p.keys, p.repetitionKey())
}

// UnmakeNullMove takes back a MakeNullMove.
func (p *Position) UnmakeNullMove() {
	p.UnmakeMove()
}

// PlayMove validates m against the legal moves and applies it.
func (p *Position) PlayMove(m Move) error {
	for _, legal := range p.LegalMoves() {
		if legal.Same(m) && !m.Null {
			p.MakeMove(legal)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrIllegalMove, m)
}

// LastMove returns the most recently applied move, or NoMove.
func (p *Position) LastMove() Move {
	if len(p.undo) == 0 {
		return NoMove
	}
	return p.undo[len(p.undo)-1].move
}

// resolve fills in generator data for a hand-built move.
func (p *Position) resolve(m Move) Move {
	for _, legal := range p.LegalMoves() {
		if legal.Same(m) {
			return legal
		}
	}
	return m
}

// castlingMask returns the rights lost when a piece leaves or lands on sq.
func castlingMask(sq Square) CastlingRights {
	switch sq {
	case A1:
		return WhiteQueenSideCastle
	case H1:
		return WhiteKingSideCastle
	case A8:
		return BlackQueenSideCastle
	case H8:
		return BlackKingSideCastle
	}
	return NoCastling
}
