package board

import (
	"fmt"
	"strings"
)

// ToSAN converts a move to Standard Algebraic Notation.
func (m Move) ToSAN(pos *Position) string {
	if m.Null {
		return "--"
	}
	if m.IsNone() {
		return "-"
	}

	var sb strings.Builder

	if m.Castling {
		if m.To > m.From {
			sb.WriteString("O-O")
		} else {
			sb.WriteString("O-O-O")
		}
	} else {
		sb.WriteString(m.Piece.Letter())
		if m.Piece != Pawn {
			sb.WriteString(disambiguation(pos, m))
		}

		if m.IsCapture() {
			if m.Piece == Pawn {
				// Pawn captures include the file of origin
				sb.WriteByte('a' + byte(m.From.File()))
			}
			sb.WriteByte('x')
		}

		sb.WriteString(m.To.String())

		if m.IsPromotion() {
			sb.WriteByte('=')
			sb.WriteString(m.Promotion.Letter())
		}
	}

	// Check/checkmate marker
	pos.MakeMove(m)
	if pos.IsCheckmate() {
		sb.WriteByte('#')
	} else if pos.InCheck() {
		sb.WriteByte('+')
	}
	pos.UnmakeMove()

	return sb.String()
}

// disambiguation returns the origin file, rank or square needed when another
// piece of the same type can reach the same destination.
func disambiguation(pos *Position, m Move) string {
	var candidates []Square
	for _, other := range pos.LegalMoves() {
		if other.To == m.To && other.From != m.From && other.Piece == m.Piece {
			candidates = append(candidates, other.From)
		}
	}

	if len(candidates) == 0 {
		return ""
	}

	sameFile := false
	sameRank := false
	for _, sq := range candidates {
		if sq.File() == m.From.File() {
			sameFile = true
		}
		if sq.Rank() == m.From.Rank() {
			sameRank = true
		}
	}

	if !sameFile {
		return string(rune('a' + m.From.File()))
	}
	if !sameRank {
		return string(rune('1' + m.From.Rank()))
	}
	return m.From.String()
}

// ParseSAN parses a SAN string and returns the corresponding legal move.
func ParseSAN(s string, pos *Position) (Move, error) {
	orig := s
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, "+#!?")

	legal := pos.LegalMoves()

	switch s {
	case "O-O", "0-0", "O-O-O", "0-0-0":
		long := len(s) == 5
		for _, m := range legal {
			if m.Castling && (m.To < m.From) == long {
				return m, nil
			}
		}
		return NoMove, fmt.Errorf("%w: %s", ErrIllegalMove, orig)
	}

	promo := NoPieceType
	if idx := strings.Index(s, "="); idx >= 0 {
		if idx+1 >= len(s) {
			return NoMove, fmt.Errorf("%w: %s", ErrIllegalMove, orig)
		}
		promo = pieceTypeFromLetter(s[idx+1])
		if promo == NoPieceType || promo == Pawn || promo == King {
			return NoMove, fmt.Errorf("%w: invalid promotion in %s", ErrIllegalMove, orig)
		}
		s = s[:idx]
	}

	isCapture := strings.Contains(s, "x")
	s = strings.ReplaceAll(s, "x", "")

	pt := Pawn
	if len(s) > 0 && s[0] >= 'A' && s[0] <= 'Z' {
		pt = pieceTypeFromLetter(s[0])
		if pt == NoPieceType || pt == Pawn {
			return NoMove, fmt.Errorf("%w: unknown piece in %s", ErrIllegalMove, orig)
		}
		s = s[1:]
	}

	if len(s) < 2 {
		return NoMove, fmt.Errorf("%w: %s", ErrIllegalMove, orig)
	}
	dest, err := ParseSquare(s[len(s)-2:])
	if err != nil {
		return NoMove, fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}
	s = s[:len(s)-2]

	disambigFile, disambigRank := -1, -1
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'h':
			disambigFile = int(c - 'a')
		case c >= '1' && c <= '8':
			disambigRank = int(c - '1')
		default:
			return NoMove, fmt.Errorf("%w: %s", ErrIllegalMove, orig)
		}
	}

	match := NoMove
	for _, m := range legal {
		if m.To != dest || m.Piece != pt || m.Promotion != promo {
			continue
		}
		if disambigFile >= 0 && m.From.File() != disambigFile {
			continue
		}
		if disambigRank >= 0 && m.From.Rank() != disambigRank {
			continue
		}
		if isCapture && !m.IsCapture() {
			continue
		}
		if !match.IsNone() {
			return NoMove, fmt.Errorf("%w: ambiguous %s", ErrIllegalMove, orig)
		}
		match = m
	}

	if match.IsNone() {
		return NoMove, fmt.Errorf("%w: %s", ErrIllegalMove, orig)
	}
	return match, nil
}

// PlaySAN parses a SAN move and applies it.
func (p *Position) PlaySAN(san string) (Move, error) {
	m, err := ParseSAN(san, p)
	if err != nil {
		return NoMove, err
	}
	p.MakeMove(m)
	return m, nil
}

// MovesToSAN converts a sequence of moves played from pos to SAN notation.
// pos is left unchanged.
func MovesToSAN(pos *Position, moves []Move) []string {
	result := make([]string, 0, len(moves))
	p := pos.Clone()

	for _, m := range moves {
		if !m.Null {
			m = p.resolve(m)
		}
		result = append(result, m.ToSAN(p))
		p.MakeMove(m)
	}

	return result
}

func pieceTypeFromLetter(c byte) PieceType {
	switch c {
	case 'P':
		return Pawn
	case 'N':
		return Knight
	case 'B':
		return Bishop
	case 'R':
		return Rook
	case 'Q':
		return Queen
	case 'K':
		return King
	}
	return NoPieceType
}
