package board

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dylhunn/dragontoothmg"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var (
	// ErrInvalidFEN is returned for position encodings that cannot be parsed.
	ErrInvalidFEN = errors.New("invalid FEN")
	// ErrIllegalMove is returned when a requested move is not legal.
	ErrIllegalMove = errors.New("illegal move")
)

// ParseFEN parses a FEN string and returns a Position. The halfmove and
// fullmove fields are optional.
func ParseFEN(fen string) (*Position, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return nil, fmt.Errorf("%w: need at least 4 fields, got %d", ErrInvalidFEN, len(parts))
	}

	pos := &Position{
		enPassant:      NoSquare,
		fullMoveNumber: 1,
	}

	kings, err := checkPiecePlacement(parts[0])
	if err != nil {
		return nil, err
	}
	if kings != [2]int{1, 1} {
		return nil, fmt.Errorf("%w: each side needs exactly one king", ErrInvalidFEN)
	}

	if parts[1] != "w" && parts[1] != "b" {
		return nil, fmt.Errorf("%w: invalid side to move: %s", ErrInvalidFEN, parts[1])
	}

	if pos.castling, err = parseCastlingRights(parts[2]); err != nil {
		return nil, err
	}

	if parts[3] != "-" {
		sq, err := ParseSquare(parts[3])
		if err != nil || (sq.Rank() != 2 && sq.Rank() != 5) {
			return nil, fmt.Errorf("%w: invalid en passant square: %s", ErrInvalidFEN, parts[3])
		}
		pos.enPassant = sq
	}

	if len(parts) > 4 {
		hmc, err := strconv.Atoi(parts[4])
		if err != nil || hmc < 0 {
			return nil, fmt.Errorf("%w: invalid half-move clock: %s", ErrInvalidFEN, parts[4])
		}
		pos.halfMoveClock = hmc
	}

	if len(parts) > 5 {
		fmn, err := strconv.Atoi(parts[5])
		if err != nil || fmn < 1 {
			return nil, fmt.Errorf("%w: invalid full-move number: %s", ErrInvalidFEN, parts[5])
		}
		pos.fullMoveNumber = fmn
	}

	pos.load(parts[0], parts[1] == "w")
	if cr := pos.castling & pos.possibleCastling(); cr != pos.castling {
		pos.castling = cr
		pos.load(parts[0], parts[1] == "w")
	}
	return pos, nil
}

// castlingHomes lists the king and rook each castling right needs on its
// home square.
var castlingHomes = [...]struct {
	right          CastlingRights
	king, rook     Piece
	kingSq, rookSq Square
}{
	{WhiteKingSideCastle, WhiteKing, WhiteRook, E1, H1},
	{WhiteQueenSideCastle, WhiteKing, WhiteRook, E1, A1},
	{BlackKingSideCastle, BlackKing, BlackRook, E8, H8},
	{BlackQueenSideCastle, BlackKing, BlackRook, E8, A8},
}

// possibleCastling returns the castling rights the piece placement allows.
// The generator would otherwise castle with a missing king or rook.
func (p *Position) possibleCastling() CastlingRights {
	var cr CastlingRights
	for _, h := range castlingHomes {
		if p.PieceAt(h.kingSq) == h.king && p.PieceAt(h.rookSq) == h.rook {
			cr |= h.right
		}
	}
	return cr
}

// load hands a normalised six-field FEN to the generator.
func (p *Position) load(placement string, whiteToMove bool) {
	side := "b"
	if whiteToMove {
		side = "w"
	}
	fen := strings.Join([]string{
		placement,
		side,
		p.castling.String(),
		p.enPassant.String(),
		strconv.Itoa(p.halfMoveClock),
		strconv.Itoa(p.fullMoveNumber),
	}, " ")
	p.b = dragontoothmg.ParseFen(fen)
	p.keys = append(p.keys[:0], p.repetitionKey())
}

// checkPiecePlacement validates the piece placement section of a FEN string
// and counts the kings of each color.
func checkPiecePlacement(placement string) (kings [2]int, err error) {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return kings, fmt.Errorf("%w: need 8 ranks, got %d", ErrInvalidFEN, len(ranks))
	}

	for i, rankStr := range ranks {
		rank := 7 - i // FEN starts from rank 8
		file := 0

		for _, c := range rankStr {
			if file > 7 {
				return kings, fmt.Errorf("%w: too many squares in rank %d", ErrInvalidFEN, rank+1)
			}

			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}

			piece := PieceFromChar(byte(c))
			if piece == NoPiece {
				return kings, fmt.Errorf("%w: invalid piece character: %c", ErrInvalidFEN, c)
			}
			if piece.Type() == Pawn && (rank == 0 || rank == 7) {
				return kings, fmt.Errorf("%w: pawn on rank %d", ErrInvalidFEN, rank+1)
			}
			if piece.Type() == King {
				kings[piece.Color()]++
			}
			file++
		}

		if file != 8 {
			return kings, fmt.Errorf("%w: invalid number of squares in rank %d: got %d", ErrInvalidFEN, rank+1, file)
		}
	}

	return kings, nil
}

// parseCastlingRights parses the castling rights section of a FEN string.
func parseCastlingRights(castling string) (CastlingRights, error) {
	if castling == "-" {
		return NoCastling, nil
	}

	var cr CastlingRights
	for _, c := range castling {
		switch c {
		case 'K':
			cr |= WhiteKingSideCastle
		case 'Q':
			cr |= WhiteQueenSideCastle
		case 'k':
			cr |= BlackKingSideCastle
		case 'q':
			cr |= BlackQueenSideCastle
		default:
			return NoCastling, fmt.Errorf("%w: invalid castling character: %c", ErrInvalidFEN, c)
		}
	}

	return cr, nil
}

// placement renders the piece placement field.
func (p *Position) placement() string {
	var sb strings.Builder

	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			piece := p.PieceAt(NewSquare(file, rank))
			if piece == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(piece.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	return sb.String()
}

// ToFEN returns the FEN representation of the position.
func (p *Position) ToFEN() string {
	side := "w"
	if p.SideToMove() == Black {
		side = "b"
	}
	return strings.Join([]string{
		p.placement(),
		side,
		p.castling.String(),
		p.enPassant.String(),
		strconv.Itoa(p.halfMoveClock),
		strconv.Itoa(p.fullMoveNumber),
	}, " ")
}
