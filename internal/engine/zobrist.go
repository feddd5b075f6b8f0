package engine

import (
	"sync"

	"github.com/hailam/chessplay/internal/board"
)

// defaultSeed seeds the process-wide key set. Changing it changes every
// fingerprint, so search results are only reproducible for a fixed value.
const defaultSeed uint32 = 0x2545F491

// ZobristKeys holds the random keys XORed together to fingerprint a position.
type ZobristKeys struct {
	Pieces    [2][6][64]uint64
	Castling  [4]uint64 // K, Q, k, q
	EnPassant [8]uint64 // by file
	Side      uint64    // black to move
}

var (
	defaultKeys     *ZobristKeys
	defaultKeysOnce sync.Once
)

// DefaultKeys returns the immutable process-wide key set.
func DefaultKeys() *ZobristKeys {
	defaultKeysOnce.Do(func() {
		defaultKeys = NewZobristKeys(defaultSeed)
	})
	return defaultKeys
}

// mulberry32 is a small deterministic 32-bit generator.
type mulberry32 struct {
	state uint32
}

func (m *mulberry32) next() uint32 {
	m.state += 0x6D2B79F5
	t := m.state
	t = (t ^ t>>15) * (t | 1)
	t = (t + (t^t>>7)*(t|61)) ^ t
	return t ^ t>>14
}

// next64 combines two draws into one key.
func (m *mulberry32) next64() uint64 {
	hi := uint64(m.next())
	lo := uint64(m.next())
	return hi<<32 | lo
}

// NewZobristKeys builds a key set from seed. The same seed always yields the
// same keys.
func NewZobristKeys(seed uint32) *ZobristKeys {
	rng := &mulberry32{state: seed}
	k := &ZobristKeys{}

	for c := 0; c < 2; c++ {
		for pt := 0; pt < 6; pt++ {
			for sq := 0; sq < 64; sq++ {
				k.Pieces[c][pt][sq] = rng.next64()
			}
		}
	}
	for i := range k.Castling {
		k.Castling[i] = rng.next64()
	}
	for i := range k.EnPassant {
		k.EnPassant[i] = rng.next64()
	}
	k.Side = rng.next64()
	return k
}

// Hash fingerprints pos with the default keys.
func Hash(pos *board.Position) uint64 {
	return DefaultKeys().Hash(pos)
}

// Hash fingerprints pos: every piece on its square, the castling rights, the
// en-passant file and the side to move.
func (k *ZobristKeys) Hash(pos *board.Position) uint64 {
	var h uint64

	for c := board.White; c <= board.Black; c++ {
		for pt := board.Pawn; pt <= board.King; pt++ {
			bb := pos.Pieces(c, pt)
			for bb != 0 {
				h ^= k.Pieces[c][pt][bb.PopLSB()]
			}
		}
	}

	cr := pos.CastlingRights()
	for i := range k.Castling {
		if cr&(board.WhiteKingSideCastle<<uint(i)) != 0 {
			h ^= k.Castling[i]
		}
	}

	if ep := pos.EnPassant(); ep != board.NoSquare {
		h ^= k.EnPassant[ep.File()]
	}

	if pos.SideToMove() == board.Black {
		h ^= k.Side
	}
	return h
}

// pawnKey fingerprints the pawn placement only.
func pawnKey(pos *board.Position) uint64 {
	k := DefaultKeys()
	var h uint64
	for c := board.White; c <= board.Black; c++ {
		bb := pos.Pieces(c, board.Pawn)
		for bb != 0 {
			h ^= k.Pieces[c][board.Pawn][bb.PopLSB()]
		}
	}
	return h
}
