package engine

import (
	"github.com/hailam/chessplay/internal/board"
)

// Bound indicates the type of score stored in the transposition table.
type Bound uint8

const (
	BoundExact Bound = iota // Exact score
	BoundLower              // Failed high (beta cutoff)
	BoundUpper              // Failed low
)

// String returns the bound name.
func (b Bound) String() string {
	switch b {
	case BoundExact:
		return "exact"
	case BoundLower:
		return "lower"
	case BoundUpper:
		return "upper"
	}
	return "unknown"
}

// DefaultTableSize is the default entry cap of a transposition table.
const DefaultTableSize = 100000

// TTEntry represents an entry in the transposition table.
type TTEntry struct {
	Depth    int
	Score    int
	Bound    Bound
	BestMove board.Move
	HasMove  bool
}

// TranspositionTable caches search results by position fingerprint. It is
// owned by a single search and is not safe for concurrent use.
type TranspositionTable struct {
	entries  map[uint64]TTEntry
	order    []uint64 // insertion order, oldest first
	capacity int

	// Statistics
	hits      uint64
	probes    uint64
	evictions uint64
}

// NewTranspositionTable creates a table holding at most capacity entries.
func NewTranspositionTable(capacity int) *TranspositionTable {
	if capacity < 2 {
		capacity = DefaultTableSize
	}
	return &TranspositionTable{
		entries:  make(map[uint64]TTEntry),
		capacity: capacity,
	}
}

// Probe returns a stored score when the entry is at least as deep as depth
// and its bound settles the [alpha, beta] window.
func (tt *TranspositionTable) Probe(key uint64, depth, alpha, beta int) (int, bool) {
	tt.probes++

	entry, ok := tt.entries[key]
	if !ok || entry.Depth < depth {
		return 0, false
	}

	switch entry.Bound {
	case BoundExact:
	case BoundLower:
		if entry.Score < beta {
			return 0, false
		}
	case BoundUpper:
		if entry.Score > alpha {
			return 0, false
		}
	}

	tt.hits++
	return entry.Score, true
}

// Lookup returns the raw entry for key.
func (tt *TranspositionTable) Lookup(key uint64) (TTEntry, bool) {
	entry, ok := tt.entries[key]
	return entry, ok
}

// Store saves a search result. When the table is full the oldest half of the
// entries is dropped in one pass.
func (tt *TranspositionTable) Store(key uint64, depth, score int, bound Bound, best board.Move, hasBest bool) {
	if _, exists := tt.entries[key]; !exists {
		if len(tt.entries) >= tt.capacity {
			tt.evict()
		}
		tt.order = append(tt.order, key)
	}

	tt.entries[key] = TTEntry{
		Depth:    depth,
		Score:    score,
		Bound:    bound,
		BestMove: best,
		HasMove:  hasBest,
	}
}

// evict drops the oldest half of the keys.
func (tt *TranspositionTable) evict() {
	half := len(tt.order) / 2
	for _, key := range tt.order[:half] {
		delete(tt.entries, key)
	}
	tt.order = append(tt.order[:0], tt.order[half:]...)
	tt.evictions++
}

// Len returns the number of stored entries.
func (tt *TranspositionTable) Len() int {
	return len(tt.entries)
}

// Clear clears the transposition table.
func (tt *TranspositionTable) Clear() {
	clear(tt.entries)
	tt.order = tt.order[:0]
	tt.hits = 0
	tt.probes = 0
	tt.evictions = 0
}

// Evictions returns how many times the table dropped its oldest half.
func (tt *TranspositionTable) Evictions() uint64 {
	return tt.evictions
}

// HitRate returns the cache hit rate as a percentage.
func (tt *TranspositionTable) HitRate() float64 {
	if tt.probes == 0 {
		return 0
	}
	return float64(tt.hits) / float64(tt.probes) * 100
}

// AdjustScoreFromTT converts a node-relative mate score back to root-relative.
func AdjustScoreFromTT(score int, ply int) int {
	if score > MateThreshold {
		return score - ply
	}
	if score < -MateThreshold {
		return score + ply
	}
	return score
}

// AdjustScoreToTT makes a mate score relative to the node being stored.
func AdjustScoreToTT(score int, ply int) int {
	if score > MateThreshold {
		return score + ply
	}
	if score < -MateThreshold {
		return score - ply
	}
	return score
}
