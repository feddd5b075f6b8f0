package engine

// PawnEntry stores a cached pawn structure evaluation.
type PawnEntry struct {
	Key   uint64
	Score int16 // White minus Black
	used  bool
}

// PawnTable is a small direct-mapped cache of pawn structure scores, keyed by
// the Zobrist keys of the pawns alone.
type PawnTable struct {
	entries []PawnEntry
	mask    uint64
}

// NewPawnTable creates a pawn table with at least the given number of slots,
// rounded up to a power of two.
func NewPawnTable(slots int) *PawnTable {
	size := 1
	for size < slots {
		size *= 2
	}

	return &PawnTable{
		entries: make([]PawnEntry, size),
		mask:    uint64(size - 1),
	}
}

// Probe looks up a pawn structure evaluation.
func (pt *PawnTable) Probe(key uint64) (int, bool) {
	entry := &pt.entries[key&pt.mask]
	if entry.used && entry.Key == key {
		return int(entry.Score), true
	}
	return 0, false
}

// Store saves a pawn structure evaluation, replacing whatever shared the slot.
func (pt *PawnTable) Store(key uint64, score int) {
	entry := &pt.entries[key&pt.mask]
	entry.Key = key
	entry.Score = int16(score)
	entry.used = true
}

// Clear empties the table.
func (pt *PawnTable) Clear() {
	for i := range pt.entries {
		pt.entries[i] = PawnEntry{}
	}
}
