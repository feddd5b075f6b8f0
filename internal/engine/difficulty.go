package engine

import (
	"errors"
	"fmt"
	"strings"

	"lukechampine.com/frand"
)

// ErrUnknownDifficulty is returned for difficulty names other than
// easy, medium and hard.
var ErrUnknownDifficulty = errors.New("unknown difficulty")

// Difficulty represents the AI difficulty level.
type Difficulty int

const (
	Easy   Difficulty = iota // 2 ply, often random
	Medium                   // 3 ply, occasionally random
	Hard                     // 4 ply, never random
)

// String returns the lowercase difficulty name.
func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	}
	return fmt.Sprintf("difficulty(%d)", int(d))
}

// ParseDifficulty parses "easy", "medium" or "hard" (case-insensitive).
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return Easy, nil
	case "medium":
		return Medium, nil
	case "hard":
		return Hard, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
}

// MarshalText implements encoding.TextMarshaler.
func (d Difficulty) MarshalText() ([]byte, error) {
	if _, ok := DifficultySettings[d]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownDifficulty, int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Difficulty) UnmarshalText(text []byte) error {
	parsed, err := ParseDifficulty(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DifficultyProfile holds the search settings for one difficulty.
type DifficultyProfile struct {
	Depth      int     // full-width search depth in plies
	Randomness float64 // probability of playing a random legal move instead
	Quiescence bool    // extend leaves through captures and promotions
}

// DifficultySettings maps difficulty to search settings.
var DifficultySettings = map[Difficulty]DifficultyProfile{
	Easy:   {Depth: 2, Randomness: 0.30, Quiescence: false},
	Medium: {Depth: 3, Randomness: 0.05, Quiescence: true},
	Hard:   {Depth: 4, Randomness: 0, Quiescence: true},
}

// Profile returns the settings for d, falling back to Medium.
func Profile(d Difficulty) DifficultyProfile {
	if p, ok := DifficultySettings[d]; ok {
		return p
	}
	return DifficultySettings[Medium]
}

// Randomizer supplies the randomness for move selection. *frand.RNG
// satisfies it; tests pass a seeded one.
type Randomizer interface {
	Float64() float64
	Intn(n int) int
}

// processRandom draws from frand's global generator.
type processRandom struct{}

func (processRandom) Float64() float64 { return frand.Float64() }
func (processRandom) Intn(n int) int   { return frand.Intn(n) }

// NewSeededRandomizer returns a reproducible Randomizer.
func NewSeededRandomizer(seed uint64) Randomizer {
	var key [32]byte
	for i := 0; i < 8; i++ {
		key[i] = byte(seed >> (8 * i))
	}
	return frand.NewCustom(key[:], 1024, 12)
}

// Randomize reports whether this search should play a random move.
func (p DifficultyProfile) Randomize(rng Randomizer) bool {
	if p.Randomness <= 0 {
		return false
	}
	if rng == nil {
		rng = processRandom{}
	}
	return rng.Float64() < p.Randomness
}
