package engine

import (
	"strings"
	"testing"
	"unicode"

	"github.com/hailam/chessplay/internal/board"
)

// mirrorFEN flips the board vertically and swaps the colors.
func mirrorFEN(t *testing.T, fen string) string {
	t.Helper()
	f := strings.Fields(fen)
	if len(f) < 4 {
		t.Fatalf("short FEN %q", fen)
	}

	ranks := strings.Split(f[0], "/")
	for i, j := 0, len(ranks)-1; i < j; i, j = i+1, j-1 {
		ranks[i], ranks[j] = ranks[j], ranks[i]
	}
	placement := strings.Map(swapCase, strings.Join(ranks, "/"))

	side := "w"
	if f[1] == "w" {
		side = "b"
	}

	castling := f[2]
	if castling != "-" {
		var sb strings.Builder
		for _, c := range "KQkq" {
			if strings.ContainsRune(castling, swapCase(c)) {
				sb.WriteRune(c)
			}
		}
		castling = sb.String()
	}

	ep := f[3]
	if ep != "-" {
		rank := '3'
		if ep[1] == '3' {
			rank = '6'
		}
		ep = string(ep[0]) + string(rank)
	}

	return strings.Join([]string{placement, side, castling, ep, "0", "1"}, " ")
}

func swapCase(r rune) rune {
	if unicode.IsUpper(r) {
		return unicode.ToLower(r)
	}
	return unicode.ToUpper(r)
}

var evalPositions = []string{
	board.StartFEN,
	"r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3",
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"6k1/5ppp/8/8/8/8/8/K2R4 w - - 0 1",
	"4k3/8/8/3P4/8/8/PP6/4K3 b - - 0 1",
}

func TestEvaluationSymmetry(t *testing.T) {
	for _, fen := range evalPositions {
		pos, err := board.ParseFEN(fen)
		if err != nil {
			t.Fatal(err)
		}
		mirrored, err := board.ParseFEN(mirrorFEN(t, fen))
		if err != nil {
			t.Fatalf("mirror of %q: %v", fen, err)
		}

		a := EvaluateBreakdown(pos)
		b := EvaluateBreakdown(mirrored)
		if got, want := b.Total-b.Mobility, -(a.Total - a.Mobility); got != want {
			t.Errorf("%s: mirrored eval %d, want %d (%+v vs %+v)", fen, got, want, a, b)
		}
	}
}

func TestEvaluateIdempotent(t *testing.T) {
	for _, fen := range evalPositions {
		pos, err := board.ParseFEN(fen)
		if err != nil {
			t.Fatal(err)
		}
		first := Evaluate(pos)
		if second := Evaluate(pos); second != first {
			t.Errorf("%s: %d then %d", fen, first, second)
		}
		if b := EvaluateBreakdown(pos); b.Total != first {
			t.Errorf("%s: breakdown total %d, Evaluate %d", fen, b.Total, first)
		}
		if cached := evaluate(pos, NewPawnTable(64)); cached != first {
			t.Errorf("%s: cached eval %d, Evaluate %d", fen, cached, first)
		}
	}
}

func TestGamePhase(t *testing.T) {
	tests := []struct {
		fen  string
		want int
	}{
		{board.StartFEN, 256},
		{"4k3/8/8/8/8/8/8/4K3 w - - 0 1", 0},
		{"3qk3/8/8/8/8/8/8/3QK3 w - - 0 1", 8 * 256 / 24},
	}
	for _, tc := range tests {
		pos, err := board.ParseFEN(tc.fen)
		if err != nil {
			t.Fatal(err)
		}
		if got := GamePhase(pos); got != tc.want {
			t.Errorf("GamePhase(%s) = %d, want %d", tc.fen, got, tc.want)
		}
	}
}

func TestPawnStructure(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want int // white pawn structure
	}{
		// a2 passed and isolated: 20 + 0 - 15
		{"passed isolated", "4k3/8/8/8/8/8/P7/4K3 w - - 0 1", 5},
		// a5: 20 + 30 - 15
		{"advanced passer", "4k3/8/8/P7/8/8/8/4K3 w - - 0 1", 35},
		// c2 and c3 both passed and isolated: 20 + 30 - 2*15, doubled -10
		{"doubled", "4k3/8/8/8/8/2P5/2P5/4K3 w - - 0 1", 10},
		// d4 blocked by d5, not passed, isolated
		{"blocked", "4k3/8/8/3p4/3P4/8/8/4K3 w - - 0 1", -15},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := board.ParseFEN(tc.fen)
			if err != nil {
				t.Fatal(err)
			}
			if got := pawnStructure(pos, board.White); got != tc.want {
				t.Errorf("pawnStructure = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestKingSafety(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want int
	}{
		// Full shield on f2/g2/h2
		{"shielded", "rnbqrbk1/pppppppp/5n2/8/8/5N2/PPPPPPPP/RNBQRBK1 w - - 0 1", 30},
		// Only f2 left, g and h files empty
		{"open", "rnbqrbk1/pppppp2/5n2/8/8/5N2/PPPPPP2/RNBQRBK1 w - - 0 1", 10 - 30},
		// Too little material left
		{"endgame", "6k1/5ppp/8/8/8/8/5PPP/6K1 w - - 0 1", 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := board.ParseFEN(tc.fen)
			if err != nil {
				t.Fatal(err)
			}
			if got := kingSafety(pos, board.White, GamePhase(pos)); got != tc.want {
				t.Errorf("kingSafety = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestMobilityFollowsSideToMove(t *testing.T) {
	white, _ := board.ParseFEN(board.StartFEN)
	if got := mobility(white); got != 40 {
		t.Errorf("white mobility = %d, want 40", got)
	}
	black, _ := board.ParseFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR b KQkq - 0 1")
	if got := mobility(black); got != -40 {
		t.Errorf("black mobility = %d, want -40", got)
	}
}
