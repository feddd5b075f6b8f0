package board

import (
	"errors"
	"testing"
)

func TestToSAN(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		uci  string
		want string
	}{
		{"pawn push", StartFEN, "e2e4", "e4"},
		{"knight", StartFEN, "g1f3", "Nf3"},
		{"castle short", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "e1g1", "O-O"},
		{"castle long", "r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1", "e8c8", "O-O-O"},
		{"pawn capture", "rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 2", "e4d5", "exd5"},
		{"promotion", "8/P6k/8/8/8/8/8/K7 w - - 0 1", "a7a8q", "a8=Q"},
		{"file disambiguation", "k7/8/8/8/8/8/8/KR5R w - - 0 1", "b1e1", "Rbe1"},
		{"rank disambiguation", "7k/8/8/8/R7/8/8/R6K w - - 0 1", "a1a2", "R1a2"},
		{"mate", "6k1/5ppp/8/8/8/8/8/K2R4 w - - 0 1", "d1d8", "Rd8#"},
		{"check", "4k3/8/8/8/8/8/8/K6R w - - 0 1", "h1h8", "Rh8+"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := ParseFEN(tc.fen)
			if err != nil {
				t.Fatal(err)
			}
			m, err := ParseUCI(tc.uci, pos)
			if err != nil {
				t.Fatal(err)
			}
			if got := m.ToSAN(pos); got != tc.want {
				t.Errorf("ToSAN(%s) = %s, want %s", tc.uci, got, tc.want)
			}

			back, err := ParseSAN(tc.want, pos)
			if err != nil {
				t.Fatalf("ParseSAN(%s): %v", tc.want, err)
			}
			if !back.Same(m) {
				t.Errorf("ParseSAN(%s) = %s, want %s", tc.want, back, m)
			}
		})
	}
}

func TestParseSANIllegal(t *testing.T) {
	pos := NewPosition()
	for _, san := range []string{"e5", "Ke2", "O-O", "Nf4", "Qh5", "", "Zz9"} {
		if _, err := ParseSAN(san, pos); !errors.Is(err, ErrIllegalMove) {
			t.Errorf("ParseSAN(%q) error = %v, want ErrIllegalMove", san, err)
		}
	}
}

func TestMovesToSAN(t *testing.T) {
	pos := NewPosition()
	var moves []Move
	p := pos.Clone()
	for _, uci := range []string{"e2e4", "e7e5", "g1f3", "b8c6", "f1b5"} {
		m, err := ParseUCI(uci, p)
		if err != nil {
			t.Fatal(err)
		}
		moves = append(moves, m)
		p.MakeMove(m)
	}

	got := MovesToSAN(pos, moves)
	want := []string{"e4", "e5", "Nf3", "Nc6", "Bb5"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("move %d = %s, want %s", i, got[i], want[i])
		}
	}
	if pos.ToFEN() != StartFEN {
		t.Error("MovesToSAN modified the position")
	}
}
