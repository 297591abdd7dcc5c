package game

import (
	"errors"
	"slices"
	"testing"
)

func mustParse(t *testing.T, s string) Board {
	t.Helper()
	b, err := ParseBoard(s)
	if err != nil {
		t.Fatalf("ParseBoard(%q) failed: %v", s, err)
	}
	return b
}

func TestEvaluateTerminal(t *testing.T) {
	tests := []struct {
		name  string
		board string
		want  Outcome
	}{
		{name: "Empty board", board: "___|___|___", want: InProgress},
		{name: "Partial board", board: "X__|_O_|___", want: InProgress},
		{name: "X wins - first row", board: "XXX|_O_|__O", want: XWins},
		{name: "O wins - second column", board: "XO_|XO_|_O_", want: OWins},
		{name: "X wins - main diagonal", board: "X__|_X_|__X", want: XWins},
		{name: "O wins - anti-diagonal", board: "__O|_O_|O__", want: OWins},
		{name: "Full board without a line", board: "XOX|XOO|OXX", want: Draw},
		{name: "Full board with a line", board: "XXX|OOX|OXO", want: XWins},
		{name: "One cell left, no line", board: "XOX|XOO|OX_", want: InProgress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := mustParse(t, tt.board)
			if got := b.EvaluateTerminal(); got != tt.want {
				t.Errorf("EvaluateTerminal() got = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateTerminal_EveryLine(t *testing.T) {
	for _, mark := range []PlayerMark{PlayerX, PlayerO} {
		for _, line := range lines {
			var b Board
			for _, idx := range line {
				b[idx] = mark
			}
			if got := b.EvaluateTerminal(); got != WinOutcome(mark) {
				t.Errorf("line %v for %s: got %v, want %v", line, mark, got, WinOutcome(mark))
			}
			got, ok := b.WinningLine()
			if !ok || got != line {
				t.Errorf("WinningLine() = %v, %v; want %v", got, ok, line)
			}
		}
	}
}

func TestLegalMoves(t *testing.T) {
	b := mustParse(t, "X_O|_X_|O__")
	want := []Move{1, 3, 5, 7, 8}
	if got := b.LegalMoves(); !slices.Equal(got, want) {
		t.Errorf("LegalMoves() = %v, want %v", got, want)
	}

	full := mustParse(t, "XOX|XOO|OXX")
	if got := full.LegalMoves(); len(got) != 0 {
		t.Errorf("LegalMoves() on full board = %v, want none", got)
	}

	var empty Board
	if got := empty.LegalMoves(); len(got) != Cells {
		t.Errorf("LegalMoves() on empty board returned %d moves, want %d", len(got), Cells)
	}
}

func TestIsOccupied(t *testing.T) {
	b := mustParse(t, "X__|___|__O")
	cases := map[Move]bool{0: true, 1: false, 4: false, 8: true, -1: true, 9: true}
	for idx, want := range cases {
		if got := b.IsOccupied(idx); got != want {
			t.Errorf("IsOccupied(%d) = %v, want %v", idx, got, want)
		}
	}
}

func TestApplyAndUndo(t *testing.T) {
	var b Board
	if err := b.Apply(4, PlayerX); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if b[4] != PlayerX {
		t.Fatalf("expected X at 4, got %q", b[4])
	}

	before := b
	tests := []struct {
		name  string
		index Move
		mark  PlayerMark
		want  error
	}{
		{name: "Occupied cell", index: 4, mark: PlayerO, want: ErrOccupied},
		{name: "Negative index", index: -1, mark: PlayerO, want: ErrOutOfBounds},
		{name: "Index past the board", index: 9, mark: PlayerO, want: ErrOutOfBounds},
		{name: "Empty mark", index: 0, mark: None, want: ErrNotAPlayer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := b.Apply(tt.index, tt.mark); !errors.Is(err, tt.want) {
				t.Errorf("Apply(%d, %q) error = %v, want %v", tt.index, tt.mark, err, tt.want)
			}
			if b != before {
				t.Errorf("failed Apply mutated the board: %s", b.String())
			}
		})
	}

	b.Undo(4)
	if b != (Board{}) {
		t.Errorf("Undo did not restore the empty board: %s", b.String())
	}
}

func TestParseBoardRoundTrip(t *testing.T) {
	b := mustParse(t, "XO_|_X_|__O")
	if got := b.String(); got != "XO_|_X_|__O" {
		t.Errorf("String() = %q", got)
	}
	if _, err := ParseBoard("XO_|_X_"); err == nil {
		t.Error("expected error for short board")
	}
	if _, err := ParseBoard("XO_|_Z_|__O"); err == nil {
		t.Error("expected error for invalid cell")
	}
}

func TestRowsAndFromRows(t *testing.T) {
	b := mustParse(t, "XO_|_X_|__O")
	rows := b.Rows()
	if rows[0][1] != PlayerO || rows[2][2] != PlayerO || rows[1][1] != PlayerX {
		t.Fatalf("unexpected rows: %v", rows)
	}
	back, err := FromRows(rows)
	if err != nil {
		t.Fatalf("FromRows failed: %v", err)
	}
	if back != b {
		t.Errorf("FromRows(Rows()) = %s, want %s", back.String(), b.String())
	}
	if _, err := FromRows([][]PlayerMark{{"Z", "", ""}, {"", "", ""}, {"", "", ""}}); !errors.Is(err, ErrNotAPlayer) {
		t.Errorf("expected ErrNotAPlayer, got %v", err)
	}
}

func TestMoveAt(t *testing.T) {
	mv, err := MoveAt(2, 1)
	if err != nil || mv != 7 {
		t.Fatalf("MoveAt(2, 1) = %d, %v", mv, err)
	}
	if r, c := mv.Position(); r != 2 || c != 1 {
		t.Errorf("Position() = (%d, %d)", r, c)
	}
	if _, err := MoveAt(3, 0); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("expected ErrOutOfBounds, got %v", err)
	}
}

func TestOpponent(t *testing.T) {
	if PlayerX.Opponent() != PlayerO || PlayerO.Opponent() != PlayerX || None.Opponent() != None {
		t.Error("unexpected Opponent() mapping")
	}
}
