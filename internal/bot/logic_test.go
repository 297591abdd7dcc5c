package bot

import (
	"ctchen222/Tic-Tac-Toe-Engine/internal/game"
	"testing"
)

func parse(t *testing.T, s string) game.Board {
	t.Helper()
	b, err := game.ParseBoard(s)
	if err != nil {
		t.Fatalf("ParseBoard(%q) failed: %v", s, err)
	}
	return b
}

// sideToMove assumes X moved first.
func sideToMove(b *game.Board) game.PlayerMark {
	if b.Count(game.PlayerX) > b.Count(game.PlayerO) {
		return game.PlayerO
	}
	return game.PlayerX
}

// reachable calls fn for every non-terminal position reachable from the empty board.
func reachable(fn func(b *game.Board, toMove game.PlayerMark)) {
	seen := map[game.Board]bool{}
	var walk func(b *game.Board, toMove game.PlayerMark)
	walk = func(b *game.Board, toMove game.PlayerMark) {
		if seen[*b] || b.EvaluateTerminal().IsTerminal() {
			return
		}
		seen[*b] = true
		fn(b, toMove)
		for _, mv := range b.LegalMoves() {
			b[mv] = toMove
			walk(b, toMove.Opponent())
			b[mv] = game.None
		}
	}
	var b game.Board
	walk(&b, game.PlayerX)
}

func TestBestMove(t *testing.T) {
	tests := []struct {
		name      string
		board     string
		player    game.PlayerMark
		want      game.Move
		wantFound bool
	}{
		{name: "Immediate win completes row 0", board: "XX_|___|___", player: game.PlayerX, want: 2, wantFound: true},
		{name: "Immediate block of row 0", board: "XX_|___|___", player: game.PlayerO, want: 2, wantFound: true},
		{name: "Win beats block", board: "XX_|OO_|___", player: game.PlayerO, want: 5, wantFound: true},
		{name: "Win first column instead of blocking", board: "XO_|XO_|___", player: game.PlayerX, want: 6, wantFound: true},
		{name: "Complete bottom row", board: "__O|_O_|X_X", player: game.PlayerX, want: 7, wantFound: true},
		{name: "Block anti-diagonal", board: "O_X|_X_|___", player: game.PlayerO, want: 6, wantFound: true},
		{name: "Empty board picks lowest index", board: "___|___|___", player: game.PlayerX, want: 0, wantFound: true},
		{name: "Last cell", board: "XOX|XOO|OX_", player: game.PlayerX, want: 8, wantFound: true},
		{name: "Full board", board: "XOX|XOO|OXX", player: game.PlayerO, want: game.NoMove, wantFound: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := parse(t, tt.board)
			got, found := BestMove(&b, tt.player)
			if got != tt.want || found != tt.wantFound {
				t.Errorf("BestMove(%s, %s) = (%d, %v), want (%d, %v)", tt.board, tt.player, got, found, tt.want, tt.wantFound)
			}
		})
	}
}

func TestBestMove_InvalidPlayer(t *testing.T) {
	var b game.Board
	if mv, found := BestMove(&b, game.None); found || mv != game.NoMove {
		t.Errorf("BestMove with no player = (%d, %v), want (NoMove, false)", mv, found)
	}
}

func TestSearch_DepthScoring(t *testing.T) {
	b := parse(t, "XX_|___|___")

	res := Search(&b, game.PlayerX)
	if res.Move != 2 || res.Score != winScore {
		t.Errorf("immediate win: got move %d score %d, want move 2 score %d", res.Move, res.Score, winScore)
	}

	// O cannot stop X's fork after blocking, but losing on ply 3 beats losing on ply 1.
	for _, ms := range Analyze(&b, game.PlayerO) {
		want := 1 - winScore
		if ms.Move == 2 {
			want = 3 - winScore
		}
		if ms.Score != want {
			t.Errorf("Analyze O move %d: score %d, want %d", ms.Move, ms.Score, want)
		}
	}
}

func TestSearch_EmptyBoardTieBreak(t *testing.T) {
	var b game.Board
	for _, ms := range Analyze(&b, game.PlayerX) {
		if ms.Score != 0 {
			t.Fatalf("move %d on empty board scored %d, want 0", ms.Move, ms.Score)
		}
	}
	for i := 0; i < 5; i++ {
		if mv, _ := BestMove(&b, game.PlayerX); mv != 0 {
			t.Fatalf("run %d: BestMove on empty board = %d, want 0", i, mv)
		}
	}
}

func TestSearch_RestoresBoard(t *testing.T) {
	reachable(func(b *game.Board, toMove game.PlayerMark) {
		before := *b
		Search(b, toMove)
		if *b != before {
			t.Fatalf("Search mutated %s into %s", before.String(), b.String())
		}
	})
}

func TestSearch_PruningMatchesExhaustiveSearch(t *testing.T) {
	positions := 0
	reachable(func(b *game.Board, toMove game.PlayerMark) {
		positions++
		pruned := search(b, toMove, true)
		full := search(b, toMove, false)
		if pruned.Move != full.Move || pruned.Score != full.Score {
			t.Errorf("%s (%s to move): pruned (%d, %d) != exhaustive (%d, %d)",
				b.String(), toMove, pruned.Move, pruned.Score, full.Move, full.Score)
		}
		if pruned.Nodes > full.Nodes {
			t.Errorf("%s: pruned search visited %d nodes, exhaustive %d", b.String(), pruned.Nodes, full.Nodes)
		}
	})
	if positions == 0 {
		t.Fatal("no positions enumerated")
	}
}

func TestSearch_CountsPrunedNodes(t *testing.T) {
	var b game.Board
	pruned := search(&b, game.PlayerX, true)
	full := search(&b, game.PlayerX, false)
	if pruned.Cutoffs == 0 {
		t.Error("expected alpha-beta cutoffs on the empty board")
	}
	if full.Cutoffs != 0 {
		t.Errorf("exhaustive search reported %d cutoffs", full.Cutoffs)
	}
	if pruned.Nodes >= full.Nodes {
		t.Errorf("pruning did not reduce the tree: %d >= %d", pruned.Nodes, full.Nodes)
	}
}

func TestSelfPlayIsDraw(t *testing.T) {
	var b game.Board
	toMove := game.PlayerX
	for !b.EvaluateTerminal().IsTerminal() {
		mv, found := BestMove(&b, toMove)
		if !found {
			t.Fatalf("no move found on non-terminal board %s", b.String())
		}
		if err := b.Apply(mv, toMove); err != nil {
			t.Fatalf("engine chose illegal move %d on %s: %v", mv, b.String(), err)
		}
		toMove = toMove.Opponent()
	}
	if got := b.EvaluateTerminal(); got != game.Draw {
		t.Errorf("self-play ended in %s on %s, want draw", got, b.String())
	}
}

// TestEngineNeverLoses plays every possible opponent line against the engine.
func TestEngineNeverLoses(t *testing.T) {
	for _, engineMark := range []game.PlayerMark{game.PlayerO, game.PlayerX} {
		t.Run("engine plays "+string(engineMark), func(t *testing.T) {
			games := 0
			var play func(b *game.Board, toMove game.PlayerMark)
			play = func(b *game.Board, toMove game.PlayerMark) {
				switch b.EvaluateTerminal() {
				case game.WinOutcome(engineMark.Opponent()):
					t.Fatalf("engine (%s) lost: %s", engineMark, b.String())
				case game.WinOutcome(engineMark), game.Draw:
					games++
					return
				}

				if toMove == engineMark {
					mv, found := BestMove(b, engineMark)
					if !found {
						t.Fatalf("engine found no move on %s", b.String())
					}
					b[mv] = engineMark
					play(b, toMove.Opponent())
					b[mv] = game.None
					return
				}
				for _, mv := range b.LegalMoves() {
					b[mv] = toMove
					play(b, toMove.Opponent())
					b[mv] = game.None
				}
			}

			var b game.Board
			play(&b, game.PlayerX)
			if games == 0 {
				t.Fatal("no games played")
			}
		})
	}
}

// TestEngineWinsForcedWin checks that the engine converts positions where a win is forced.
func TestEngineWinsForcedWin(t *testing.T) {
	reachable(func(b *game.Board, toMove game.PlayerMark) {
		res := Search(b, toMove)
		if res.Score <= 0 {
			return
		}
		board := *b
		side := toMove
		for !board.EvaluateTerminal().IsTerminal() {
			mv, _ := BestMove(&board, side)
			board[mv] = side
			side = side.Opponent()
		}
		if got := board.EvaluateTerminal(); got != game.WinOutcome(toMove) {
			t.Errorf("%s: forced win for %s ended in %s (%s)", b.String(), toMove, got, board.String())
		}
	})
}

func BenchmarkSearchEmptyBoard(b *testing.B) {
	var board game.Board
	for i := 0; i < b.N; i++ {
		Search(&board, game.PlayerX)
	}
}
