package bot

import (
	"ctchen222/Tic-Tac-Toe-Engine/internal/game"
	"math"
)

const (
	// winScore is the value of a win found right after the root move.
	winScore = 10

	negInf = math.MinInt
	posInf = math.MaxInt
)

// Result is the outcome of a full search from one root position.
type Result struct {
	Move    game.Move
	Score   int
	Found   bool
	Nodes   int
	Cutoffs int
}

// MoveScore is the exact minimax value of one root move.
type MoveScore struct {
	Move  game.Move `json:"move"`
	Score int       `json:"score"`
}

// searcher carries the root player and the counters of one search.
// It is never shared between searches.
type searcher struct {
	root    game.PlayerMark
	nodes   int
	cutoffs int
	prune   bool
}

func newSearcher(root game.PlayerMark, prune bool) *searcher {
	return &searcher{root: root, prune: prune}
}

// BestMove returns the optimal move for player, or (NoMove, false) when the board is full.
func BestMove(board *game.Board, player game.PlayerMark) (game.Move, bool) {
	res := Search(board, player)
	return res.Move, res.Found
}

// Search explores every legal move of player in ascending index order and keeps the
// first move with the strictly greatest score. The board is restored before returning.
func Search(board *game.Board, player game.PlayerMark) Result {
	return search(board, player, true)
}

func search(board *game.Board, player game.PlayerMark, prune bool) Result {
	if !player.IsPlayer() {
		return Result{Move: game.NoMove}
	}
	s := newSearcher(player, prune)
	res := Result{Move: game.NoMove, Score: negInf}

	for _, mv := range board.LegalMoves() {
		score := s.scoreMove(board, mv, player, 0, negInf, posInf, false)
		if score > res.Score {
			res.Score = score
			res.Move = mv
			res.Found = true
		}
	}
	if !res.Found {
		res.Score = 0
	}
	res.Nodes = s.nodes
	res.Cutoffs = s.cutoffs
	return res
}

// Analyze returns the exact score of every legal move of player, ascending by index.
func Analyze(board *game.Board, player game.PlayerMark) []MoveScore {
	if !player.IsPlayer() {
		return nil
	}
	s := newSearcher(player, true)
	moves := board.LegalMoves()
	scores := make([]MoveScore, 0, len(moves))
	for _, mv := range moves {
		scores = append(scores, MoveScore{
			Move:  mv,
			Score: s.scoreMove(board, mv, player, 0, negInf, posInf, false),
		})
	}
	return scores
}

// scoreMove places mark at mv, scores the resulting position and always reverts the cell.
func (s *searcher) scoreMove(board *game.Board, mv game.Move, mark game.PlayerMark, depth, alpha, beta int, maximizing bool) int {
	if err := board.Apply(mv, mark); err != nil {
		panic("bot: search applied an illegal move: " + err.Error())
	}
	defer board.Undo(mv)
	return s.minimax(board, depth, alpha, beta, maximizing)
}

func (s *searcher) minimax(board *game.Board, depth, alpha, beta int, maximizing bool) int {
	s.nodes++

	switch outcome := board.EvaluateTerminal(); {
	case outcome.Winner() == s.root:
		return winScore - depth
	case outcome.Winner() == s.root.Opponent():
		return depth - winScore
	case outcome == game.Draw:
		return 0
	}

	if maximizing {
		best := negInf
		for _, mv := range board.LegalMoves() {
			score := s.scoreMove(board, mv, s.root, depth+1, alpha, beta, false)
			best = max(best, score)
			alpha = max(alpha, best)
			if s.prune && beta <= alpha {
				s.cutoffs++
				break
			}
		}
		return best
	}

	best := posInf
	for _, mv := range board.LegalMoves() {
		score := s.scoreMove(board, mv, s.root.Opponent(), depth+1, alpha, beta, true)
		best = min(best, score)
		beta = min(beta, best)
		if s.prune && beta <= alpha {
			s.cutoffs++
			break
		}
	}
	return best
}
