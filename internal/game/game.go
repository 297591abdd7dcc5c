package game

import (
	"errors"
	"fmt"
	"strings"
)

// PlayerMark represents the mark of a player (X, O) or an empty cell.
type PlayerMark string

// Move is a board index in [0, 8].
type Move int

// Outcome is the terminal evaluation of a board.
type Outcome string

const (
	// Player marks
	None    PlayerMark = ""
	PlayerX PlayerMark = "X"
	PlayerO PlayerMark = "O"

	// Game outcomes
	InProgress Outcome = "in_progress"
	XWins      Outcome = "x_wins"
	OWins      Outcome = "o_wins"
	Draw       Outcome = "draw"

	// NoMove is returned when the board has no empty cell left.
	NoMove Move = -1

	// Board boundaries
	BorderMin = 0
	BorderMax = 2
	Size      = 3
	Cells     = Size * Size
)

var (
	ErrOutOfBounds = errors.New("cell index out of bounds")
	ErrOccupied    = errors.New("cell already occupied")
	ErrNotAPlayer  = errors.New("mark is not a player")
	ErrGameOver    = errors.New("game already finished")
	ErrNotYourTurn = errors.New("not player's turn")
)

// lines holds the 8 winning triples: rows, columns, diagonals.
var lines = [8][3]Move{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Opponent returns the other player's mark. None has no opponent.
func (m PlayerMark) Opponent() PlayerMark {
	switch m {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	}
	return None
}

// IsPlayer reports whether m is X or O.
func (m PlayerMark) IsPlayer() bool {
	return m == PlayerX || m == PlayerO
}

// Valid reports whether the move addresses a cell of a 3x3 board.
func (mv Move) Valid() bool {
	return mv >= 0 && mv < Cells
}

// Position converts the move to (row, col).
func (mv Move) Position() (row, col int) {
	return int(mv) / Size, int(mv) % Size
}

// MoveAt converts (row, col) to a board index.
func MoveAt(row, col int) (Move, error) {
	if row < BorderMin || row > BorderMax || col < BorderMin || col > BorderMax {
		return NoMove, ErrOutOfBounds
	}
	return Move(row*Size + col), nil
}

// IsTerminal reports whether the game has ended.
func (o Outcome) IsTerminal() bool {
	return o == XWins || o == OWins || o == Draw
}

// Winner returns the winning mark, or None for a draw or a game in progress.
func (o Outcome) Winner() PlayerMark {
	switch o {
	case XWins:
		return PlayerX
	case OWins:
		return PlayerO
	}
	return None
}

// WinOutcome returns the outcome in which mark has won.
func WinOutcome(mark PlayerMark) Outcome {
	if mark == PlayerO {
		return OWins
	}
	return XWins
}

// Board is a 3x3 board stored row-major: index = row*3 + col.
type Board [Cells]PlayerMark

// IsOccupied reports whether the cell at index holds a mark.
// Indices outside the board are reported as occupied.
func (b *Board) IsOccupied(index Move) bool {
	if !index.Valid() {
		return true
	}
	return b[index] != None
}

// LegalMoves returns the empty cells in ascending index order.
func (b *Board) LegalMoves() []Move {
	moves := make([]Move, 0, Cells)
	for i, cell := range b {
		if cell == None {
			moves = append(moves, Move(i))
		}
	}
	return moves
}

// IsFull reports whether no empty cell remains.
func (b *Board) IsFull() bool {
	for _, cell := range b {
		if cell == None {
			return false
		}
	}
	return true
}

// EvaluateTerminal checks the 8 winning lines, then the draw condition.
func (b *Board) EvaluateTerminal() Outcome {
	if line, ok := b.WinningLine(); ok {
		return WinOutcome(b[line[0]])
	}
	if b.IsFull() {
		return Draw
	}
	return InProgress
}

// WinningLine returns the first completed line, if any.
func (b *Board) WinningLine() ([3]Move, bool) {
	for _, line := range lines {
		first := b[line[0]]
		if first != None && first == b[line[1]] && first == b[line[2]] {
			return line, true
		}
	}
	return [3]Move{}, false
}

// Apply places mark at index. It never overwrites an occupied cell.
func (b *Board) Apply(index Move, mark PlayerMark) error {
	if !index.Valid() {
		return ErrOutOfBounds
	}
	if !mark.IsPlayer() {
		return ErrNotAPlayer
	}
	if b[index] != None {
		return ErrOccupied
	}
	b[index] = mark
	return nil
}

// Undo clears the cell at index.
func (b *Board) Undo(index Move) {
	if index.Valid() {
		b[index] = None
	}
}

// Count returns how many cells hold mark.
func (b *Board) Count(mark PlayerMark) int {
	n := 0
	for _, cell := range b {
		if cell == mark {
			n++
		}
	}
	return n
}

// Rows converts the board to a slice of rows for the wire format.
func (b *Board) Rows() [][]PlayerMark {
	rows := make([][]PlayerMark, Size)
	for r := range Size {
		rows[r] = make([]PlayerMark, Size)
		for c := range Size {
			rows[r][c] = b[r*Size+c]
		}
	}
	return rows
}

// String renders the board as "XO_|_X_|__O".
func (b *Board) String() string {
	var sb strings.Builder
	for i, cell := range b {
		if i > 0 && i%Size == 0 {
			sb.WriteByte('|')
		}
		if cell == None {
			sb.WriteByte('_')
		} else {
			sb.WriteString(string(cell))
		}
	}
	return sb.String()
}

// ParseBoard is the inverse of Board.String. Row separators are optional.
func ParseBoard(s string) (Board, error) {
	var b Board
	i := 0
	for _, r := range s {
		if r == '|' {
			continue
		}
		if i >= Cells {
			return Board{}, fmt.Errorf("board %q: more than %d cells", s, Cells)
		}
		switch r {
		case 'X', 'x':
			b[i] = PlayerX
		case 'O', 'o':
			b[i] = PlayerO
		case '_', '.', ' ':
			b[i] = None
		default:
			return Board{}, fmt.Errorf("board %q: invalid cell %q", s, r)
		}
		i++
	}
	if i != Cells {
		return Board{}, fmt.Errorf("board %q: expected %d cells, got %d", s, Cells, i)
	}
	return b, nil
}

// FromRows builds a board from the wire format.
func FromRows(rows [][]PlayerMark) (Board, error) {
	var b Board
	if len(rows) != Size {
		return Board{}, fmt.Errorf("expected %d rows, got %d", Size, len(rows))
	}
	for r, row := range rows {
		if len(row) != Size {
			return Board{}, fmt.Errorf("row %d: expected %d cells, got %d", r, Size, len(row))
		}
		for c, cell := range row {
			if cell != None && !cell.IsPlayer() {
				return Board{}, fmt.Errorf("row %d col %d: %w", r, c, ErrNotAPlayer)
			}
			b[r*Size+c] = cell
		}
	}
	return b, nil
}
