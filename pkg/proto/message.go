package proto

import (
	"ctchen222/Tic-Tac-Toe-Engine/internal/game"
)

// Client message types
const (
	TypeMove  = "move"
	TypeReset = "reset"
)

// Server message types
const (
	TypeUpdate   = "update"
	TypeGameOver = "game_over"
	TypeError    = "error"
)

// ClientToServerMessage represents a message from the client to the server.
type ClientToServerMessage struct {
	Type     string `json:"type" validate:"required,oneof=move reset"`
	Position *int   `json:"position,omitempty" validate:"omitempty,cell"`
}

// ServerToClientMessage represents a message from the server to the client.
type ServerToClientMessage struct {
	Type        string              `json:"type" validate:"required"`
	GameID      string              `json:"gameId,omitempty"`
	Reason      string              `json:"reason,omitempty"`
	Message     string              `json:"message,omitempty"`
	Board       [][]game.PlayerMark `json:"board,omitempty"`
	Next        game.PlayerMark     `json:"next,omitempty"`
	Human       game.PlayerMark     `json:"human,omitempty"`
	Outcome     game.Outcome        `json:"outcome,omitempty"`
	Winner      game.PlayerMark     `json:"winner,omitempty"`
	LastMove    *int                `json:"lastMove,omitempty"`
	WinningLine []int               `json:"winningLine,omitempty"`
	Games       int                 `json:"games"`
}

// CreateGameRequest asks for a new human-versus-engine game.
type CreateGameRequest struct {
	First string          `json:"first" validate:"omitempty,oneof=human engine random"`
	Mark  game.PlayerMark `json:"mark" validate:"omitempty,mark"`
}

// MoveRequest carries the human's chosen cell.
type MoveRequest struct {
	Index *int `json:"index" validate:"required,cell"`
}

// AnalyzeRequest asks for the engine's evaluation of an arbitrary board.
type AnalyzeRequest struct {
	Board  string          `json:"board" validate:"required"`
	Player game.PlayerMark `json:"player" validate:"required,mark"`
}

// AnalyzeResponse is the engine's evaluation of a board.
type AnalyzeResponse struct {
	Board    string          `json:"board"`
	Player   game.PlayerMark `json:"player"`
	Outcome  game.Outcome    `json:"outcome"`
	BestMove int             `json:"bestMove"`
	Found    bool            `json:"found"`
	Score    int             `json:"score"`
	Moves    []MoveScore     `json:"moves"`
}

// MoveScore is the exact value of one candidate move.
type MoveScore struct {
	Move  int `json:"move"`
	Score int `json:"score"`
}
