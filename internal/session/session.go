// Package session owns one human-versus-engine game and exposes the two calls a
// presentation layer needs: apply the human's move and let the engine reply.
package session

import (
	"context"
	"ctchen222/Tic-Tac-Toe-Engine/internal/game"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("session")

// MoveCalculator defines an interface for an agent that can calculate a game move.
// The board is borrowed for the duration of the call and must be left unchanged.
type MoveCalculator interface {
	CalculateNextMove(ctx context.Context, board *game.Board, mark game.PlayerMark) (game.Move, bool)
}

// FirstPlayer selects who opens each game.
type FirstPlayer string

const (
	FirstHuman  FirstPlayer = "human"
	FirstEngine FirstPlayer = "engine"
	FirstRandom FirstPlayer = "random"
)

// ParseFirstPlayer validates a FirstPlayer value. The empty string means FirstHuman.
func ParseFirstPlayer(s string) (FirstPlayer, error) {
	switch FirstPlayer(s) {
	case "", FirstHuman:
		return FirstHuman, nil
	case FirstEngine:
		return FirstEngine, nil
	case FirstRandom:
		return FirstRandom, nil
	}
	return "", fmt.Errorf("invalid first player %q", s)
}

// Options configures a session.
type Options struct {
	// HumanMark is the human's mark; the engine plays the opponent. Defaults to X.
	HumanMark   game.PlayerMark
	FirstPlayer FirstPlayer
}

// State is a snapshot of a session.
type State struct {
	ID          string
	Board       game.Board
	HumanMark   game.PlayerMark
	EngineMark  game.PlayerMark
	CurrentTurn game.PlayerMark
	Outcome     game.Outcome
	LastMove    game.Move
	WinningLine []game.Move
	Games       int
}

// EngineToMove reports whether the engine should move next.
func (s State) EngineToMove() bool {
	return !s.Outcome.IsTerminal() && s.CurrentTurn == s.EngineMark
}

// Session is a single game between a human and a MoveCalculator.
// All operations are serialized; an engine search runs to completion under the lock.
type Session struct {
	mu          sync.Mutex
	id          string
	calculator  MoveCalculator
	humanMark   game.PlayerMark
	engineMark  game.PlayerMark
	firstPlayer FirstPlayer
	board       game.Board
	currentTurn game.PlayerMark
	outcome     game.Outcome
	lastMove    game.Move
	games       int
}

// New creates a session with an empty board.
func New(id string, calculator MoveCalculator, opts Options) *Session {
	human := opts.HumanMark
	if !human.IsPlayer() {
		human = game.PlayerX
	}
	first := opts.FirstPlayer
	if first == "" {
		first = FirstHuman
	}

	s := &Session{
		id:          id,
		calculator:  calculator,
		humanMark:   human,
		engineMark:  human.Opponent(),
		firstPlayer: first,
	}
	s.resetLocked()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// ApplyHumanMove places the human's mark at index and reports the resulting outcome.
func (s *Session) ApplyHumanMove(ctx context.Context, index game.Move) (game.Board, game.Outcome, error) {
	ctx, span := tracer.Start(ctx, "session.ApplyHumanMove", trace.WithAttributes(
		attribute.String("session.id", s.id),
		attribute.Int("move.index", int(index)),
	))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.playLocked(index, s.humanMark); err != nil {
		slog.WarnContext(ctx, "Rejected human move", "session.id", s.id, "move", index, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid human move")
		return s.board, s.outcome, err
	}

	span.SetAttributes(attribute.String("game.outcome", string(s.outcome)))
	slog.DebugContext(ctx, "Human moved", "session.id", s.id, "move", index, "board", s.board.String(), "outcome", s.outcome)
	return s.board, s.outcome, nil
}

// ComputeAndApplyEngineMove lets the engine choose and play its move. When the board is
// full the returned move is NoMove with found=false and the outcome is a draw.
func (s *Session) ComputeAndApplyEngineMove(ctx context.Context) (board game.Board, move game.Move, found bool, outcome game.Outcome, err error) {
	ctx, span := tracer.Start(ctx, "session.ComputeAndApplyEngineMove", trace.WithAttributes(
		attribute.String("session.id", s.id),
	))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.outcome.IsTerminal() {
		span.SetStatus(codes.Error, "Game already finished")
		return s.board, game.NoMove, false, s.outcome, game.ErrGameOver
	}
	if s.currentTurn != s.engineMark {
		span.SetStatus(codes.Error, "Not engine's turn")
		return s.board, game.NoMove, false, s.outcome, game.ErrNotYourTurn
	}

	mv, ok := s.calculator.CalculateNextMove(ctx, &s.board, s.engineMark)
	if !ok {
		s.outcome = game.Draw
		span.SetAttributes(attribute.Bool("move.found", false))
		slog.InfoContext(ctx, "Engine has no move, game drawn", "session.id", s.id)
		return s.board, game.NoMove, false, s.outcome, nil
	}

	if err := s.playLocked(mv, s.engineMark); err != nil {
		err = fmt.Errorf("engine chose move %d: %w", mv, err)
		slog.ErrorContext(ctx, "Engine produced an illegal move", "session.id", s.id, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Illegal engine move")
		return s.board, game.NoMove, false, s.outcome, err
	}

	span.SetAttributes(
		attribute.Int("move.index", int(mv)),
		attribute.String("game.outcome", string(s.outcome)),
	)
	slog.DebugContext(ctx, "Engine moved", "session.id", s.id, "move", mv, "board", s.board.String(), "outcome", s.outcome)
	return s.board, mv, true, s.outcome, nil
}

// Reset clears the board for a new game.
func (s *Session) Reset() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	s.games++
	return s.snapshotLocked()
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) playLocked(index game.Move, mark game.PlayerMark) error {
	if s.outcome.IsTerminal() {
		return game.ErrGameOver
	}
	if s.currentTurn != mark {
		return game.ErrNotYourTurn
	}
	if err := s.board.Apply(index, mark); err != nil {
		return err
	}
	s.lastMove = index
	s.outcome = s.board.EvaluateTerminal()
	s.currentTurn = mark.Opponent()
	return nil
}

func (s *Session) resetLocked() {
	s.board = game.Board{}
	s.outcome = game.InProgress
	s.lastMove = game.NoMove
	s.currentTurn = s.humanMark
	switch s.firstPlayer {
	case FirstEngine:
		s.currentTurn = s.engineMark
	case FirstRandom:
		if rand.IntN(2) == 0 {
			s.currentTurn = s.engineMark
		}
	}
}

func (s *Session) snapshotLocked() State {
	st := State{
		ID:          s.id,
		Board:       s.board,
		HumanMark:   s.humanMark,
		EngineMark:  s.engineMark,
		CurrentTurn: s.currentTurn,
		Outcome:     s.outcome,
		LastMove:    s.lastMove,
		Games:       s.games,
	}
	if line, ok := s.board.WinningLine(); ok {
		st.WinningLine = line[:]
	}
	return st
}
