package bot

import (
	"context"
	"ctchen222/Tic-Tac-Toe-Engine/internal/game"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "ctchen222/Tic-Tac-Toe-Engine/internal/bot"

var tracer = otel.Tracer("bot")

// Engine is the perfect-play move calculator used by game sessions.
// It implements the session.MoveCalculator interface.
type Engine struct {
	nodes    metric.Int64Counter
	cutoffs  metric.Int64Counter
	duration metric.Float64Histogram
}

// NewEngine creates an engine that reports search statistics to the global meter provider.
func NewEngine() (*Engine, error) {
	meter := otel.Meter(instrumentationName)

	nodes, err := meter.Int64Counter("engine.search.nodes",
		metric.WithDescription("Positions visited by the minimax search"))
	if err != nil {
		return nil, err
	}
	cutoffs, err := meter.Int64Counter("engine.search.cutoffs",
		metric.WithDescription("Alpha-beta cutoffs taken by the minimax search"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("engine.search.duration",
		metric.WithDescription("Wall time of one move search"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}

	return &Engine{nodes: nodes, cutoffs: cutoffs, duration: duration}, nil
}

// CalculateNextMove searches the board for mark's best move. The board is only borrowed:
// it is bit-for-bit identical when the call returns.
func (e *Engine) CalculateNextMove(ctx context.Context, board *game.Board, mark game.PlayerMark) (game.Move, bool) {
	ctx, span := tracer.Start(ctx, "bot.CalculateNextMove", trace.WithAttributes(
		attribute.String("board", board.String()),
		attribute.String("player.mark", string(mark)),
	))
	defer span.End()

	start := time.Now()
	res := Search(board, mark)
	elapsed := time.Since(start)

	attrs := metric.WithAttributes(attribute.String("player.mark", string(mark)))
	e.nodes.Add(ctx, int64(res.Nodes), attrs)
	e.cutoffs.Add(ctx, int64(res.Cutoffs), attrs)
	e.duration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)

	span.SetAttributes(
		attribute.Bool("move.found", res.Found),
		attribute.Int("move.index", int(res.Move)),
		attribute.Int("search.score", res.Score),
		attribute.Int("search.nodes", res.Nodes),
		attribute.Int("search.cutoffs", res.Cutoffs),
	)

	if !res.Found {
		slog.DebugContext(ctx, "Engine has no legal move", "board", board.String(), "player.mark", mark)
		return game.NoMove, false
	}

	slog.DebugContext(ctx, "Engine chose move",
		"board", board.String(),
		"player.mark", mark,
		"move", res.Move,
		"score", res.Score,
		"nodes", res.Nodes,
		"cutoffs", res.Cutoffs,
		"elapsed", elapsed,
	)
	return res.Move, true
}
