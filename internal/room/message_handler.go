package room

import (
	"context"
	"ctchen222/Tic-Tac-Toe-Engine/internal/events"
	"ctchen222/Tic-Tac-Toe-Engine/internal/game"
	"ctchen222/Tic-Tac-Toe-Engine/internal/session"
	"ctchen222/Tic-Tac-Toe-Engine/internal/validator"
	"ctchen222/Tic-Tac-Toe-Engine/pkg/proto"
	"encoding/json"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrMissingPosition is returned for a move message without a position.
var ErrMissingPosition = errors.New("move message without position")

// HandleMessage handles a raw message from a subscriber. It acts as a dispatcher.
func (r *Room) HandleMessage(ctx context.Context, sub Subscriber, rawMessage []byte) {
	ctx, span := tracer.Start(ctx, "room.HandleMessage", trace.WithAttributes(
		attribute.String("subscriber.id", sub.ID()),
		attribute.String("room.id", r.ID),
	))
	defer span.End()

	var message proto.ClientToServerMessage
	if err := json.Unmarshal(rawMessage, &message); err != nil {
		slog.ErrorContext(ctx, "error unmarshalling message", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error unmarshalling message")
		r.sendError(ctx, sub, "malformed message")
		return
	}

	if err := validator.GetValidator().Struct(message); err != nil {
		slog.WarnContext(ctx, "invalid message from subscriber", "subscriber.id", sub.ID(), "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid message format")
		r.sendError(ctx, sub, "invalid message")
		return
	}

	span.SetAttributes(attribute.String("message.type", message.Type))

	switch message.Type {
	case proto.TypeMove:
		if message.Position == nil {
			span.SetStatus(codes.Error, "Move without position")
			r.sendError(ctx, sub, ErrMissingPosition.Error())
			return
		}
		if _, err := r.HandleMove(ctx, game.Move(*message.Position)); err != nil {
			r.sendError(ctx, sub, err.Error())
		}
	case proto.TypeReset:
		r.Reset(ctx)
	}
}

// HandleMove applies the human's move, broadcasts the new state, and schedules either the
// engine's reply or the end-of-game reset.
func (r *Room) HandleMove(ctx context.Context, index game.Move) (session.State, error) {
	ctx, span := tracer.Start(ctx, "room.HandleMove", trace.WithAttributes(
		attribute.String("room.id", r.ID),
		attribute.Int("move.index", int(index)),
	))
	defer span.End()

	r.touch()

	_, outcome, err := r.session.ApplyHumanMove(ctx, index)
	if err != nil {
		span.SetAttributes(attribute.Bool("move.valid", false))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid move")
		return r.session.Snapshot(), err
	}
	span.SetAttributes(attribute.Bool("move.valid", true))

	st := r.session.Snapshot()
	r.publish(ctx, events.TypeMoveApplied, events.MoveAppliedPayload{
		RoomID: r.ID,
		Mark:   string(st.HumanMark),
		Move:   int(index),
		Board:  st.Board.String(),
	})
	r.afterMove(ctx, st, outcome)
	return st, nil
}

// Reset clears the board, cancels pending timers and, when the engine opens, schedules its move.
func (r *Room) Reset(ctx context.Context) session.State {
	ctx, span := tracer.Start(ctx, "room.Reset", trace.WithAttributes(
		attribute.String("room.id", r.ID),
	))
	defer span.End()

	r.nextGeneration()
	st := r.session.Reset()
	slog.InfoContext(ctx, "Room game reset", "room.id", r.ID, "games", st.Games)

	r.publish(ctx, events.TypeGameReset, events.GameResetPayload{RoomID: r.ID, Games: st.Games})
	r.Broadcast(ctx, NewStateMessage(proto.TypeUpdate, st))
	if st.EngineToMove() {
		r.scheduleEngineMove(ctx)
	}
	return st
}

// playEngineMove runs when the engine timer fires.
func (r *Room) playEngineMove(ctx context.Context, gen uint64) {
	if !r.isCurrent(gen) {
		return
	}

	ctx, span := tracer.Start(ctx, "room.playEngineMove", trace.WithAttributes(
		attribute.String("room.id", r.ID),
	))
	defer span.End()

	_, mv, found, outcome, err := r.session.ComputeAndApplyEngineMove(ctx)
	if err != nil {
		if errors.Is(err, game.ErrNotYourTurn) || errors.Is(err, game.ErrGameOver) {
			slog.DebugContext(ctx, "Engine move no longer due", "room.id", r.ID, "error", err)
			return
		}
		slog.ErrorContext(ctx, "Engine move failed", "room.id", r.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Engine move failed")
		return
	}

	st := r.session.Snapshot()
	if found {
		span.SetAttributes(attribute.Int("move.index", int(mv)))
		r.publish(ctx, events.TypeMoveApplied, events.MoveAppliedPayload{
			RoomID: r.ID,
			Mark:   string(st.EngineMark),
			Move:   int(mv),
			ByBot:  true,
			Board:  st.Board.String(),
		})
	}
	r.afterMove(ctx, st, outcome)
}

// afterMove broadcasts the state and arms the next timer.
func (r *Room) afterMove(ctx context.Context, st session.State, outcome game.Outcome) {
	if !outcome.IsTerminal() {
		r.Broadcast(ctx, NewStateMessage(proto.TypeUpdate, st))
		if st.EngineToMove() {
			r.scheduleEngineMove(ctx)
		}
		return
	}

	msg := NewStateMessage(proto.TypeGameOver, st)
	slog.InfoContext(ctx, "Game over", "room.id", r.ID, "outcome", outcome, "board", st.Board.String())
	r.publish(ctx, events.TypeGameOver, events.GameOverPayload{
		RoomID:  r.ID,
		Outcome: string(outcome),
		Winner:  string(outcome.Winner()),
		Board:   st.Board.String(),
		Message: msg.Message,
	})
	r.Broadcast(ctx, msg)
	r.scheduleReset(ctx)
}

func (r *Room) publish(ctx context.Context, eventType string, payload any) {
	event, err := events.New(eventType, payload)
	if err == nil {
		err = r.publisher.Publish(ctx, event)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to publish room event", "room.id", r.ID, "event.type", eventType, "error", err)
		trace.SpanFromContext(ctx).RecordError(err)
	}
}

func (r *Room) sendError(ctx context.Context, sub Subscriber, reason string) {
	msg := NewStateMessage(proto.TypeError, r.session.Snapshot())
	msg.Reason = reason
	if err := sub.Send(msg); err != nil {
		slog.WarnContext(ctx, "error writing message to subscriber", "subscriber.id", sub.ID(), "error", err)
	}
}
