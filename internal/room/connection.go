package room

import (
	"context"
	"ctchen222/Tic-Tac-Toe-Engine/pkg/proto"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Subscriber receives the room's state messages, typically over a websocket.
type Subscriber interface {
	ID() string
	Send(msg *proto.ServerToClientMessage) error
	Close() error
}

// Subscribe adds sub to the room and sends it the current state.
func (r *Room) Subscribe(sub Subscriber) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		_ = sub.Close()
		return
	}
	r.subscribers[sub.ID()] = sub
	r.lastActive = time.Now()
	r.mu.Unlock()

	if err := sub.Send(NewStateMessage(proto.TypeUpdate, r.session.Snapshot())); err != nil {
		slog.Warn("error sending initial state to subscriber", "room.id", r.ID, "subscriber.id", sub.ID(), "error", err)
	}
}

// Unsubscribe removes the subscriber with the given id.
func (r *Room) Unsubscribe(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.subscribers, id)
}

// Broadcast sends a message to all subscribers of the room.
func (r *Room) Broadcast(ctx context.Context, message *proto.ServerToClientMessage) {
	_, span := tracer.Start(ctx, "room.Broadcast", trace.WithAttributes(
		attribute.String("room.id", r.ID),
		attribute.String("message.type", message.Type),
	))
	defer span.End()

	r.mu.Lock()
	subs := make([]Subscriber, 0, len(r.subscribers))
	for _, sub := range r.subscribers {
		subs = append(subs, sub)
	}
	r.mu.Unlock()

	for _, sub := range subs {
		if err := sub.Send(message); err != nil {
			slog.ErrorContext(ctx, "error writing message to subscriber", "subscriber.id", sub.ID(), "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Error writing message to subscriber")
		}
	}
}
