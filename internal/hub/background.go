package hub

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

// Run closes idle rooms until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	if h.cfg.IdleTimeout <= 0 {
		slog.InfoContext(ctx, "Room cleanup disabled")
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(h.cfg.CleanupInterval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "Room cleanup started", "idle.timeout", h.cfg.IdleTimeout, "interval", h.cfg.CleanupInterval)
	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Room cleanup stopped")
			return
		case now := <-ticker.C:
			h.closeIdleRooms(ctx, now)
		}
	}
}

// closeIdleRooms removes rooms whose last activity is older than the idle timeout.
func (h *Hub) closeIdleRooms(ctx context.Context, now time.Time) int {
	ctx, span := tracer.Start(ctx, "hub.closeIdleRooms")
	defer span.End()

	h.mu.RLock()
	var idle []string
	for id, r := range h.rooms {
		if now.Sub(r.LastActive()) > h.cfg.IdleTimeout {
			idle = append(idle, id)
		}
	}
	h.mu.RUnlock()

	closed := 0
	for _, id := range idle {
		if h.RemoveRoom(id) {
			closed++
			slog.InfoContext(ctx, "Closed idle room", "room.id", id)
		}
	}
	span.SetAttributes(attribute.Int("rooms.closed", closed))
	return closed
}
