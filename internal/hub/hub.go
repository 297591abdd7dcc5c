package hub

import (
	"context"
	"ctchen222/Tic-Tac-Toe-Engine/internal/events"
	"ctchen222/Tic-Tac-Toe-Engine/internal/room"
	"ctchen222/Tic-Tac-Toe-Engine/internal/session"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("hub")

const defaultCleanupInterval = time.Minute

// Config controls room timing and cleanup.
type Config struct {
	Room room.Config
	// IdleTimeout closes rooms without client activity for this long. Zero disables cleanup.
	IdleTimeout time.Duration
	// CleanupInterval is how often idle rooms are looked for.
	CleanupInterval time.Duration
}

// Hub manages all the rooms.
type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*room.Room
	calculator session.MoveCalculator
	publisher  events.Publisher
	cfg        Config
}

// NewHub creates a new hub. Every room shares the same move calculator.
func NewHub(calculator session.MoveCalculator, publisher events.Publisher, cfg Config) *Hub {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = defaultCleanupInterval
	}
	return &Hub{
		rooms:      make(map[string]*room.Room),
		calculator: calculator,
		publisher:  publisher,
		cfg:        cfg,
	}
}

// CreateRoom starts a new game against the engine and registers its room.
func (h *Hub) CreateRoom(ctx context.Context, opts session.Options) *room.Room {
	roomID := uuid.New().String()
	ctx, span := tracer.Start(ctx, "hub.CreateRoom", trace.WithAttributes(
		attribute.String("room.id", roomID),
		attribute.String("room.first", string(opts.FirstPlayer)),
	))
	defer span.End()

	s := session.New(roomID, h.calculator, opts)
	newRoom := room.NewRoom(roomID, s, h.publisher, h.cfg.Room)

	h.mu.Lock()
	h.rooms[roomID] = newRoom
	h.mu.Unlock()

	newRoom.Start(ctx)
	slog.InfoContext(ctx, "Room created", "room.id", roomID)
	return newRoom
}

// Room looks up a room by id.
func (h *Hub) Room(id string) (*room.Room, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	r, ok := h.rooms[id]
	return r, ok
}

// RemoveRoom closes and unregisters a room. It reports whether the room existed.
func (h *Hub) RemoveRoom(id string) bool {
	h.mu.Lock()
	r, ok := h.rooms[id]
	delete(h.rooms, id)
	h.mu.Unlock()

	if ok {
		r.Close()
	}
	return ok
}

// Len returns the number of open rooms.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// Close closes every room.
func (h *Hub) Close() {
	h.mu.Lock()
	rooms := h.rooms
	h.rooms = make(map[string]*room.Room)
	h.mu.Unlock()

	for _, r := range rooms {
		r.Close()
	}
}
