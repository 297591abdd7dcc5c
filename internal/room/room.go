package room

import (
	"context"
	"ctchen222/Tic-Tac-Toe-Engine/internal/events"
	"ctchen222/Tic-Tac-Toe-Engine/internal/session"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("room")

// Config holds the presentation delays of a room.
type Config struct {
	// EngineMoveDelay is the pause before the engine answers a human move.
	EngineMoveDelay time.Duration
	// ResetDelay is how long a finished game stays on screen before the board is cleared.
	ResetDelay time.Duration
}

// Room drives one session for its connected clients: it schedules the engine's reply
// and the automatic reset, and broadcasts every state change.
type Room struct {
	ID        string
	session   *session.Session
	publisher events.Publisher
	cfg       Config

	mu          sync.Mutex
	subscribers map[string]Subscriber
	engineTimer *time.Timer
	resetTimer  *time.Timer
	generation  uint64
	lastActive  time.Time
	closed      bool
}

// NewRoom creates a room around an existing session.
func NewRoom(id string, s *session.Session, publisher events.Publisher, cfg Config) *Room {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Room{
		ID:          id,
		session:     s,
		publisher:   publisher,
		cfg:         cfg,
		subscribers: make(map[string]Subscriber),
		lastActive:  time.Now(),
	}
}

// Start schedules the engine's opening move when the engine plays first.
func (r *Room) Start(ctx context.Context) {
	st := r.session.Snapshot()
	if st.EngineToMove() {
		r.scheduleEngineMove(ctx)
	}
	slog.InfoContext(ctx, "Room started", "room.id", r.ID, "human.mark", st.HumanMark, "next", st.CurrentTurn)
}

// State returns the current session state.
func (r *Room) State() session.State {
	return r.session.Snapshot()
}

// LastActive returns the time of the last client interaction.
func (r *Room) LastActive() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastActive
}

// Close stops pending timers and disconnects every subscriber.
func (r *Room) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.stopTimersLocked()
	subs := r.subscribers
	r.subscribers = make(map[string]Subscriber)
	r.mu.Unlock()

	for _, sub := range subs {
		if err := sub.Close(); err != nil {
			slog.Warn("Failed to close subscriber", "room.id", r.ID, "subscriber.id", sub.ID(), "error", err)
		}
	}
	slog.Info("Room closed", "room.id", r.ID)
}

func (r *Room) touch() {
	r.mu.Lock()
	r.lastActive = time.Now()
	r.mu.Unlock()
}

// scheduleEngineMove arms the engine timer for the current generation.
func (r *Room) scheduleEngineMove(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	gen := r.generation
	if r.engineTimer != nil {
		r.engineTimer.Stop()
	}
	r.engineTimer = time.AfterFunc(r.cfg.EngineMoveDelay, func() {
		r.playEngineMove(context.WithoutCancel(ctx), gen)
	})
}

// scheduleReset arms the reset timer for the current generation.
func (r *Room) scheduleReset(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	gen := r.generation
	if r.resetTimer != nil {
		r.resetTimer.Stop()
	}
	r.resetTimer = time.AfterFunc(r.cfg.ResetDelay, func() {
		if !r.isCurrent(gen) {
			return
		}
		r.Reset(context.WithoutCancel(ctx))
	})
}

func (r *Room) isCurrent(gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.closed && r.generation == gen
}

// nextGeneration invalidates every timer armed so far.
func (r *Room) nextGeneration() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generation++
	r.stopTimersLocked()
}

func (r *Room) stopTimersLocked() {
	if r.engineTimer != nil {
		r.engineTimer.Stop()
		r.engineTimer = nil
	}
	if r.resetTimer != nil {
		r.resetTimer.Stop()
		r.resetTimer = nil
	}
}
