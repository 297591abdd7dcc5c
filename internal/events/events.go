package events

import (
	"encoding/json"
	"fmt"
)

// Pub/Sub channel constants
const (
	EventsChannel = "channel:events"
)

// Event types
const (
	TypeMoveApplied = "move_applied"
	TypeGameOver    = "game_over"
	TypeGameReset   = "game_reset"
)

// Event represents a global message published via Pub/Sub.
type Event struct {
	Type    string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// MoveAppliedPayload is the payload for the "move_applied" event.
type MoveAppliedPayload struct {
	RoomID string `json:"room_id"`
	Mark   string `json:"mark"`
	Move   int    `json:"move"`
	ByBot  bool   `json:"by_bot"`
	Board  string `json:"board"`
}

// GameOverPayload is the payload for the "game_over" event.
type GameOverPayload struct {
	RoomID  string `json:"room_id"`
	Outcome string `json:"outcome"`
	Winner  string `json:"winner,omitempty"`
	Board   string `json:"board"`
	Message string `json:"message"`
}

// GameResetPayload is the payload for the "game_reset" event.
type GameResetPayload struct {
	RoomID string `json:"room_id"`
	Games  int    `json:"games"`
}

// New wraps payload into an Event of the given type.
func New(eventType string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return Event{Type: eventType, Payload: raw}, nil
}
