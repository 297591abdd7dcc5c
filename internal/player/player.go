package player

import (
	"context"
	"ctchen222/Tic-Tac-Toe-Engine/pkg/proto"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

// Connection is an interface that abstracts the websocket connection.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (int, []byte, error)
	Close() error
}

// Player is a websocket client watching a room. It implements room.Subscriber.
type Player struct {
	id      string
	conn    Connection
	writeMu sync.Mutex
}

// NewPlayer wraps conn.
func NewPlayer(id string, conn Connection) *Player {
	return &Player{id: id, conn: conn}
}

// ID returns the player id.
func (p *Player) ID() string {
	return p.id
}

// Send writes msg as a JSON text frame. Writes are serialized.
func (p *Player) Send(msg *proto.ServerToClientMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal %s message: %w", msg.Type, err)
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return p.conn.WriteMessage(websocket.TextMessage, data)
}

// Close closes the underlying connection.
func (p *Player) Close() error {
	return p.conn.Close()
}

// ReadPump passes every text frame to handle until the connection fails or ctx is done.
func (p *Player) ReadPump(ctx context.Context, handle func(ctx context.Context, raw []byte)) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		msgType, data, err := p.conn.ReadMessage()
		if err != nil {
			return err
		}
		if msgType != websocket.TextMessage {
			continue
		}
		handle(ctx, data)
	}
}
