// Package ws is the event transport: one gorilla/websocket connection per
// client, a hub that tracks space membership, and a controller that
// dispatches inbound events to the coordinator.
package ws

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"
)

var ErrBackpressure = errors.New("backpressure")

// Conn wraps a websocket with a buffered outbound queue. TrySend never
// blocks: a full queue surfaces as ErrBackpressure and the frame is
// dropped for this connection only.
type Conn struct {
	sock *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func newConn(sock *websocket.Conn) *Conn {
	return &Conn{
		sock: sock,
		send: make(chan []byte, 64),
	}
}

func (c *Conn) TrySend(frame []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- frame:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *Conn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.sock.Close()
	c.mu.Unlock()
}
