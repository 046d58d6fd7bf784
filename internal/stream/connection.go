package stream

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = 30 * time.Second
	sendBufferSize = 64
)

// Connection is one WebSocket client with its symbol subscriptions
type Connection struct {
	ID     string
	UserID string

	conn          *websocket.Conn
	send          chan []byte
	subscriptions map[string]bool
	mu            sync.RWMutex
	closeOnce     sync.Once
}

// NewConnection wraps an upgraded WebSocket connection
func NewConnection(id, userID string, conn *websocket.Conn) *Connection {
	return &Connection{
		ID:            id,
		UserID:        userID,
		conn:          conn,
		send:          make(chan []byte, sendBufferSize),
		subscriptions: make(map[string]bool),
	}
}

// Subscribe adds a symbol subscription
func (c *Connection) Subscribe(symbol string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscriptions[symbol] = true
}

// Unsubscribe removes a symbol subscription
func (c *Connection) Unsubscribe(symbol string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subscriptions, symbol)
}

// IsSubscribed reports whether the connection wants updates for a symbol
func (c *Connection) IsSubscribed(symbol string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.subscriptions[symbol]
}

// Symbols returns the subscribed symbols
func (c *Connection) Symbols() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.subscriptions))
	for s := range c.subscriptions {
		out = append(out, s)
	}
	return out
}

// Enqueue queues a frame for delivery. Returns false when the send
// buffer is full; slow consumers drop frames rather than stall the hub.
func (c *Connection) Enqueue(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// Close closes the connection once
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		close(c.send)
		c.conn.Close()
	})
}
