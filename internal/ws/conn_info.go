package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type ConnInfo struct {
	ConnID      string
	UserID      int64
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}

// client pairs a connection with its metadata. gorilla connections allow a
// single concurrent writer, so writes go through mu.
type client struct {
	conn *websocket.Conn
	info ConnInfo
	mu   sync.Mutex
}

// writeWait bounds a single write so a client that stopped reading cannot
// stall the sender's request.
var writeWait = 5 * time.Second

func (c *client) write(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}
