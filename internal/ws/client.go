package ws

import (
	"time"

	"wordsearch_arena/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 50 * time.Second
	maxMessageSize = 8192
	sendBuffer     = 64
)

// Client owns one websocket connection of one player. The read pump feeds
// the room's event loop; the write pump is the only goroutine writing to the
// connection.
type Client struct {
	PlayerID string
	Username string

	conn *websocket.Conn
	room *Room
	send chan []byte
	done chan struct{}
}

func NewClient(playerID, username string, conn *websocket.Conn) *Client {
	return &Client{
		PlayerID: playerID,
		Username: username,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		done:     make(chan struct{}),
	}
}

// Run starts both pumps and blocks until the connection is gone.
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// enqueue hands a frame to the write pump without blocking the room loop.
func (c *Client) enqueue(data []byte) bool {
	select {
	case c.send <- data:
		return true
	case <-c.done:
		return false
	default:
		logger.Warn("client send buffer full, dropping connection", "player_id", c.PlayerID)
		c.conn.Close()
		return false
	}
}

func (c *Client) readPump() {
	defer func() {
		if c.room != nil {
			c.room.Leave(c)
		}
		close(c.done)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("websocket read error", "player_id", c.PlayerID, "error", err)
			}
			return
		}
		if c.room != nil {
			c.room.HandleIncoming(c, raw)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-c.done:
			return

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
