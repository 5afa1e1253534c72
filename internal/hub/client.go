package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/groupchat/groupchat/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 32 * 1024
	sendBuffer     = 16
)

// Client is one WebSocket connection attached to the hub. Frames it sends
// are interpreted as Events; everything else is ignored.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID string

	closeOnce sync.Once
}

// NewClient wires a connection into the hub and starts its read and write
// pumps. userID is only used for logging; the hub does not authorize rooms.
func NewClient(h *Hub, conn *websocket.Conn, userID string) *Client {
	c := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		userID: userID,
	}
	h.register <- c
	go c.writePump()
	go c.readPump()
	return c
}

func (c *Client) closeSend() {
	c.closeOnce.Do(func() { close(c.send) })
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
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
				logger.Debugf("hub: read error (user=%s): %v", c.userID, err)
			}
			return
		}
		c.handleFrame(raw)
	}
}

func (c *Client) handleFrame(raw []byte) {
	var ev Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		logger.Debugf("hub: dropping malformed frame (user=%s): %v", c.userID, err)
		return
	}
	switch ev.Event {
	case EventJoinRoom:
		if ev.Room != "" {
			c.hub.join <- joinRequest{client: c, room: ev.Room}
		}
	case EventGroupMessage:
		var p groupMessagePayload
		if err := json.Unmarshal(ev.Data, &p); err != nil || p.GroupID == "" {
			logger.Debugf("hub: groupMessage without groupId (user=%s)", c.userID)
			return
		}
		c.hub.Broadcast(p.GroupID, raw)
	default:
		// Unknown events are ignored rather than closing the connection.
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
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
