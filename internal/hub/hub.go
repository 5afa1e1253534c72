package hub

import (
	"context"

	"github.com/groupchat/groupchat/pkg/logger"
	"github.com/groupchat/groupchat/pkg/metrics"
)

type joinRequest struct {
	client *Client
	room   string
}

type roomMessage struct {
	room    string
	payload []byte
}

// Hub routes frames between WebSocket clients grouped into rooms. A single
// dispatch goroutine owns the room table, so per-room delivery order matches
// submission order and no locking is needed.
//
// Rooms are created when the first client joins and torn down when the last
// member disconnects. The hub does not check group membership; callers gate
// access before handing a connection over.
type Hub struct {
	rooms      map[string]map[*Client]bool
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	join       chan joinRequest
	broadcast  chan roomMessage
}

func New() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		join:       make(chan joinRequest),
		broadcast:  make(chan roomMessage, 64),
	}
}

// Run dispatches until ctx is cancelled. It must run in its own goroutine
// before any client connects.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case c := <-h.register:
			h.clients[c] = true
			metrics.HubConnections.Inc()
			logger.Debugf("hub: client connected (user=%s)", c.userID)
		case c := <-h.unregister:
			h.dropClient(c)
		case req := <-h.join:
			h.addToRoom(req.client, req.room)
		case msg := <-h.broadcast:
			h.fanOut(msg.room, msg.payload)
		}
	}
}

// Broadcast queues payload for delivery to every member of room, including
// the sender if it is a member.
func (h *Hub) Broadcast(room string, payload []byte) {
	h.broadcast <- roomMessage{room: room, payload: payload}
}

func (h *Hub) addToRoom(c *Client, room string) {
	if room == "" {
		return
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]bool)
		h.rooms[room] = members
	}
	members[c] = true
	logger.Debugf("hub: user=%s joined room=%s (members=%d)", c.userID, room, len(members))
}

// dropClient is idempotent: a slow consumer dropped during fan-out will be
// reported again by its read pump once the connection dies.
func (h *Hub) dropClient(c *Client) {
	if !h.clients[c] {
		return
	}
	delete(h.clients, c)
	for room, members := range h.rooms {
		if members[c] {
			delete(members, c)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	c.closeSend()
	metrics.HubConnections.Dec()
	logger.Debugf("hub: client disconnected (user=%s)", c.userID)
}

func (h *Hub) fanOut(room string, payload []byte) {
	members := h.rooms[room]
	if len(members) == 0 {
		return
	}
	metrics.HubBroadcasts.WithLabelValues(room).Inc()
	for c := range members {
		select {
		case c.send <- payload:
		default:
			// Slow consumer: drop it rather than stall the room.
			h.dropClient(c)
		}
	}
}

func (h *Hub) closeAll() {
	for c := range h.clients {
		c.closeSend()
	}
	h.clients = make(map[*Client]bool)
	h.rooms = make(map[string]map[*Client]bool)
}
