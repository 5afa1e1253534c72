package hub

import "encoding/json"

// Event names accepted from or emitted to WebSocket clients.
const (
	EventJoinRoom     = "joinRoom"
	EventGroupMessage = "groupMessage"
)

// Event is the wire frame exchanged with clients. Room carries the target
// room for joinRoom; Data carries the payload for groupMessage. A
// groupMessage payload must contain a groupId field naming the room to fan
// out to.
type Event struct {
	Event string          `json:"event"`
	Room  string          `json:"room,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// groupMessagePayload is the subset of a groupMessage payload the hub needs
// to route it.
type groupMessagePayload struct {
	GroupID string `json:"groupId"`
}
