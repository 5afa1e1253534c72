package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	h := New()
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)

	up := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		require.NoError(t, err)
		NewClient(h, conn, r.URL.Query().Get("user"))
	}))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return h, srv
}

func dial(t *testing.T, srv *httptest.Server, user string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?user=" + user
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func joinRoom(t *testing.T, conn *websocket.Conn, room string) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(Event{Event: EventJoinRoom, Room: room}))
}

func sendGroupMessage(t *testing.T, conn *websocket.Conn, groupID, text string) {
	t.Helper()
	data, err := json.Marshal(map[string]string{"groupId": groupID, "message": text})
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(Event{Event: EventGroupMessage, Data: data}))
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func expectSilence(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	var ev Event
	err := conn.ReadJSON(&ev)
	require.Error(t, err, "expected no frame, got %+v", ev)
}

func TestRoomFanOutIncludesSender(t *testing.T) {
	_, srv := newTestServer(t)

	a := dial(t, srv, "a")
	b := dial(t, srv, "b")
	joinRoom(t, a, "g1")
	joinRoom(t, b, "g1")
	time.Sleep(50 * time.Millisecond)

	sendGroupMessage(t, a, "g1", "hello")

	for _, conn := range []*websocket.Conn{a, b} {
		ev := readEvent(t, conn)
		require.Equal(t, EventGroupMessage, ev.Event)
		var p struct {
			GroupID string `json:"groupId"`
			Message string `json:"message"`
		}
		require.NoError(t, json.Unmarshal(ev.Data, &p))
		require.Equal(t, "g1", p.GroupID)
		require.Equal(t, "hello", p.Message)
	}
}

func TestRoomIsolation(t *testing.T) {
	_, srv := newTestServer(t)

	a := dial(t, srv, "a")
	c := dial(t, srv, "c")
	joinRoom(t, a, "g1")
	joinRoom(t, c, "g2")
	time.Sleep(50 * time.Millisecond)

	sendGroupMessage(t, a, "g1", "private")

	require.Equal(t, EventGroupMessage, readEvent(t, a).Event)
	expectSilence(t, c)
}

func TestPerRoomOrdering(t *testing.T) {
	_, srv := newTestServer(t)

	a := dial(t, srv, "a")
	b := dial(t, srv, "b")
	joinRoom(t, a, "g1")
	joinRoom(t, b, "g1")
	time.Sleep(50 * time.Millisecond)

	const n = 10
	for i := 0; i < n; i++ {
		sendGroupMessage(t, a, "g1", fmt.Sprintf("m-%d", i))
	}
	for i := 0; i < n; i++ {
		ev := readEvent(t, b)
		var p struct {
			Message string `json:"message"`
		}
		require.NoError(t, json.Unmarshal(ev.Data, &p))
		require.Equal(t, fmt.Sprintf("m-%d", i), p.Message)
	}
}

func TestMalformedFramesIgnored(t *testing.T) {
	_, srv := newTestServer(t)

	a := dial(t, srv, "a")
	joinRoom(t, a, "g1")
	time.Sleep(50 * time.Millisecond)

	// junk and incomplete frames must not kill the connection
	require.NoError(t, a.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, a.WriteJSON(Event{Event: EventGroupMessage}))
	require.NoError(t, a.WriteJSON(Event{Event: "unknown"}))

	sendGroupMessage(t, a, "g1", "still alive")
	ev := readEvent(t, a)
	require.Equal(t, EventGroupMessage, ev.Event)
}

func TestDisconnectLeavesRooms(t *testing.T) {
	_, srv := newTestServer(t)

	a := dial(t, srv, "a")
	b := dial(t, srv, "b")
	joinRoom(t, a, "g1")
	joinRoom(t, b, "g1")
	time.Sleep(50 * time.Millisecond)

	b.Close()
	time.Sleep(50 * time.Millisecond)

	// the surviving member still gets messages
	sendGroupMessage(t, a, "g1", "after leave")
	ev := readEvent(t, a)
	require.Equal(t, EventGroupMessage, ev.Event)
}
