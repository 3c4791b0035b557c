package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"drift-board/internal/models"
)

type connPair struct {
	server *websocket.Conn
	client *websocket.Conn
}

func dialPair(t *testing.T) connPair {
	t.Helper()

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	serverCh := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		serverCh <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	server := <-serverCh
	t.Cleanup(func() { server.Close() })
	return connPair{server: server, client: client}
}

func readEvent(t *testing.T, conn *websocket.Conn) models.TripEvent {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var event models.TripEvent
	require.NoError(t, json.Unmarshal(payload, &event))
	return event
}

func expectNoEvent(t *testing.T, conn *websocket.Conn) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(150*time.Millisecond)))
	_, payload, err := conn.ReadMessage()
	require.Error(t, err, "unexpected event: %s", payload)
}

func connInfo(connID, userID, userName string) ConnInfo {
	return ConnInfo{
		ConnID:      connID,
		UserID:      userID,
		UserName:    userName,
		ConnectedAt: time.Now(),
	}
}

func TestAddClientSendsSnapshotAndJoin(t *testing.T) {
	hub := NewHub()
	a := dialPair(t)
	b := dialPair(t)

	hub.AddClient(7, a.server, connInfo("conn-a", "u1", "Ada"))

	snapshot := readEvent(t, a.client)
	require.Equal(t, models.EventPresenceState, snapshot.Type)
	require.True(t, snapshot.Presence.State.Online("u1"))

	hub.AddClient(7, b.server, connInfo("conn-b", "u2", "Ben"))

	snapshot = readEvent(t, b.client)
	require.Equal(t, models.EventPresenceState, snapshot.Type)
	require.True(t, snapshot.Presence.State.Online("u1"))
	require.True(t, snapshot.Presence.State.Online("u2"))

	join := readEvent(t, a.client)
	require.Equal(t, models.EventPresenceJoin, join.Type)
	require.Equal(t, "conn-b", join.Presence.Key)
	require.Len(t, join.Presence.Records, 1)
	require.Equal(t, "u2", join.Presence.Records[0].UserID)
}

func TestRemoveClientBroadcastsLeave(t *testing.T) {
	hub := NewHub()
	a := dialPair(t)
	b := dialPair(t)

	hub.AddClient(7, a.server, connInfo("conn-a", "u1", "Ada"))
	hub.AddClient(7, b.server, connInfo("conn-b", "u2", "Ben"))
	readEvent(t, a.client) // snapshot
	readEvent(t, a.client) // join
	readEvent(t, b.client) // snapshot

	hub.RemoveClient(7, b.server)

	leave := readEvent(t, a.client)
	require.Equal(t, models.EventPresenceLeave, leave.Type)
	require.Equal(t, "conn-b", leave.Presence.Key)
	require.False(t, hub.Snapshot(7).Online("u2"))
	require.True(t, hub.Snapshot(7).Online("u1"))
}

func TestNoEventsAfterRoomTeardown(t *testing.T) {
	hub := NewHub()
	a := dialPair(t)

	hub.AddClient(7, a.server, connInfo("conn-a", "u1", "Ada"))
	readEvent(t, a.client) // snapshot

	hub.RemoveClient(7, a.server)
	require.Empty(t, hub.Snapshot(7))

	hub.BroadcastMessage(7, models.ChatMessage{TripID: 7, Content: "late"})
	hub.HandleTyping(7, models.TypingPayload{UserID: "u1", IsTyping: true})
	hub.BroadcastActivity(7, models.Activity{TripID: 7, Content: "late"})

	expectNoEvent(t, a.client)
	require.Empty(t, hub.TypingUsers(7))
}

func TestTypingRelaySkipsSender(t *testing.T) {
	hub := NewHub()
	a := dialPair(t)
	b := dialPair(t)

	hub.AddClient(7, a.server, connInfo("conn-a", "u1", "Ada"))
	hub.AddClient(7, b.server, connInfo("conn-b", "u2", "Ben"))
	readEvent(t, a.client)
	readEvent(t, a.client)
	readEvent(t, b.client)

	hub.HandleTyping(7, models.TypingPayload{UserID: "u1", UserName: "Ada", IsTyping: true})

	typing := readEvent(t, b.client)
	require.Equal(t, models.EventTyping, typing.Type)
	require.Equal(t, "u1", typing.Typing.UserID)
	require.True(t, typing.Typing.IsTyping)
	require.Equal(t, []string{"u1"}, hub.TypingUsers(7))

	expectNoEvent(t, a.client)

	hub.HandleTyping(7, models.TypingPayload{UserID: "u1", UserName: "Ada", IsTyping: false})

	stopped := readEvent(t, b.client)
	require.Equal(t, models.EventTyping, stopped.Type)
	require.False(t, stopped.Typing.IsTyping)
	require.Empty(t, hub.TypingUsers(7))
}

func TestTypingExpiryBroadcastsStop(t *testing.T) {
	hub := NewHub()
	hub.typingTTL = 50 * time.Millisecond
	a := dialPair(t)
	b := dialPair(t)

	hub.AddClient(7, a.server, connInfo("conn-a", "u1", "Ada"))
	hub.AddClient(7, b.server, connInfo("conn-b", "u2", "Ben"))
	readEvent(t, a.client)
	readEvent(t, a.client)
	readEvent(t, b.client)

	hub.HandleTyping(7, models.TypingPayload{UserID: "u1", UserName: "Ada", IsTyping: true})

	typing := readEvent(t, b.client)
	require.True(t, typing.Typing.IsTyping)

	stopped := readEvent(t, b.client)
	require.Equal(t, models.EventTyping, stopped.Type)
	require.Equal(t, "u1", stopped.Typing.UserID)
	require.False(t, stopped.Typing.IsTyping)
	require.Empty(t, hub.TypingUsers(7))
}

func TestRemoveLastUserConnClearsTyping(t *testing.T) {
	hub := NewHub()
	a := dialPair(t)
	b := dialPair(t)

	hub.AddClient(7, a.server, connInfo("conn-a", "u1", "Ada"))
	hub.AddClient(7, b.server, connInfo("conn-b", "u2", "Ben"))
	readEvent(t, a.client)
	readEvent(t, a.client)
	readEvent(t, b.client)

	hub.HandleTyping(7, models.TypingPayload{UserID: "u2", UserName: "Ben", IsTyping: true})
	typing := readEvent(t, a.client)
	require.True(t, typing.Typing.IsTyping)

	hub.RemoveClient(7, b.server)

	stopped := readEvent(t, a.client)
	require.Equal(t, models.EventTyping, stopped.Type)
	require.Equal(t, "u2", stopped.Typing.UserID)
	require.False(t, stopped.Typing.IsTyping)

	leave := readEvent(t, a.client)
	require.Equal(t, models.EventPresenceLeave, leave.Type)
	require.Empty(t, hub.TypingUsers(7))
}

func TestBroadcastMessageReachesAllMembers(t *testing.T) {
	hub := NewHub()
	a := dialPair(t)
	b := dialPair(t)

	hub.AddClient(7, a.server, connInfo("conn-a", "u1", "Ada"))
	hub.AddClient(7, b.server, connInfo("conn-b", "u2", "Ben"))
	readEvent(t, a.client)
	readEvent(t, a.client)
	readEvent(t, b.client)

	hub.BroadcastMessage(7, models.ChatMessage{ID: 3, TripID: 7, UserID: "u1", Role: models.RoleUser, Content: "hello"})

	for _, client := range []*websocket.Conn{a.client, b.client} {
		event := readEvent(t, client)
		require.Equal(t, models.EventMessage, event.Type)
		require.Equal(t, "hello", event.Message.Content)
	}
}

func TestAddClientDuringRoomTeardown(t *testing.T) {
	hub := NewHub()

	for i := 0; i < 40; i++ {
		a := dialPair(t)
		b := dialPair(t)

		hub.AddClient(1, a.server, connInfo("conn-a", "u1", "Ada"))
		readEvent(t, a.client) // snapshot

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			hub.RemoveClient(1, a.server)
		}()
		go func() {
			defer wg.Done()
			hub.AddClient(1, b.server, connInfo("conn-b", "u2", "Ben"))
		}()
		wg.Wait()

		// however the removal interleaves with the add, the new connection
		// must land in the room the hub serves
		require.True(t, hub.Snapshot(1).Online("u2"))

		hub.BroadcastMessage(1, models.ChatMessage{TripID: 1, UserID: "u1", Content: "ping"})
		for {
			event := readEvent(t, b.client)
			if event.Type == models.EventMessage {
				require.Equal(t, "ping", event.Message.Content)
				break
			}
		}

		hub.RemoveClient(1, b.server)
	}
}

func TestBroadcastEvictsStalledWriter(t *testing.T) {
	hub := NewHub()
	hub.writeWait = 100 * time.Millisecond
	a := dialPair(t)
	b := dialPair(t)

	hub.AddClient(7, a.server, connInfo("conn-a", "u1", "Ada"))
	hub.AddClient(7, b.server, connInfo("conn-b", "u2", "Ben"))
	readEvent(t, a.client)
	readEvent(t, a.client)
	readEvent(t, b.client)

	// keep a draining so only b's socket backs up
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			a.client.SetReadDeadline(time.Now().Add(5 * time.Second))
			if _, _, err := a.client.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// b stops reading; once its buffers fill, the write deadline trips and
	// the hub drops it instead of blocking the room
	payload := strings.Repeat("x", 256*1024)
	for i := 0; i < 64 && hub.Snapshot(7).Online("u2"); i++ {
		hub.BroadcastMessage(7, models.ChatMessage{TripID: 7, UserID: "u1", Content: payload})
	}

	require.False(t, hub.Snapshot(7).Online("u2"))
	require.True(t, hub.Snapshot(7).Online("u1"))

	a.client.Close()
	<-done
}

func TestRoomsAreIsolated(t *testing.T) {
	hub := NewHub()
	a := dialPair(t)
	b := dialPair(t)

	hub.AddClient(7, a.server, connInfo("conn-a", "u1", "Ada"))
	hub.AddClient(8, b.server, connInfo("conn-b", "u2", "Ben"))
	readEvent(t, a.client)
	readEvent(t, b.client)

	hub.BroadcastMessage(8, models.ChatMessage{TripID: 8, Content: "other room"})

	event := readEvent(t, b.client)
	require.Equal(t, models.EventMessage, event.Type)
	expectNoEvent(t, a.client)
}
