package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"drift-board/internal/models"
	"drift-board/internal/observability"
)

// Hub maintains one room per trip. A room carries the three facets of the
// trip channel: chat/activity fanout, presence records keyed by connection
// id, and the authoritative typing set.
type Hub struct {
	mu        sync.RWMutex
	rooms     map[int]*room
	typingTTL time.Duration
	writeWait time.Duration
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		rooms:     make(map[int]*room),
		typingTTL: typingTTL,
		writeWait: writeWait,
	}
}

// writeWait bounds every hub-side websocket write. A stalled client trips
// the deadline and is evicted instead of holding the room lock.
const writeWait = 10 * time.Second

type room struct {
	mu        sync.Mutex
	conns     map[*websocket.Conn]ConnInfo
	presence  map[string]models.PresenceRecord
	typing    *typingTracker
	writeWait time.Duration
}

type evictedConn struct {
	info   ConnInfo
	reason error
}

// AddClient registers a connection on a trip room, tracks its presence
// record, pushes the full presence snapshot to the new connection and a join
// event to its peers.
func (h *Hub) AddClient(tripID int, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	r, ok := h.rooms[tripID]
	if !ok {
		r = &room{
			conns:     make(map[*websocket.Conn]ConnInfo),
			presence:  make(map[string]models.PresenceRecord),
			writeWait: h.writeWait,
		}
		r.typing = newTypingTracker(h.typingTTL, func(userID string) {
			h.typingExpired(tripID, userID)
		})
		h.rooms[tripID] = r
	}
	// take r.mu before releasing h.mu: teardown deletes the room from
	// h.rooms under both locks, so releasing h.mu first would let this
	// connection register into a room that is no longer reachable
	r.mu.Lock()
	h.mu.Unlock()

	record := models.PresenceRecord{
		UserID:   info.UserID,
		UserName: info.UserName,
		OnlineAt: info.ConnectedAt,
	}

	r.conns[conn] = info
	r.presence[info.ConnID] = record

	snapshot := &models.TripEvent{
		Type:     models.EventPresenceState,
		Presence: &models.PresencePayload{State: r.stateLocked()},
	}
	if payload, err := json.Marshal(snapshot); err == nil {
		conn.SetWriteDeadline(time.Now().Add(r.writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("websocket write error: %v", err)
		}
	}

	join := &models.TripEvent{
		Type: models.EventPresenceJoin,
		Presence: &models.PresencePayload{
			Key:     info.ConnID,
			Records: []models.PresenceRecord{record},
		},
	}
	evicted := r.broadcastLocked(join, conn, "")
	r.mu.Unlock()

	h.reportEvicted(tripID, evicted)
}

// RemoveClient removes a connection from a trip room and emits a presence
// leave event. The last connection of a user also clears their typing
// indicator; the last connection of the room tears the room down, so no
// callback can fire into it afterwards.
func (h *Hub) RemoveClient(tripID int, conn *websocket.Conn) {
	h.mu.Lock()
	r, ok := h.rooms[tripID]
	if !ok {
		h.mu.Unlock()
		return
	}

	r.mu.Lock()
	info, present := r.conns[conn]
	if !present {
		r.mu.Unlock()
		h.mu.Unlock()
		return
	}
	delete(r.conns, conn)
	record := r.presence[info.ConnID]
	delete(r.presence, info.ConnID)

	if len(r.conns) == 0 {
		delete(h.rooms, tripID)
		r.mu.Unlock()
		h.mu.Unlock()
		r.typing.stopAll()
		return
	}
	h.mu.Unlock()

	var evicted []evictedConn

	stillConnected := false
	for _, other := range r.conns {
		if other.UserID == info.UserID {
			stillConnected = true
			break
		}
	}
	if !stillConnected && r.typing.stop(info.UserID) {
		stopped := &models.TripEvent{
			Type: models.EventTyping,
			Typing: &models.TypingPayload{
				UserID:   info.UserID,
				UserName: info.UserName,
				IsTyping: false,
			},
		}
		evicted = append(evicted, r.broadcastLocked(stopped, nil, info.UserID)...)
	}

	leave := &models.TripEvent{
		Type: models.EventPresenceLeave,
		Presence: &models.PresencePayload{
			Key:     info.ConnID,
			Records: []models.PresenceRecord{record},
		},
	}
	evicted = append(evicted, r.broadcastLocked(leave, nil, "")...)
	r.mu.Unlock()

	h.reportEvicted(tripID, evicted)
}

// HandleTyping applies a typing broadcast to the room's typing set and
// relays it to every connection of every other user. The sender's own
// connections never see it.
func (h *Hub) HandleTyping(tripID int, payload models.TypingPayload) {
	if payload.UserID == "" {
		return
	}

	h.mu.RLock()
	r, ok := h.rooms[tripID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	r.mu.Lock()
	if payload.IsTyping {
		r.typing.start(payload.UserID)
	} else {
		r.typing.stop(payload.UserID)
	}
	event := &models.TripEvent{Type: models.EventTyping, Typing: &payload}
	evicted := r.broadcastLocked(event, nil, payload.UserID)
	r.mu.Unlock()

	h.reportEvicted(tripID, evicted)
	observability.IncWSEvent("trip", "typing")
}

// BroadcastMessage sends a chat message to all connections in a trip room.
func (h *Hub) BroadcastMessage(tripID int, msg models.ChatMessage) {
	h.broadcast(tripID, &models.TripEvent{Type: models.EventMessage, Message: &msg})
	observability.IncWSEvent("trip", "message")
}

// BroadcastActivity sends an activity log entry to all connections in a trip
// room.
func (h *Hub) BroadcastActivity(tripID int, activity models.Activity) {
	h.broadcast(tripID, &models.TripEvent{Type: models.EventActivity, Activity: &activity})
	observability.IncWSEvent("trip", "activity")
}

// Snapshot returns the current presence state of a trip room, keyed by
// connection id. Rooms with no connections yield an empty snapshot.
func (h *Hub) Snapshot(tripID int) models.PresenceState {
	h.mu.RLock()
	r, ok := h.rooms[tripID]
	h.mu.RUnlock()
	if !ok {
		return models.PresenceState{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stateLocked()
}

// TypingUsers returns the user ids currently typing in a trip room.
func (h *Hub) TypingUsers(tripID int) []string {
	h.mu.RLock()
	r, ok := h.rooms[tripID]
	h.mu.RUnlock()
	if !ok {
		return nil
	}
	return r.typing.active()
}

func (h *Hub) broadcast(tripID int, event *models.TripEvent) {
	h.mu.RLock()
	r, ok := h.rooms[tripID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	r.mu.Lock()
	evicted := r.broadcastLocked(event, nil, "")
	r.mu.Unlock()

	h.reportEvicted(tripID, evicted)
}

// typingExpired runs on the tracker's timer goroutine when a typing entry
// hits its TTL without a stop event. Peers get a synthetic stopped event so
// every client converges.
func (h *Hub) typingExpired(tripID int, userID string) {
	h.mu.RLock()
	r, ok := h.rooms[tripID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	stopped := &models.TripEvent{
		Type:   models.EventTyping,
		Typing: &models.TypingPayload{UserID: userID, IsTyping: false},
	}

	r.mu.Lock()
	evicted := r.broadcastLocked(stopped, nil, userID)
	r.mu.Unlock()

	h.reportEvicted(tripID, evicted)
	observability.IncWSEvent("trip", "typing_expired")
}

// stateLocked clones the room's presence records into the vendor-shaped
// snapshot. Callers hold r.mu.
func (r *room) stateLocked() models.PresenceState {
	state := make(models.PresenceState, len(r.presence))
	for connID, record := range r.presence {
		state[connID] = append(state[connID], record)
	}
	return state
}

// broadcastLocked writes an event to every connection in the room, skipping
// the given connection and every connection of the given user id. Failed
// connections are closed and dropped from the room. Callers hold r.mu.
func (r *room) broadcastLocked(event *models.TripEvent, skip *websocket.Conn, skipUserID string) []evictedConn {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("marshal trip event: %v", err)
		return nil
	}

	var evicted []evictedConn
	for conn, info := range r.conns {
		if conn == skip {
			continue
		}
		if skipUserID != "" && info.UserID == skipUserID {
			continue
		}
		conn.SetWriteDeadline(time.Now().Add(r.writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("websocket write error: %v", err)
			conn.Close()
			delete(r.conns, conn)
			delete(r.presence, info.ConnID)
			evicted = append(evicted, evictedConn{info: info, reason: err})
		}
	}
	return evicted
}

func (h *Hub) reportEvicted(tripID int, evicted []evictedConn) {
	for _, e := range evicted {
		observability.DecWSActive("trip")
		observability.IncWSEvent("trip", "ws_error")
		headers := observability.BuildHeaders(e.info.RequestID, e.info.TraceID)
		_ = observability.PublishEvent(context.Background(), "ws_events.trips", observability.EventEnvelope{
			EventType: "ws_events",
			EventName: "ws_error",
			Payload:   wsEventPayload(tripID, "ws_error", e.info, e.reason.Error()),
		}, headers)
	}
}

// wsEventPayload builds the event-bus payload for connection lifecycle
// events.
func wsEventPayload(tripID int, event string, info ConnInfo, reason string) map[string]interface{} {
	return map[string]interface{}{
		"ws": map[string]interface{}{
			"kind":        "trip",
			"resource_id": tripID,
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}
}
