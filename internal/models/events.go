package models

// Trip channel event types. The set is closed: frames with any other type
// are dropped at the websocket boundary instead of being probed for fields.
const (
	EventMessage       = "message"
	EventPresenceState = "presence_state"
	EventPresenceJoin  = "presence_join"
	EventPresenceLeave = "presence_leave"
	EventTyping        = "typing"
	EventActivity      = "activity"
)

// TypingPayload is the ephemeral typing broadcast. It is never persisted;
// the hub expires stale entries on its own timer.
type TypingPayload struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	IsTyping bool   `json:"is_typing"`
}

// PresencePayload carries either a full state snapshot (sync) or the records
// of a single connection (join/leave).
type PresencePayload struct {
	Key     string           `json:"key,omitempty"`
	Records []PresenceRecord `json:"records,omitempty"`
	State   PresenceState    `json:"state,omitempty"`
}

// TripEvent is emitted over trip websocket connections. Exactly one of the
// optional fields is set, matching Type.
type TripEvent struct {
	Type     string           `json:"type"`
	Message  *ChatMessage     `json:"message,omitempty"`
	Presence *PresencePayload `json:"presence,omitempty"`
	Typing   *TypingPayload   `json:"typing,omitempty"`
	Activity *Activity        `json:"activity,omitempty"`
}
