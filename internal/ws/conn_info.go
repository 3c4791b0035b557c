package ws

import "time"

// ConnInfo identifies one websocket connection on a trip channel.
type ConnInfo struct {
	ConnID      string
	UserID      string
	UserName    string
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}
