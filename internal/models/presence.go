package models

import "time"

// PresenceRecord is the metadata a client publishes when it joins a trip
// channel. Records are ephemeral: they exist only while the connection that
// tracked them is open.
type PresenceRecord struct {
	UserID   string    `json:"user_id"`
	UserName string    `json:"user_name"`
	OnlineAt time.Time `json:"online_at"`
}

// PresenceState is a snapshot of a trip channel keyed by connection id. One
// logical user can hold several simultaneous connections, so a user's records
// may be spread across keys.
type PresenceState map[string][]PresenceRecord

// Online reports whether any record across any connection key belongs to the
// user. An existence scan over the nested structure is fine at the expected
// scale of single-digit collaborators per trip.
func (s PresenceState) Online(userID string) bool {
	for _, records := range s {
		for _, record := range records {
			if record.UserID == userID {
				return true
			}
		}
	}
	return false
}
