package models

import "time"

// Activity types shown in the trip activity feed.
const (
	ActivityMessage   = "message"
	ActivityBookmark  = "bookmark"
	ActivityItinerary = "itinerary"
	ActivityJoin      = "join"
)

// Activity is one entry of a trip's append-only activity log. The log is
// server-authoritative and shared between collaborators: every append is
// persisted and broadcast on the trip channel.
type Activity struct {
	ID        int       `db:"id" json:"id"`
	TripID    int       `db:"trip_id" json:"trip_id"`
	Type      string    `db:"type" json:"type"`
	UserID    string    `db:"user_id" json:"user_id"`
	UserName  string    `db:"user_name" json:"user_name"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
