package models

import (
	"database/sql"
	"time"
)

// Trip is the user-facing aggregate of a travel query, chat history,
// bookmarks and a generated itinerary.
type Trip struct {
	ID          int           `db:"id" json:"id"`
	Title       string        `db:"title" json:"title"`
	Destination string        `db:"destination" json:"destination"`
	OwnerID     string        `db:"owner_id" json:"owner_id"`
	QueryID     sql.NullInt64 `db:"query_id" json:"-"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
}
