package models

import "time"

// Bookmark is a source saved by a collaborator from a research answer.
type Bookmark struct {
	ID        int       `db:"id" json:"id"`
	TripID    int       `db:"trip_id" json:"trip_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	URL       string    `db:"url" json:"url"`
	Title     string    `db:"title" json:"title"`
	Snippet   string    `db:"snippet" json:"snippet"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
