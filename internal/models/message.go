package models

import "time"

// Chat message roles. Assistant messages are authored by the Sonar planner.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// AssistantUserID is the synthetic author id on planner replies.
const AssistantUserID = "assistant"

// ChatMessage represents a message in a trip's shared planning chat.
type ChatMessage struct {
	ID        int       `db:"id" json:"id"`
	TripID    int       `db:"trip_id" json:"trip_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Role      string    `db:"role" json:"role"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
