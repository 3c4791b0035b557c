package models

import (
	"encoding/json"
	"time"
)

// ItineraryChoice is a suggestion a collaborator confirmed from the planning
// chat. Choices across all collaborators feed the finalize step.
type ItineraryChoice struct {
	ID        int             `db:"id" json:"id"`
	TripID    int             `db:"trip_id" json:"trip_id"`
	UserID    string          `db:"user_id" json:"user_id"`
	MessageID int             `db:"message_id" json:"message_id"`
	Payload   json.RawMessage `db:"payload" json:"payload"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// ChoicePayload is the suggestion JSON the planner embeds in its replies.
type ChoicePayload struct {
	Suggestion string   `json:"suggestion"`
	Day        int      `json:"day"`
	Tags       []string `json:"tags"`
}

// Itinerary is a finalized day-by-day plan generated from confirmed choices.
type Itinerary struct {
	ID        int             `db:"id" json:"id"`
	TripID    int             `db:"trip_id" json:"trip_id"`
	Title     string          `db:"title" json:"title"`
	Days      int             `db:"days" json:"days"`
	Plan      json.RawMessage `db:"plan" json:"plan"`
	CreatedBy string          `db:"created_by" json:"created_by"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// ItineraryPlan is the JSON shape the planner must return on finalize.
type ItineraryPlan struct {
	Title string         `json:"title"`
	Days  []ItineraryDay `json:"days"`
}

// ItineraryDay is one day of a finalized plan.
type ItineraryDay struct {
	Day       int      `json:"day"`
	Summary   string   `json:"summary"`
	Morning   string   `json:"morning"`
	Afternoon string   `json:"afternoon"`
	Evening   string   `json:"evening"`
	Notes     []string `json:"notes"`
}
