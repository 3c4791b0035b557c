package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jmoiron/sqlx"

	"drift-board/internal/models"
)

var ErrItineraryNotFound = errors.New("itinerary not found")

// ItineraryRepository persists confirmed suggestions and finalized plans.
type ItineraryRepository interface {
	CreateChoice(ctx context.Context, tripID int, userID string, messageID int, payload json.RawMessage) (models.ItineraryChoice, error)
	ListChoices(ctx context.Context, tripID int) ([]models.ItineraryChoice, error)
	SaveItinerary(ctx context.Context, tripID int, title string, days int, plan json.RawMessage, createdBy string) (models.Itinerary, error)
	LatestItinerary(ctx context.Context, tripID int) (models.Itinerary, error)
}

// ItineraryRepo is a sqlx implementation of ItineraryRepository.
type ItineraryRepo struct {
	db *sqlx.DB
}

// NewItineraryRepo constructs an ItineraryRepo.
func NewItineraryRepo(db *sqlx.DB) *ItineraryRepo {
	return &ItineraryRepo{db: db}
}

// CreateChoice saves a suggestion a collaborator confirmed from the chat.
func (r *ItineraryRepo) CreateChoice(ctx context.Context, tripID int, userID string, messageID int, payload json.RawMessage) (models.ItineraryChoice, error) {
	var choice models.ItineraryChoice
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO itinerary_choices (trip_id, user_id, message_id, payload) VALUES ($1, $2, $3, $4)
         RETURNING id, trip_id, user_id, message_id, payload, created_at`,
		tripID, userID, messageID, []byte(payload)).
		Scan(&choice.ID, &choice.TripID, &choice.UserID, &choice.MessageID, (*[]byte)(&choice.Payload), &choice.CreatedAt)
	return choice, err
}

// ListChoices returns all confirmed suggestions across collaborators.
func (r *ItineraryRepo) ListChoices(ctx context.Context, tripID int) ([]models.ItineraryChoice, error) {
	rows, err := r.db.QueryxContext(ctx,
		`SELECT id, trip_id, user_id, message_id, payload, created_at
         FROM itinerary_choices WHERE trip_id=$1 ORDER BY created_at ASC`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var choices []models.ItineraryChoice
	for rows.Next() {
		var choice models.ItineraryChoice
		if err := rows.Scan(&choice.ID, &choice.TripID, &choice.UserID, &choice.MessageID,
			(*[]byte)(&choice.Payload), &choice.CreatedAt); err != nil {
			return nil, err
		}
		choices = append(choices, choice)
	}
	return choices, rows.Err()
}

// SaveItinerary stores a finalized plan.
func (r *ItineraryRepo) SaveItinerary(ctx context.Context, tripID int, title string, days int, plan json.RawMessage, createdBy string) (models.Itinerary, error) {
	var itinerary models.Itinerary
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO itineraries (trip_id, title, days, plan, created_by) VALUES ($1, $2, $3, $4, $5)
         RETURNING id, trip_id, title, days, plan, created_by, created_at`,
		tripID, title, days, []byte(plan), createdBy).
		Scan(&itinerary.ID, &itinerary.TripID, &itinerary.Title, &itinerary.Days,
			(*[]byte)(&itinerary.Plan), &itinerary.CreatedBy, &itinerary.CreatedAt)
	return itinerary, err
}

// LatestItinerary returns the most recently finalized plan for a trip.
func (r *ItineraryRepo) LatestItinerary(ctx context.Context, tripID int) (models.Itinerary, error) {
	var itinerary models.Itinerary
	err := r.db.QueryRowxContext(ctx,
		`SELECT id, trip_id, title, days, plan, created_by, created_at
         FROM itineraries WHERE trip_id=$1 ORDER BY created_at DESC LIMIT 1`, tripID).
		Scan(&itinerary.ID, &itinerary.TripID, &itinerary.Title, &itinerary.Days,
			(*[]byte)(&itinerary.Plan), &itinerary.CreatedBy, &itinerary.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Itinerary{}, ErrItineraryNotFound
	}
	return itinerary, err
}
