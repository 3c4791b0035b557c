package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"drift-board/internal/models"
)

var ErrTripNotFound = errors.New("trip not found")

// TripRepository abstracts trip persistence.
type TripRepository interface {
	CreateTrip(ctx context.Context, ownerID, ownerName, ownerEmail, title, destination string, queryID *int) (models.Trip, error)
	GetTrip(ctx context.Context, tripID int) (models.Trip, error)
	ListTripsForUser(ctx context.Context, userID string) ([]models.Trip, error)
}

// TripRepo is a sqlx implementation of TripRepository.
type TripRepo struct {
	db *sqlx.DB
}

// NewTripRepo constructs a TripRepo.
func NewTripRepo(db *sqlx.DB) *TripRepo {
	return &TripRepo{db: db}
}

// CreateTrip creates a trip and its owner membership atomically. The owner
// row is accepted immediately so presence can resolve against it.
func (r *TripRepo) CreateTrip(ctx context.Context, ownerID, ownerName, ownerEmail, title, destination string, queryID *int) (models.Trip, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Trip{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var qid sql.NullInt64
	if queryID != nil {
		qid = sql.NullInt64{Int64: int64(*queryID), Valid: true}
	}

	var trip models.Trip
	if err = tx.QueryRowxContext(ctx,
		`INSERT INTO trips (title, destination, owner_id, query_id) VALUES ($1, $2, $3, $4)
         RETURNING id, title, destination, owner_id, query_id, created_at`,
		title, destination, ownerID, qid).
		Scan(&trip.ID, &trip.Title, &trip.Destination, &trip.OwnerID, &trip.QueryID, &trip.CreatedAt); err != nil {
		return models.Trip{}, err
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO trip_members (trip_id, user_id, name, email, accepted_at) VALUES ($1, $2, $3, $4, NOW())`,
		trip.ID, ownerID, ownerName, ownerEmail); err != nil {
		return models.Trip{}, err
	}

	if err = tx.Commit(); err != nil {
		return models.Trip{}, err
	}
	return trip, nil
}

// GetTrip fetches a trip by id.
func (r *TripRepo) GetTrip(ctx context.Context, tripID int) (models.Trip, error) {
	var trip models.Trip
	err := r.db.GetContext(ctx, &trip,
		`SELECT id, title, destination, owner_id, query_id, created_at FROM trips WHERE id=$1`, tripID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Trip{}, ErrTripNotFound
	}
	return trip, err
}

// ListTripsForUser returns trips the user collaborates on, newest first.
func (r *TripRepo) ListTripsForUser(ctx context.Context, userID string) ([]models.Trip, error) {
	var trips []models.Trip
	err := r.db.SelectContext(ctx, &trips,
		`SELECT t.id, t.title, t.destination, t.owner_id, t.query_id, t.created_at FROM trips t
         INNER JOIN trip_members tm ON tm.trip_id = t.id
         WHERE tm.user_id=$1
         ORDER BY t.created_at DESC`, userID)
	return trips, err
}
