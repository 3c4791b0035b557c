package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"drift-board/internal/models"
)

// ActivityRepository persists the shared, append-only trip activity log.
type ActivityRepository interface {
	CreateActivity(ctx context.Context, tripID int, activityType, userID, userName, content string) (models.Activity, error)
	ListActivities(ctx context.Context, tripID int, limit int) ([]models.Activity, error)
}

// ActivityRepo is a sqlx implementation of ActivityRepository.
type ActivityRepo struct {
	db *sqlx.DB
}

// NewActivityRepo constructs an ActivityRepo.
func NewActivityRepo(db *sqlx.DB) *ActivityRepo {
	return &ActivityRepo{db: db}
}

// CreateActivity appends an entry to a trip's activity log.
func (r *ActivityRepo) CreateActivity(ctx context.Context, tripID int, activityType, userID, userName, content string) (models.Activity, error) {
	var activity models.Activity
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO activities (trip_id, type, user_id, user_name, content) VALUES ($1, $2, $3, $4, $5)
         RETURNING id, trip_id, type, user_id, user_name, content, created_at`,
		tripID, activityType, userID, userName, content).StructScan(&activity)
	return activity, err
}

// ListActivities returns a trip's activity log, most recent first.
func (r *ActivityRepo) ListActivities(ctx context.Context, tripID int, limit int) ([]models.Activity, error) {
	var activities []models.Activity
	err := r.db.SelectContext(ctx, &activities,
		`SELECT id, trip_id, type, user_id, user_name, content, created_at
         FROM activities WHERE trip_id=$1 ORDER BY created_at DESC, id DESC LIMIT $2`, tripID, limit)
	return activities, err
}
