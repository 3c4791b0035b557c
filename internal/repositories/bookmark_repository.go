package repositories

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"drift-board/internal/models"
)

var ErrBookmarkNotFound = errors.New("bookmark not found")

// BookmarkRepository abstracts saved-source persistence.
type BookmarkRepository interface {
	CreateBookmark(ctx context.Context, tripID int, userID, url, title, snippet string) (models.Bookmark, error)
	ListBookmarks(ctx context.Context, tripID int) ([]models.Bookmark, error)
	DeleteBookmark(ctx context.Context, tripID, bookmarkID int) error
}

// BookmarkRepo is a sqlx implementation of BookmarkRepository.
type BookmarkRepo struct {
	db *sqlx.DB
}

// NewBookmarkRepo constructs a BookmarkRepo.
func NewBookmarkRepo(db *sqlx.DB) *BookmarkRepo {
	return &BookmarkRepo{db: db}
}

// CreateBookmark saves a source for a trip.
func (r *BookmarkRepo) CreateBookmark(ctx context.Context, tripID int, userID, url, title, snippet string) (models.Bookmark, error) {
	var bookmark models.Bookmark
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO bookmarks (trip_id, user_id, url, title, snippet) VALUES ($1, $2, $3, $4, $5)
         RETURNING id, trip_id, user_id, url, title, snippet, created_at`,
		tripID, userID, url, title, snippet).StructScan(&bookmark)
	return bookmark, err
}

// ListBookmarks returns a trip's bookmarks, newest first.
func (r *BookmarkRepo) ListBookmarks(ctx context.Context, tripID int) ([]models.Bookmark, error) {
	var bookmarks []models.Bookmark
	err := r.db.SelectContext(ctx, &bookmarks,
		`SELECT id, trip_id, user_id, url, title, snippet, created_at
         FROM bookmarks WHERE trip_id=$1 ORDER BY created_at DESC`, tripID)
	return bookmarks, err
}

// DeleteBookmark removes a bookmark from a trip.
func (r *BookmarkRepo) DeleteBookmark(ctx context.Context, tripID, bookmarkID int) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM bookmarks WHERE id=$1 AND trip_id=$2`, bookmarkID, tripID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrBookmarkNotFound
	}
	return nil
}
