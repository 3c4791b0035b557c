package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"drift-board/internal/models"
)

var (
	ErrMemberNotFound = errors.New("member not found")
	ErrAlreadyInvited = errors.New("already invited")
)

// MemberRepository abstracts trip collaborator persistence.
type MemberRepository interface {
	InviteMember(ctx context.Context, tripID int, name, email string) (models.TripMember, error)
	AcceptInvite(ctx context.Context, tripID int, email, userID string) (models.TripMember, error)
	ListMembers(ctx context.Context, tripID int) ([]models.TripMember, error)
	RemoveMember(ctx context.Context, tripID int, userID string) error
	IsMember(ctx context.Context, tripID int, userID string) (bool, error)
}

// MemberRepo is a sqlx implementation of MemberRepository.
type MemberRepo struct {
	db *sqlx.DB
}

// NewMemberRepo constructs a MemberRepo.
func NewMemberRepo(db *sqlx.DB) *MemberRepo {
	return &MemberRepo{db: db}
}

// InviteMember creates a pending membership row keyed by email. The user id
// stays empty until the invitee accepts.
func (r *MemberRepo) InviteMember(ctx context.Context, tripID int, name, email string) (models.TripMember, error) {
	var member models.TripMember
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO trip_members (trip_id, name, email) VALUES ($1, $2, $3)
         ON CONFLICT (trip_id, email) DO NOTHING
         RETURNING trip_id, user_id, name, email, avatar, invited_at, accepted_at`,
		tripID, name, email).StructScan(&member)
	if errors.Is(err, sql.ErrNoRows) {
		return models.TripMember{}, ErrAlreadyInvited
	}
	return member, err
}

// AcceptInvite binds the caller's user id to their pending invitation and
// marks it accepted.
func (r *MemberRepo) AcceptInvite(ctx context.Context, tripID int, email, userID string) (models.TripMember, error) {
	var member models.TripMember
	err := r.db.QueryRowxContext(ctx,
		`UPDATE trip_members SET user_id=$3, accepted_at=NOW()
         WHERE trip_id=$1 AND email=$2 AND accepted_at IS NULL
         RETURNING trip_id, user_id, name, email, avatar, invited_at, accepted_at`,
		tripID, email, userID).StructScan(&member)
	if errors.Is(err, sql.ErrNoRows) {
		return models.TripMember{}, ErrMemberNotFound
	}
	return member, err
}

// ListMembers returns all collaborators of a trip, owner first.
func (r *MemberRepo) ListMembers(ctx context.Context, tripID int) ([]models.TripMember, error) {
	var members []models.TripMember
	err := r.db.SelectContext(ctx, &members,
		`SELECT trip_id, user_id, name, email, avatar, invited_at, accepted_at
         FROM trip_members WHERE trip_id=$1 ORDER BY invited_at ASC`, tripID)
	return members, err
}

// RemoveMember deletes a collaborator row by user id.
func (r *MemberRepo) RemoveMember(ctx context.Context, tripID int, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM trip_members WHERE trip_id=$1 AND user_id=$2`, tripID, userID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrMemberNotFound
	}
	return nil
}

// IsMember checks whether a user has an accepted membership on the trip.
func (r *MemberRepo) IsMember(ctx context.Context, tripID int, userID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM trip_members WHERE trip_id=$1 AND user_id=$2 AND accepted_at IS NOT NULL)`,
		tripID, userID)
	return exists, err
}
