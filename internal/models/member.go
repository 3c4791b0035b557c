package models

import (
	"database/sql"
	"time"
)

// Collaborator statuses, in precedence order. Typing overrides presence,
// presence overrides the persisted accepted/pending flag.
const (
	MemberStatusTyping  = "typing"
	MemberStatusActive  = "active"
	MemberStatusOffline = "offline"
	MemberStatusPending = "pending"
)

// TripMember is a collaborator on a shared trip. Rows are created when an
// invitation is sent; AcceptedAt distinguishes an accepted collaborator who
// is currently offline from one who never joined.
type TripMember struct {
	TripID     int            `db:"trip_id" json:"trip_id"`
	UserID     sql.NullString `db:"user_id" json:"-"`
	Name       string         `db:"name" json:"name"`
	Email      string         `db:"email" json:"email"`
	Avatar     sql.NullString `db:"avatar" json:"-"`
	InvitedAt  time.Time      `db:"invited_at" json:"invited_at"`
	AcceptedAt sql.NullTime   `db:"accepted_at" json:"-"`
}

// Accepted reports whether the invitation has been accepted.
func (m TripMember) Accepted() bool {
	return m.AcceptedAt.Valid
}

// Status resolves the rendered collaborator status from live typing and
// presence state plus the persisted membership row.
func (m TripMember) Status(typing bool, online bool) string {
	switch {
	case typing:
		return MemberStatusTyping
	case online:
		return MemberStatusActive
	case m.Accepted():
		return MemberStatusOffline
	default:
		return MemberStatusPending
	}
}
