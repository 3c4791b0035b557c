package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"drift-board/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageRepository defines interactions for trip chat messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, tripID int, userID, role, content string) (models.ChatMessage, error)
	ListMessages(ctx context.Context, tripID int) ([]models.ChatMessage, error)
	RecentMessages(ctx context.Context, tripID int, limit int) ([]models.ChatMessage, error)
	GetMessage(ctx context.Context, messageID int) (models.ChatMessage, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage stores a chat message on a trip.
func (r *MessageRepo) CreateMessage(ctx context.Context, tripID int, userID, role, content string) (models.ChatMessage, error) {
	var msg models.ChatMessage
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO chat_messages (trip_id, user_id, role, content) VALUES ($1, $2, $3, $4)
         RETURNING id, trip_id, user_id, role, content, created_at`,
		tripID, userID, role, content).StructScan(&msg)
	return msg, err
}

// ListMessages returns the full chat history in chronological order.
func (r *MessageRepo) ListMessages(ctx context.Context, tripID int) ([]models.ChatMessage, error) {
	var msgs []models.ChatMessage
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT id, trip_id, user_id, role, content, created_at
         FROM chat_messages WHERE trip_id=$1 ORDER BY created_at ASC`, tripID)
	return msgs, err
}

// RecentMessages returns the last N messages in chronological order. This is
// the memory window fed back to the planner.
func (r *MessageRepo) RecentMessages(ctx context.Context, tripID int, limit int) ([]models.ChatMessage, error) {
	var msgs []models.ChatMessage
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT id, trip_id, user_id, role, content, created_at
         FROM chat_messages WHERE trip_id=$1 ORDER BY created_at DESC LIMIT $2`, tripID, limit)
	if err != nil {
		return nil, err
	}
	// reverse into chronological order
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// GetMessage retrieves a single message.
func (r *MessageRepo) GetMessage(ctx context.Context, messageID int) (models.ChatMessage, error) {
	var msg models.ChatMessage
	err := r.db.GetContext(ctx, &msg,
		`SELECT id, trip_id, user_id, role, content, created_at FROM chat_messages WHERE id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ChatMessage{}, ErrMessageNotFound
	}
	return msg, err
}
