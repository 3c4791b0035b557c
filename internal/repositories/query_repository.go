package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jmoiron/sqlx"

	"drift-board/internal/models"
)

var ErrQueryNotFound = errors.New("query not found")

// QueryRepository abstracts research query persistence.
type QueryRepository interface {
	CreateQuery(ctx context.Context, userID, rawQuery, source, status string, data json.RawMessage) (models.Query, error)
	UpdateQueryResult(ctx context.Context, queryID int, status string, data json.RawMessage) error
	GetQuery(ctx context.Context, queryID int) (models.Query, error)
	ListQueries(ctx context.Context, userID string) ([]models.Query, error)
}

// QueryRepo is a sqlx implementation of QueryRepository.
type QueryRepo struct {
	db *sqlx.DB
}

// NewQueryRepo constructs a QueryRepo.
func NewQueryRepo(db *sqlx.DB) *QueryRepo {
	return &QueryRepo{db: db}
}

// CreateQuery stores a research query. Extension captures arrive already
// completed; web queries start pending.
func (r *QueryRepo) CreateQuery(ctx context.Context, userID, rawQuery, source, status string, data json.RawMessage) (models.Query, error) {
	var query models.Query
	var raw []byte
	if data != nil {
		raw = []byte(data)
	}
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO queries (user_id, raw_query, source, sonar_status, sonar_data) VALUES ($1, $2, $3, $4, $5)
         RETURNING id, user_id, raw_query, source, sonar_status, sonar_data, created_at`,
		userID, rawQuery, source, status, raw).
		Scan(&query.ID, &query.UserID, &query.RawQuery, &query.Source, &query.SonarStatus,
			(*[]byte)(&query.SonarData), &query.CreatedAt)
	return query, err
}

// UpdateQueryResult records the outcome of the Sonar call.
func (r *QueryRepo) UpdateQueryResult(ctx context.Context, queryID int, status string, data json.RawMessage) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE queries SET sonar_status=$2, sonar_data=$3 WHERE id=$1`, queryID, status, []byte(data))
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrQueryNotFound
	}
	return nil
}

// GetQuery fetches a query by id.
func (r *QueryRepo) GetQuery(ctx context.Context, queryID int) (models.Query, error) {
	var query models.Query
	err := r.db.QueryRowxContext(ctx,
		`SELECT id, user_id, raw_query, source, sonar_status, sonar_data, created_at FROM queries WHERE id=$1`, queryID).
		Scan(&query.ID, &query.UserID, &query.RawQuery, &query.Source, &query.SonarStatus,
			(*[]byte)(&query.SonarData), &query.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Query{}, ErrQueryNotFound
	}
	return query, err
}

// ListQueries returns the user's queries, newest first.
func (r *QueryRepo) ListQueries(ctx context.Context, userID string) ([]models.Query, error) {
	rows, err := r.db.QueryxContext(ctx,
		`SELECT id, user_id, raw_query, source, sonar_status, sonar_data, created_at
         FROM queries WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var queries []models.Query
	for rows.Next() {
		var query models.Query
		if err := rows.Scan(&query.ID, &query.UserID, &query.RawQuery, &query.Source,
			&query.SonarStatus, (*[]byte)(&query.SonarData), &query.CreatedAt); err != nil {
			return nil, err
		}
		queries = append(queries, query)
	}
	return queries, rows.Err()
}
