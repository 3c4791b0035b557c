package models

import (
	"encoding/json"
	"time"
)

// Query research statuses.
const (
	QueryStatusPending   = "pending"
	QueryStatusCompleted = "completed"
	QueryStatusError     = "error"
)

// Query sources. Extension captures arrive pre-answered from the browser
// extension relay and skip the Sonar call.
const (
	QuerySourceWeb       = "web"
	QuerySourceExtension = "extension"
)

// Query is a free-text travel research query and its Sonar result.
type Query struct {
	ID          int             `db:"id" json:"id"`
	UserID      string          `db:"user_id" json:"user_id"`
	RawQuery    string          `db:"raw_query" json:"raw_query"`
	Source      string          `db:"source" json:"source"`
	SonarStatus string          `db:"sonar_status" json:"sonar_status"`
	SonarData   json.RawMessage `db:"sonar_data" json:"sonar_data,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}
