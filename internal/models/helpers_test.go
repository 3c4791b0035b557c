package models

import (
	"database/sql"
	"time"
)

func nullTimeNow() sql.NullTime {
	return sql.NullTime{Time: time.Now(), Valid: true}
}
