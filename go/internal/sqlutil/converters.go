package sqlutil

import (
	"database/sql"
	"time"
)

// NullString maps "" to NULL.
func NullString(val string) sql.NullString {
	return sql.NullString{String: val, Valid: val != ""}
}

// TimePtr converts sql.NullTime to a Go time pointer.
func TimePtr(val sql.NullTime) *time.Time {
	if !val.Valid {
		return nil
	}
	t := val.Time
	return &t
}
