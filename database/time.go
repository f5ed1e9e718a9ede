package database

import "time"

// TimeLayout is how instants are stored: UTC, second precision, the same
// text CURRENT_TIMESTAMP produces, so stored values compare lexically with
// SQL-generated ones.
const TimeLayout = "2006-01-02 15:04:05"

// Timestamp formats t for storage.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// NullTimestamp formats an optional instant.
func NullTimestamp(t *time.Time) any {
	if t == nil {
		return nil
	}
	return Timestamp(*t)
}
