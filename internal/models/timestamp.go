package models

import "time"

// FormatTimestamp renders t as an ISO-8601 string in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
