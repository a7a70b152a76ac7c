package models

import "time"

// TimestampLayout is the wall-clock layout used for history and signal times
const TimestampLayout = "15:04:05"

// FormatTimestamp renders t at second resolution, e.g. "21:07:45".
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}
