package core

import (
	"fmt"
	"time"
)

// DateLayout is the canonical storage format for dates in documents.
const DateLayout = "2006-01-02"

// dateLayouts are the representations store records are allowed to carry.
// Everything is normalized to a UTC midnight instant at ingestion; nothing
// past the collectors ever branches on a date representation.
var dateLayouts = []string{
	DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"01/02/2006",
}

// ParseDate normalizes a stored date string to a UTC midnight time.Time.
// Failures return a DateParseError so callers can decide whether the item
// is skippable (ledger transactions) or fatal.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, &DateParseError{Value: value, Err: fmt.Errorf("empty date")}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return DateOnly(t), nil
		}
	}
	return time.Time{}, &DateParseError{Value: value, Err: fmt.Errorf("unrecognized format")}
}

// DateOnly truncates an instant to its UTC calendar day.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
