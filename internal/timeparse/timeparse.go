package timeparse

import (
	"strings"
	"time"
)

// Provider timestamps are usually airport-local without an offset
// ("2025-11-20T06:00:00"); zone-less values are read as UTC so that two of them
// subtract to their wall-clock difference.
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05-0700", // Without colon
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

func Parse(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &time.ParseError{
		Value:   value,
		Message: "unable to parse time string",
	}
}

// ParseOrNow is the named degraded path for bad provider timestamps: it never fails,
// returning now() and ok=false when value cannot be parsed.
func ParseOrNow(value string, now func() time.Time) (t time.Time, ok bool) {
	if parsed, err := Parse(value); err == nil {
		return parsed, true
	}
	if now == nil {
		now = time.Now
	}
	return now(), false
}

// FormatISO renders t as the ISO-8601 string used in normalized itineraries.
func FormatISO(t time.Time) string {
	return t.Format(time.RFC3339)
}
