package dateutil

import (
	"time"

	"retail-backoffice/internal/apperr"
)

// Report ranges accept either a bare day or a full RFC 3339 timestamp.
// Everything is interpreted as UTC.
const dayLayout = "2006-01-02"

// ParseStart parses the lower bound of a report range. Empty means
// unbounded. A bare date means midnight at the start of that day.
func ParseStart(s string) (*time.Time, error) {
	return parseBound(s, false)
}

// ParseEnd parses the upper bound, inclusive. A bare date extends to the
// last instant of that day so "2025-03-01".."2025-03-01" covers the whole day.
func ParseEnd(s string) (*time.Time, error) {
	return parseBound(s, true)
}

func parseBound(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(dayLayout, s); err == nil {
		t = t.UTC()
		if endOfDay {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		return &t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.UTC()
		return &t, nil
	}
	return nil, apperr.InvalidDate("date %q: want YYYY-MM-DD or RFC 3339", s)
}

// ParseRange parses both bounds and rejects an inverted range.
func ParseRange(startStr, endStr string) (start, end *time.Time, err error) {
	if start, err = ParseStart(startStr); err != nil {
		return nil, nil, err
	}
	if end, err = ParseEnd(endStr); err != nil {
		return nil, nil, err
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, nil, apperr.InvalidDate("range end %s before start %s", endStr, startStr)
	}
	return start, end, nil
}

// DayKey buckets a timestamp into its UTC calendar day.
func DayKey(t time.Time) string {
	return t.UTC().Format(dayLayout)
}
