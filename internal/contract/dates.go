package contract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/metaconscious/CodeModificationAnalyzer/schema"
)

// relativeDateRe captures "N [units] ago", e.g. "2 years ago" or "10 days ago".
var relativeDateRe = regexp.MustCompile(`^(\d+)\s+(year|month|week|day)s?\s+ago$`)

// ParseDate parses a calendar date in the local time zone. An empty string means no bound
// and returns nil. Besides YYYY-MM-DD, relative forms such as "3 months ago" are accepted.
// Malformed input yields an InvalidDate error.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.ParseInLocation(schema.DateLayout, s, time.Local); err == nil {
		return &t, nil
	}
	if t, err := ParseRelativeDate(s, time.Now()); err == nil {
		return &t, nil
	}
	return nil, schema.NewAnalysisError(schema.InvalidDate, nil, "Invalid date format: %s. Please use YYYY-MM-DD.", s)
}

// ParseRelativeDate converts strings like "2 weeks ago" into the start of that day relative to now.
func ParseRelativeDate(s string, now time.Time) (time.Time, error) {
	matches := relativeDateRe.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if len(matches) == 0 {
		return time.Time{}, fmt.Errorf("invalid relative date format: %s", s)
	}

	value, err := strconv.Atoi(matches[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid relative date value: %s", matches[1])
	}

	var t time.Time
	switch matches[2] {
	case "year":
		t = now.AddDate(-value, 0, 0)
	case "month":
		t = now.AddDate(0, -value, 0)
	case "week":
		t = now.AddDate(0, 0, -7*value)
	default:
		t = now.AddDate(0, 0, -value)
	}
	return StartOfDay(t), nil
}

// StartOfDay returns midnight of the day containing t, in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfNextDay returns midnight of the day after the one containing t, in t's location.
func StartOfNextDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1)
}
