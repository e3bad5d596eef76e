package rental

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used by rental records.
const DateLayout = "2006-01-02"

const day = 24 * time.Hour

// ParseDate parses a yyyy-mm-dd calendar date at UTC midnight.
func ParseDate(value string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(value), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return d, nil
}

// MustParseDate is ParseDate for literals. It panics on malformed input.
func MustParseDate(value string) time.Time {
	d, err := ParseDate(value)
	if err != nil {
		panic(err)
	}
	return d
}

// DayCount returns the number of calendar days from start to end, both included.
func DayCount(start, end time.Time) int {
	start = truncateDay(start)
	end = truncateDay(end)
	return int(end.Sub(start)/day) + 1
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
