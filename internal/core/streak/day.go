package streak

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidDateFormat = errors.New("invalid date format")

const (
	DateLayout = "2006-01-02"
	secondsDay = 24 * 60 * 60
)

// Accepted input layouts. Only the calendar date as written is kept,
// so "2024-01-02T23:30:00+05:00" is 2024-01-02.
var layouts = []string{
	DateLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05Z07:00",
}

// Day is a calendar day counted from 1970-01-01. It carries no time of day
// and no zone, so two Days are equal iff they denote the same date.
type Day int64

// DayOf returns the calendar day of t in t's own location.
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return Day(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / secondsDay)
}

func ParseDay(s string) (Day, error) {
	raw := strings.TrimSpace(s)
	for _, layout := range layouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return DayOf(t), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDateFormat, s)
}

// ParseDays fails the whole batch on the first malformed date.
func ParseDays(dates []string) ([]Day, error) {
	days := make([]Day, 0, len(dates))
	for _, s := range dates {
		d, err := ParseDay(s)
		if err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, nil
}

func (d Day) Prev() Day { return d - 1 }

func (d Day) Time() time.Time {
	return time.Unix(int64(d)*secondsDay, 0).UTC()
}

func (d Day) String() string {
	return d.Time().Format(DateLayout)
}
