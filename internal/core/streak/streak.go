// Package streak derives current and best streaks from the calendar days
// a habit was completed on.
package streak

import (
	"slices"
	"time"
)

type Result struct {
	Current int `json:"current"`
	Best    int `json:"best"`
}

// Compute parses dates and returns both streaks anchored at now.
// A malformed date rejects the whole computation.
func Compute(dates []string, now time.Time) (Result, error) {
	days, err := ParseDays(dates)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Current: Current(days, now),
		Best:    Best(days),
	}, nil
}

// Current counts consecutive days walking back from today. The streak is
// still alive when today is not logged yet but yesterday was.
func Current(days []Day, now time.Time) int {
	if len(days) == 0 {
		return 0
	}

	set := make(map[Day]struct{}, len(days))
	for _, d := range days {
		set[d] = struct{}{}
	}

	cursor := DayOf(now)
	if _, ok := set[cursor]; !ok {
		cursor = cursor.Prev()
		if _, ok := set[cursor]; !ok {
			return 0
		}
	}

	count := 0
	for {
		if _, ok := set[cursor]; !ok {
			break
		}
		count++
		cursor = cursor.Prev()
	}
	return count
}

// Best returns the longest run of consecutive days anywhere in days.
func Best(days []Day) int {
	if len(days) == 0 {
		return 0
	}

	sorted := slices.Clone(days)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	best, run := 0, 1
	for i := 1; i < len(sorted); i++ {
		gap := sorted[i] - sorted[i-1]
		switch {
		case gap == 1:
			run++
		case gap > 1:
			best = max(best, run)
			run = 1
		}
	}
	return max(best, run)
}
