package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/streak"
)

var (
	ErrCompletionNotFound = errors.New("habit completion not found")
)

// Completion marks one check-off of a habit on a calendar day.
// A habit with a daily goal above one can have several per day.
type Completion struct {
	ID             string    `json:"id" db:"id"`
	HabitID        string    `json:"habit_id" db:"habit_id"`
	UserID         string    `json:"user_id" db:"user_id"`
	CompletionDate string    `json:"completion_date" db:"completion_date"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// NewCompletion normalises date to YYYY-MM-DD.
func NewCompletion(habitID, userID, date string) (*Completion, error) {
	if strings.TrimSpace(habitID) == "" {
		return nil, errors.New("habit_id is required")
	}
	if strings.TrimSpace(userID) == "" {
		return nil, ErrHabitInvalidUserID
	}

	day, err := streak.ParseDay(date)
	if err != nil {
		return nil, err
	}

	return &Completion{
		HabitID:        habitID,
		UserID:         userID,
		CompletionDate: day.String(),
		CreatedAt:      time.Now().UTC(),
	}, nil
}
