package domain

import (
	"context"
	"errors"
)

var (
	ErrHabitNotFound = errors.New("habit not found")
)

type HabitRepository interface {
	// Create persists a new habit definition in the storage.
	Create(ctx context.Context, habit *Habit) error

	// GetByID retrieves a habit by its unique identifier.
	GetByID(ctx context.Context, id string) (*Habit, error)

	// ListByUserID retrieves all habits associated with a specific user,
	// oldest first.
	ListByUserID(ctx context.Context, userID string) ([]*Habit, error)

	// Delete permanently removes a habit and its completions.
	Delete(ctx context.Context, id string) error
}

type CompletionRepository interface {
	Create(ctx context.Context, c *Completion) error

	// DeleteByDate removes every completion of the habit on date (YYYY-MM-DD).
	// It returns ErrCompletionNotFound when nothing matched.
	DeleteByDate(ctx context.Context, habitID, date string) error

	// ListDates returns one YYYY-MM-DD string per completion of the habit.
	// Duplicates are expected when the daily goal is above one.
	ListDates(ctx context.Context, habitID string) ([]string, error)

	// ListDatesByUserID groups the dates of every habit owned by userID.
	ListDatesByUserID(ctx context.Context, userID string) (map[string][]string, error)

	// HabitsCompletedOn returns the distinct habit ids with a completion on date.
	HabitsCompletedOn(ctx context.Context, date string) ([]string, error)
}
