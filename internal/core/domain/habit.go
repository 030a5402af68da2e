package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/streak"
)

var (
	ErrHabitTitleEmpty    = errors.New("habit title cannot be empty")
	ErrHabitTitleTooLong  = errors.New("habit title is too long (max 100 chars)")
	ErrHabitDescEmpty     = errors.New("habit description cannot be empty")
	ErrHabitDescTooLong   = errors.New("habit description is too long (max 500 chars)")
	ErrHabitInvalidUserID = errors.New("invalid user id")
	ErrInvalidColor       = errors.New("invalid color (palette name or #RRGGBB)")
	ErrInvalidDailyGoal   = errors.New("daily goal must be at least 1")
	ErrUnauthorized       = errors.New("unauthorized access to resource")
)

var colorRegex = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

const (
	DefaultColor     = "violet"
	DefaultDailyGoal = 1
	MaxTitleLen      = 100
	MaxDescLen       = 500
)

var paletteColors = map[string]bool{
	"red": true, "orange": true, "amber": true, "yellow": true, "lime": true,
	"green": true, "emerald": true, "teal": true, "cyan": true, "sky": true,
	"blue": true, "indigo": true, "violet": true, "purple": true, "fuchsia": true,
	"pink": true, "rose": true,
}

type Habit struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	HabitView   bool      `json:"habit_view" db:"habit_view"`
	DailyGoal   int       `json:"daily_goal" db:"daily_goal"`
	Color       string    `json:"color" db:"color"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// HabitWithStreaks is what the presentation layer renders for one habit.
type HabitWithStreaks struct {
	*Habit
	Streaks        streak.Result `json:"streaks"`
	CompletedToday int           `json:"completed_today"`
}

func validColor(c string) bool {
	return paletteColors[c] || colorRegex.MatchString(c)
}

func NewHabit(userID, title, description string, habitView bool, dailyGoal int, color string) (*Habit, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrHabitInvalidUserID
	}

	cleanTitle := strings.TrimSpace(title)
	if cleanTitle == "" {
		return nil, ErrHabitTitleEmpty
	}
	if utf8.RuneCountInString(cleanTitle) > MaxTitleLen {
		return nil, ErrHabitTitleTooLong
	}

	cleanDesc := strings.TrimSpace(description)
	if cleanDesc == "" {
		return nil, ErrHabitDescEmpty
	}
	if utf8.RuneCountInString(cleanDesc) > MaxDescLen {
		return nil, ErrHabitDescTooLong
	}

	if dailyGoal < 1 {
		return nil, ErrInvalidDailyGoal
	}

	color = strings.TrimSpace(color)
	if color == "" {
		color = DefaultColor
	}
	if !validColor(color) {
		return nil, ErrInvalidColor
	}

	now := time.Now().UTC()

	return &Habit{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       cleanTitle,
		Description: cleanDesc,
		HabitView:   habitView,
		DailyGoal:   dailyGoal,
		Color:       color,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
