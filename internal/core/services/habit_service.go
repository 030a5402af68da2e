package services

import (
	"context"
	"fmt"
	"time"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"
	"github.com/comitanigiacomo/kanso-streaks/internal/core/streak"
)

type HabitService struct {
	repo           domain.HabitRepository
	completionRepo domain.CompletionRepository
	streaks        *StreakService
	now            Clock
}

func NewHabitService(repo domain.HabitRepository, completionRepo domain.CompletionRepository, streaks *StreakService, now Clock) *HabitService {
	if now == nil {
		now = time.Now
	}
	return &HabitService{
		repo:           repo,
		completionRepo: completionRepo,
		streaks:        streaks,
		now:            now,
	}
}

type CreateHabitInput struct {
	UserID      string
	Title       string
	Description string
	HabitView   bool
	// nil means DefaultDailyGoal; an explicit value is validated as is
	DailyGoal *int
	Color     string
}

func (s *HabitService) Create(ctx context.Context, input CreateHabitInput) (*domain.Habit, error) {
	goal := domain.DefaultDailyGoal
	if input.DailyGoal != nil {
		goal = *input.DailyGoal
	}

	habit, err := domain.NewHabit(input.UserID, input.Title, input.Description, input.HabitView, goal, input.Color)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

// ListWithStreaks returns every habit of the user with streaks anchored at
// today in loc.
func (s *HabitService) ListWithStreaks(ctx context.Context, userID string, loc *time.Location) ([]*domain.HabitWithStreaks, error) {
	habits, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	datesByHabit, err := s.completionRepo.ListDatesByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now().In(loc)
	today := streak.DayOf(now)

	out := make([]*domain.HabitWithStreaks, 0, len(habits))
	for _, h := range habits {
		days, err := streak.ParseDays(datesByHabit[h.ID])
		if err != nil {
			s.streaks.observe(OutcomeInvalidDate)
			return nil, fmt.Errorf("habit %s: %w", h.ID, err)
		}
		s.streaks.observe(OutcomeComputed)

		res := streak.Result{
			Current: streak.Current(days, now),
			Best:    streak.Best(days),
		}

		completedToday := 0
		for _, d := range days {
			if d == today {
				completedToday++
			}
		}

		out = append(out, &domain.HabitWithStreaks{
			Habit:          h,
			Streaks:        res,
			CompletedToday: completedToday,
		})
	}
	return out, nil
}

func (s *HabitService) Delete(ctx context.Context, id string, userID string) error {
	habit, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if habit.UserID != userID {
		return domain.ErrHabitNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.streaks.Invalidate(ctx, id)
	return nil
}
