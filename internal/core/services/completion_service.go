package services

import (
	"context"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"
	"github.com/comitanigiacomo/kanso-streaks/internal/core/streak"
)

type Enqueuer interface {
	Enqueue(habitID string)
}

type CompletionService struct {
	repo      domain.CompletionRepository
	habitRepo domain.HabitRepository
	streaks   *StreakService
	worker    Enqueuer
}

func NewCompletionService(repo domain.CompletionRepository, habitRepo domain.HabitRepository, streaks *StreakService, worker Enqueuer) *CompletionService {
	return &CompletionService{
		repo:      repo,
		habitRepo: habitRepo,
		streaks:   streaks,
		worker:    worker,
	}
}

func (s *CompletionService) authorize(ctx context.Context, habitID, userID string) error {
	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return err
	}
	if habit.UserID != userID {
		return domain.ErrUnauthorized
	}
	return nil
}

// changed drops snapshots right away so readers never see the old value,
// then lets the worker warm the new one.
func (s *CompletionService) changed(ctx context.Context, habitID string) {
	s.streaks.Invalidate(ctx, habitID)
	if s.worker != nil {
		s.worker.Enqueue(habitID)
	}
}

func (s *CompletionService) Complete(ctx context.Context, habitID, userID, date string) (*domain.Completion, error) {
	completion, err := domain.NewCompletion(habitID, userID, date)
	if err != nil {
		return nil, err
	}

	if err := s.authorize(ctx, habitID, userID); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, completion); err != nil {
		return nil, err
	}

	s.changed(ctx, habitID)
	return completion, nil
}

// Undo removes every completion of the habit on date.
func (s *CompletionService) Undo(ctx context.Context, habitID, userID, date string) error {
	day, err := streak.ParseDay(date)
	if err != nil {
		return err
	}

	if err := s.authorize(ctx, habitID, userID); err != nil {
		return err
	}

	if err := s.repo.DeleteByDate(ctx, habitID, day.String()); err != nil {
		return err
	}

	s.changed(ctx, habitID)
	return nil
}

func (s *CompletionService) List(ctx context.Context, habitID, userID string) ([]string, error) {
	if err := s.authorize(ctx, habitID, userID); err != nil {
		return nil, err
	}
	return s.repo.ListDates(ctx, habitID)
}
