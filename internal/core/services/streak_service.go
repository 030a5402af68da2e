package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"
	"github.com/comitanigiacomo/kanso-streaks/internal/core/streak"
)

const (
	OutcomeComputed    = "computed"
	OutcomeCached      = "cached"
	OutcomeInvalidDate = "invalid_date"
)

// SnapshotStore versions snapshots per habit. Invalidate moves the habit to
// a new generation and Set refuses (stored=false) a result computed under
// an older one.
type SnapshotStore interface {
	Get(ctx context.Context, habitID string, day streak.Day) (streak.Result, bool, error)
	Generation(ctx context.Context, habitID string) (int64, error)
	Set(ctx context.Context, habitID string, gen int64, now time.Time, res streak.Result) (stored bool, err error)
	Invalidate(ctx context.Context, habitID string) error
}

type Recorder interface {
	ObserveComputation(outcome string)
}

type Clock func() time.Time

type StreakService struct {
	habitRepo      domain.HabitRepository
	completionRepo domain.CompletionRepository
	snapshots      SnapshotStore
	recorder       Recorder
	log            logrus.FieldLogger
	now            Clock
}

// NewStreakService accepts a nil snapshots store or recorder.
func NewStreakService(
	habitRepo domain.HabitRepository,
	completionRepo domain.CompletionRepository,
	snapshots SnapshotStore,
	recorder Recorder,
	log logrus.FieldLogger,
	now Clock,
) *StreakService {
	if now == nil {
		now = time.Now
	}
	return &StreakService{
		habitRepo:      habitRepo,
		completionRepo: completionRepo,
		snapshots:      snapshots,
		recorder:       recorder,
		log:            log.WithField("component", "streak_service"),
		now:            now,
	}
}

func (s *StreakService) observe(outcome string) {
	if s.recorder != nil {
		s.recorder.ObserveComputation(outcome)
	}
}

func (s *StreakService) Now() time.Time {
	return s.now()
}

// Compute runs the engine on caller supplied dates.
func (s *StreakService) Compute(dates []string, reference time.Time) (streak.Result, error) {
	res, err := streak.Compute(dates, reference)
	if err != nil {
		s.observe(OutcomeInvalidDate)
		return streak.Result{}, err
	}
	s.observe(OutcomeComputed)
	return res, nil
}

// ForHabit returns the streaks of a habit owned by userID, with "today"
// taken in loc.
func (s *StreakService) ForHabit(ctx context.Context, habitID, userID string, loc *time.Location) (streak.Result, error) {
	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return streak.Result{}, err
	}
	if habit.UserID != userID {
		return streak.Result{}, domain.ErrUnauthorized
	}

	return s.computeFor(ctx, habitID, s.now().In(loc))
}

// Refresh drops stale snapshots of the habit and recomputes for today in UTC.
func (s *StreakService) Refresh(ctx context.Context, habitID string) (streak.Result, error) {
	s.Invalidate(ctx, habitID)
	return s.computeFor(ctx, habitID, s.now().UTC())
}

func (s *StreakService) Invalidate(ctx context.Context, habitID string) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.Invalidate(ctx, habitID); err != nil {
		s.log.WithError(err).WithField("habit_id", habitID).Warn("snapshot invalidation failed")
	}
}

func (s *StreakService) computeFor(ctx context.Context, habitID string, now time.Time) (streak.Result, error) {
	today := streak.DayOf(now)
	log := s.log.WithField("habit_id", habitID)

	// gen must be read before the completions so a write landing in between
	// makes the Set below a no-op.
	var gen int64
	cacheable := s.snapshots != nil
	if cacheable {
		res, ok, err := s.snapshots.Get(ctx, habitID, today)
		if err != nil {
			log.WithError(err).Warn("snapshot read failed, computing")
		} else if ok {
			s.observe(OutcomeCached)
			return res, nil
		}

		if gen, err = s.snapshots.Generation(ctx, habitID); err != nil {
			log.WithError(err).Warn("snapshot generation unavailable, not caching")
			cacheable = false
		}
	}

	dates, err := s.completionRepo.ListDates(ctx, habitID)
	if err != nil {
		return streak.Result{}, fmt.Errorf("load completions of %s: %w", habitID, err)
	}

	res, err := s.Compute(dates, now)
	if err != nil {
		return streak.Result{}, fmt.Errorf("habit %s: %w", habitID, err)
	}

	if cacheable {
		stored, err := s.snapshots.Set(ctx, habitID, gen, now, res)
		switch {
		case err != nil:
			log.WithError(err).Warn("snapshot write failed")
		case !stored:
			log.WithField("generation", gen).Debug("snapshot superseded by a newer write")
		}
	}
	return res, nil
}
